package bothttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"product-query-bot/internal/adapter/bothttp"
	"product-query-bot/internal/usecase"
)

type mockPipeline struct {
	mock.Mock
}

func (m *mockPipeline) ProcessQuery(ctx context.Context, query, userID string) *usecase.PipelineResult {
	args := m.Called(ctx, query, userID)
	return args.Get(0).(*usecase.PipelineResult)
}

func (m *mockPipeline) SystemInfo(ctx context.Context) (*usecase.SystemInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SystemInfo), args.Error(1)
}

func postQuery(t *testing.T, handler *bothttp.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, handler.Query(c))
	return rec
}

func TestHandler_Query(t *testing.T) {
	t.Run("successful query returns pipeline result", func(t *testing.T) {
		p := new(mockPipeline)
		p.On("ProcessQuery", mock.Anything, "dandruff shampoo", "user-1").Return(&usecase.PipelineResult{
			Query:         "dandruff shampoo",
			UserID:        "user-1",
			FinalResponse: "Try the anti-dandruff shampoo.",
			Status:        usecase.StatusSuccess,
		})

		rec := postQuery(t, bothttp.NewHandler(p), `{"user_id":"user-1","query":"dandruff shampoo"}`)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp usecase.PipelineResult
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, usecase.StatusSuccess, resp.Status)
		assert.Equal(t, "Try the anti-dandruff shampoo.", resp.FinalResponse)
		p.AssertExpectations(t)
	})

	t.Run("pipeline errors still answer with 200", func(t *testing.T) {
		p := new(mockPipeline)
		p.On("ProcessQuery", mock.Anything, "q", "user-1").Return(&usecase.PipelineResult{
			Query:         "q",
			UserID:        "user-1",
			FinalResponse: "Sorry, I couldn't generate a response. Error: model overloaded",
			Status:        usecase.StatusError,
			Error:         "model overloaded",
		})

		rec := postQuery(t, bothttp.NewHandler(p), `{"user_id":"user-1","query":"q"}`)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp usecase.PipelineResult
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, usecase.StatusError, resp.Status)
		assert.NotEmpty(t, resp.FinalResponse)
	})

	t.Run("missing user_id is rejected", func(t *testing.T) {
		p := new(mockPipeline)

		rec := postQuery(t, bothttp.NewHandler(p), `{"query":"q"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		p.AssertNotCalled(t, "ProcessQuery")
	})

	t.Run("missing query is rejected", func(t *testing.T) {
		p := new(mockPipeline)

		rec := postQuery(t, bothttp.NewHandler(p), `{"user_id":"user-1"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		p.AssertNotCalled(t, "ProcessQuery")
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		p := new(mockPipeline)

		rec := postQuery(t, bothttp.NewHandler(p), `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_SystemInfo(t *testing.T) {
	t.Run("reports system info", func(t *testing.T) {
		p := new(mockPipeline)
		p.On("SystemInfo", mock.Anything).Return(&usecase.SystemInfo{
			System:          "product-query-pipeline",
			IndexedDocs:     5,
			EmbeddingModel:  "text-embedding-3-small",
			GenerationModel: "gpt-4o",
		}, nil)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/system/info", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, bothttp.NewHandler(p).SystemInfo(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var info usecase.SystemInfo
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, 5, info.IndexedDocs)
		assert.Equal(t, "gpt-4o", info.GenerationModel)
	})

	t.Run("store failure surfaces as 500", func(t *testing.T) {
		p := new(mockPipeline)
		p.On("SystemInfo", mock.Anything).Return(nil, errors.New("store down"))

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/system/info", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, bothttp.NewHandler(p).SystemInfo(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
