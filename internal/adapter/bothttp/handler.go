package bothttp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"product-query-bot/internal/usecase"
)

// Handler exposes the query pipeline over HTTP.
type Handler struct {
	pipeline usecase.Pipeline
}

func NewHandler(pipeline usecase.Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

// Query runs one query through the pipeline.
// (POST /v1/query)
//
// Pipeline failures are reported in the body's status field with HTTP 200;
// only malformed requests get a non-200 code.
func (h *Handler) Query(ctx echo.Context) error {
	var req QueryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.UserID == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "missing user_id"})
	}
	if req.Query == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "missing query"})
	}

	result := h.pipeline.ProcessQuery(ctx.Request().Context(), req.Query, req.UserID)
	return ctx.JSON(http.StatusOK, result)
}

// SystemInfo reports index size and configured models.
// (GET /v1/system/info)
func (h *Handler) SystemInfo(ctx echo.Context) error {
	info, err := h.pipeline.SystemInfo(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, info)
}

// Register attaches the routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/query", h.Query)
	e.GET("/v1/system/info", h.SystemInfo)
}
