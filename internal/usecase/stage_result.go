package usecase

// Status is the outcome tag shared by stages and the pipeline.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	// StatusSystemError marks failures contained at the orchestrator
	// boundary rather than inside a stage.
	StatusSystemError Status = "system_error"
	// StatusSkipped marks a stage that was never invoked because an earlier
	// stage short-circuited the pipeline.
	StatusSkipped Status = "skipped"
)

// StageResult is the tagged outcome of one pipeline stage. Stages never
// return errors or panic across this boundary; failures are reported through
// Status and Err.
type StageResult[P any] struct {
	Stage    string
	Status   Status
	Payload  P
	DocCount int
	Err      string
}
