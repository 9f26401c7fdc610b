package dto

import "github.com/noah-isme/gema-judge-api/pkg/judge"

// ExecuteRequest is the payload of the execute proxy. Either language_id or language must be set.
type ExecuteRequest struct {
	LanguageID int    `json:"language_id" validate:"omitempty,gt=0"`
	Language   string `json:"language" validate:"required_without=LanguageID"`
	SourceCode string `json:"source_code" validate:"required"`
	Stdin      string `json:"stdin"`
}

// ExecutionStatus mirrors the judge status object.
type ExecutionStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// ExecutionResponse is the judge result as returned to the editor.
type ExecutionResponse struct {
	Token         string          `json:"token,omitempty"`
	Language      string          `json:"language"`
	Stdout        string          `json:"stdout"`
	Stderr        string          `json:"stderr"`
	CompileOutput string          `json:"compile_output"`
	Message       string          `json:"message,omitempty"`
	ExitCode      int             `json:"exit_code"`
	TimeMs        float64         `json:"time_ms"`
	MemoryKB      float64         `json:"memory_kb"`
	Status        ExecutionStatus `json:"status"`
	Accepted      bool            `json:"accepted"`
}

// NewExecutionResponse converts a judge result.
func NewExecutionResponse(result judge.Result, language string) ExecutionResponse {
	return ExecutionResponse{
		Token:         result.Token,
		Language:      language,
		Stdout:        result.Stdout,
		Stderr:        result.Stderr,
		CompileOutput: result.CompileOutput,
		Message:       result.Message,
		ExitCode:      result.ExitCode,
		TimeMs:        result.RuntimeMs(),
		MemoryKB:      result.MemoryKB,
		Status: ExecutionStatus{
			ID:          result.Status.ID,
			Description: result.Status.Description,
		},
		Accepted: result.Status.Accepted(),
	}
}

// LanguageResponse is returned by the normalize endpoint.
type LanguageResponse struct {
	Token      string `json:"token"`
	Language   string `json:"language"`
	LanguageID *int   `json:"language_id,omitempty"`
}
