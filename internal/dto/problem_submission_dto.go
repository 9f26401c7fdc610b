package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/gema-judge-api/internal/models"
)

// SubmissionCreateRequest is sent by the editor after it graded a run itself.
type SubmissionCreateRequest struct {
	Language          string   `json:"language" validate:"required"`
	Code              string   `json:"code" validate:"required"`
	TestcasesPassed   *int     `json:"testcasesPassed" validate:"required,gte=0"`
	TotalTestcases    *int     `json:"totalTestcases" validate:"required,gte=0"`
	AllPassed         bool     `json:"allPassed"`
	Runtime           *float64 `json:"runtime" validate:"omitempty,gte=0"`
	Memory            *float64 `json:"memory" validate:"omitempty,gte=0"`
	RuntimePercentile *float64 `json:"runtimePercentile" validate:"omitempty,gte=0,lte=100"`
	MemoryPercentile  *float64 `json:"memoryPercentile" validate:"omitempty,gte=0,lte=100"`
}

// EvaluationRequest asks the server to grade code against the problem's test cases.
type EvaluationRequest struct {
	Language string `json:"language" validate:"required"`
	Code     string `json:"code" validate:"required"`
	// SamplesOnly runs the visible cases and does not store a submission.
	SamplesOnly bool `json:"samplesOnly"`
}

// LanguageSettingsRequest stores the editor language for a problem.
type LanguageSettingsRequest struct {
	Language string `json:"language" validate:"required"`
}

// SubmissionResponse describes a stored submission.
type SubmissionResponse struct {
	ID                string          `json:"id"`
	ProblemID         uint            `json:"problemId"`
	Language          string          `json:"language"`
	Code              string          `json:"code,omitempty"`
	SubmittedAt       time.Time       `json:"submittedAt"`
	TestcasesPassed   int             `json:"testcasesPassed"`
	TotalTestcases    int             `json:"totalTestcases"`
	AllPassed         bool            `json:"allPassed"`
	Runtime           *float64        `json:"runtime"`
	Memory            *float64        `json:"memory"`
	RuntimePercentile *float64        `json:"runtimePercentile"`
	MemoryPercentile  *float64        `json:"memoryPercentile"`
	Cases             json.RawMessage `json:"cases,omitempty"`
}

// NewSubmissionResponse converts a submission model. Code is omitted in history listings.
func NewSubmissionResponse(submission models.Submission, includeCode bool) SubmissionResponse {
	response := SubmissionResponse{
		ID:                submission.ID,
		ProblemID:         submission.ProblemID,
		Language:          submission.Language,
		SubmittedAt:       submission.SubmittedAt,
		TestcasesPassed:   submission.TestcasesPassed,
		TotalTestcases:    submission.TotalTestcases,
		AllPassed:         submission.AllPassed,
		Runtime:           submission.RuntimeMs,
		Memory:            submission.MemoryKB,
		RuntimePercentile: submission.RuntimePercentile,
		MemoryPercentile:  submission.MemoryPercentile,
	}
	if includeCode {
		response.Code = submission.Code
	}
	if len(submission.CaseResults) > 0 {
		response.Cases = json.RawMessage(submission.CaseResults)
	}
	return response
}

// NewSubmissionResponses converts a history page.
func NewSubmissionResponses(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission, false))
	}
	return responses
}

// AcceptedSubmissionResponse backs the accepted tab.
type AcceptedSubmissionResponse struct {
	HasAcceptedSubmission bool                `json:"hasAcceptedSubmission"`
	Submission            *SubmissionResponse `json:"submission,omitempty"`
	HideAcceptedTab       bool                `json:"hideAcceptedTab"`
}

// CaseOutcomeResponse is one graded test case.
type CaseOutcomeResponse struct {
	TestCaseID uint     `json:"testCaseId"`
	Executed   bool     `json:"executed"`
	Passed     bool     `json:"passed"`
	Status     string   `json:"status,omitempty"`
	Runtime    *float64 `json:"runtime,omitempty"`
	Memory     *float64 `json:"memory,omitempty"`
	Expected   string   `json:"expected,omitempty"`
	Actual     string   `json:"actual,omitempty"`
}

// EvaluationResponse is the verdict of a server side evaluation.
type EvaluationResponse struct {
	Language        string                `json:"language"`
	TestcasesPassed int                   `json:"testcasesPassed"`
	TotalTestcases  int                   `json:"totalTestcases"`
	AllPassed       bool                  `json:"allPassed"`
	Runtime         *float64              `json:"runtime"`
	Memory          *float64              `json:"memory"`
	Cases           []CaseOutcomeResponse `json:"cases"`
	// FailedExecution carries the judge output when a program error stopped the run.
	FailedExecution *ExecutionResponse  `json:"failedExecution,omitempty"`
	Submission      *SubmissionResponse `json:"submission,omitempty"`
}

// HideAcceptedResponse confirms the accepted tab is hidden.
type HideAcceptedResponse struct {
	HideAcceptedTab bool `json:"hideAcceptedTab"`
}
