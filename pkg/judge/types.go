package judge

import (
	"strconv"
	"strings"
)

// Judge0 status identifiers.
const (
	StatusInQueue           = 1
	StatusProcessing        = 2
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
	StatusRuntimeSIGSEGV    = 7
	StatusRuntimeSIGXFSZ    = 8
	StatusRuntimeSIGFPE     = 9
	StatusRuntimeSIGABRT    = 10
	StatusRuntimeNZEC       = 11
	StatusRuntimeOther      = 12
	StatusInternalError     = 13
	StatusExecFormatError   = 14
)

// Status is the judge's verdict for a single job.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Pending reports whether the job is still queued or running.
func (s Status) Pending() bool {
	return s.ID == StatusInQueue || s.ID == StatusProcessing
}

// Accepted reports whether the program ran to completion without error.
func (s Status) Accepted() bool {
	return s.ID == StatusAccepted
}

// Request is a single compile-and-run request.
type Request struct {
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin"`
}

// Result is a fully resolved judge outcome. Stdout is never left unset.
type Result struct {
	Token         string  `json:"token,omitempty"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	Message       string  `json:"message,omitempty"`
	TimeSeconds   float64 `json:"time"`
	MemoryKB      float64 `json:"memory"`
	ExitCode      int     `json:"exit_code"`
	Status        Status  `json:"status"`
}

// RuntimeMs converts the judge's wall time into milliseconds.
func (r Result) RuntimeMs() float64 {
	return r.TimeSeconds * 1000
}

// Language is a judge language descriptor.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Job tracks one in-flight execution. It is owned by a single Execute call.
type Job struct {
	Request  Request
	Token    string
	Attempts int
	Result   *Result
}

// rawResult mirrors the judge payload where every field may be absent.
type rawResult struct {
	Token         *string `json:"token"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
	Time          any     `json:"time"`
	Memory        any     `json:"memory"`
	ExitCode      *int    `json:"exit_code"`
	Status        *Status `json:"status"`
}

// tokenOnly reports whether the payload only carries a token to poll with.
func (r rawResult) tokenOnly() bool {
	return r.Token != nil && *r.Token != "" &&
		r.Stdout == nil && r.Stderr == nil && r.CompileOutput == nil && r.Status == nil
}

func (r rawResult) result() Result {
	result := Result{
		Token:         deref(r.Token),
		Stdout:        deref(r.Stdout),
		Stderr:        deref(r.Stderr),
		CompileOutput: deref(r.CompileOutput),
		Message:       deref(r.Message),
		TimeSeconds:   number(r.Time),
		MemoryKB:      number(r.Memory),
	}
	if r.ExitCode != nil {
		result.ExitCode = *r.ExitCode
	}
	if r.Status != nil {
		result.Status = *r.Status
	}
	return result
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// number accepts both "0.012" and 0.012, Judge0 uses either depending on the field.
func number(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
