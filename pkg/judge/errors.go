package judge

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRequest indicates the execution request failed local validation.
	ErrInvalidRequest = errors.New("invalid execution request")
	// ErrRateLimited indicates the judge answered with HTTP 429.
	ErrRateLimited = errors.New("judge rate limit exceeded")
	// ErrUnauthorized indicates the judge rejected the configured credentials.
	ErrUnauthorized = errors.New("judge credentials rejected")
	// ErrUpstreamServer indicates the judge itself failed with HTTP 500.
	ErrUpstreamServer = errors.New("judge server error")
	// ErrUpstream covers every other non-success status from the judge.
	ErrUpstream = errors.New("judge request failed")
	// ErrTimeout indicates the execution did not reach a terminal status in time.
	ErrTimeout = errors.New("judge execution timed out")
	// ErrInvalidResponse indicates the judge payload did not match the expected schema.
	ErrInvalidResponse = errors.New("invalid judge response")

	// ErrCompilation indicates the submitted program failed to compile.
	ErrCompilation = errors.New("compilation error")
	// ErrRuntime indicates the submitted program crashed or produced a wrong answer status.
	ErrRuntime = errors.New("runtime error")
	// ErrTimeLimit indicates the submitted program exceeded its time limit.
	ErrTimeLimit = errors.New("time limit exceeded")
	// ErrJudgeInternal indicates the judge could not run the program.
	ErrJudgeInternal = errors.New("judge internal error")
)

// StatusError describes a non-success HTTP response from the judge.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("judge responded with status %d", e.StatusCode)
}

// Unwrap maps the HTTP status onto the sentinel taxonomy.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusInternalServerError:
		return ErrUpstreamServer
	default:
		return ErrUpstream
	}
}

// ProgramError is returned when the judge finished the job with a non-accepted status.
// The result is fully populated so callers can still show compiler or runtime output.
type ProgramError struct {
	Result Result
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind().Error(), e.Result.Status.Description)
}

// Unwrap exposes the category of the failure.
func (e *ProgramError) Unwrap() error {
	return e.kind()
}

func (e *ProgramError) kind() error {
	switch e.Result.Status.ID {
	case StatusCompilationError:
		return ErrCompilation
	case StatusTimeLimitExceeded:
		return ErrTimeLimit
	case StatusWrongAnswer,
		StatusRuntimeSIGSEGV,
		StatusRuntimeSIGXFSZ,
		StatusRuntimeSIGFPE,
		StatusRuntimeSIGABRT,
		StatusRuntimeNZEC,
		StatusRuntimeOther:
		return ErrRuntime
	default:
		return ErrJudgeInternal
	}
}
