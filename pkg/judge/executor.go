package judge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	execRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gema",
		Subsystem: "judge",
		Name:      "requests_total",
		Help:      "Judge executions by outcome",
	}, []string{"outcome"})

	execDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "judge",
		Name:      "execution_duration_seconds",
		Help:      "Duration of judge executions including polling",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"language"})

	execPollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "judge",
		Name:      "poll_attempts",
		Help:      "Number of polls needed before a judge job resolved",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15},
	})
)

// Executor runs source code on the judge and waits for a terminal result.
type Executor interface {
	Execute(ctx context.Context, languageID int, source, stdin string) (Result, error)
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// ExecutorConfig groups polling knobs.
type ExecutorConfig struct {
	PreSubmitDelay  time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
	Logger          zerolog.Logger
	Wait            WaitFunc
}

// JudgeExecutor implements Executor on top of Client.
type JudgeExecutor struct {
	client *Client
	cfg    ExecutorConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewExecutor constructs a polling executor.
func NewExecutor(client *Client, cfg ExecutorConfig) *JudgeExecutor {
	if cfg.PollInterval < 0 {
		cfg.PollInterval = 0
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 10
	}
	if cfg.Wait == nil {
		cfg.Wait = Sleep
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &JudgeExecutor{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-judge-api/pkg/judge"),
		logger: logger.With().Str("component", "judge_executor").Logger(),
	}
}

// Execute submits the program and polls until the judge reports a terminal status.
func (e *JudgeExecutor) Execute(parent context.Context, languageID int, source, stdin string) (Result, error) {
	if languageID <= 0 {
		return Result{}, fmt.Errorf("%w: language id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(source) == "" {
		return Result{}, fmt.Errorf("%w: source code is required", ErrInvalidRequest)
	}

	language := strconv.Itoa(languageID)
	ctx, span := e.tracer.Start(parent, "judge.executor.execute", trace.WithAttributes(
		attribute.Int("judge.language_id", languageID),
	))
	defer span.End()

	job := &Job{Request: Request{LanguageID: languageID, SourceCode: source, Stdin: stdin}}

	start := time.Now()
	result, err := e.run(ctx, job)
	execDuration.WithLabelValues(language).Observe(time.Since(start).Seconds())
	execRequests.WithLabelValues(outcome(err)).Inc()
	span.SetAttributes(attribute.Int("judge.poll_attempts", job.Attempts))

	if err != nil {
		var programErr *ProgramError
		if errors.As(err, &programErr) {
			execPollAttempts.Observe(float64(job.Attempts))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if errors.Is(err, ErrUnauthorized) {
			e.logger.Error().Err(err).Msg("judge rejected credentials, check judge.api_key configuration")
		}
		return result, err
	}

	execPollAttempts.Observe(float64(job.Attempts))
	return result, nil
}

func (e *JudgeExecutor) run(ctx context.Context, job *Job) (Result, error) {
	if err := e.cfg.Wait(ctx, e.cfg.PreSubmitDelay); err != nil {
		return Result{}, errors.Join(ErrTimeout, err)
	}

	resp, err := e.client.Submit(ctx, job.Request)
	if err != nil {
		return Result{}, err
	}
	if !resp.TokenOnly && !resp.Result.Status.Pending() {
		return e.finish(job, resp.Result)
	}

	job.Token = resp.Result.Token
	if job.Token == "" {
		return Result{}, fmt.Errorf("%w: pending submission without token", ErrInvalidResponse)
	}

	for job.Attempts < e.cfg.MaxPollAttempts {
		if err := e.cfg.Wait(ctx, e.cfg.PollInterval); err != nil {
			return Result{}, errors.Join(ErrTimeout, err)
		}
		job.Attempts++

		resp, err := e.client.Fetch(ctx, job.Token)
		if err != nil {
			return Result{}, err
		}
		if resp.TokenOnly || resp.Result.Status.Pending() {
			e.logger.Debug().Str("token", job.Token).Int("attempt", job.Attempts).Msg("judge job still running")
			continue
		}
		return e.finish(job, resp.Result)
	}

	return Result{}, fmt.Errorf("%w after %d poll attempts", ErrTimeout, job.Attempts)
}

func (e *JudgeExecutor) finish(job *Job, result Result) (Result, error) {
	if result.Status.ID == 0 {
		return Result{}, fmt.Errorf("%w: missing status", ErrInvalidResponse)
	}
	if result.Token == "" {
		result.Token = job.Token
	}
	job.Result = &result

	if !result.Status.Accepted() {
		return result, &ProgramError{Result: result}
	}
	return result, nil
}

// Sleep waits for d unless ctx finishes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrCompilation), errors.Is(err, ErrRuntime), errors.Is(err, ErrTimeLimit):
		return "program_error"
	case errors.Is(err, ErrJudgeInternal):
		return "judge_internal"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUpstreamServer):
		return "upstream_server"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	default:
		return "upstream"
	}
}
