package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-judge-api/internal/dto"
	"github.com/noah-isme/gema-judge-api/internal/repository"
	"github.com/noah-isme/gema-judge-api/pkg/judge"
)

var (
	// ErrProblemNotFound indicates the problem does not exist in the catalog.
	ErrProblemNotFound = errors.New("problem not found")
	// ErrNoTestCases indicates the problem has nothing to grade against.
	ErrNoTestCases = errors.New("problem has no test cases")
	// ErrUnsupportedLanguage indicates the language cannot be mapped onto a judge language id.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// EvaluationConfig bounds server side grading.
type EvaluationConfig struct {
	// Timeout caps a whole evaluation including every judge round trip. Zero disables it.
	Timeout time.Duration
}

// EvaluationService runs code on the judge, either as a plain execution or graded against a problem.
type EvaluationService interface {
	Run(ctx context.Context, payload dto.ExecuteRequest) (dto.ExecutionResponse, error)
	Evaluate(ctx context.Context, userID, problemID uint, payload dto.EvaluationRequest) (dto.EvaluationResponse, error)
}

type evaluationService struct {
	problems   repository.ProblemRepository
	normalizer LanguageNormalizer
	executor   judge.Executor
	store      SubmissionStore
	validator  *validator.Validate
	config     EvaluationConfig
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewEvaluationService wires the grading pipeline.
func NewEvaluationService(problems repository.ProblemRepository, normalizer LanguageNormalizer, executor judge.Executor, store SubmissionStore, validate *validator.Validate, cfg EvaluationConfig, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		problems:   problems,
		normalizer: normalizer,
		executor:   executor,
		store:      store,
		validator:  validate,
		config:     cfg,
		logger:     logger.With().Str("component", "evaluation_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/gema-judge-api/internal/service/evaluation"),
	}
}

func (s *evaluationService) Run(ctx context.Context, payload dto.ExecuteRequest) (dto.ExecutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExecutionResponse{}, err
	}

	languageID := payload.LanguageID
	if languageID == 0 {
		id, ok := s.normalizer.LanguageID(ctx, payload.Language)
		if !ok {
			return dto.ExecutionResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, strings.TrimSpace(payload.Language))
		}
		languageID = id
	}
	language := s.normalizer.Normalize(ctx, strconv.Itoa(languageID))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.executor.Execute(ctx, languageID, payload.SourceCode, payload.Stdin)
	if err != nil {
		var programErr *judge.ProgramError
		if errors.As(err, &programErr) {
			return dto.NewExecutionResponse(programErr.Result, language), nil
		}
		return dto.ExecutionResponse{}, err
	}

	return dto.NewExecutionResponse(result, language), nil
}

func (s *evaluationService) Evaluate(ctx context.Context, userID, problemID uint, payload dto.EvaluationRequest) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.evaluate", trace.WithAttributes(
		attribute.Int64("problem.id", int64(problemID)),
		attribute.Bool("evaluation.samples_only", payload.SamplesOnly),
	))
	defer span.End()

	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrProblemNotFound
		}
		return dto.EvaluationResponse{}, fmt.Errorf("load problem: %w", err)
	}

	languageID, ok := s.normalizer.LanguageID(ctx, payload.Language)
	if !ok {
		return dto.EvaluationResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, strings.TrimSpace(payload.Language))
	}
	language := s.normalizer.Normalize(ctx, strconv.Itoa(languageID))

	cases, err := s.problems.ListTestCases(ctx, problem.ID, payload.SamplesOnly)
	if err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("load test cases: %w", err)
	}
	if len(cases) == 0 {
		return dto.EvaluationResponse{}, ErrNoTestCases
	}

	execCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	results := make([]judge.Result, 0, len(cases))
	for _, testCase := range cases {
		result, err := s.executor.Execute(execCtx, languageID, payload.Code, testCase.Input)
		if err != nil {
			var programErr *judge.ProgramError
			if errors.As(err, &programErr) {
				// The program itself failed; report it but keep it out of the history.
				response := newEvaluationResponse(language, AggregateVerdict(cases, results))
				failed := dto.NewExecutionResponse(programErr.Result, language)
				response.FailedExecution = &failed
				return response, nil
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Warn().Err(err).Uint("problem_id", problem.ID).Int("executed", len(results)).Msg("evaluation aborted by judge error")
			return dto.EvaluationResponse{}, err
		}

		results = append(results, result)
		if problem.AllOrNothing && !OutputMatches(result.Stdout, testCase.ExpectedOutput) {
			break
		}
	}

	verdict := AggregateVerdict(cases, results)
	span.SetAttributes(attribute.Bool("evaluation.all_passed", verdict.AllPassed))
	response := newEvaluationResponse(language, verdict)
	if payload.SamplesOnly {
		return response, nil
	}

	submission, err := s.store.Record(ctx, userID, problem.ID, verdict, SubmissionMetadata{
		Language: language,
		Code:     payload.Code,
	})
	if err != nil {
		span.RecordError(err)
		return dto.EvaluationResponse{}, err
	}

	stored := dto.NewSubmissionResponse(submission, false)
	response.Submission = &stored
	return response, nil
}

func (s *evaluationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

func newEvaluationResponse(language string, verdict Verdict) dto.EvaluationResponse {
	cases := make([]dto.CaseOutcomeResponse, 0, len(verdict.Cases))
	for _, outcome := range verdict.Cases {
		cases = append(cases, dto.CaseOutcomeResponse{
			TestCaseID: outcome.TestCaseID,
			Executed:   outcome.Executed,
			Passed:     outcome.Passed,
			Status:     outcome.Status,
			Runtime:    outcome.RuntimeMs,
			Memory:     outcome.MemoryKB,
			Expected:   outcome.Expected,
			Actual:     outcome.Actual,
		})
	}

	return dto.EvaluationResponse{
		Language:        language,
		TestcasesPassed: verdict.TestcasesPassed,
		TotalTestcases:  verdict.TotalTestcases,
		AllPassed:       verdict.AllPassed,
		Runtime:         verdict.RuntimeMs,
		Memory:          verdict.MemoryKB,
		Cases:           cases,
	}
}
