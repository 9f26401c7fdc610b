package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-judge-api/internal/dto"
)

// SubmissionService backs the problem submission endpoints used by the editor.
type SubmissionService interface {
	Create(ctx context.Context, userID, problemID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	List(ctx context.Context, userID, problemID uint, limit int) ([]dto.SubmissionResponse, error)
	Accepted(ctx context.Context, userID, problemID uint) (dto.AcceptedSubmissionResponse, error)
	HideAccepted(ctx context.Context, userID, problemID uint) (dto.HideAcceptedResponse, error)
	UpdateLanguage(ctx context.Context, userID, problemID uint, payload dto.LanguageSettingsRequest) (string, error)
}

type submissionService struct {
	store      SubmissionStore
	resolver   AcceptedSubmissionResolver
	normalizer LanguageNormalizer
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(store SubmissionStore, resolver AcceptedSubmissionResolver, normalizer LanguageNormalizer, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		store:      store,
		resolver:   resolver,
		normalizer: normalizer,
		validator:  validate,
		logger:     logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, userID, problemID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	verdict := Verdict{
		TestcasesPassed: *payload.TestcasesPassed,
		TotalTestcases:  *payload.TotalTestcases,
		AllPassed:       payload.AllPassed,
		RuntimeMs:       payload.Runtime,
		MemoryKB:        payload.Memory,
	}
	metadata := SubmissionMetadata{
		Language:          s.normalizer.Normalize(ctx, payload.Language),
		Code:              payload.Code,
		RuntimePercentile: payload.RuntimePercentile,
		MemoryPercentile:  payload.MemoryPercentile,
	}

	submission, err := s.store.Record(ctx, userID, problemID, verdict, metadata)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission, true), nil
}

func (s *submissionService) List(ctx context.Context, userID, problemID uint, limit int) ([]dto.SubmissionResponse, error) {
	submissions, err := s.store.List(ctx, userID, problemID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) Accepted(ctx context.Context, userID, problemID uint) (dto.AcceptedSubmissionResponse, error) {
	state, err := s.resolver.GetLastAccepted(ctx, userID, problemID)
	if err != nil {
		return dto.AcceptedSubmissionResponse{}, err
	}

	response := dto.AcceptedSubmissionResponse{
		HasAcceptedSubmission: state.HasAcceptedSubmission,
		HideAcceptedTab:       state.HideAcceptedTab,
	}
	if state.Submission != nil {
		submission := dto.NewSubmissionResponse(*state.Submission, true)
		response.Submission = &submission
	}
	return response, nil
}

func (s *submissionService) HideAccepted(ctx context.Context, userID, problemID uint) (dto.HideAcceptedResponse, error) {
	if err := s.resolver.HideAcceptedTab(ctx, userID, problemID); err != nil {
		return dto.HideAcceptedResponse{}, err
	}
	return dto.HideAcceptedResponse{HideAcceptedTab: true}, nil
}

func (s *submissionService) UpdateLanguage(ctx context.Context, userID, problemID uint, payload dto.LanguageSettingsRequest) (string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return "", err
	}

	language := s.normalizer.Normalize(ctx, payload.Language)
	if err := s.store.UpdateLanguage(ctx, userID, problemID, language); err != nil {
		return "", err
	}
	return language, nil
}
