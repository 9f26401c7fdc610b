package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-judge-api/internal/models"
	"github.com/noah-isme/gema-judge-api/internal/observability"
	"github.com/noah-isme/gema-judge-api/internal/repository"
)

// AcceptedState is what the editor needs to render the accepted tab.
type AcceptedState struct {
	HasAcceptedSubmission bool
	Submission            *models.Submission
	HideAcceptedTab       bool
}

// AcceptedSubmissionResolver answers which submission is the user's last accepted one.
type AcceptedSubmissionResolver interface {
	GetLastAccepted(ctx context.Context, userID, problemID uint) (AcceptedState, error)
	HideAcceptedTab(ctx context.Context, userID, problemID uint) error
}

type acceptedSubmissionResolver struct {
	submissions repository.SubmissionRepository
	settings    repository.ProblemSettingsRepository
	logger      zerolog.Logger
}

// NewAcceptedSubmissionResolver constructs a resolver.
func NewAcceptedSubmissionResolver(submissions repository.SubmissionRepository, settings repository.ProblemSettingsRepository, logger zerolog.Logger) AcceptedSubmissionResolver {
	return &acceptedSubmissionResolver{
		submissions: submissions,
		settings:    settings,
		logger:      logger.With().Str("component", "accepted_resolver").Logger(),
	}
}

func (r *acceptedSubmissionResolver) GetLastAccepted(ctx context.Context, userID, problemID uint) (AcceptedState, error) {
	settings, err := r.settings.Get(ctx, userID, problemID)
	hasSettings := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AcceptedState{}, fmt.Errorf("load problem settings: %w", err)
	}

	if hasSettings && settings.LastAcceptedSubmissionID != nil && *settings.LastAcceptedSubmissionID != "" {
		submission, err := r.submissions.GetByID(ctx, *settings.LastAcceptedSubmissionID)
		switch {
		case err == nil:
			return AcceptedState{
				HasAcceptedSubmission: true,
				Submission:            &submission,
				HideAcceptedTab:       settings.HideAcceptedTab,
			}, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			r.logger.Warn().Str("submission_id", *settings.LastAcceptedSubmissionID).Msg("accepted pointer references a missing submission")
		default:
			return AcceptedState{}, fmt.Errorf("load accepted submission: %w", err)
		}
	}

	latest, err := r.submissions.LatestAccepted(ctx, userID, problemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AcceptedState{}, nil
	}
	if err != nil {
		return AcceptedState{}, fmt.Errorf("load latest accepted submission: %w", err)
	}

	r.repair(ctx, latest)

	state := AcceptedState{HasAcceptedSubmission: true, Submission: &latest}
	if hasSettings {
		state.HideAcceptedTab = settings.HideAcceptedTab
	}
	return state, nil
}

// repair points the settings row at submission. The hide flag is left as stored.
func (r *acceptedSubmissionResolver) repair(ctx context.Context, submission models.Submission) {
	pointer := repository.AcceptedPointer{
		SubmissionID: submission.ID,
		SubmittedAt:  submission.SubmittedAt,
	}
	if err := r.settings.SetAccepted(context.WithoutCancel(ctx), submission.UserID, submission.ProblemID, pointer); err != nil {
		r.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to repair accepted pointer")
		return
	}
	observability.AcceptedRepairs().Inc()
}

func (r *acceptedSubmissionResolver) HideAcceptedTab(ctx context.Context, userID, problemID uint) error {
	if userID == 0 || problemID == 0 {
		return fmt.Errorf("%w: user and problem are required", ErrInvalidSubmission)
	}
	return r.settings.HideAcceptedTab(ctx, userID, problemID)
}
