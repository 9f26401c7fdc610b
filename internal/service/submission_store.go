package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-judge-api/internal/models"
	"github.com/noah-isme/gema-judge-api/internal/observability"
	"github.com/noah-isme/gema-judge-api/internal/repository"
)

var (
	// ErrPersistence indicates the submission could not be stored.
	ErrPersistence = errors.New("submission persistence failed")
	// ErrSettingsUpdate indicates the accepted pointer could not be moved. It is logged, never returned.
	ErrSettingsUpdate = errors.New("problem settings update failed")
	// ErrInvalidSubmission indicates an inconsistent verdict or metadata.
	ErrInvalidSubmission = errors.New("invalid submission")
)

// SubmissionMetadata carries the non-verdict fields of a submission.
type SubmissionMetadata struct {
	Language          string
	Code              string
	SubmittedAt       time.Time
	RuntimePercentile *float64
	MemoryPercentile  *float64
}

// SubmissionStoreConfig tunes how the accepted pointer moves.
type SubmissionStoreConfig struct {
	// StrictAcceptedOrdering keeps the pointer on the newest accepted submission when
	// writes complete out of order. When false the last completed write wins.
	StrictAcceptedOrdering bool
}

// SubmissionStore records graded attempts and keeps the per problem settings row current.
type SubmissionStore interface {
	Record(ctx context.Context, userID, problemID uint, verdict Verdict, metadata SubmissionMetadata) (models.Submission, error)
	UpdateLanguage(ctx context.Context, userID, problemID uint, language string) error
	List(ctx context.Context, userID, problemID uint, limit int) ([]models.Submission, error)
}

type submissionStore struct {
	submissions repository.SubmissionRepository
	settings    repository.ProblemSettingsRepository
	events      SubmissionEventPublisher
	config      SubmissionStoreConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionStore constructs a store. events may be nil.
func NewSubmissionStore(submissions repository.SubmissionRepository, settings repository.ProblemSettingsRepository, events SubmissionEventPublisher, cfg SubmissionStoreConfig, logger zerolog.Logger) SubmissionStore {
	return &submissionStore{
		submissions: submissions,
		settings:    settings,
		events:      events,
		config:      cfg,
		logger:      logger.With().Str("component", "submission_store").Logger(),
		now:         time.Now,
	}
}

func (s *submissionStore) Record(ctx context.Context, userID, problemID uint, verdict Verdict, metadata SubmissionMetadata) (models.Submission, error) {
	if err := validateRecord(userID, problemID, verdict, metadata); err != nil {
		return models.Submission{}, err
	}

	submittedAt := metadata.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = s.now()
	}

	submission := models.Submission{
		UserID:            userID,
		ProblemID:         problemID,
		Language:          strings.TrimSpace(metadata.Language),
		Code:              metadata.Code,
		SubmittedAt:       submittedAt.UTC(),
		TestcasesPassed:   verdict.TestcasesPassed,
		TotalTestcases:    verdict.TotalTestcases,
		AllPassed:         verdict.AllPassed,
		RuntimeMs:         verdict.RuntimeMs,
		MemoryKB:          verdict.MemoryKB,
		RuntimePercentile: metadata.RuntimePercentile,
		MemoryPercentile:  metadata.MemoryPercentile,
	}
	if len(verdict.Cases) > 0 {
		encoded, err := json.Marshal(verdict.Cases)
		if err != nil {
			return models.Submission{}, fmt.Errorf("%w: encode case results: %w", ErrPersistence, err)
		}
		submission.CaseResults = datatypes.JSON(encoded)
	}

	// A client disconnect must not leave the insert or the pointer update half done.
	writeCtx := context.WithoutCancel(ctx)

	if err := s.submissions.Create(writeCtx, &submission); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Uint("problem_id", problemID).Msg("failed to store submission")
		return models.Submission{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	observability.SubmissionsRecorded().WithLabelValues(strconv.FormatBool(submission.AllPassed)).Inc()

	if submission.AllPassed {
		s.moveAcceptedPointer(writeCtx, submission)
	}

	if s.events != nil {
		if err := s.events.PublishRecorded(writeCtx, submission); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to publish submission event")
		}
	}

	return submission, nil
}

func (s *submissionStore) moveAcceptedPointer(ctx context.Context, submission models.Submission) {
	pointer := repository.AcceptedPointer{
		SubmissionID: submission.ID,
		SubmittedAt:  submission.SubmittedAt,
		Language:     submission.Language,
		ResetHidden:  true,
		OnlyIfNewer:  s.config.StrictAcceptedOrdering,
	}

	if err := s.settings.SetAccepted(ctx, submission.UserID, submission.ProblemID, pointer); err != nil {
		observability.SettingsUpdateFailures().Inc()
		s.logger.Error().
			Err(fmt.Errorf("%w: %w", ErrSettingsUpdate, err)).
			Str("submission_id", submission.ID).
			Uint("user_id", submission.UserID).
			Uint("problem_id", submission.ProblemID).
			Msg("submission stored but accepted pointer not updated")
	}
}

func (s *submissionStore) UpdateLanguage(ctx context.Context, userID, problemID uint, language string) error {
	language = strings.TrimSpace(language)
	if userID == 0 || problemID == 0 || language == "" {
		return fmt.Errorf("%w: user, problem and language are required", ErrInvalidSubmission)
	}
	if err := s.settings.SetLanguage(ctx, userID, problemID, language); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsUpdate, err)
	}
	return nil
}

func (s *submissionStore) List(ctx context.Context, userID, problemID uint, limit int) ([]models.Submission, error) {
	return s.submissions.ListByUserProblem(ctx, userID, problemID, limit)
}

func validateRecord(userID, problemID uint, verdict Verdict, metadata SubmissionMetadata) error {
	switch {
	case userID == 0 || problemID == 0:
		return fmt.Errorf("%w: user and problem are required", ErrInvalidSubmission)
	case strings.TrimSpace(metadata.Language) == "":
		return fmt.Errorf("%w: language is required", ErrInvalidSubmission)
	case strings.TrimSpace(metadata.Code) == "":
		return fmt.Errorf("%w: code is required", ErrInvalidSubmission)
	case verdict.TotalTestcases < 0 || verdict.TestcasesPassed < 0 || verdict.TestcasesPassed > verdict.TotalTestcases:
		return fmt.Errorf("%w: passed count must be between 0 and the total", ErrInvalidSubmission)
	case verdict.AllPassed != (verdict.TotalTestcases > 0 && verdict.TestcasesPassed == verdict.TotalTestcases):
		return fmt.Errorf("%w: allPassed does not match the test case counts", ErrInvalidSubmission)
	}
	return nil
}
