package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-judge-api/internal/models"
)

// AcceptedPointer describes a settings update towards an accepted submission.
type AcceptedPointer struct {
	SubmissionID string
	SubmittedAt  time.Time
	// Language is written to last_language when non-empty.
	Language string
	// ResetHidden clears hide_accepted_tab.
	ResetHidden bool
	// OnlyIfNewer keeps the current pointer when it references a more recent submission.
	OnlyIfNewer bool
}

// ProblemSettingsRepository upserts per user and problem settings rows.
type ProblemSettingsRepository interface {
	Get(ctx context.Context, userID, problemID uint) (models.UserProblemSettings, error)
	SetAccepted(ctx context.Context, userID, problemID uint, pointer AcceptedPointer) error
	SetLanguage(ctx context.Context, userID, problemID uint, language string) error
	HideAcceptedTab(ctx context.Context, userID, problemID uint) error
}

// NewProblemSettingsRepository constructs a settings repository.
func NewProblemSettingsRepository(db *gorm.DB) ProblemSettingsRepository {
	return &problemSettingsRepository{db: db}
}

type problemSettingsRepository struct {
	db *gorm.DB
}

var settingsKey = []clause.Column{{Name: "user_id"}, {Name: "problem_id"}}

func (r *problemSettingsRepository) Get(ctx context.Context, userID, problemID uint) (models.UserProblemSettings, error) {
	var settings models.UserProblemSettings
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		First(&settings).Error
	if err != nil {
		return models.UserProblemSettings{}, err
	}
	return settings, nil
}

func (r *problemSettingsRepository) SetAccepted(ctx context.Context, userID, problemID uint, pointer AcceptedPointer) error {
	submissionID := pointer.SubmissionID
	submittedAt := pointer.SubmittedAt.UTC()

	row := models.UserProblemSettings{
		UserID:                   userID,
		ProblemID:                problemID,
		LastLanguage:             pointer.Language,
		LastAcceptedSubmissionID: &submissionID,
		LastAcceptedAt:           &submittedAt,
	}

	columns := []string{"last_accepted_submission_id", "last_accepted_at", "updated_at"}
	if pointer.Language != "" {
		columns = append(columns, "last_language")
	}
	if pointer.ResetHidden {
		columns = append(columns, "hide_accepted_tab")
	}

	conflict := clause.OnConflict{
		Columns:   settingsKey,
		DoUpdates: clause.AssignmentColumns(columns),
	}
	if pointer.OnlyIfNewer {
		conflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "user_problem_settings.last_accepted_at IS NULL OR user_problem_settings.last_accepted_at <= excluded.last_accepted_at"},
		}}
	}

	return r.db.WithContext(ctx).Clauses(conflict).Create(&row).Error
}

func (r *problemSettingsRepository) SetLanguage(ctx context.Context, userID, problemID uint, language string) error {
	row := models.UserProblemSettings{
		UserID:       userID,
		ProblemID:    problemID,
		LastLanguage: language,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   settingsKey,
		DoUpdates: clause.AssignmentColumns([]string{"last_language", "updated_at"}),
	}).Create(&row).Error
}

func (r *problemSettingsRepository) HideAcceptedTab(ctx context.Context, userID, problemID uint) error {
	row := models.UserProblemSettings{
		UserID:          userID,
		ProblemID:       problemID,
		HideAcceptedTab: true,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: settingsKey,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"hide_accepted_tab": true,
			"updated_at":        time.Now().UTC(),
		}),
	}).Create(&row).Error
}
