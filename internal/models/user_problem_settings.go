package models

import "time"

// UserProblemSettings caches per user and problem editor state.
type UserProblemSettings struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	UserID                   uint       `gorm:"not null;uniqueIndex:idx_settings_user_problem,priority:1" json:"user_id"`
	ProblemID                uint       `gorm:"not null;uniqueIndex:idx_settings_user_problem,priority:2" json:"problem_id"`
	LastLanguage             string     `gorm:"size:128;not null;default:''" json:"last_language"`
	LastAcceptedSubmissionID *string    `gorm:"size:36" json:"last_accepted_submission_id"`
	LastAcceptedAt           *time.Time `json:"last_accepted_at"`
	HideAcceptedTab          bool       `gorm:"not null;default:false" json:"hide_accepted_tab"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// TableName keeps the plural table name stable.
func (UserProblemSettings) TableName() string {
	return "user_problem_settings"
}
