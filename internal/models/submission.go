package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission is an immutable record of one graded attempt.
type Submission struct {
	ID                string         `gorm:"primaryKey;size:36" json:"id"`
	UserID            uint           `gorm:"not null;index:idx_submissions_user_problem,priority:1" json:"user_id"`
	ProblemID         uint           `gorm:"not null;index:idx_submissions_user_problem,priority:2" json:"problem_id"`
	Language          string         `gorm:"size:128;not null" json:"language"`
	Code              string         `gorm:"type:text;not null" json:"code"`
	SubmittedAt       time.Time      `gorm:"not null;index:idx_submissions_user_problem,priority:3" json:"submitted_at"`
	TestcasesPassed   int            `gorm:"not null;default:0" json:"testcases_passed"`
	TotalTestcases    int            `gorm:"not null;default:0" json:"total_testcases"`
	AllPassed         bool           `gorm:"not null;default:false" json:"all_passed"`
	RuntimeMs         *float64       `json:"runtime_ms"`
	MemoryKB          *float64       `json:"memory_kb"`
	RuntimePercentile *float64       `json:"runtime_percentile"`
	MemoryPercentile  *float64       `json:"memory_percentile"`
	CaseResults       datatypes.JSON `json:"case_results,omitempty"`
}

// BeforeCreate assigns a fresh identifier and submission time.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}
