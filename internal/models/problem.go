package models

import "time"

// Problem is the catalog entry a submission is graded against. The pipeline only reads it.
type Problem struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Difficulty   string     `gorm:"size:32" json:"difficulty"`
	AllOrNothing bool       `gorm:"not null;default:false" json:"all_or_nothing"`
	TestCases    []TestCase `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TestCase is one input/expected-output pair of a problem.
type TestCase struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	ProblemID      uint    `gorm:"not null;index" json:"problem_id"`
	Position       int     `gorm:"not null;default:0" json:"position"`
	Input          string  `gorm:"type:text" json:"input"`
	ExpectedOutput string  `gorm:"type:text" json:"expected_output"`
	IsSample       bool    `gorm:"not null;default:false" json:"is_sample"`
	ShowOnFailure  bool    `gorm:"not null;default:false" json:"show_on_failure"`
	GradeWeight    float64 `gorm:"not null;default:1" json:"grade_weight"`
}
