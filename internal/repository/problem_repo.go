package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-judge-api/internal/models"
)

// ProblemRepository reads problems and their test cases from the catalog.
type ProblemRepository interface {
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	ListTestCases(ctx context.Context, problemID uint, samplesOnly bool) ([]models.TestCase, error)
}

// NewProblemRepository constructs a problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) ListTestCases(ctx context.Context, problemID uint, samplesOnly bool) ([]models.TestCase, error) {
	query := r.db.WithContext(ctx).Where("problem_id = ?", problemID)
	if samplesOnly {
		query = query.Where("is_sample = ?", true)
	}

	var cases []models.TestCase
	if err := query.Order("position ASC").Order("id ASC").Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}
