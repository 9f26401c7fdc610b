package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-judge-api/internal/models"
)

func setupJudgeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Problem{}, &models.TestCase{}, &models.Submission{}, &models.UserProblemSettings{}))
	return db
}

func TestSubmissionRepositoryGeneratesIdentifiers(t *testing.T) {
	db := setupJudgeTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	first := models.Submission{UserID: 1, ProblemID: 2, Language: "Python (3.8.1)", Code: "print(1)"}
	second := models.Submission{UserID: 1, ProblemID: 2, Language: "Python (3.8.1)", Code: "print(2)"}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	require.NotEmpty(t, first.ID)
	require.NotEqual(t, first.ID, second.ID)
	require.False(t, first.SubmittedAt.IsZero())

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "print(1)", stored.Code)

	_, err = repo.GetByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubmissionRepositoryLatestAcceptedOrdersBySubmissionTime(t *testing.T) {
	db := setupJudgeTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := models.Submission{UserID: 7, ProblemID: 3, Language: "Go (1.13.5)", Code: "a", AllPassed: true, SubmittedAt: base}
	newer := models.Submission{UserID: 7, ProblemID: 3, Language: "Go (1.13.5)", Code: "b", AllPassed: true, SubmittedAt: base.Add(time.Hour)}
	failed := models.Submission{UserID: 7, ProblemID: 3, Language: "Go (1.13.5)", Code: "c", AllPassed: false, SubmittedAt: base.Add(2 * time.Hour)}
	otherUser := models.Submission{UserID: 8, ProblemID: 3, Language: "Go (1.13.5)", Code: "d", AllPassed: true, SubmittedAt: base.Add(3 * time.Hour)}
	for _, s := range []*models.Submission{&older, &newer, &failed, &otherUser} {
		require.NoError(t, repo.Create(ctx, s))
	}

	latest, err := repo.LatestAccepted(ctx, 7, 3)
	require.NoError(t, err)
	require.Equal(t, newer.ID, latest.ID)

	_, err = repo.LatestAccepted(ctx, 7, 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	history, err := repo.ListByUserProblem(ctx, 7, 3, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, failed.ID, history[0].ID, "newest first")
}

func TestProblemSettingsRepositoryUpsertsAcceptedPointer(t *testing.T) {
	db := setupJudgeTestDB(t)
	repo := NewProblemSettingsRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.HideAcceptedTab(ctx, 1, 1))
	require.NoError(t, repo.SetAccepted(ctx, 1, 1, AcceptedPointer{SubmissionID: "sub-1", SubmittedAt: base, Language: "Python (3.8.1)", ResetHidden: true}))

	settings, err := repo.Get(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, "sub-1", *settings.LastAcceptedSubmissionID)
	require.Equal(t, "Python (3.8.1)", settings.LastLanguage)
	require.False(t, settings.HideAcceptedTab)

	var count int64
	require.NoError(t, db.Model(&models.UserProblemSettings{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestProblemSettingsRepositoryGuardKeepsNewerPointer(t *testing.T) {
	db := setupJudgeTestDB(t)
	repo := NewProblemSettingsRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SetAccepted(ctx, 2, 5, AcceptedPointer{SubmissionID: "newer", SubmittedAt: base.Add(time.Minute), OnlyIfNewer: true}))
	require.NoError(t, repo.SetAccepted(ctx, 2, 5, AcceptedPointer{SubmissionID: "older", SubmittedAt: base, OnlyIfNewer: true}))

	settings, err := repo.Get(ctx, 2, 5)
	require.NoError(t, err)
	require.Equal(t, "newer", *settings.LastAcceptedSubmissionID)

	require.NoError(t, repo.SetAccepted(ctx, 2, 5, AcceptedPointer{SubmissionID: "older", SubmittedAt: base}))
	settings, err = repo.Get(ctx, 2, 5)
	require.NoError(t, err)
	require.Equal(t, "older", *settings.LastAcceptedSubmissionID, "unguarded writes are last-writer-wins")
}

func TestProblemSettingsRepositoryLanguageAndHideAreIndependent(t *testing.T) {
	db := setupJudgeTestDB(t)
	repo := NewProblemSettingsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetLanguage(ctx, 3, 4, "Go (1.13.5)"))
	require.NoError(t, repo.HideAcceptedTab(ctx, 3, 4))
	require.NoError(t, repo.HideAcceptedTab(ctx, 3, 4))
	require.NoError(t, repo.SetLanguage(ctx, 3, 4, "Rust (1.40.0)"))

	settings, err := repo.Get(ctx, 3, 4)
	require.NoError(t, err)
	require.Equal(t, "Rust (1.40.0)", settings.LastLanguage)
	require.True(t, settings.HideAcceptedTab)
	require.Nil(t, settings.LastAcceptedSubmissionID)
}

func TestProblemRepositoryListsTestCasesInOrder(t *testing.T) {
	db := setupJudgeTestDB(t)
	repo := NewProblemRepository(db)
	ctx := context.Background()

	problem := models.Problem{Title: "Sum"}
	require.NoError(t, db.Create(&problem).Error)
	cases := []models.TestCase{
		{ProblemID: problem.ID, Position: 2, Input: "2 2", ExpectedOutput: "4"},
		{ProblemID: problem.ID, Position: 1, Input: "1 1", ExpectedOutput: "2", IsSample: true},
	}
	require.NoError(t, db.Create(&cases).Error)

	all, err := repo.ListTestCases(ctx, problem.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "1 1", all[0].Input)

	samples, err := repo.ListTestCases(ctx, problem.ID, true)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	stored, err := repo.GetByID(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, "Sum", stored.Title)
}
