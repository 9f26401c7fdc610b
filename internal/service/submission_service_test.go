package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-judge-api/internal/dto"
	"github.com/noah-isme/gema-judge-api/internal/repository"
	"github.com/noah-isme/gema-judge-api/internal/utils"
)

func newTestSubmissionService(t *testing.T) SubmissionService {
	t.Helper()
	db := setupJudgeServiceDB(t)
	submissions := repository.NewSubmissionRepository(db)
	settings := repository.NewProblemSettingsRepository(db)
	store := NewSubmissionStore(submissions, settings, nil, SubmissionStoreConfig{StrictAcceptedOrdering: true}, zerolog.Nop())
	resolver := NewAcceptedSubmissionResolver(submissions, settings, zerolog.Nop())
	normalizer := NewLanguageNormalizer(defaultTable(), nil, nil, 0, zerolog.Nop())
	return NewSubmissionService(store, resolver, normalizer, utils.NewValidator(), zerolog.Nop())
}

func intPointer(v int) *int {
	return &v
}

func TestSubmissionServiceCreateNormalizesLanguage(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()
	runtime := 31.0
	percentile := 87.5

	created, err := svc.Create(ctx, 12, 40, dto.SubmissionCreateRequest{
		Language:          "Language 71",
		Code:              "print(5)",
		TestcasesPassed:   intPointer(3),
		TotalTestcases:    intPointer(3),
		AllPassed:         true,
		Runtime:           &runtime,
		RuntimePercentile: &percentile,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Python (3.8.1)", created.Language)
	require.Equal(t, "print(5)", created.Code)
	require.Equal(t, 3, created.TestcasesPassed)
	require.Equal(t, &runtime, created.Runtime)
	require.Equal(t, &percentile, created.RuntimePercentile)

	accepted, err := svc.Accepted(ctx, 12, 40)
	require.NoError(t, err)
	require.True(t, accepted.HasAcceptedSubmission)
	require.Equal(t, created.ID, accepted.Submission.ID)

	history, err := svc.List(ctx, 12, 40, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Empty(t, history[0].Code)
}

func TestSubmissionServiceCreateAcceptsZeroCounts(t *testing.T) {
	svc := newTestSubmissionService(t)

	created, err := svc.Create(context.Background(), 1, 1, dto.SubmissionCreateRequest{
		Language:        "Go (1.13.5)",
		Code:            "package main",
		TestcasesPassed: intPointer(0),
		TotalTestcases:  intPointer(0),
	})
	require.NoError(t, err)
	require.False(t, created.AllPassed)
}

func TestSubmissionServiceCreateRequiresCounts(t *testing.T) {
	svc := newTestSubmissionService(t)

	_, err := svc.Create(context.Background(), 1, 1, dto.SubmissionCreateRequest{
		Language:       "Go (1.13.5)",
		Code:           "package main",
		TotalTestcases: intPointer(2),
	})
	_, message, ok := utils.ValidationMessage(err)
	require.True(t, ok)
	require.Equal(t, "testcasesPassed is required", message)
}

func TestSubmissionServiceHideAndLanguage(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()

	hidden, err := svc.HideAccepted(ctx, 3, 3)
	require.NoError(t, err)
	require.True(t, hidden.HideAcceptedTab)

	language, err := svc.UpdateLanguage(ctx, 3, 3, dto.LanguageSettingsRequest{Language: "60"})
	require.NoError(t, err)
	require.Equal(t, "Go (1.13.5)", language)

	accepted, err := svc.Accepted(ctx, 3, 3)
	require.NoError(t, err)
	require.False(t, accepted.HasAcceptedSubmission)
	require.Nil(t, accepted.Submission)
}
