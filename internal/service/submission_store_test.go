package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-judge-api/internal/models"
	"github.com/noah-isme/gema-judge-api/internal/repository"
)

func setupJudgeServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Problem{}, &models.TestCase{}, &models.Submission{}, &models.UserProblemSettings{}))
	return db
}

type recordingPublisher struct {
	events []models.Submission
	err    error
}

func (p *recordingPublisher) PublishRecorded(ctx context.Context, submission models.Submission) error {
	p.events = append(p.events, submission)
	return p.err
}

type failingSettingsRepo struct {
	repository.ProblemSettingsRepository
}

func (failingSettingsRepo) SetAccepted(ctx context.Context, userID, problemID uint, pointer repository.AcceptedPointer) error {
	return errors.New("settings table locked")
}

type failingSubmissionRepo struct {
	repository.SubmissionRepository
}

func (failingSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	return errors.New("disk full")
}

func acceptedVerdict(total int) Verdict {
	return Verdict{TestcasesPassed: total, TotalTestcases: total, AllPassed: total > 0}
}

func newTestStore(db *gorm.DB, strict bool, events SubmissionEventPublisher) SubmissionStore {
	return NewSubmissionStore(
		repository.NewSubmissionRepository(db),
		repository.NewProblemSettingsRepository(db),
		events,
		SubmissionStoreConfig{StrictAcceptedOrdering: strict},
		zerolog.Nop(),
	)
}

func TestRecordAcceptedCreatesSettingsRow(t *testing.T) {
	db := setupJudgeServiceDB(t)
	events := &recordingPublisher{}
	store := newTestStore(db, true, events)
	settings := repository.NewProblemSettingsRepository(db)
	ctx := context.Background()

	_, err := settings.Get(ctx, 4, 9)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	submission, err := store.Record(ctx, 4, 9, acceptedVerdict(1), SubmissionMetadata{Language: "Python (3.8.1)", Code: "print(5)"})
	require.NoError(t, err)
	require.NotEmpty(t, submission.ID)
	require.True(t, submission.AllPassed)

	row, err := settings.Get(ctx, 4, 9)
	require.NoError(t, err)
	require.NotNil(t, row.LastAcceptedSubmissionID)
	require.Equal(t, submission.ID, *row.LastAcceptedSubmissionID)
	require.Equal(t, "Python (3.8.1)", row.LastLanguage)
	require.False(t, row.HideAcceptedTab)

	require.Len(t, events.events, 1)
	require.Equal(t, submission.ID, events.events[0].ID)
}

func TestRecordThenGetLastAcceptedReturnsNewSubmission(t *testing.T) {
	db := setupJudgeServiceDB(t)
	store := newTestStore(db, true, nil)
	resolver := NewAcceptedSubmissionResolver(repository.NewSubmissionRepository(db), repository.NewProblemSettingsRepository(db), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		submission, err := store.Record(ctx, 1, 1, acceptedVerdict(2), SubmissionMetadata{Language: "Go (1.13.5)", Code: fmt.Sprintf("package main // %d", i)})
		require.NoError(t, err)

		state, err := resolver.GetLastAccepted(ctx, 1, 1)
		require.NoError(t, err)
		require.True(t, state.HasAcceptedSubmission)
		require.Equal(t, submission.ID, state.Submission.ID)
	}
}

func TestRecordClearsHiddenAcceptedTab(t *testing.T) {
	db := setupJudgeServiceDB(t)
	store := newTestStore(db, true, nil)
	settings := repository.NewProblemSettingsRepository(db)
	ctx := context.Background()

	require.NoError(t, settings.HideAcceptedTab(ctx, 2, 2))
	_, err := store.Record(ctx, 2, 2, acceptedVerdict(1), SubmissionMetadata{Language: "Go (1.13.5)", Code: "x"})
	require.NoError(t, err)

	row, err := settings.Get(ctx, 2, 2)
	require.NoError(t, err)
	require.False(t, row.HideAcceptedTab)
}

func TestRecordFailedVerdictLeavesSettingsUntouched(t *testing.T) {
	db := setupJudgeServiceDB(t)
	store := newTestStore(db, true, nil)
	ctx := context.Background()

	submission, err := store.Record(ctx, 3, 3, Verdict{TestcasesPassed: 1, TotalTestcases: 2}, SubmissionMetadata{Language: "Go (1.13.5)", Code: "x"})
	require.NoError(t, err)
	require.False(t, submission.AllPassed)

	_, err = repository.NewProblemSettingsRepository(db).Get(ctx, 3, 3)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordKeepsSubmissionWhenSettingsUpdateFails(t *testing.T) {
	db := setupJudgeServiceDB(t)
	submissions := repository.NewSubmissionRepository(db)
	store := NewSubmissionStore(submissions, failingSettingsRepo{}, nil, SubmissionStoreConfig{}, zerolog.Nop())
	ctx := context.Background()

	submission, err := store.Record(ctx, 5, 5, acceptedVerdict(1), SubmissionMetadata{Language: "Go (1.13.5)", Code: "x"})
	require.NoError(t, err)

	stored, err := submissions.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.True(t, stored.AllPassed)
}

func TestRecordSurfacesPersistenceFailure(t *testing.T) {
	events := &recordingPublisher{}
	store := NewSubmissionStore(failingSubmissionRepo{}, failingSettingsRepo{}, events, SubmissionStoreConfig{}, zerolog.Nop())

	_, err := store.Record(context.Background(), 5, 5, acceptedVerdict(1), SubmissionMetadata{Language: "Go (1.13.5)", Code: "x"})
	require.ErrorIs(t, err, ErrPersistence)
	require.Empty(t, events.events)
}

func TestRecordCompletesAfterCallerCancels(t *testing.T) {
	db := setupJudgeServiceDB(t)
	store := newTestStore(db, true, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	submission, err := store.Record(ctx, 6, 6, acceptedVerdict(1), SubmissionMetadata{Language: "Go (1.13.5)", Code: "x"})
	require.NoError(t, err)

	row, err := repository.NewProblemSettingsRepository(db).Get(context.Background(), 6, 6)
	require.NoError(t, err)
	require.Equal(t, submission.ID, *row.LastAcceptedSubmissionID)
}

func TestRecordRejectsInconsistentVerdicts(t *testing.T) {
	db := setupJudgeServiceDB(t)
	store := newTestStore(db, true, nil)
	ctx := context.Background()
	meta := SubmissionMetadata{Language: "Go (1.13.5)", Code: "x"}

	cases := []Verdict{
		{TestcasesPassed: 0, TotalTestcases: 0, AllPassed: true},
		{TestcasesPassed: 3, TotalTestcases: 2},
		{TestcasesPassed: 1, TotalTestcases: 2, AllPassed: true},
		{TestcasesPassed: 2, TotalTestcases: 2, AllPassed: false},
	}
	for _, verdict := range cases {
		_, err := store.Record(ctx, 1, 1, verdict, meta)
		require.ErrorIs(t, err, ErrInvalidSubmission, "%+v", verdict)
	}

	_, err := store.Record(ctx, 1, 1, acceptedVerdict(1), SubmissionMetadata{Code: "x"})
	require.ErrorIs(t, err, ErrInvalidSubmission)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRecordStrictOrderingKeepsNewestPointer(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	run := func(t *testing.T, strict bool) (newer, older models.Submission, pointer string) {
		db := setupJudgeServiceDB(t)
		store := newTestStore(db, strict, nil)
		ctx := context.Background()

		var err error
		newer, err = store.Record(ctx, 1, 1, acceptedVerdict(1), SubmissionMetadata{Language: "Go (1.13.5)", Code: "new", SubmittedAt: base.Add(time.Minute)})
		require.NoError(t, err)
		older, err = store.Record(ctx, 1, 1, acceptedVerdict(1), SubmissionMetadata{Language: "Go (1.13.5)", Code: "old", SubmittedAt: base})
		require.NoError(t, err)

		row, err := repository.NewProblemSettingsRepository(db).Get(ctx, 1, 1)
		require.NoError(t, err)
		return newer, older, *row.LastAcceptedSubmissionID
	}

	t.Run("strict", func(t *testing.T) {
		newer, _, pointer := run(t, true)
		require.Equal(t, newer.ID, pointer)
	})
	t.Run("last writer wins", func(t *testing.T) {
		_, older, pointer := run(t, false)
		require.Equal(t, older.ID, pointer)
	})
}

func TestUpdateLanguageCreatesSettingsLazily(t *testing.T) {
	db := setupJudgeServiceDB(t)
	store := newTestStore(db, true, nil)
	ctx := context.Background()

	require.NoError(t, store.UpdateLanguage(ctx, 8, 8, "Rust (1.40.0)"))
	row, err := repository.NewProblemSettingsRepository(db).Get(ctx, 8, 8)
	require.NoError(t, err)
	require.Equal(t, "Rust (1.40.0)", row.LastLanguage)
	require.Nil(t, row.LastAcceptedSubmissionID)

	require.ErrorIs(t, store.UpdateLanguage(ctx, 8, 8, " "), ErrInvalidSubmission)
}

func TestSubmissionEventPublisherUsesRedisChannel(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "judge:submissions")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewSubmissionEventPublisher(client, nil, "judge")
	submission := models.Submission{ID: uuid.NewString(), UserID: 3, ProblemID: 4, Language: "Go (1.13.5)", AllPassed: true, SubmittedAt: time.Now().UTC()}
	require.NoError(t, publisher.PublishRecorded(ctx, submission))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Contains(t, msg.Payload, submission.ID)
	require.Contains(t, msg.Payload, `"type":"submission.recorded"`)
}
