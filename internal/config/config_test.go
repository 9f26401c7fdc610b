package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesJudgeDefaults(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")
	t.Setenv("GEMA_JWT_REFRESH_SECRET", "refresh")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "http://localhost:2358", cfg.Judge.BaseURL)
	require.Equal(t, 10, cfg.Judge.MaxPollAttempts)
	require.Equal(t, time.Second, cfg.Judge.PollInterval)
	require.Equal(t, 250*time.Millisecond, cfg.Judge.PreSubmitDelay)
	require.Equal(t, 24*time.Hour, cfg.Judge.LanguageCacheTTL)
	require.True(t, cfg.Evaluation.StrictAcceptedOrdering)
	require.Equal(t, "gema", cfg.RealtimeChannel)
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")
	t.Setenv("GEMA_JWT_REFRESH_SECRET", "refresh")
	t.Setenv("GEMA_JUDGE_BASE_URL", "https://judge0-ce.p.rapidapi.com/")
	t.Setenv("GEMA_JUDGE_HOST_HEADER", "judge0-ce.p.rapidapi.com")
	t.Setenv("GEMA_JUDGE_POLL_INTERVAL", "1500ms")
	t.Setenv("GEMA_JUDGE_MAX_POLL_ATTEMPTS", "4")
	t.Setenv("GEMA_EVALUATION_STRICT_ACCEPTED_ORDERING", "false")
	t.Setenv("GEMA_APP_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.HTTPAddress())
	require.Equal(t, "https://judge0-ce.p.rapidapi.com", cfg.Judge.BaseURL)
	require.Equal(t, "judge0-ce.p.rapidapi.com", cfg.Judge.HostHeader)
	require.Equal(t, 1500*time.Millisecond, cfg.Judge.PollInterval)
	require.Equal(t, 4, cfg.Judge.MaxPollAttempts)
	require.False(t, cfg.Evaluation.StrictAcceptedOrdering)
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "")
	t.Setenv("GEMA_JWT_REFRESH_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("GEMA_JWT_SECRET", "secret")
	t.Setenv("GEMA_JWT_REFRESH_SECRET", "refresh")
	t.Setenv("GEMA_JUDGE_POLL_INTERVAL", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "judge.poll_interval")
}
