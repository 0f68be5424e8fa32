package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad/go-contest-stats/internal/kilonova"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_PATH", "API_URL", "API_LIMIT", "API_CONTEST_ID", "API_PROBLEM_ID",
		"API_RPS", "CHECKPOINT_EVERY", "REPORT_CONFIG", "BOT_TOKEN", "REPORT_CHAT_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "submissions.db", cfg.DBPath)
	assert.Equal(t, kilonova.DefaultURL, cfg.API.BaseURL)
	assert.Equal(t, kilonova.DefaultLimit, cfg.API.Limit)
	assert.Equal(t, 1000, cfg.CheckpointEvery)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("API_LIMIT", "25")
	t.Setenv("API_CONTEST_ID", "9")
	t.Setenv("API_RPS", "0.5")
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("REPORT_CHAT_ID", "-100123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 25, cfg.API.Limit)
	assert.Equal(t, int64(9), cfg.API.ContestID)
	assert.Equal(t, 0.5, cfg.API.RequestsPerSecond)
	assert.Equal(t, int64(-100123), cfg.ReportChatID)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("API_LIMIT", "many")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_LIMIT")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadReportConfig(t *testing.T) {
	path := writeConfig(t, `
problems: [3, 7]
window:
  start: "2024-05-01 10:00:00"
  end: "2024-05-01T14:00:00Z"
bucketSize: 30m
topN: 3
skipZeroPrevious: false
`)

	cfg, err := LoadReportConfig(path)
	require.NoError(t, err)

	opts, err := cfg.ReportOptions()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, opts.ProblemIDs)
	assert.Equal(t, 30*time.Minute, opts.BucketSize)
	assert.Equal(t, 4*time.Hour, opts.Window.End.Sub(opts.Window.Start))

	stats := cfg.StatisticsOptions()
	assert.Equal(t, 3, stats.TopN)
	assert.False(t, stats.Progression.SkipZeroPrevious)
	assert.Equal(t, 90.0, stats.HighAchieverMin)
}

func TestReportWindowKeepsLocalClockTime(t *testing.T) {
	path := writeConfig(t, `
window:
  start: "2024-03-10T22:00:00+02:00"
  end: "2024-03-11 00:00:00"
`)

	cfg, err := LoadReportConfig(path)
	require.NoError(t, err)

	opts, err := cfg.ReportOptions()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10 22:00:00", opts.Window.Start.Format("2006-01-02 15:04:05"))
	assert.Equal(t, 2*time.Hour, opts.Window.End.Sub(opts.Window.Start))
}

func TestLoadReportConfigDefaults(t *testing.T) {
	cfg, err := LoadReportConfig("")
	require.NoError(t, err)

	opts, err := cfg.ReportOptions()
	require.NoError(t, err)
	assert.True(t, opts.Window.Start.IsZero())
	assert.True(t, cfg.StatisticsOptions().Progression.SkipZeroPrevious)
}

func TestLoadReportConfigInvalidWindow(t *testing.T) {
	path := writeConfig(t, `
window:
  start: "2024-05-01 10:00:00"
  end: "2024-05-01 09:00:00"
`)
	_, err := LoadReportConfig(path)
	require.Error(t, err)

	path = writeConfig(t, `
window:
  start: "soon"
  end: "2024-05-01 09:00:00"
`)
	_, err = LoadReportConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}
