package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ad/go-contest-stats/internal/models"
	"github.com/ad/go-contest-stats/internal/services"
)

func floatPtr(v float64) *float64 { return &v }

func sampleReport() *services.FullReport {
	mean := 62.5
	return &services.FullReport{
		RunID:       "2f1d6b9e-8a4c-4c36-9a6e-0d7f1c2b3a4d",
		GeneratedAt: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
		Problems: []*services.ProblemReport{{
			ProblemID:    1,
			ProblemName:  "A < B",
			Basic:        &services.BasicCounts{TotalSubmissions: 4, DistinctUsers: 2, MeanScore: &mean},
			Performance:  &services.Performance{},
			Distribution: &services.ScoreDistribution{PercentPerfect: 25},
			Ranking: &services.UserRanking{
				Top:    &services.UserAverage{UserID: 1, AvgScore: 100, Attempts: 1},
				Bottom: &services.UserAverage{UserID: 2, AvgScore: 25, Attempts: 3},
			},
			Temporal: &services.TemporalWindow{},
		}},
		CrossProblem: []services.Result{
			&services.UserRanks{Name: "High achievers", Label: "Average", Users: []services.UserValue{{UserID: 1, Value: 97}}},
		},
		Users: map[int64]*models.User{1: {ID: 1, Name: "alice", DisplayName: "Alice"}},
	}
}

func TestFormatValue(t *testing.T) {
	var nilFloat *float64
	var nilInt *int
	seven := 7
	labels := func(id int64) string { return map[int64]string{1: "alice", 2: "bob"}[id] }

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil float", nilFloat, "n/a"},
		{"nil int", nilInt, "n/a"},
		{"float", floatPtr(12.345), "12.35"},
		{"int", &seven, "7"},
		{"plain int", 3, "3"},
		{"string", "x", "x"},
		{"empty users", []int64{}, "none"},
		{"users", []int64{1, 2, 1}, "alice, bob, alice"},
		{"ranks", []services.UserValue{{UserID: 2, Value: 3}}, "1. bob: 3.00"},
		{"average", &services.UserAverage{UserID: 1, AvgScore: 90, Attempts: 2}, "alice: 90.00 over 2 attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.value, labels))
		})
	}

	assert.Equal(t, "[5]", FormatValue([]int64{5}, nil))
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer(&buf).Render(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Problem 1: A < B")
	assert.Contains(t, out, "Basic counts")
	assert.Contains(t, out, "62.50")
	assert.Contains(t, out, "Alice @alice [1]: 100.00 over 1 attempts")
	assert.Contains(t, out, "[2]: 25.00 over 3 attempts")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "All problems")
}

func TestFormatHTMLEscapes(t *testing.T) {
	text := FormatHTML(sampleReport())
	assert.Contains(t, text, "<b>📘 Problem 1: A &lt; B</b>")
	assert.Contains(t, text, "Average score: <code>62.50</code>")
	assert.NotContains(t, text, "A < B")
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOf(rapid.StringMatching(`[a-zа-я <>&]{0,60}`)).Draw(rt, "lines")
		limit := rapid.IntRange(10, 100).Draw(rt, "limit")
		text := strings.Join(lines, "\n")

		chunks := SplitMessage(text, limit)
		for _, c := range chunks {
			if n := len([]rune(c)); n > limit {
				rt.Fatalf("chunk of %d runes exceeds %d", n, limit)
			}
		}
		joined := strings.ReplaceAll(strings.Join(chunks, ""), "\n", "")
		if joined != strings.ReplaceAll(text, "\n", "") {
			rt.Fatalf("content lost: %q vs %q", joined, text)
		}
	})
}

func TestTelegramSinkSendsChunks(t *testing.T) {
	var sent []*bot.SendMessageParams
	sink := &TelegramSink{
		chatID: 42,
		send: func(_ context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
			sent = append(sent, params)
			return &tgmodels.Message{ID: len(sent)}, nil
		},
	}

	report := sampleReport()
	for i := 0; i < 60; i++ {
		report.Problems = append(report.Problems, report.Problems[0])
	}
	require.NoError(t, sink.Send(context.Background(), report))

	require.Greater(t, len(sent), 1)
	for _, p := range sent {
		assert.Equal(t, int64(42), p.ChatID)
		assert.Equal(t, tgmodels.ParseModeHTML, p.ParseMode)
		assert.LessOrEqual(t, len([]rune(p.Text)), MaxMessageLength)
	}
}

func TestTelegramSinkReportsFailure(t *testing.T) {
	calls := 0
	sink := &TelegramSink{
		chatID:   1,
		maxRetry: 2,
		send: func(context.Context, *bot.SendMessageParams) (*tgmodels.Message, error) {
			calls++
			return nil, errors.New("forbidden")
		},
	}
	err := sink.Send(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
	assert.Equal(t, 2, calls)
}

func TestTelegramSinkRetries(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		failures := rapid.IntRange(0, 3).Draw(rt, "failures")
		calls := 0
		sink := &TelegramSink{
			chatID:   1,
			maxRetry: 2,
			send: func(context.Context, *bot.SendMessageParams) (*tgmodels.Message, error) {
				calls++
				if calls <= failures {
					return nil, errors.New("network error")
				}
				return &tgmodels.Message{ID: calls}, nil
			},
		}

		err := sink.Send(context.Background(), sampleReport())
		if failures < 2 && err != nil {
			rt.Fatalf("expected success after %d failures, got %v", failures, err)
		}
		if failures >= 2 && err == nil {
			rt.Fatalf("expected failure after %d failures", failures)
		}
	})
}
