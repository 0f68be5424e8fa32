package kilonova

import (
	"fmt"
	"math"
	"time"

	"github.com/ad/go-contest-stats/internal/models"
)

type Envelope struct {
	Status string `json:"status"`
	Data   Page   `json:"data"`
}

// Page is one response of /api/submissions/get. Users and problems are keyed
// by their id rendered as a string.
type Page struct {
	Submissions []Submission       `json:"submissions"`
	Users       map[string]User    `json:"users"`
	Problems    map[string]Problem `json:"problems"`
}

type Submission struct {
	ID             int64   `json:"id"`
	CreatedAt      string  `json:"created_at"`
	UserID         int64   `json:"user_id"`
	ProblemID      int64   `json:"problem_id"`
	ContestID      *int64  `json:"contest_id"`
	Language       string  `json:"language"`
	CodeSize       int64   `json:"code_size"`
	Status         string  `json:"status"`
	CompileError   *bool   `json:"compile_error"`
	MaxTime        float64 `json:"max_time"`
	MaxMemory      int64   `json:"max_memory"`
	Score          float64 `json:"score"`
	ScorePrecision int     `json:"score_precision"`
	SubmissionType string  `json:"submission_type"`
	ICPCVerdict    *string `json:"icpc_verdict"`
}

type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type Problem struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	TestName        string  `json:"test_name"`
	DefaultPoints   float64 `json:"default_points"`
	Visible         bool    `json:"visible"`
	VisibleTests    bool    `json:"visible_tests"`
	TimeLimit       float64 `json:"time_limit"`
	MemoryLimit     int64   `json:"memory_limit"`
	SourceSize      int64   `json:"source_size"`
	SourceCredits   string  `json:"source_credits"`
	ConsoleInput    bool    `json:"console_input"`
	ScorePrecision  int     `json:"score_precision"`
	PublishedAt     *string `json:"published_at"`
	ScoringStrategy string  `json:"scoring_strategy"`
}

// secondsToMs converts the API's second-based timings, keeping two decimals.
func secondsToMs(seconds float64) float64 {
	return math.Round(seconds*1000*100) / 100
}

func (s Submission) Finished() bool {
	return models.SubmissionStatus(s.Status) == models.StatusFinished
}

func (s Submission) ToModel() (*models.Submission, error) {
	createdAt, err := models.ParseTimestamp(s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("submission %d: %w", s.ID, err)
	}

	sub := &models.Submission{
		ID:             s.ID,
		CreatedAt:      createdAt.Truncate(time.Second),
		UserID:         s.UserID,
		ProblemID:      s.ProblemID,
		ContestID:      s.ContestID,
		Score:          int(s.Score),
		MaxTimeMs:      secondsToMs(s.MaxTime),
		MaxMemoryBytes: s.MaxMemory,
		Language:       s.Language,
		CodeSize:       s.CodeSize,
		ScorePrecision: s.ScorePrecision,
		SubmissionType: s.SubmissionType,
		Status:         models.SubmissionStatus(s.Status),
	}
	if s.CompileError != nil {
		sub.CompileError = *s.CompileError
	}
	if s.ICPCVerdict != nil {
		sub.ICPCVerdict = *s.ICPCVerdict
	}
	return sub, nil
}

func (u User) ToModel() *models.User {
	return &models.User{ID: u.ID, Name: u.Name, DisplayName: u.DisplayName}
}

func (p Problem) ToModel() (*models.Problem, error) {
	problem := &models.Problem{
		ID:              p.ID,
		Name:            p.Name,
		TestName:        p.TestName,
		DefaultPoints:   int(p.DefaultPoints),
		Visible:         p.Visible,
		VisibleTests:    p.VisibleTests,
		TimeLimitMs:     secondsToMs(p.TimeLimit),
		MemoryLimit:     p.MemoryLimit,
		SourceSize:      p.SourceSize,
		SourceCredits:   p.SourceCredits,
		ConsoleInput:    p.ConsoleInput,
		ScorePrecision:  p.ScorePrecision,
		ScoringStrategy: p.ScoringStrategy,
	}
	if p.PublishedAt != nil && *p.PublishedAt != "" {
		published, err := models.ParseTimestamp(*p.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("problem %d: %w", p.ID, err)
		}
		problem.PublishedAt = &published
	}
	return problem, nil
}
