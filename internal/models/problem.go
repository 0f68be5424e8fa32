package models

import "time"

type Problem struct {
	ID              int64
	Name            string
	TestName        string
	DefaultPoints   int
	Visible         bool
	VisibleTests    bool
	TimeLimitMs     float64
	MemoryLimit     int64
	SourceSize      int64
	SourceCredits   string
	ConsoleInput    bool
	ScorePrecision  int
	PublishedAt     *time.Time
	ScoringStrategy string
}
