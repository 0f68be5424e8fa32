package models

import (
	"fmt"
	"time"
)

type Submission struct {
	ID             int64
	CreatedAt      time.Time
	UserID         int64
	ProblemID      int64
	ContestID      *int64
	Score          int
	CompileError   bool
	MaxTimeMs      float64
	MaxMemoryBytes int64
	Language       string
	CodeSize       int64
	ScorePrecision int
	SubmissionType string
	ICPCVerdict    string
	Status         SubmissionStatus
}

func (s *Submission) IsPerfect() bool {
	return s.Score >= PerfectScore
}

// ParseTimestamp reads a stored created_at value. Values carrying an offset
// keep their own wall-clock time; the offset is dropped, not applied. A
// malformed value is an input-format error and is never silently skipped.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, value, time.UTC)
	if err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return WallClock(t), nil
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", value, err)
}

// WallClock returns t's local date and time as a zone-less (UTC) value.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimeLayout)
}
