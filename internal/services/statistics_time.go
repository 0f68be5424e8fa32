package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/models"
)

type timedScore struct {
	at    time.Time
	score int
}

func scanTimedScore(rows *sql.Rows) (timedScore, error) {
	var ts timedScore
	var createdAt string
	if err := rows.Scan(&createdAt, &ts.score); err != nil {
		return ts, err
	}
	at, err := models.ParseTimestamp(createdAt)
	if err != nil {
		return ts, db.Permanent(err)
	}
	ts.at = at
	return ts, nil
}

func scanCreatedAt(rows *sql.Rows) (time.Time, error) {
	var createdAt string
	if err := rows.Scan(&createdAt); err != nil {
		return time.Time{}, err
	}
	at, err := models.ParseTimestamp(createdAt)
	if err != nil {
		return time.Time{}, db.Permanent(err)
	}
	return at, nil
}

// TemporalWindow summarises the problem's submissions created inside the
// half-open window [Start, End).
func (s *StatisticsService) TemporalWindow(problemID int64, window Window) (*TemporalWindow, error) {
	f := db.ForProblem(problemID).InWindow(window.Start, window.End)
	rows, err := collect(s.queue, qTimedScores, f, scanTimedScore)
	if err != nil {
		return nil, err
	}

	res := &TemporalWindow{Window: window, Submissions: len(rows)}
	if len(rows) == 0 {
		return res, nil
	}

	hours := make([]int, len(rows))
	scores := make([]float64, len(rows))
	for i, r := range rows {
		hours[i] = r.at.UTC().Hour()
		scores[i] = float64(r.score)
	}
	res.MostCommonHour = modeInt(hours)
	res.MeanScore = mean(scores)

	seconds := int64(rows[0].at.Sub(window.Start) / time.Second)
	res.SecondsToFirst = &seconds
	return res, nil
}

// SubmissionPacing averages the gap between consecutive submissions of the
// same user.
func (s *StatisticsService) SubmissionPacing(problemID int64) (*SubmissionPacing, error) {
	series, err := s.loadSeries(problemID)
	if err != nil {
		return nil, err
	}

	var gaps []float64
	for _, us := range series {
		for i := 1; i < len(us.points); i++ {
			gaps = append(gaps, us.points[i].at.Sub(us.points[i-1].at).Seconds())
		}
	}
	return &SubmissionPacing{MeanSeconds: mean(gaps), Pairs: len(gaps)}, nil
}

// SubmissionsOverTime counts submissions per bucket. Buckets are laid out
// from the window, so empty ones are present with a zero count.
func (s *StatisticsService) SubmissionsOverTime(problemID int64, window Window, bucket time.Duration) (*SubmissionsOverTime, error) {
	if bucket <= 0 {
		return nil, fmt.Errorf("invalid bucket size %s", bucket)
	}

	res := &SubmissionsOverTime{BucketSize: bucket}
	if !window.End.After(window.Start) {
		return res, nil
	}

	for start := window.Start; start.Before(window.End); start = start.Add(bucket) {
		res.Buckets = append(res.Buckets, TimeBucket{Start: start})
	}

	f := db.ForProblem(problemID).InWindow(window.Start, window.End)
	times, err := collect(s.queue, qCreatedAt, f, scanCreatedAt)
	if err != nil {
		return nil, err
	}
	for _, at := range times {
		i := int(at.Sub(window.Start) / bucket)
		if i >= 0 && i < len(res.Buckets) {
			res.Buckets[i].Count++
		}
	}
	return res, nil
}

func (s *StatisticsService) SubmissionHotspots(problemID int64) (*SubmissionHotspots, error) {
	hours, err := collect(s.queue, qHotspots, db.ForProblem(problemID), func(rows *sql.Rows) (HourCount, error) {
		var h HourCount
		err := rows.Scan(&h.Hour, &h.Count)
		return h, err
	}, s.opts.TopN)
	if err != nil {
		return nil, err
	}
	return &SubmissionHotspots{Hours: hours}, nil
}

// ActiveWindow spans the problem's submissions, widened to whole hours. It
// reports false when the problem has none.
func (s *StatisticsService) ActiveWindow(problemID int64) (Window, bool, error) {
	var first, last sql.NullString
	if _, err := queryRow(s.queue, qTimeRange, db.ForProblem(problemID), &first, &last); err != nil {
		return Window{}, false, err
	}
	if !first.Valid || !last.Valid {
		return Window{}, false, nil
	}

	start, err := models.ParseTimestamp(first.String)
	if err != nil {
		return Window{}, false, err
	}
	end, err := models.ParseTimestamp(last.String)
	if err != nil {
		return Window{}, false, err
	}
	return Window{Start: start.Truncate(time.Hour), End: end.Truncate(time.Hour).Add(time.Hour)}, true, nil
}
