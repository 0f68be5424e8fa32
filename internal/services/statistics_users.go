package services

import (
	"database/sql"
	"time"

	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/models"
)

type seriesPoint struct {
	at    time.Time
	score int
}

type userSeries struct {
	userID int64
	points []seriesPoint
}

// loadSeries returns every user's submissions for the problem in
// chronological order, users sorted by id.
func (s *StatisticsService) loadSeries(problemID int64) ([]userSeries, error) {
	type row struct {
		userID int64
		point  seriesPoint
	}
	rows, err := collect(s.queue, qUserSeries, db.ForProblem(problemID), func(rows *sql.Rows) (row, error) {
		var r row
		var createdAt string
		if err := rows.Scan(&r.userID, &createdAt, &r.point.score); err != nil {
			return r, err
		}
		at, err := models.ParseTimestamp(createdAt)
		if err != nil {
			return r, db.Permanent(err)
		}
		r.point.at = at
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	var series []userSeries
	for _, r := range rows {
		if len(series) == 0 || series[len(series)-1].userID != r.userID {
			series = append(series, userSeries{userID: r.userID})
		}
		last := &series[len(series)-1]
		last.points = append(last.points, r.point)
	}
	return series, nil
}

func (s *StatisticsService) scoreSpreads(problemID int64) ([]UserValue, error) {
	return collect(s.queue, qScoreSpread, db.ForProblem(problemID), scanUserValue)
}

func (s *StatisticsService) ResubmissionImprovement(problemID int64) (*ResubmissionImprovement, error) {
	spreads, err := s.scoreSpreads(problemID)
	if err != nil {
		return nil, err
	}

	res := &ResubmissionImprovement{}
	values := make([]float64, len(spreads))
	for i, sp := range spreads {
		values[i] = sp.Value
		if sp.Value > 0 {
			res.Improved++
		} else {
			res.NotImproved++
		}
	}
	res.MeanImprovement = mean(values)
	return res, nil
}

func (s *StatisticsService) TopImprovers(problemID int64) (*UserRanks, error) {
	spreads, err := s.scoreSpreads(problemID)
	if err != nil {
		return nil, err
	}
	if len(spreads) > s.opts.TopN {
		spreads = spreads[:s.opts.TopN]
	}
	return &UserRanks{Name: "Top improvers", Label: "Score range (max - min)", Users: spreads}, nil
}

func (s *StatisticsService) Engagement(problemID int64) (*Engagement, error) {
	attempts, err := collect(s.queue, qAttemptsPerUser, db.ForProblem(problemID), scanInt)
	if err != nil {
		return nil, err
	}

	res := &Engagement{}
	values := make([]float64, len(attempts))
	for i, n := range attempts {
		values[i] = float64(n)
		if n == 1 {
			res.SingleAttemptUsers++
		} else {
			res.MultiAttemptUsers++
		}
	}
	res.MeanAttempts = mean(values)
	return res, nil
}

func (s *StatisticsService) FewestAttemptsToPerfect(problemID int64) (*FewestAttemptsToPerfect, error) {
	var attempts int
	found, err := queryRow(s.queue, qFewestToPerfect, db.ForProblem(problemID), &attempts)
	if err != nil {
		return nil, err
	}
	res := &FewestAttemptsToPerfect{}
	if found {
		res.Attempts = intPtr(attempts)
	}
	return res, nil
}

func (s *StatisticsService) LateBloomers(problemID int64) (*LateBloomers, error) {
	series, err := s.loadSeries(problemID)
	if err != nil {
		return nil, err
	}

	res := &LateBloomers{}
	for _, us := range series {
		if len(us.points) < 2 || us.points[0].score >= 50 {
			continue
		}
		later := us.points[1].score
		for _, p := range us.points[2:] {
			if p.score > later {
				later = p.score
			}
		}
		if later >= 80 {
			res.Count++
		}
	}
	return res, nil
}

func (s *StatisticsService) Consistency(problemID int64) (*Consistency, error) {
	type means struct{ timeMs, memory float64 }
	users, err := collect(s.queue, qUserResourceMeans, db.ForProblem(problemID), func(rows *sql.Rows) (means, error) {
		var m means
		err := rows.Scan(&m.timeMs, &m.memory)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	res := &Consistency{}
	if len(users) == 0 {
		return res, nil
	}

	times := make([]float64, len(users))
	memories := make([]float64, len(users))
	for i, u := range users {
		times[i] = u.timeMs
		memories[i] = u.memory
	}
	medianTime, medianMemory := *median(times), *median(memories)
	for _, u := range users {
		if u.timeMs < medianTime && u.memory < medianMemory {
			res.Count++
		}
	}
	return res, nil
}

func (s *StatisticsService) CompileErrorBehavior(problemID int64) (*CompileErrorBehavior, error) {
	type counts struct{ total, errors int }
	users, err := collect(s.queue, qCompileErrors, db.ForProblem(problemID), func(rows *sql.Rows) (counts, error) {
		var c counts
		err := rows.Scan(&c.total, &c.errors)
		return c, err
	})
	if err != nil {
		return nil, err
	}

	res := &CompileErrorBehavior{}
	var recovered []float64
	for _, u := range users {
		switch {
		case u.errors == 0:
			res.CleanUsers++
		case u.errors < u.total:
			recovered = append(recovered, float64(u.errors))
		}
	}
	res.MeanCompileErrors = mean(recovered)
	return res, nil
}

func (s *StatisticsService) ScoreProgression(problemID int64) (*ScoreProgression, error) {
	series, err := s.loadSeries(problemID)
	if err != nil {
		return nil, err
	}

	var deltas []float64
	for _, us := range series {
		var prev int
		hasPrev := false
		for _, p := range us.points {
			if hasPrev && !(s.opts.Progression.SkipZeroPrevious && prev == 0) {
				deltas = append(deltas, float64(p.score-prev))
			}
			prev, hasPrev = p.score, true
		}
	}
	return &ScoreProgression{MeanDelta: mean(deltas), Deltas: len(deltas)}, nil
}

func (s *StatisticsService) PersistenceIndex(problemID int64) (*PersistenceIndex, error) {
	counts, err := collect(s.queue, qPerfectCounts, db.ForProblem(problemID), scanInt)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	return &PersistenceIndex{Value: mean(values)}, nil
}

func (s *StatisticsService) FirstAttemptQuality(problemID int64) (*FirstAttemptQuality, error) {
	var avg sql.NullFloat64
	res := &FirstAttemptQuality{}
	if _, err := queryRow(s.queue, qFirstAttempts, db.ForProblem(problemID), &avg, &res.Users); err != nil {
		return nil, err
	}
	res.MeanScore = nullFloat(avg.Valid, avg.Float64)
	return res, nil
}

func (s *StatisticsService) QuickHighScorers(problemID int64) (*UserList, error) {
	ids, err := collect(s.queue, qQuickHighScorers, db.ForProblem(problemID), scanInt64)
	if err != nil {
		return nil, err
	}
	return &UserList{Name: "Quick high scorers", Label: "Scored > 90 within two submissions", UserIDs: ids}, nil
}

// ResourceEfficientUsers lists the user of every below-average submission,
// so a user appears once per qualifying submission.
func (s *StatisticsService) ResourceEfficientUsers(problemID int64) (*UserList, error) {
	ids, err := collect(s.queue, qResourceEfficient, db.ForProblem(problemID), scanInt64)
	if err != nil {
		return nil, err
	}
	return &UserList{Name: "Resource efficient users", Label: "Below-average time and memory", UserIDs: ids}, nil
}
