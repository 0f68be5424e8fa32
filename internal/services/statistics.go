package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ad/go-contest-stats/internal/db"
)

type ProgressionOptions struct {
	// SkipZeroPrevious keeps the historical behaviour where a previous score
	// of 0 is treated as "no previous submission".
	SkipZeroPrevious bool
}

type StatisticsOptions struct {
	Progression     ProgressionOptions
	TopN            int
	HighAchieverMin float64
}

func DefaultStatisticsOptions() StatisticsOptions {
	return StatisticsOptions{
		Progression:     ProgressionOptions{SkipZeroPrevious: true},
		TopN:            5,
		HighAchieverMin: 90,
	}
}

// StatisticsService answers analytical questions about stored submissions.
// Every method is a read-only query; none depends on another's output.
type StatisticsService struct {
	queue *db.DBQueue
	opts  StatisticsOptions
}

func NewStatisticsService(queue *db.DBQueue) *StatisticsService {
	return NewStatisticsServiceWithOptions(queue, DefaultStatisticsOptions())
}

func NewStatisticsServiceWithOptions(queue *db.DBQueue, opts StatisticsOptions) *StatisticsService {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	return &StatisticsService{queue: queue, opts: opts}
}

func collect[T any](queue *db.DBQueue, q db.Query, f db.Filter, scan func(*sql.Rows) (T, error), extra ...interface{}) ([]T, error) {
	return db.Do(queue, func(conn *sql.DB) ([]T, error) {
		query, args := q.Bind(f, extra...)
		rows, err := conn.Query(query, args...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q.Name, err)
		}
		defer rows.Close()

		var out []T
		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", q.Name, err)
			}
			out = append(out, v)
		}
		return out, rows.Err()
	})
}

// queryRow scans a single row and reports false when the query matched nothing.
func queryRow(queue *db.DBQueue, q db.Query, f db.Filter, dest ...interface{}) (bool, error) {
	return db.Do(queue, func(conn *sql.DB) (bool, error) {
		query, args := q.Bind(f)
		err := conn.QueryRow(query, args...).Scan(dest...)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%s: %w", q.Name, err)
		}
		return true, nil
	})
}

func scanInt(rows *sql.Rows) (int, error) {
	var v int
	err := rows.Scan(&v)
	return v, err
}

func scanInt64(rows *sql.Rows) (int64, error) {
	var v int64
	err := rows.Scan(&v)
	return v, err
}

func scanUserValue(rows *sql.Rows) (UserValue, error) {
	var v UserValue
	err := rows.Scan(&v.UserID, &v.Value)
	return v, err
}

func (s *StatisticsService) BasicCounts(problemID int64) (*BasicCounts, error) {
	var res BasicCounts
	var avg sql.NullFloat64
	if _, err := queryRow(s.queue, qBasicCounts, db.ForProblem(problemID),
		&res.TotalSubmissions, &res.DistinctUsers, &avg); err != nil {
		return nil, err
	}
	res.MeanScore = nullFloat(avg.Valid, avg.Float64)
	return &res, nil
}

func (s *StatisticsService) ScoreDistribution(problemID int64) (*ScoreDistribution, error) {
	scores, err := collect(s.queue, qScores, db.ForProblem(problemID), scanInt)
	if err != nil {
		return nil, err
	}

	res := &ScoreDistribution{}
	if len(scores) == 0 {
		return res, nil
	}

	values := make([]float64, len(scores))
	var perfect, high, low int
	for i, score := range scores {
		values[i] = float64(score)
		if score == 100 {
			perfect++
		}
		if score >= 80 {
			high++
		}
		if score < 50 {
			low++
		}
	}
	res.PercentPerfect = percent(perfect, len(scores))
	res.PercentAtLeast80 = percent(high, len(scores))
	res.PercentBelow50 = percent(low, len(scores))
	res.Median = median(values)
	res.Mode = modeInt(scores)
	res.StdDev = sampleStdDev(values)
	return res, nil
}

func (s *StatisticsService) UserRanking(problemID int64) (*UserRanking, error) {
	f := db.ForProblem(problemID)
	res := &UserRanking{}

	var top UserAverage
	found, err := queryRow(s.queue, qRankTop, f, &top.UserID, &top.AvgScore, &top.Attempts)
	if err != nil {
		return nil, err
	}
	if !found {
		return res, nil
	}
	res.Top = &top

	var bottom UserAverage
	if _, err := queryRow(s.queue, qRankBottom, f, &bottom.UserID, &bottom.AvgScore, &bottom.Attempts); err != nil {
		return nil, err
	}
	res.Bottom = &bottom
	return res, nil
}

func (s *StatisticsService) Performance(problemID int64) (*Performance, error) {
	var avgTime, minTime, avgMem sql.NullFloat64
	var minMem sql.NullInt64
	if _, err := queryRow(s.queue, qPerformance, db.ForProblem(problemID),
		&avgTime, &minTime, &avgMem, &minMem); err != nil {
		return nil, err
	}
	res := &Performance{
		MeanTimeMs:      nullFloat(avgTime.Valid, avgTime.Float64),
		MinTimeMs:       nullFloat(minTime.Valid, minTime.Float64),
		MeanMemoryBytes: nullFloat(avgMem.Valid, avgMem.Float64),
	}
	if minMem.Valid {
		v := minMem.Int64
		res.MinMemoryBytes = &v
	}
	return res, nil
}

func (s *StatisticsService) EfficiencyCount(problemID int64) (*EfficiencyCount, error) {
	var res EfficiencyCount
	if _, err := queryRow(s.queue, qEfficient, db.ForProblem(problemID), &res.Count); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *StatisticsService) ScoreClusters(problemID int64) (*ScoreClusters, error) {
	type bin struct{ index, count int }
	bins, err := collect(s.queue, qClusters, db.ForProblem(problemID), func(rows *sql.Rows) (bin, error) {
		var b bin
		err := rows.Scan(&b.index, &b.count)
		return b, err
	})
	if err != nil {
		return nil, err
	}

	res := &ScoreClusters{}
	for _, b := range bins {
		res.Counts[b.index] = b.count
	}
	return res, nil
}

func (s *StatisticsService) DifficultyIndex(problemID int64) (*DifficultyIndex, error) {
	var avg sql.NullFloat64
	if _, err := queryRow(s.queue, qMeanScore, db.ForProblem(problemID), &avg); err != nil {
		return nil, err
	}
	res := &DifficultyIndex{}
	if avg.Valid {
		res.Value = floatPtr(100 - avg.Float64)
	}
	return res, nil
}

func (s *StatisticsService) ScoreResourceRatios(problemID int64) (*ScoreResourceRatios, error) {
	var score, timeMs, memory sql.NullFloat64
	if _, err := queryRow(s.queue, qResourceMeans, db.ForProblem(problemID), &score, &timeMs, &memory); err != nil {
		return nil, err
	}
	res := &ScoreResourceRatios{}
	if !score.Valid {
		return res, nil
	}
	if timeMs.Valid && timeMs.Float64 != 0 {
		res.ScorePerMs = floatPtr(score.Float64 / timeMs.Float64)
	}
	if memory.Valid && memory.Float64 != 0 {
		res.ScorePerByte = floatPtr(score.Float64 / memory.Float64)
	}
	return res, nil
}
