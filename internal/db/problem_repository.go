package db

import (
	"database/sql"

	"github.com/ad/go-contest-stats/internal/models"
)

type ProblemRepository struct {
	queue *DBQueue
}

func NewProblemRepository(queue *DBQueue) *ProblemRepository {
	return &ProblemRepository{queue: queue}
}

func (r *ProblemRepository) CreateOrUpdate(p *models.Problem) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		return nil, upsertProblem(db, p)
	})
	return err
}

func upsertProblem(ex execer, p *models.Problem) error {
	var publishedAt sql.NullString
	if p.PublishedAt != nil {
		publishedAt = sql.NullString{String: models.FormatTimestamp(*p.PublishedAt), Valid: true}
	}
	_, err := ex.Exec(`
		INSERT INTO problems (
			id, name, test_name, default_points, visible, visible_tests,
			time_ms, memory_limit, source_size, source_credits, console_input,
			score_precision, published_at, scoring_strategy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			test_name = excluded.test_name,
			default_points = excluded.default_points,
			visible = excluded.visible,
			visible_tests = excluded.visible_tests,
			time_ms = excluded.time_ms,
			memory_limit = excluded.memory_limit,
			source_size = excluded.source_size,
			source_credits = excluded.source_credits,
			console_input = excluded.console_input,
			score_precision = excluded.score_precision,
			published_at = excluded.published_at,
			scoring_strategy = excluded.scoring_strategy
	`, p.ID, p.Name, nullString(p.TestName), p.DefaultPoints, p.Visible, p.VisibleTests,
		p.TimeLimitMs, p.MemoryLimit, p.SourceSize, nullString(p.SourceCredits), p.ConsoleInput,
		p.ScorePrecision, publishedAt, nullString(p.ScoringStrategy))
	return err
}

func (r *ProblemRepository) GetByID(id int64) (*models.Problem, error) {
	return Do(r.queue, func(db *sql.DB) (*models.Problem, error) {
		var p models.Problem
		var testName, credits, publishedAt, strategy sql.NullString
		var sourceSize sql.NullInt64
		err := db.QueryRow(`
			SELECT id, name, test_name, default_points, visible, visible_tests,
			       time_ms, memory_limit, source_size, source_credits, console_input,
			       score_precision, published_at, scoring_strategy
			FROM problems WHERE id = ?
		`, id).Scan(&p.ID, &p.Name, &testName, &p.DefaultPoints, &p.Visible, &p.VisibleTests,
			&p.TimeLimitMs, &p.MemoryLimit, &sourceSize, &credits, &p.ConsoleInput,
			&p.ScorePrecision, &publishedAt, &strategy)
		if err != nil {
			return nil, err
		}
		p.TestName = testName.String
		p.SourceSize = sourceSize.Int64
		p.SourceCredits = credits.String
		p.ScoringStrategy = strategy.String
		if publishedAt.Valid {
			t, err := models.ParseTimestamp(publishedAt.String)
			if err != nil {
				return nil, Permanent(err)
			}
			p.PublishedAt = &t
		}
		return &p, nil
	})
}
