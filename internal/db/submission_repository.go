package db

import (
	"database/sql"
	"fmt"

	"github.com/ad/go-contest-stats/internal/models"
)

type SubmissionRepository struct {
	queue *DBQueue
}

func NewSubmissionRepository(queue *DBQueue) *SubmissionRepository {
	return &SubmissionRepository{queue: queue}
}

const submissionColumns = `id, created_at, user_id, problem_id, contest_id, score, compile_error,
	max_time_ms, max_memory_bytes, language, code_size, score_precision,
	submission_type, icpc_verdict, status`

func (r *SubmissionRepository) Create(sub *models.Submission) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		return insertSubmission(db, sub)
	})
	return err
}

func (r *SubmissionRepository) CreateBatch(subs []*models.Submission) (int, error) {
	return Do(r.queue, func(db *sql.DB) (int, error) {
		tx, err := db.Begin()
		if err != nil {
			return 0, err
		}
		defer tx.Rollback()

		inserted, err := insertSubmissions(tx, subs)
		if err != nil {
			return 0, err
		}
		return inserted, tx.Commit()
	})
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertSubmission(ex execer, sub *models.Submission) (int64, error) {
	status := sub.Status
	if status == "" {
		status = models.StatusFinished
	}
	res, err := ex.Exec(`
		INSERT OR IGNORE INTO submissions (`+submissionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.ID, models.FormatTimestamp(sub.CreatedAt), sub.UserID, sub.ProblemID, sub.ContestID,
		sub.Score, sub.CompileError, sub.MaxTimeMs, sub.MaxMemoryBytes, nullString(sub.Language),
		sub.CodeSize, sub.ScorePrecision, nullString(sub.SubmissionType), nullString(sub.ICPCVerdict), string(status))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insertSubmissions(ex execer, subs []*models.Submission) (int, error) {
	inserted := 0
	for _, sub := range subs {
		n, err := insertSubmission(ex, sub)
		if err != nil {
			return inserted, fmt.Errorf("insert submission %d: %w", sub.ID, err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *SubmissionRepository) GetByID(id int64) (*models.Submission, error) {
	return Do(r.queue, func(db *sql.DB) (*models.Submission, error) {
		rows, err := db.Query(`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
		if err != nil {
			return nil, err
		}
		subs, err := scanSubmissions(rows)
		if err != nil {
			return nil, err
		}
		if len(subs) == 0 {
			return nil, sql.ErrNoRows
		}
		return subs[0], nil
	})
}

// List returns the filtered submissions ordered by creation time, then id.
func (r *SubmissionRepository) List(f Filter) ([]*models.Submission, error) {
	return Do(r.queue, func(db *sql.DB) ([]*models.Submission, error) {
		query, args := Query{
			Name: "list_submissions",
			SQL:  `SELECT ` + submissionColumns + ` FROM s ORDER BY created_at, id`,
		}.Bind(f)
		rows, err := db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		return scanSubmissions(rows)
	})
}

func (r *SubmissionRepository) Count(f Filter) (int, error) {
	return Do(r.queue, func(db *sql.DB) (int, error) {
		query, args := Query{Name: "count_submissions", SQL: `SELECT COUNT(*) FROM s`}.Bind(f)
		var count int
		err := db.QueryRow(query, args...).Scan(&count)
		return count, err
	})
}

// ProblemIDs lists every problem that has at least one stored submission.
func (r *SubmissionRepository) ProblemIDs() ([]int64, error) {
	return Do(r.queue, func(db *sql.DB) ([]int64, error) {
		rows, err := db.Query(`SELECT DISTINCT problem_id FROM submissions ORDER BY problem_id`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	})
}

func scanSubmissions(rows *sql.Rows) ([]*models.Submission, error) {
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		var sub models.Submission
		var createdAt string
		var contestID sql.NullInt64
		var language, submissionType, verdict sql.NullString
		var codeSize, precision sql.NullInt64
		var status string
		if err := rows.Scan(&sub.ID, &createdAt, &sub.UserID, &sub.ProblemID, &contestID,
			&sub.Score, &sub.CompileError, &sub.MaxTimeMs, &sub.MaxMemoryBytes, &language,
			&codeSize, &precision, &submissionType, &verdict, &status); err != nil {
			return nil, err
		}
		t, err := models.ParseTimestamp(createdAt)
		if err != nil {
			return nil, Permanent(fmt.Errorf("submission %d: %w", sub.ID, err))
		}
		sub.CreatedAt = t
		if contestID.Valid {
			id := contestID.Int64
			sub.ContestID = &id
		}
		sub.Language = language.String
		sub.CodeSize = codeSize.Int64
		sub.ScorePrecision = int(precision.Int64)
		sub.SubmissionType = submissionType.String
		sub.ICPCVerdict = verdict.String
		sub.Status = models.SubmissionStatus(status)
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
