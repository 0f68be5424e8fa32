package db

import (
	"database/sql"
	"log"
)

// DeduplicatePerfectScores keeps, for every (user, problem) pair, only the
// perfect-score submission with the smallest id. Deletion is permanent; a
// second call finds nothing to delete.
func DeduplicatePerfectScores(queue *DBQueue) (int64, error) {
	deleted, err := Do(queue, func(db *sql.DB) (int64, error) {
		res, err := db.Exec(`
			DELETE FROM submissions
			WHERE score >= 100
			  AND id NOT IN (
			      SELECT MIN(id) FROM submissions
			      WHERE score >= 100
			      GROUP BY user_id, problem_id
			  )
		`)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		return 0, err
	}
	log.Printf("[DEDUP] removed %d duplicate perfect submissions", deleted)
	return deleted, nil
}
