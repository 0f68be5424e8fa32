package db

import (
	"database/sql"
	"fmt"

	"github.com/ad/go-contest-stats/internal/models"
)

// Page is one fetched slice of the remote dataset.
type Page struct {
	Users       []*models.User
	Problems    []*models.Problem
	Submissions []*models.Submission
}

type PageRepository struct {
	queue *DBQueue
}

func NewPageRepository(queue *DBQueue) *PageRepository {
	return &PageRepository{queue: queue}
}

// Save writes a page atomically and returns how many submissions were new.
func (r *PageRepository) Save(page *Page) (int, error) {
	return Do(r.queue, func(db *sql.DB) (int, error) {
		tx, err := db.Begin()
		if err != nil {
			return 0, err
		}
		defer tx.Rollback()

		for _, u := range page.Users {
			if err := upsertUser(tx, u); err != nil {
				return 0, fmt.Errorf("upsert user %d: %w", u.ID, err)
			}
		}
		for _, p := range page.Problems {
			if err := upsertProblem(tx, p); err != nil {
				return 0, fmt.Errorf("upsert problem %d: %w", p.ID, err)
			}
		}
		inserted, err := insertSubmissions(tx, page.Submissions)
		if err != nil {
			return 0, err
		}
		return inserted, tx.Commit()
	})
}
