package db

import (
	"database/sql"

	"github.com/ad/go-contest-stats/internal/models"
)

type UserRepository struct {
	queue *DBQueue
}

func NewUserRepository(queue *DBQueue) *UserRepository {
	return &UserRepository{queue: queue}
}

func (r *UserRepository) CreateOrUpdate(user *models.User) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		return nil, upsertUser(db, user)
	})
	return err
}

func upsertUser(ex execer, user *models.User) error {
	_, err := ex.Exec(`
		INSERT INTO users (id, name, display_name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			display_name = excluded.display_name
	`, user.ID, user.Name, nullString(user.DisplayName))
	return err
}

func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	return Do(r.queue, func(db *sql.DB) (*models.User, error) {
		var user models.User
		var displayName sql.NullString
		err := db.QueryRow(`SELECT id, name, display_name FROM users WHERE id = ?`, id).
			Scan(&user.ID, &user.Name, &displayName)
		if err != nil {
			return nil, err
		}
		user.DisplayName = displayName.String
		return &user, nil
	})
}

// GetByIDs returns the known users keyed by id; unknown ids are simply absent.
func (r *UserRepository) GetByIDs(ids []int64) (map[int64]*models.User, error) {
	return Do(r.queue, func(db *sql.DB) (map[int64]*models.User, error) {
		users := make(map[int64]*models.User, len(ids))
		stmt, err := db.Prepare(`SELECT id, name, display_name FROM users WHERE id = ?`)
		if err != nil {
			return nil, err
		}
		defer stmt.Close()

		for _, id := range ids {
			var user models.User
			var displayName sql.NullString
			err := stmt.QueryRow(id).Scan(&user.ID, &user.Name, &displayName)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return nil, err
			}
			user.DisplayName = displayName.String
			users[id] = &user
		}
		return users, nil
	})
}
