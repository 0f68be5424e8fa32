package db

import (
	"strings"
	"time"

	"github.com/ad/go-contest-stats/internal/models"
)

// Filter narrows the submissions a query sees. Zero-valued fields are ignored.
// The time range is half-open: From <= created_at < To.
type Filter struct {
	ProblemID int64
	UserID    int64
	From      time.Time
	To        time.Time
}

func ForProblem(problemID int64) Filter {
	return Filter{ProblemID: problemID}
}

func (f Filter) InWindow(from, to time.Time) Filter {
	f.From = from
	f.To = to
	return f
}

func (f Filter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.ProblemID != 0 {
		conds = append(conds, "problem_id = ?")
		args = append(args, f.ProblemID)
	}
	if f.UserID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, models.FormatTimestamp(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, models.FormatTimestamp(f.To))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Query is a named SQL template. Templates read from the CTE "s", which Bind
// defines as the filtered submissions; extra positional args follow the filter's.
type Query struct {
	Name string
	SQL  string
}

func (q Query) Bind(f Filter, extra ...interface{}) (string, []interface{}) {
	where, args := f.where()
	sql := "WITH s AS (SELECT * FROM submissions " + where + ")\n" + q.SQL
	return sql, append(args, extra...)
}
