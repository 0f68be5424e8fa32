package services

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/models"
	_ "modernc.org/sqlite"
)

var testDBSeq int64

func setupTestDB(t testing.TB) (*db.DBQueue, func()) {
	name := fmt.Sprintf("file:statstest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	sqlDB, err := sql.Open("sqlite", name)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InitSchema(sqlDB); err != nil {
		t.Fatal(err)
	}

	queue := db.NewDBQueueForTest(sqlDB)
	return queue, func() {
		queue.Close()
		sqlDB.Close()
	}
}

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type subOption func(*models.Submission)

// at places the submission the given number of minutes after baseTime.
func at(minutes int) subOption {
	return func(s *models.Submission) {
		s.CreatedAt = baseTime.Add(time.Duration(minutes) * time.Minute)
	}
}

func resources(timeMs float64, memory int64) subOption {
	return func(s *models.Submission) {
		s.MaxTimeMs = timeMs
		s.MaxMemoryBytes = memory
	}
}

func compileError() subOption {
	return func(s *models.Submission) {
		s.CompileError = true
	}
}

// sub builds a finished submission created id minutes after baseTime unless
// an option says otherwise.
func sub(id, userID, problemID int64, score int, opts ...subOption) *models.Submission {
	s := &models.Submission{
		ID:             id,
		CreatedAt:      baseTime.Add(time.Duration(id) * time.Minute),
		UserID:         userID,
		ProblemID:      problemID,
		Score:          score,
		MaxTimeMs:      100,
		MaxMemoryBytes: 1024,
		Language:       "cpp17",
		Status:         models.StatusFinished,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func seed(t testing.TB, queue *db.DBQueue, subs ...*models.Submission) {
	if _, err := db.NewSubmissionRepository(queue).CreateBatch(subs); err != nil {
		t.Fatal(err)
	}
}

// scores builds one submission per score for problem 1, each from its own user.
func scores(values ...int) []*models.Submission {
	subs := make([]*models.Submission, len(values))
	for i, v := range values {
		subs[i] = sub(int64(i+1), int64(i+1), 1, v)
	}
	return subs
}
