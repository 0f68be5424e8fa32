package db

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ad/go-contest-stats/internal/models"
	_ "modernc.org/sqlite"
)

var testDBSeq int64

func setupTestDB(t testing.TB) (*DBQueue, func()) {
	name := fmt.Sprintf("file:dbtest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	sqlDB, err := sql.Open("sqlite", name)
	if err != nil {
		t.Fatal(err)
	}

	if err := InitSchema(sqlDB); err != nil {
		t.Fatal(err)
	}

	queue := NewDBQueueForTest(sqlDB)
	return queue, func() {
		queue.Close()
		sqlDB.Close()
	}
}

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testSubmission(id, userID, problemID int64, score int) *models.Submission {
	return &models.Submission{
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
}
