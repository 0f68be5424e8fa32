package services

import (
	"testing"
	"time"

	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProblemReport(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()
	require.NoError(t, db.NewProblemRepository(queue).CreateOrUpdate(&models.Problem{ID: 1, Name: "Sum"}))
	seed(t, queue, sub(1, 1, 1, 40, at(5)), sub(2, 2, 1, 80, at(20)))

	builder := NewReportBuilder(queue, NewStatisticsService(queue))
	window := Window{Start: baseTime, End: baseTime.Add(time.Hour)}
	report, err := builder.BuildProblemReport(1, window)
	require.NoError(t, err)

	assert.Equal(t, "Problem 1: Sum", report.Title())
	assert.Equal(t, 2, report.Basic.TotalSubmissions)
	require.NotNil(t, report.Ranking.Top)
	assert.Equal(t, int64(2), report.Ranking.Top.UserID)
	assert.Equal(t, 2, report.Temporal.Submissions)
	assert.NotNil(t, report.Performance.MeanTimeMs)
	assert.NotNil(t, report.Distribution.Median)
	assert.Len(t, report.Results(), 5)
}

func TestBuildFullReport(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()
	users := db.NewUserRepository(queue)
	require.NoError(t, users.CreateOrUpdate(&models.User{ID: 1, Name: "alice", DisplayName: "Alice"}))
	seed(t, queue,
		sub(1, 1, 1, 100), sub(2, 2, 1, 30), sub(3, 2, 1, 95),
		sub(4, 1, 2, 60),
	)

	builder := NewReportBuilder(queue, NewStatisticsService(queue))
	builder.now = func() time.Time { return baseTime.Add(24 * time.Hour) }

	report, err := builder.BuildFullReport(ReportOptions{BucketSize: 30 * time.Minute})
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, baseTime.Add(24*time.Hour), report.GeneratedAt)

	require.Len(t, report.Problems, 2)
	assert.Equal(t, int64(1), report.Problems[0].ProblemID)
	assert.Len(t, report.Problems[0].Results(), 24)
	assert.Equal(t, 3, report.Problems[0].Temporal.Submissions)
	require.Len(t, report.CrossProblem, 3)

	assert.Equal(t, "Alice @alice [1]", report.UserLabel(1))
	assert.Equal(t, "[2]", report.UserLabel(2))
}

func TestBuildFullReportSelectedProblems(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, queue, sub(1, 1, 1, 100), sub(2, 1, 2, 60))

	builder := NewReportBuilder(queue, NewStatisticsService(queue))
	report, err := builder.BuildFullReport(ReportOptions{
		ProblemIDs: []int64{2, 7},
		Window:     Window{Start: baseTime, End: baseTime.Add(time.Hour)},
	})
	require.NoError(t, err)
	require.Len(t, report.Problems, 2)
	assert.Equal(t, 1, report.Problems[0].Basic.TotalSubmissions)
	assert.Equal(t, 0, report.Problems[1].Basic.TotalSubmissions)
}

func TestBuildProblemReportWithoutProblemRow(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()
	seed(t, queue, sub(1, 1, 1, 40))

	report, err := NewReportBuilder(queue, NewStatisticsService(queue)).BuildProblemReport(1, Window{})
	require.NoError(t, err)
	assert.Empty(t, report.ProblemName)
	assert.Equal(t, 1, report.Basic.TotalSubmissions)
}

func TestBuildProblemReportFailsOnBrokenProblemRow(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()
	require.NoError(t, db.NewProblemRepository(queue).CreateOrUpdate(&models.Problem{ID: 1, Name: "Sum"}))
	_, err := queue.DB().Exec(`UPDATE problems SET published_at = 'soon' WHERE id = 1`)
	require.NoError(t, err)
	seed(t, queue, sub(1, 1, 1, 40))

	_, err = NewReportBuilder(queue, NewStatisticsService(queue)).BuildProblemReport(1, Window{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load problem 1")
}
