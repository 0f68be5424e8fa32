package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/models"
)

type ProblemReport struct {
	ProblemID    int64
	ProblemName  string
	Basic        *BasicCounts
	Performance  *Performance
	Distribution *ScoreDistribution
	Ranking      *UserRanking
	Temporal     *TemporalWindow
	// Extra holds the remaining per-problem statistics of a full report.
	Extra []Result
}

func (r *ProblemReport) Title() string {
	if r.ProblemName != "" {
		return fmt.Sprintf("Problem %d: %s", r.ProblemID, r.ProblemName)
	}
	return fmt.Sprintf("Problem %d", r.ProblemID)
}

func (r *ProblemReport) Results() []Result {
	results := []Result{r.Basic, r.Performance, r.Distribution, r.Ranking, r.Temporal}
	return append(results, r.Extra...)
}

type FullReport struct {
	RunID        string
	GeneratedAt  time.Time
	Problems     []*ProblemReport
	CrossProblem []Result
	Users        map[int64]*models.User
}

// UserLabel resolves a user id against the users seen in the report.
func (r *FullReport) UserLabel(id int64) string {
	if u, ok := r.Users[id]; ok {
		return u.Label()
	}
	return fmt.Sprintf("[%d]", id)
}

type ReportOptions struct {
	ProblemIDs []int64
	// Window is derived per problem from its submissions when zero.
	Window     Window
	BucketSize time.Duration
}

type ReportBuilder struct {
	stats       *StatisticsService
	users       *db.UserRepository
	problems    *db.ProblemRepository
	submissions *db.SubmissionRepository
	now         func() time.Time
}

func NewReportBuilder(queue *db.DBQueue, stats *StatisticsService) *ReportBuilder {
	return &ReportBuilder{
		stats:       stats,
		users:       db.NewUserRepository(queue),
		problems:    db.NewProblemRepository(queue),
		submissions: db.NewSubmissionRepository(queue),
		now:         time.Now,
	}
}

// BuildProblemReport combines the basic, performance, distribution, ranking
// and temporal statistics of one problem.
func (b *ReportBuilder) BuildProblemReport(problemID int64, window Window) (*ProblemReport, error) {
	report := &ProblemReport{ProblemID: problemID}

	p, err := b.problems.GetByID(problemID)
	switch {
	case err == nil:
		report.ProblemName = p.Name
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load problem %d: %w", problemID, err)
	}

	if report.Basic, err = b.stats.BasicCounts(problemID); err != nil {
		return nil, fmt.Errorf("basic counts: %w", err)
	}
	if report.Performance, err = b.stats.Performance(problemID); err != nil {
		return nil, fmt.Errorf("performance: %w", err)
	}
	if report.Distribution, err = b.stats.ScoreDistribution(problemID); err != nil {
		return nil, fmt.Errorf("score distribution: %w", err)
	}
	if report.Ranking, err = b.stats.UserRanking(problemID); err != nil {
		return nil, fmt.Errorf("user ranking: %w", err)
	}
	if report.Temporal, err = b.stats.TemporalWindow(problemID, window); err != nil {
		return nil, fmt.Errorf("temporal window: %w", err)
	}
	return report, nil
}

func (b *ReportBuilder) BuildFullReport(opts ReportOptions) (*FullReport, error) {
	if opts.BucketSize <= 0 {
		opts.BucketSize = time.Hour
	}

	problemIDs := opts.ProblemIDs
	if len(problemIDs) == 0 {
		ids, err := b.submissions.ProblemIDs()
		if err != nil {
			return nil, fmt.Errorf("list problems: %w", err)
		}
		problemIDs = ids
	}

	report := &FullReport{
		RunID:       uuid.NewString(),
		GeneratedAt: b.now().UTC(),
	}
	log.Printf("[REPORT] run %s: building report for %d problems", report.RunID, len(problemIDs))

	for _, problemID := range problemIDs {
		window := opts.Window
		if window.Start.IsZero() || window.End.IsZero() {
			active, ok, err := b.stats.ActiveWindow(problemID)
			if err != nil {
				return nil, fmt.Errorf("problem %d window: %w", problemID, err)
			}
			if !ok {
				log.Printf("[REPORT] problem %d has no submissions", problemID)
			}
			window = active
		}

		pr, err := b.BuildProblemReport(problemID, window)
		if err != nil {
			return nil, fmt.Errorf("problem %d: %w", problemID, err)
		}
		if pr.Extra, err = b.problemStatistics(problemID, window, opts.BucketSize); err != nil {
			return nil, fmt.Errorf("problem %d: %w", problemID, err)
		}
		report.Problems = append(report.Problems, pr)
	}

	cross, err := b.crossProblemStatistics()
	if err != nil {
		return nil, err
	}
	report.CrossProblem = cross

	users, err := b.users.GetByIDs(referencedUsers(report))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	report.Users = users
	return report, nil
}

func (b *ReportBuilder) problemStatistics(problemID int64, window Window, bucket time.Duration) ([]Result, error) {
	s := b.stats
	steps := []struct {
		name string
		run  func() (Result, error)
	}{
		{"resubmission improvement", func() (Result, error) { return s.ResubmissionImprovement(problemID) }},
		{"efficiency count", func() (Result, error) { return s.EfficiencyCount(problemID) }},
		{"score clusters", func() (Result, error) { return s.ScoreClusters(problemID) }},
		{"engagement", func() (Result, error) { return s.Engagement(problemID) }},
		{"fewest attempts", func() (Result, error) { return s.FewestAttemptsToPerfect(problemID) }},
		{"late bloomers", func() (Result, error) { return s.LateBloomers(problemID) }},
		{"consistency", func() (Result, error) { return s.Consistency(problemID) }},
		{"pacing", func() (Result, error) { return s.SubmissionPacing(problemID) }},
		{"compile errors", func() (Result, error) { return s.CompileErrorBehavior(problemID) }},
		{"score progression", func() (Result, error) { return s.ScoreProgression(problemID) }},
		{"submissions over time", func() (Result, error) { return s.SubmissionsOverTime(problemID, window, bucket) }},
		{"difficulty index", func() (Result, error) { return s.DifficultyIndex(problemID) }},
		{"persistence index", func() (Result, error) { return s.PersistenceIndex(problemID) }},
		{"resource ratios", func() (Result, error) { return s.ScoreResourceRatios(problemID) }},
		{"first attempt quality", func() (Result, error) { return s.FirstAttemptQuality(problemID) }},
		{"quick high scorers", func() (Result, error) { return s.QuickHighScorers(problemID) }},
		{"resource efficient users", func() (Result, error) { return s.ResourceEfficientUsers(problemID) }},
		{"top improvers", func() (Result, error) { return s.TopImprovers(problemID) }},
		{"hotspots", func() (Result, error) { return s.SubmissionHotspots(problemID) }},
	}

	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		r, err := step.run()
		if err != nil {
			log.Printf("[STATS] %s for problem %d failed: %v", step.name, problemID, err)
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func (b *ReportBuilder) crossProblemStatistics() ([]Result, error) {
	diversity, err := b.stats.ProblemDiversity()
	if err != nil {
		return nil, fmt.Errorf("problem diversity: %w", err)
	}
	achievers, err := b.stats.HighAchievers()
	if err != nil {
		return nil, fmt.Errorf("high achievers: %w", err)
	}
	spans, err := b.stats.EngagementSpans()
	if err != nil {
		return nil, fmt.Errorf("engagement spans: %w", err)
	}
	return []Result{diversity, achievers, spans}, nil
}

func referencedUsers(report *FullReport) []int64 {
	seen := make(map[int64]bool)
	add := func(id int64) { seen[id] = true }

	visit := func(r Result) {
		switch v := r.(type) {
		case *UserRanking:
			if v.Top != nil {
				add(v.Top.UserID)
			}
			if v.Bottom != nil {
				add(v.Bottom.UserID)
			}
		case *UserList:
			for _, id := range v.UserIDs {
				add(id)
			}
		case *UserRanks:
			for _, u := range v.Users {
				add(u.UserID)
			}
		}
	}
	for _, pr := range report.Problems {
		for _, r := range pr.Results() {
			visit(r)
		}
	}
	for _, r := range report.CrossProblem {
		visit(r)
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
