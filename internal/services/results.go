package services

import (
	"fmt"
	"time"

	"github.com/ad/go-contest-stats/internal/models"
)

// Field is one labelled value of a statistic. Labels are what report sinks
// key on; nil pointer values mean "not defined for this dataset".
type Field struct {
	Label string
	Value interface{}
}

// Result is implemented by every statistic.
type Result interface {
	Title() string
	Fields() []Field
}

type UserValue struct {
	UserID int64
	Value  float64
}

type UserAverage struct {
	UserID   int64
	AvgScore float64
	Attempts int
}

type BasicCounts struct {
	TotalSubmissions int
	DistinctUsers    int
	MeanScore        *float64
}

func (r *BasicCounts) Title() string { return "Basic counts" }

func (r *BasicCounts) Fields() []Field {
	return []Field{
		{"Total submissions", r.TotalSubmissions},
		{"Distinct users", r.DistinctUsers},
		{"Average score", r.MeanScore},
	}
}

type ScoreDistribution struct {
	PercentPerfect   float64
	PercentAtLeast80 float64
	PercentBelow50   float64
	Median           *float64
	Mode             *int
	StdDev           *float64
}

func (r *ScoreDistribution) Title() string { return "Score distribution" }

func (r *ScoreDistribution) Fields() []Field {
	return []Field{
		{"% with score 100", r.PercentPerfect},
		{"% with score >= 80", r.PercentAtLeast80},
		{"% with score < 50", r.PercentBelow50},
		{"Median score", r.Median},
		{"Most common score", r.Mode},
		{"Score standard deviation", r.StdDev},
	}
}

type UserRanking struct {
	Top    *UserAverage
	Bottom *UserAverage
}

func (r *UserRanking) Title() string { return "Per-user ranking" }

func (r *UserRanking) Fields() []Field {
	return []Field{
		{"Top user", r.Top},
		{"Bottom user", r.Bottom},
	}
}

type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s .. %s", w.Start.Format(models.TimeLayout), w.End.Format(models.TimeLayout))
}

type TemporalWindow struct {
	Window         Window
	Submissions    int
	MostCommonHour *int
	MeanScore      *float64
	SecondsToFirst *int64
}

func (r *TemporalWindow) Title() string { return "Temporal window" }

func (r *TemporalWindow) Fields() []Field {
	return []Field{
		{"Window", r.Window.String()},
		{"Submissions in window", r.Submissions},
		{"Most common submission hour", r.MostCommonHour},
		{"Average score in window", r.MeanScore},
		{"Seconds to first submission", r.SecondsToFirst},
	}
}

type Performance struct {
	MeanTimeMs      *float64
	MinTimeMs       *float64
	MeanMemoryBytes *float64
	MinMemoryBytes  *int64
}

func (r *Performance) Title() string { return "Performance" }

func (r *Performance) Fields() []Field {
	return []Field{
		{"Average execution time (ms)", r.MeanTimeMs},
		{"Minimum execution time (ms)", r.MinTimeMs},
		{"Average memory (bytes)", r.MeanMemoryBytes},
		{"Minimum memory (bytes)", r.MinMemoryBytes},
	}
}

type ResubmissionImprovement struct {
	MeanImprovement *float64
	Improved        int
	NotImproved     int
}

func (r *ResubmissionImprovement) Title() string { return "Resubmission improvement" }

func (r *ResubmissionImprovement) Fields() []Field {
	return []Field{
		{"Average improvement", r.MeanImprovement},
		{"Users who improved", r.Improved},
		{"Users who did not improve", r.NotImproved},
	}
}

type EfficiencyCount struct {
	Count int
}

func (r *EfficiencyCount) Title() string { return "Efficient submissions" }

func (r *EfficiencyCount) Fields() []Field {
	return []Field{{"Score > 80 with below-average time and memory", r.Count}}
}

// ClusterBounds are the score cluster edges; the last bin is closed at 100.
var ClusterBounds = [...]int{0, 20, 40, 60, 80, 100}

type ScoreClusters struct {
	Counts [5]int
}

func (r *ScoreClusters) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

func ClusterLabel(i int) string {
	return fmt.Sprintf("%d-%d", ClusterBounds[i], ClusterBounds[i+1])
}

func (r *ScoreClusters) Title() string { return "Score clusters" }

func (r *ScoreClusters) Fields() []Field {
	fields := make([]Field, len(r.Counts))
	for i, c := range r.Counts {
		fields[i] = Field{ClusterLabel(i), c}
	}
	return fields
}

type Engagement struct {
	MeanAttempts       *float64
	SingleAttemptUsers int
	MultiAttemptUsers  int
}

func (r *Engagement) Title() string { return "Engagement" }

func (r *Engagement) Fields() []Field {
	return []Field{
		{"Average attempts per user", r.MeanAttempts},
		{"Single-attempt users", r.SingleAttemptUsers},
		{"Multi-attempt users", r.MultiAttemptUsers},
	}
}

type FewestAttemptsToPerfect struct {
	Attempts *int
}

func (r *FewestAttemptsToPerfect) Title() string { return "Fewest attempts to 100" }

func (r *FewestAttemptsToPerfect) Fields() []Field {
	return []Field{{"Fewest attempts among users with 100", r.Attempts}}
}

type LateBloomers struct {
	Count int
}

func (r *LateBloomers) Title() string { return "Late bloomers" }

func (r *LateBloomers) Fields() []Field {
	return []Field{{"First score < 50, later >= 80", r.Count}}
}

type Consistency struct {
	Count int
}

func (r *Consistency) Title() string { return "Consistency" }

func (r *Consistency) Fields() []Field {
	return []Field{{"Users below median time and memory", r.Count}}
}

type SubmissionPacing struct {
	MeanSeconds *float64
	Pairs       int
}

func (r *SubmissionPacing) Title() string { return "Submission pacing" }

func (r *SubmissionPacing) Fields() []Field {
	return []Field{
		{"Average seconds between submissions", r.MeanSeconds},
		{"Consecutive pairs", r.Pairs},
	}
}

type CompileErrorBehavior struct {
	CleanUsers        int
	MeanCompileErrors *float64
}

func (r *CompileErrorBehavior) Title() string { return "Compile errors" }

func (r *CompileErrorBehavior) Fields() []Field {
	return []Field{
		{"Users without compile errors", r.CleanUsers},
		{"Average compile errors (users who recovered)", r.MeanCompileErrors},
	}
}

type ScoreProgression struct {
	MeanDelta *float64
	Deltas    int
}

func (r *ScoreProgression) Title() string { return "Score progression" }

func (r *ScoreProgression) Fields() []Field {
	return []Field{
		{"Average score change between submissions", r.MeanDelta},
		{"Score changes counted", r.Deltas},
	}
}

type TimeBucket struct {
	Start time.Time
	Count int
}

type SubmissionsOverTime struct {
	BucketSize time.Duration
	Buckets    []TimeBucket
}

func (r *SubmissionsOverTime) Title() string { return "Submissions over time" }

func (r *SubmissionsOverTime) Fields() []Field {
	fields := make([]Field, len(r.Buckets))
	for i, b := range r.Buckets {
		fields[i] = Field{b.Start.UTC().Format("2006-01-02 15:04"), b.Count}
	}
	return fields
}

type DifficultyIndex struct {
	Value *float64
}

func (r *DifficultyIndex) Title() string { return "Difficulty index" }

func (r *DifficultyIndex) Fields() []Field {
	return []Field{{"Difficulty index (100 - average)", r.Value}}
}

// PersistenceIndex averages the number of perfect submissions per user who
// reached 100. It is not a true attempts-before-success count.
type PersistenceIndex struct {
	Value *float64
}

func (r *PersistenceIndex) Title() string { return "Persistence index" }

func (r *PersistenceIndex) Fields() []Field {
	return []Field{{"Average attempts to first 100", r.Value}}
}

type ScoreResourceRatios struct {
	ScorePerMs   *float64
	ScorePerByte *float64
}

func (r *ScoreResourceRatios) Title() string { return "Score / resource ratios" }

func (r *ScoreResourceRatios) Fields() []Field {
	return []Field{
		{"Average score / average time", r.ScorePerMs},
		{"Average score / average memory", r.ScorePerByte},
	}
}

type FirstAttemptQuality struct {
	MeanScore *float64
	Users     int
}

func (r *FirstAttemptQuality) Title() string { return "First attempt quality" }

func (r *FirstAttemptQuality) Fields() []Field {
	return []Field{
		{"Average first-attempt score", r.MeanScore},
		{"Users", r.Users},
	}
}

type UserList struct {
	Name    string
	Label   string
	UserIDs []int64
}

func (r *UserList) Title() string { return r.Name }

func (r *UserList) Fields() []Field {
	return []Field{{r.Label, r.UserIDs}}
}

type UserRanks struct {
	Name  string
	Label string
	Users []UserValue
}

func (r *UserRanks) Title() string { return r.Name }

func (r *UserRanks) Fields() []Field {
	return []Field{{r.Label, r.Users}}
}

type HourCount struct {
	Hour  int
	Count int
}

type SubmissionHotspots struct {
	Hours []HourCount
}

func (r *SubmissionHotspots) Title() string { return "Submission hotspots" }

func (r *SubmissionHotspots) Fields() []Field {
	fields := make([]Field, len(r.Hours))
	for i, h := range r.Hours {
		fields[i] = Field{fmt.Sprintf("%02d:00-%02d:59", h.Hour, h.Hour), h.Count}
	}
	return fields
}
