package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ad/go-contest-stats/internal/models"
	"github.com/ad/go-contest-stats/internal/services"
)

type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ReportConfig selects what cmd/report computes.
type ReportConfig struct {
	Problems   []int64       `yaml:"problems"`
	Window     WindowConfig  `yaml:"window"`
	BucketSize time.Duration `yaml:"bucketSize"`
	TopN       int           `yaml:"topN"`
	// SkipZeroPrevious defaults to true when omitted.
	SkipZeroPrevious *bool   `yaml:"skipZeroPrevious"`
	HighAchieverMin  float64 `yaml:"highAchieverMin"`
}

// LoadReportConfig reads the YAML file at path; an empty path yields defaults.
func LoadReportConfig(path string) (*ReportConfig, error) {
	var cfg ReportConfig
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse report config: %w", err)
	}
	if _, err := cfg.ReportOptions(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ReportConfig) ReportOptions() (services.ReportOptions, error) {
	opts := services.ReportOptions{
		ProblemIDs: c.Problems,
		BucketSize: c.BucketSize,
	}
	if c.BucketSize < 0 {
		return opts, fmt.Errorf("bucketSize must be positive, got %s", c.BucketSize)
	}

	if c.Window.Start == "" && c.Window.End == "" {
		return opts, nil
	}
	start, err := models.ParseTimestamp(c.Window.Start)
	if err != nil {
		return opts, fmt.Errorf("window start: %w", err)
	}
	end, err := models.ParseTimestamp(c.Window.End)
	if err != nil {
		return opts, fmt.Errorf("window end: %w", err)
	}
	if !end.After(start) {
		return opts, fmt.Errorf("window end %s is not after start %s", c.Window.End, c.Window.Start)
	}
	opts.Window = services.Window{Start: start, End: end}
	return opts, nil
}

func (c *ReportConfig) StatisticsOptions() services.StatisticsOptions {
	opts := services.DefaultStatisticsOptions()
	if c.TopN > 0 {
		opts.TopN = c.TopN
	}
	if c.SkipZeroPrevious != nil {
		opts.Progression.SkipZeroPrevious = *c.SkipZeroPrevious
	}
	if c.HighAchieverMin > 0 {
		opts.HighAchieverMin = c.HighAchieverMin
	}
	return opts
}
