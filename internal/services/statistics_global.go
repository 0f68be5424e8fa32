package services

import (
	"github.com/ad/go-contest-stats/internal/db"
)

// Cross-problem statistics read every stored submission.

func (s *StatisticsService) ProblemDiversity() (*UserRanks, error) {
	users, err := collect(s.queue, qProblemDiversity, db.Filter{}, scanUserValue, s.opts.TopN)
	if err != nil {
		return nil, err
	}
	return &UserRanks{Name: "Problem diversity", Label: "Distinct problems attempted", Users: users}, nil
}

func (s *StatisticsService) HighAchievers() (*UserRanks, error) {
	users, err := collect(s.queue, qHighAchievers, db.Filter{}, scanUserValue, s.opts.HighAchieverMin)
	if err != nil {
		return nil, err
	}
	return &UserRanks{Name: "High achievers", Label: "Average score across all problems", Users: users}, nil
}

func (s *StatisticsService) EngagementSpans() (*UserRanks, error) {
	users, err := collect(s.queue, qEngagementSpans, db.Filter{}, scanUserValue, s.opts.TopN)
	if err != nil {
		return nil, err
	}
	return &UserRanks{Name: "Engagement spans", Label: "Minutes between first and last submission", Users: users}, nil
}
