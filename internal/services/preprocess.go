package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/models"
)

// Preprocessor runs the one-time perfect-score deduplication and records when
// it happened so later runs leave the data alone.
type Preprocessor struct {
	queue    *db.DBQueue
	settings *db.SettingsRepository
	now      func() time.Time
}

func NewPreprocessor(queue *db.DBQueue) *Preprocessor {
	return &Preprocessor{
		queue:    queue,
		settings: db.NewSettingsRepository(queue),
		now:      time.Now,
	}
}

// Applied reports whether deduplication already ran on this store.
func (p *Preprocessor) Applied() (bool, error) {
	_, applied, err := p.appliedAt()
	return applied, err
}

func (p *Preprocessor) appliedAt() (string, bool, error) {
	at, err := p.settings.Get(db.SettingPerfectDedupApplied)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return at, true, nil
}

// Run deduplicates unless a previous run was recorded. It returns the number
// of deleted submissions.
func (p *Preprocessor) Run() (int64, error) {
	at, applied, err := p.appliedAt()
	if err != nil {
		return 0, fmt.Errorf("check dedup marker: %w", err)
	}
	if applied {
		log.Printf("[DEDUP] already applied at %s, skipping", at)
		return 0, nil
	}

	deleted, err := db.DeduplicatePerfectScores(p.queue)
	if err != nil {
		return 0, fmt.Errorf("deduplicate perfect scores: %w", err)
	}
	if err := p.settings.Set(db.SettingPerfectDedupApplied, models.FormatTimestamp(p.now())); err != nil {
		return deleted, fmt.Errorf("save dedup marker: %w", err)
	}
	return deleted, nil
}
