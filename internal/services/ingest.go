package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/kilonova"
)

type PageFetcher interface {
	FetchPage(ctx context.Context, offset int) (*kilonova.Page, error)
	Limit() int
}

type IngestStats struct {
	Pages    int
	Fetched  int
	Inserted int
	Skipped  int
	Offset   int
}

// IngestService copies the remote submission history into the store, resuming
// from the last saved offset.
type IngestService struct {
	fetcher         PageFetcher
	pages           *db.PageRepository
	settings        *db.SettingsRepository
	checkpointEvery int
}

func NewIngestService(queue *db.DBQueue, fetcher PageFetcher, checkpointEvery int) *IngestService {
	if checkpointEvery <= 0 {
		checkpointEvery = 1000
	}
	return &IngestService{
		fetcher:         fetcher,
		pages:           db.NewPageRepository(queue),
		settings:        db.NewSettingsRepository(queue),
		checkpointEvery: checkpointEvery,
	}
}

// Run pages through the source until it returns an empty page or ctx is
// cancelled. Cancellation is a clean stop: the checkpoint is saved and no
// error is returned.
func (s *IngestService) Run(ctx context.Context) (*IngestStats, error) {
	offset, err := s.settings.GetInt(db.SettingIngestOffset, 0)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	stats := &IngestStats{Offset: offset}
	log.Printf("[INGEST] starting at offset %d", offset)

	sinceCheckpoint := 0
	for {
		if ctx.Err() != nil {
			log.Printf("[INGEST] shutdown requested at offset %d", stats.Offset)
			return stats, s.checkpoint(stats.Offset)
		}

		page, err := s.fetcher.FetchPage(ctx, stats.Offset)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[INGEST] shutdown requested at offset %d", stats.Offset)
				return stats, s.checkpoint(stats.Offset)
			}
			if cpErr := s.checkpoint(stats.Offset); cpErr != nil {
				log.Printf("[INGEST] failed to save checkpoint: %v", cpErr)
			}
			return stats, err
		}
		if len(page.Submissions) == 0 {
			break
		}

		batch, skipped, err := convertPage(page)
		if err != nil {
			if cpErr := s.checkpoint(stats.Offset); cpErr != nil {
				log.Printf("[INGEST] failed to save checkpoint: %v", cpErr)
			}
			return stats, err
		}
		inserted, err := s.pages.Save(batch)
		if err != nil {
			return stats, fmt.Errorf("save page at offset %d: %w", stats.Offset, err)
		}

		stats.Pages++
		stats.Fetched += len(page.Submissions)
		stats.Inserted += inserted
		stats.Skipped += skipped
		stats.Offset += s.fetcher.Limit()

		sinceCheckpoint += len(page.Submissions)
		if sinceCheckpoint >= s.checkpointEvery {
			if err := s.checkpoint(stats.Offset); err != nil {
				return stats, err
			}
			log.Printf("[INGEST] checkpoint at offset %d (%d fetched, %d new)", stats.Offset, stats.Fetched, stats.Inserted)
			sinceCheckpoint = 0
		}
	}

	log.Printf("[INGEST] done: %d pages, %d fetched, %d new, %d unfinished skipped",
		stats.Pages, stats.Fetched, stats.Inserted, stats.Skipped)
	return stats, s.checkpoint(stats.Offset)
}

func (s *IngestService) checkpoint(offset int) error {
	if err := s.settings.SetInt(db.SettingIngestOffset, offset); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// convertPage keeps only finished submissions; the rest are still being judged
// and carry no final score.
func convertPage(page *kilonova.Page) (*db.Page, int, error) {
	batch := &db.Page{}
	skipped := 0

	for _, sub := range page.Submissions {
		if !sub.Finished() {
			skipped++
			continue
		}
		m, err := sub.ToModel()
		if err != nil {
			return nil, 0, err
		}
		batch.Submissions = append(batch.Submissions, m)
	}

	for _, u := range page.Users {
		batch.Users = append(batch.Users, u.ToModel())
	}
	sort.Slice(batch.Users, func(i, j int) bool { return batch.Users[i].ID < batch.Users[j].ID })

	for _, p := range page.Problems {
		m, err := p.ToModel()
		if err != nil {
			return nil, 0, err
		}
		batch.Problems = append(batch.Problems, m)
	}
	sort.Slice(batch.Problems, func(i, j int) bool { return batch.Problems[i].ID < batch.Problems[j].ID })

	sort.Slice(batch.Submissions, func(i, j int) bool { return batch.Submissions[i].ID < batch.Submissions[j].ID })
	return batch, skipped, nil
}

var _ PageFetcher = (*kilonova.Client)(nil)
