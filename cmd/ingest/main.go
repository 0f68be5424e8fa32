package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ad/go-contest-stats/internal/config"
	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/kilonova"
	"github.com/ad/go-contest-stats/internal/services"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := kilonova.NewClient(cfg.API)
	ingest := services.NewIngestService(dbQueue, client, cfg.CheckpointEvery)

	log.Printf("Fetching %s into %s", cfg.API.BaseURL, cfg.DBPath)
	stats, err := ingest.Run(ctx)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}
	log.Printf("Ingest finished at offset %d: %d submissions stored", stats.Offset, stats.Inserted)
}
