package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/go-contest-stats/internal/config"
	"github.com/ad/go-contest-stats/internal/db"
	"github.com/ad/go-contest-stats/internal/report"
	"github.com/ad/go-contest-stats/internal/services"
	"github.com/go-telegram/bot"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	reportCfg, err := config.LoadReportConfig(cfg.ReportConfig)
	if err != nil {
		log.Fatalf("Invalid report config: %v", err)
	}
	opts, err := reportCfg.ReportOptions()
	if err != nil {
		log.Fatalf("Invalid report config: %v", err)
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

	if _, err := services.NewPreprocessor(dbQueue).Run(); err != nil {
		log.Fatalf("Preprocessing failed: %v", err)
	}

	stats := services.NewStatisticsServiceWithOptions(dbQueue, reportCfg.StatisticsOptions())
	builder := services.NewReportBuilder(dbQueue, stats)

	full, err := builder.BuildFullReport(opts)
	if err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}

	if err := report.NewTextRenderer(os.Stdout).Render(full); err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}

	if !cfg.TelegramEnabled() {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	b, err := bot.New(cfg.BotToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	if err := report.NewTelegramSink(b, cfg.ReportChatID).Send(ctx, full); err != nil {
		log.Fatalf("Failed to send report: %v", err)
	}
}
