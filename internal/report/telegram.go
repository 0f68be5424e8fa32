package report

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-contest-stats/internal/services"
)

// MaxMessageLength stays under Telegram's 4096 character limit.
const MaxMessageLength = 4000

type sendFunc func(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)

type TelegramSink struct {
	send     sendFunc
	chatID   int64
	maxRetry int
}

func NewTelegramSink(b *bot.Bot, chatID int64) *TelegramSink {
	return &TelegramSink{send: b.SendMessage, chatID: chatID, maxRetry: 2}
}

// FormatHTML renders the report as Telegram HTML.
func FormatHTML(report *services.FullReport) string {
	var sb strings.Builder
	sb.WriteString(bold("Submission statistics") + "\n")
	sb.WriteString(italic(fmt.Sprintf("run %s, %s", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04 MST"))) + "\n")

	for _, pr := range report.Problems {
		sb.WriteString("\n" + bold("📘 "+pr.Title()) + "\n")
		for _, res := range pr.Results() {
			writeResultHTML(&sb, res, report.UserLabel)
		}
	}

	if len(report.CrossProblem) > 0 {
		sb.WriteString("\n" + bold("🌐 All problems") + "\n")
		for _, res := range report.CrossProblem {
			writeResultHTML(&sb, res, report.UserLabel)
		}
	}
	return sb.String()
}

func writeResultHTML(sb *strings.Builder, res services.Result, users UserLabeler) {
	sb.WriteString("\n" + bold(res.Title()) + "\n")
	for _, f := range res.Fields() {
		value := FormatValue(f.Value, users)
		if strings.Contains(value, "\n") {
			sb.WriteString(escape(f.Label) + ":\n")
			for _, line := range strings.Split(value, "\n") {
				sb.WriteString("  " + escape(line) + "\n")
			}
			continue
		}
		sb.WriteString(escape(f.Label) + ": " + code(value) + "\n")
	}
}

// SplitMessage cuts text into chunks of at most limit characters, preferring
// line boundaries.
func SplitMessage(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if chunk := strings.TrimRight(current.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lineLen := utf8.RuneCountInString(line)
		if currentLen+lineLen > limit {
			flush()
		}
		for lineLen > limit {
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
			lineLen -= limit
		}
		current.WriteString(line)
		currentLen += lineLen
	}
	flush()
	return chunks
}

func (s *TelegramSink) Send(ctx context.Context, report *services.FullReport) error {
	chunks := SplitMessage(FormatHTML(report), MaxMessageLength)
	for i, chunk := range chunks {
		_, err := s.sendWithRetry(ctx, &bot.SendMessageParams{
			ChatID:    s.chatID,
			Text:      chunk,
			ParseMode: tgmodels.ParseModeHTML,
		})
		if err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	log.Printf("[REPORT] run %s sent to chat %d in %d messages", report.RunID, s.chatID, len(chunks))
	return nil
}

func (s *TelegramSink) sendWithRetry(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	attempts := s.maxRetry
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		msg, err := s.send(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		log.Printf("[REPORT] send to chat %d failed (attempt %d/%d): %v", s.chatID, attempt+1, attempts, err)
	}
	return nil, lastErr
}
