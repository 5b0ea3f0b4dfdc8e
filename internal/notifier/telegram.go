package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultAPIBase = "https://api.telegram.org"
	// maxMessageLen is Telegram's limit for one sendMessage text.
	maxMessageLen = 4096
)

// Notifier delivers a text message somewhere.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes messages to the log; used when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, text string) error {
	log.Printf("[INFO] notify:\n%s", text)
	return nil
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken   string
	ChatID     string
	MaxRetries int
	client     *resty.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	client := resty.New().
		SetBaseURL(DefaultAPIBase).
		SetTimeout(35 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &TelegramNotifier{
		BotToken:   botToken,
		ChatID:     chatID,
		MaxRetries: 3,
		client:     client,
	}
}

// SetAPIBase points the notifier at a different Bot API host.
func (t *TelegramNotifier) SetAPIBase(base string) {
	t.client.SetBaseURL(strings.TrimRight(base, "/"))
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send sends a message to the configured chat, splitting it when it is
// longer than Telegram allows.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if err := t.sendOne(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramNotifier) sendOne(ctx context.Context, text string) error {
	var out apiResponse
	resp, err := t.client.R().
		ForceContentType("application/json").
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    t.ChatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&out).
		SetError(&out).
		Post("/bot" + t.BotToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(i)) * time.Second
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Notify implements Notifier.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	return t.SendWithRetry(ctx, text, t.MaxRetries)
}

// splitMessage cuts text into chunks of at most limit bytes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			cut := cutPoint(line, limit)
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// cutPoint returns the largest index <= limit that falls on a rune boundary
// and outside an HTML tag.
func cutPoint(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if open := strings.LastIndexByte(s[:cut], '<'); open > 0 && !strings.Contains(s[open:cut], ">") {
		cut = open
	}
	if cut == 0 {
		return limit
	}
	return cut
}
