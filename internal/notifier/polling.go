package notifier

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool             `json:"ok"`
	Result []telegramUpdate `json:"result"`
}

// StartPolling begins long-polling for Telegram commands. Only messages from
// the configured chat are handled. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		updates, err := t.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			sleepCtx(ctx, 5*time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			t.dispatch(ctx, update, handler)
		}
	}
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, offset int) ([]telegramUpdate, error) {
	var out updatesResponse
	resp, err := t.client.R().
		ForceContentType("application/json").
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  strconv.Itoa(offset),
			"timeout": "30",
		}).
		SetResult(&out).
		Get("/bot" + t.BotToken + "/getUpdates")
	if err != nil {
		return nil, err
	}
	if resp.IsError() || !out.OK {
		return nil, &apiError{status: resp.StatusCode(), body: resp.String()}
	}
	return out.Result, nil
}

func (t *TelegramNotifier) dispatch(ctx context.Context, update telegramUpdate, handler CommandHandler) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if t.ChatID != "" && strconv.FormatInt(msg.Chat.ID, 10) != t.ChatID {
		log.Printf("[WARN] ignoring message from chat %d", msg.Chat.ID)
		return
	}
	text := strings.TrimSpace(msg.Text)
	log.Printf("[INFO] received command: %s", text)
	reply := handler(ctx, text)
	if reply == "" {
		return
	}
	if err := t.Send(ctx, reply); err != nil {
		log.Printf("[ERROR] send reply: %v", err)
	}
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return "telegram API error: status " + strconv.Itoa(e.status) + ", body: " + e.body
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
