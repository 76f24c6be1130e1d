package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

// Telegram caps per-run messages to avoid flooding a chat; the remainder is
// summarized in one overflow note.
const telegramMaxMessages = 10

var _ Channel = (*TelegramChannel)(nil)

// TelegramChannel pushes brief per-listing messages through the Bot API.
// Always a secondary channel: its verdict never gates mark-notified.
type TelegramChannel struct {
	cfg        config.TelegramConfig
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewTelegramChannel builds the channel from config. Token and chat id come
// through env-expanded config values.
func NewTelegramChannel(cfg config.TelegramConfig, httpClient *http.Client, logger *slog.Logger) *TelegramChannel {
	return &TelegramChannel{
		cfg:        cfg,
		httpClient: httpClient,
		baseURL:    "https://api.telegram.org/bot" + cfg.Token,
		logger:     logger,
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Deliver(ctx context.Context, listings []model.Listing, dryRun bool) bool {
	if !t.cfg.Enabled {
		return true
	}
	if t.cfg.Token == "" || t.cfg.ChatID == "" {
		t.logger.Warn("telegram enabled but token or chat_id missing")
		return false
	}
	if len(listings) == 0 {
		return true
	}
	if dryRun {
		t.logger.Info("dry run, telegram messages not sent", "listings", len(listings))
		return true
	}

	sent := 0
	for _, l := range listings {
		if sent >= telegramMaxMessages {
			break
		}
		text := fmt.Sprintf("%s\n%s · %s\nscore %.0f/100\n%s",
			l.Title, l.Company, l.Location, l.Score, l.URL)
		if err := t.sendMessage(ctx, text); err != nil {
			t.logger.Warn("telegram send failed", "title", l.Title, "error", err)
			continue
		}
		sent++
	}

	if len(listings) > telegramMaxMessages {
		overflow := fmt.Sprintf("…and %d more listings. Check your email for the full digest.",
			len(listings)-telegramMaxMessages)
		if err := t.sendMessage(ctx, overflow); err != nil {
			t.logger.Warn("telegram overflow note failed", "error", err)
		}
	}

	t.logger.Info("telegram notifications sent", "sent", sent, "total", len(listings))
	return true
}

func (t *TelegramChannel) sendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.cfg.ChatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned %d", resp.StatusCode)
	}
	return nil
}
