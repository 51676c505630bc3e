package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tracksuit_watcher/internal/domain"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram delivers approved items through a bot's sendMessage call.
type Telegram struct {
	token      string
	chatID     string
	apiBase    string
	httpClient *http.Client
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:      token,
		chatID:     chatID,
		apiBase:    telegramAPIBase,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

func (t *Telegram) Send(ctx context.Context, item *domain.ItemRecord) error {
	msg := telegramMessage{
		ChatID:    t.chatID,
		Text:      formatTelegramText(item),
		ParseMode: "Markdown",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("sendMessage: %w", domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("sendMessage status %d", resp.StatusCode)
	}
	return nil
}

func formatTelegramText(item *domain.ItemRecord) string {
	return fmt.Sprintf(
		"🎯 *TRACKSUIT FOUND*\n\n"+
			"*%s*\n"+
			"👥 Team: %s\n"+
			"💰 Price: €%s\n"+
			"👕 Size: %s\n"+
			"📦 Condition: %s\n"+
			"🏷️ ID: %s\n"+
			"⏰ Published: %s\n"+
			"🔗 [View listing](%s)",
		item.Title,
		orNA(upper(item.Team)),
		formatPrice(item.Price),
		orNA(deref(item.Size)),
		orNA(deref(item.Condition)),
		item.ListingID,
		formatListedAt(item.ListedAt),
		item.URL,
	)
}
