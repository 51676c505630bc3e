package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tracksuit_watcher/internal/domain"
)

// Discord delivers approved items to a Discord webhook as an embed.
type Discord struct {
	webhookURL string
	httpClient *http.Client
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *Discord) Name() string {
	return "discord"
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Color       int               `json:"color"`
	Thumbnail   *discordThumbnail `json:"thumbnail,omitempty"`
	Fields      []discordField    `json:"fields"`
	URL         string            `json:"url"`
	Timestamp   string            `json:"timestamp"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (d *Discord) Send(ctx context.Context, item *domain.ItemRecord) error {
	title := item.Title
	if len(title) > 256 {
		title = title[:256]
	}

	embed := discordEmbed{
		Title: title,
		Description: fmt.Sprintf("**Team:** %s\n**Price:** €%s\n**Size:** %s",
			orNA(upper(item.Team)), formatPrice(item.Price), orNA(deref(item.Size))),
		Color: 0x00FF00,
		Fields: []discordField{
			{Name: "Brand", Value: orNA(deref(item.Brand)), Inline: true},
			{Name: "Condition", Value: orNA(deref(item.Condition)), Inline: true},
			{Name: "Item ID", Value: item.ListingID, Inline: true},
			{Name: "Published", Value: formatListedAt(item.ListedAt), Inline: true},
		},
		URL:       item.URL,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if item.ImageURL != nil {
		embed.Thumbnail = &discordThumbnail{URL: *item.ImageURL}
	}

	body, err := json.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("marshal embed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook: %w", domain.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}

func upper(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToUpper(*s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatPrice(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *p)
}

func formatListedAt(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("15:04:05")
}
