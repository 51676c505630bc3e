package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracksuit_watcher/internal/domain"
)

func TestDiscord_SendEmbed(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	err := d.Send(context.Background(), approvedItem())
	require.NoError(t, err)

	require.Len(t, got.Embeds, 1)
	embed := got.Embeds[0]
	assert.Equal(t, "Tuta calcio Nike Inter", embed.Title)
	assert.Contains(t, embed.Description, "**Team:** INTER")
	assert.Contains(t, embed.Description, "**Price:** €35.00")
	assert.Contains(t, embed.Description, "**Size:** XL")
	assert.Equal(t, "https://www.vinted.it/items/12345", embed.URL)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "nike", fields["Brand"])
	assert.Equal(t, "12345", fields["Item ID"])
	assert.Equal(t, "N/A", fields["Condition"])
}

func TestDiscord_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewDiscord(srv.URL).Send(context.Background(), approvedItem())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestTelegram_SendMessage(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram("test-token", "chat-1")
	tg.apiBase = srv.URL

	err := tg.Send(context.Background(), approvedItem())
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", path)
	assert.Equal(t, "chat-1", got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.Contains(t, got.Text, "*Tuta calcio Nike Inter*")
	assert.Contains(t, got.Text, "Team: INTER")
	assert.Contains(t, got.Text, "ID: 12345")
	assert.Contains(t, got.Text, "https://www.vinted.it/items/12345")
}

func TestTelegram_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tg := NewTelegram("test-token", "chat-1")
	tg.apiBase = srv.URL

	err := tg.Send(context.Background(), approvedItem())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
