package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscord_NotifySendsPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	require.NoError(t, d.Notify(context.Background(), "📈 Universe updated"))
	assert.Equal(t, "📈 Universe updated", got.Content)
}

func TestDiscord_CriticalMentionsHere(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	require.NoError(t, d.NotifyCritical(context.Background(), "trade cycle", assert.AnError))

	assert.Contains(t, got.Content, "@here")
	assert.Contains(t, got.Content, "🔥 CRITICAL: trade cycle")
	assert.Contains(t, got.Content, assert.AnError.Error())
	assert.LessOrEqual(t, len(got.Content), maxTraceBytes+200, "el trace va truncado")
}

func TestDiscord_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	assert.Error(t, d.Notify(context.Background(), "hola"))
}

func TestDiscord_EmptyURLIsNoop(t *testing.T) {
	d := NewDiscord("")
	assert.NoError(t, d.Notify(context.Background(), "nadie escucha"))
	assert.NoError(t, d.NotifyCritical(context.Background(), "tampoco", nil))
}
