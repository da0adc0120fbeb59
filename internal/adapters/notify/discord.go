package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

const (
	webhookTimeout = 6 * time.Second
	maxTraceBytes  = 1800 // Discord corta mensajes largos; el final del trace es lo útil
)

// Discord implementa ports.Notifier contra un webhook de Discord.
// Es un sumidero terminal: nunca reintenta y sus propios fallos solo se
// loguean. Sin webhook configurado, cada envío es un no-op logueado.
type Discord struct {
	http       *http.Client
	webhookURL string
}

// NewDiscord crea un notificador contra el webhook dado.
// Un URL vacío es válido: el notificador queda deshabilitado.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		http:       &http.Client{Timeout: webhookTimeout},
		webhookURL: webhookURL,
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Notify publica un mensaje de estado. Los fallos de transporte se loguean
// y se devuelven; el caller los ignora con un warn.
func (d *Discord) Notify(ctx context.Context, message string) error {
	return d.send(ctx, message, false)
}

// NotifyCritical publica una alerta urgente con @here y el contexto del error
// (o el stack actual si err es nil) truncado al final.
func (d *Discord) NotifyCritical(ctx context.Context, title string, err error) error {
	trace := string(debug.Stack())
	if err != nil {
		trace = err.Error() + "\n" + trace
	}
	if len(trace) > maxTraceBytes {
		trace = trace[len(trace)-maxTraceBytes:]
	}
	msg := fmt.Sprintf("🔥 CRITICAL: %s at %s\n```%s```",
		title, time.Now().UTC().Format("2006-01-02 15:04:05Z"), trace)
	return d.send(ctx, msg, true)
}

func (d *Discord) send(ctx context.Context, message string, critical bool) error {
	if d.webhookURL == "" {
		slog.Debug("discord webhook not set; skipping message")
		return nil
	}

	if critical {
		message = "@here\n" + message
	}

	body, err := json.Marshal(webhookPayload{Content: message})
	if err != nil {
		return fmt.Errorf("notify.Discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify.Discord: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		slog.Warn("discord send failed", "err", err)
		return fmt.Errorf("notify.Discord: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("discord non-2xx response", "status", resp.StatusCode, "body", string(b))
		return fmt.Errorf("notify.Discord: status %d", resp.StatusCode)
	}
	return nil
}
