package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

// Watch subscribes to every event under prefix and calls handler until ctx is done.
func Watch(ctx context.Context, url, prefix string, handler func(domain.DocumentEvent)) error {
	conn, err := connect(url, "cto-coach-watcher", Options{})
	if err != nil {
		return err
	}
	defer conn.Close()

	subject := normalizePrefix(prefix) + ".>"
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		event, err := decodeEvent(msg.Data)
		if err != nil {
			slog.Warn("document_event_decode_failed", "subject", msg.Subject, "error", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	if err := conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func decodeEvent(data []byte) (domain.DocumentEvent, error) {
	var event domain.DocumentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.DocumentEvent{}, fmt.Errorf("decode document event: %w", err)
	}
	if event.Type == "" {
		return domain.DocumentEvent{}, fmt.Errorf("decode document event: missing type")
	}
	return event, nil
}
