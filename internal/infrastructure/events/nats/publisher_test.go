package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/infrastructure/resilience"
)

func TestPublishDocumentEventUsesTypedSubject(t *testing.T) {
	var (
		gotSubject string
		gotData    []byte
	)
	p := &Publisher{
		prefix: "kb.test",
		publish: func(subject string, data []byte) error {
			gotSubject = subject
			gotData = data
			return nil
		},
	}

	doc := &domain.Document{ID: 4, Title: "Guide", Category: "Architecture", Tags: []string{"api"}}
	if err := p.PublishDocumentEvent(context.Background(), domain.NewDocumentEvent(domain.DocumentCreated, doc)); err != nil {
		t.Fatalf("PublishDocumentEvent() error = %v", err)
	}
	if gotSubject != "kb.test.created" {
		t.Fatalf("unexpected subject %q", gotSubject)
	}

	event, err := decodeEvent(gotData)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if event.DocumentID != 4 || event.Category != "Architecture" {
		t.Fatalf("unexpected payload %+v", event)
	}
}

func TestPublishRetriesDisconnectAndWrapsTemporary(t *testing.T) {
	attempts := 0
	p := &Publisher{
		prefix: DefaultSubjectPrefix,
		publish: func(string, []byte) error {
			attempts++
			return nats.ErrConnectionClosed
		},
		executor: resilience.NewExecutor(resilience.Config{
			RetryMaxAttempts:    2,
			RetryInitialBackoff: time.Millisecond,
			RetryMaxBackoff:     time.Millisecond,
		}),
	}

	err := p.PublishDocumentEvent(context.Background(), domain.DocumentEvent{Type: domain.DocumentDeleted, DocumentID: 1})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestPublishPermanentErrorIsNotTemporary(t *testing.T) {
	p := &Publisher{
		prefix:  DefaultSubjectPrefix,
		publish: func(string, []byte) error { return nats.ErrBadSubject },
	}
	err := p.PublishDocumentEvent(context.Background(), domain.DocumentEvent{Type: domain.DocumentCreated})
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if !errors.Is(err, nats.ErrBadSubject) {
		t.Fatalf("expected wrapped nats error, got %v", err)
	}
}

func TestSubjectDefaultsPrefix(t *testing.T) {
	if got := Subject("", domain.DocumentReclassified); got != "kb.documents.reclassified" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestDecodeEventRejectsMissingType(t *testing.T) {
	raw, _ := json.Marshal(map[string]any{"documentId": 1})
	if _, err := decodeEvent(raw); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNoopPublisher(t *testing.T) {
	if err := (Noop{}).PublishDocumentEvent(context.Background(), domain.DocumentEvent{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
