package events

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/ports"
)

type capturePublisher struct {
	topic    string
	envelope ports.EventEnvelope
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topic = topic
	p.envelope = event
	return p.err
}

type staticIDs struct{}

func (staticIDs) NewID(context.Context) (string, error) { return "evt-1", nil }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestBusNotifierPublishesEnvelopeKeyedByRecipient(t *testing.T) {
	publisher := &capturePublisher{}
	notifier := BusNotifier{
		Publisher:   publisher,
		IDGenerator: staticIDs{},
		Clock:       fixedClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	err := notifier.Notify(context.Background(), ports.Notification{
		UserID:      "9",
		Type:        "collaboration_approved",
		Message:     "welcome aboard",
		TargetType:  "content_item",
		TargetID:    "item-1",
		TriggeredBy: "3",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if publisher.topic != DefaultNotificationTopic {
		t.Fatalf("expected default topic, got %s", publisher.topic)
	}
	if publisher.envelope.PartitionKey != "9" || publisher.envelope.EventID != "evt-1" {
		t.Fatalf("unexpected envelope: %+v", publisher.envelope)
	}
	if err := publisher.envelope.Validate(); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	data, err := publisher.envelope.Attributes()
	if err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["type"] != "collaboration_approved" || data["triggered_by"] != "3" {
		t.Fatalf("unexpected payload: %v", data)
	}
}

func TestBusNotifierRejectsMissingRecipient(t *testing.T) {
	notifier := BusNotifier{Publisher: &capturePublisher{}, IDGenerator: staticIDs{}}
	err := notifier.Notify(context.Background(), ports.Notification{Type: "x"})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestBusNotifierReturnsPublishError(t *testing.T) {
	boom := errors.New("broker down")
	notifier := BusNotifier{Publisher: &capturePublisher{err: boom}, IDGenerator: staticIDs{}}
	err := notifier.Notify(context.Background(), ports.Notification{UserID: "1", Type: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}
