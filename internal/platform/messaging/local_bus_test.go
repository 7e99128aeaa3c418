package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"kdom/contexts/content-governance/governance-service/ports"
)

func collect(t *testing.T, ch <-chan string, want int) []string {
	t.Helper()
	var got []string
	deadline := time.After(2 * time.Second)
	for len(got) < want {
		select {
		case value := <-ch:
			got = append(got, value)
		case <-deadline:
			t.Fatalf("timed out after %d of %d deliveries", len(got), want)
		}
	}
	return got
}

func TestLocalBusDeliversOncePerConsumerGroup(t *testing.T) {
	bus := NewLocalBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries := make(chan string, 16)
	subscribe := func(group string, member string) {
		err := bus.Subscribe(ctx, "kdom.governance.events", group, func(_ context.Context, event ports.EventEnvelope) error {
			deliveries <- group + "/" + member + "/" + event.EventID
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}
	subscribe("notifications", "a")
	subscribe("notifications", "b")
	subscribe("search-indexer", "a")

	for _, id := range []string{"evt-1", "evt-2"} {
		if err := bus.Publish(ctx, "kdom.governance.events", ports.EventEnvelope{EventID: id, EventType: "kdom.item.approved"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	got := collect(t, deliveries, 4)
	perGroup := map[string]int{}
	members := map[string]bool{}
	for _, delivery := range got {
		switch delivery {
		case "notifications/a/evt-1", "notifications/b/evt-1", "notifications/a/evt-2", "notifications/b/evt-2":
			perGroup["notifications"]++
			members[delivery[:len("notifications/a")]] = true
		case "search-indexer/a/evt-1", "search-indexer/a/evt-2":
			perGroup["search-indexer"]++
		default:
			t.Fatalf("unexpected delivery %s", delivery)
		}
	}
	if perGroup["notifications"] != 2 || perGroup["search-indexer"] != 2 {
		t.Fatalf("expected each group to see both events once, got %v", perGroup)
	}
	if len(members) != 2 {
		t.Fatalf("expected round robin across notification members, got %v", members)
	}
}

func TestLocalBusUnsubscribesOnCancel(t *testing.T) {
	bus := NewLocalBus(nil)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	calls := 0
	if err := bus.Subscribe(ctx, "topic", "group", func(context.Context, ports.EventEnvelope) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		bus.mu.RLock()
		_, present := bus.topics["topic"]["group"]
		bus.mu.RUnlock()
		if !present {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber was not removed after cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := bus.Publish(context.Background(), "topic", ports.EventEnvelope{EventID: "late"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("expected no deliveries after cancel, got %d", calls)
	}
}

func TestLocalBusRejectsAnonymousSubscription(t *testing.T) {
	bus := NewLocalBus(nil)
	err := bus.Subscribe(context.Background(), "topic", "", func(context.Context, ports.EventEnvelope) error { return nil })
	if err == nil {
		t.Fatalf("expected error for missing consumer group")
	}
}
