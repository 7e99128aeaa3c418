package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"kdom/contexts/content-governance/governance-service/ports"
)

// LocalBus is the in-process publisher used when KAFKA_ENABLED is off.
// Like a Kafka consumer group, every group subscribed to a topic receives
// each event once, spread round-robin over that group's members.
type LocalBus struct {
	mu     sync.RWMutex
	topics map[string]map[string]*consumerGroup
	logger *slog.Logger
}

type consumerGroup struct {
	members []chan ports.EventEnvelope
	next    int
}

func NewLocalBus(logger *slog.Logger) *LocalBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalBus{
		topics: make(map[string]map[string]*consumerGroup),
		logger: logger,
	}
}

func (b *LocalBus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	targets := b.pickMembers(topic)
	for group, member := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case member <- event:
		default:
			b.logger.Warn("dropping event for slow consumer group",
				"event", "local_bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", group,
				"event_id", event.EventID,
			)
		}
	}

	b.logger.Debug("event published",
		"event", "local_bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"consumer_groups", len(targets),
	)
	return nil
}

// pickMembers advances each group's cursor and returns one member per group.
func (b *LocalBus) pickMembers(topic string) map[string]chan ports.EventEnvelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	groups := b.topics[topic]
	targets := make(map[string]chan ports.EventEnvelope, len(groups))
	for name, group := range groups {
		if len(group.members) == 0 {
			continue
		}
		targets[name] = group.members[group.next%len(group.members)]
		group.next++
	}
	return targets
}

// Subscribe registers handler as a member of consumerGroup until ctx ends.
func (b *LocalBus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if topic == "" || consumerGroup == "" {
		return errors.New("topic and consumer group are required")
	}
	ch := make(chan ports.EventEnvelope, 128)
	b.addMember(topic, consumerGroup, ch)

	go func() {
		defer b.removeMember(topic, consumerGroup, ch)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "local_bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *LocalBus) addMember(topic string, name string, ch chan ports.EventEnvelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	groups, ok := b.topics[topic]
	if !ok {
		groups = make(map[string]*consumerGroup)
		b.topics[topic] = groups
	}
	group, ok := groups[name]
	if !ok {
		group = &consumerGroup{}
		groups[name] = group
	}
	group.members = append(group.members, ch)
}

func (b *LocalBus) removeMember(topic string, name string, target chan ports.EventEnvelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.topics[topic][name]
	if !ok {
		return
	}
	kept := group.members[:0]
	for _, member := range group.members {
		if member != target {
			kept = append(kept, member)
		}
	}
	group.members = kept
	if len(kept) == 0 {
		delete(b.topics[topic], name)
	}
}
