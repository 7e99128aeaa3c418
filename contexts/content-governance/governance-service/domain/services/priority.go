package services

import (
	"sort"
	"time"

	"kdom/contexts/content-governance/governance-service/domain/entities"
)

const day = 24 * time.Hour

// CalculatePriority derives urgency from time spent waiting. Thresholds are
// inclusive: exactly seven days pending is urgent.
func CalculatePriority(createdAt time.Time, now time.Time) entities.Priority {
	waiting := now.Sub(createdAt)
	switch {
	case waiting >= 7*day:
		return entities.PriorityUrgent
	case waiting >= 3*day:
		return entities.PriorityHigh
	case waiting >= day:
		return entities.PriorityNormal
	default:
		return entities.PriorityLow
	}
}

type QueueEntry struct {
	Item     entities.ContentItem
	Priority entities.Priority
	Waiting  time.Duration
}

// BuildModerationQueue orders pending items oldest-urgent first.
func BuildModerationQueue(items []entities.ContentItem, now time.Time) []QueueEntry {
	queue := make([]QueueEntry, 0, len(items))
	for _, item := range items {
		if !item.IsPending() {
			continue
		}
		queue = append(queue, QueueEntry{
			Item:     item,
			Priority: CalculatePriority(item.CreatedAt, now),
			Waiting:  now.Sub(item.CreatedAt),
		})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if !a.Item.CreatedAt.Equal(b.Item.CreatedAt) {
			return a.Item.CreatedAt.Before(b.Item.CreatedAt)
		}
		return a.Item.ItemID < b.Item.ItemID
	})
	return queue
}

// PriorityBreakdown counts queue entries per priority, including zero buckets.
func PriorityBreakdown(queue []QueueEntry) map[entities.Priority]int {
	counts := make(map[entities.Priority]int, len(entities.AllPriorities))
	for _, priority := range entities.AllPriorities {
		counts[priority] = 0
	}
	for _, entry := range queue {
		counts[entry.Priority]++
	}
	return counts
}
