package services

import (
	"errors"
	"testing"
	"time"

	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
)

func ptr(value string) *string { return &value }

// lookupFrom builds a ParentLookup over a child->parent map; "" marks a root.
func lookupFrom(parents map[string]string) ParentLookup {
	return func(itemID string) (*string, bool, error) {
		parent, ok := parents[itemID]
		if !ok {
			return nil, false, nil
		}
		if parent == "" {
			return nil, true, nil
		}
		return ptr(parent), true, nil
	}
}

func TestValidateParentAssignment(t *testing.T) {
	// a <- b <- c, d is a separate root
	lookup := lookupFrom(map[string]string{"a": "", "b": "a", "c": "b", "d": ""})

	cases := []struct {
		name   string
		item   string
		parent *string
		want   error
	}{
		{name: "root", item: "c", parent: nil, want: nil},
		{name: "self", item: "c", parent: ptr("c"), want: domainerrors.ErrSelfParent},
		{name: "descendant", item: "a", parent: ptr("c"), want: domainerrors.ErrCycleDetected},
		{name: "direct child", item: "b", parent: ptr("c"), want: domainerrors.ErrCycleDetected},
		{name: "other tree", item: "a", parent: ptr("d"), want: nil},
		{name: "sibling move", item: "c", parent: ptr("a"), want: nil},
		{name: "missing parent", item: "a", parent: ptr("zz"), want: domainerrors.ErrParentNotFound},
		{name: "new item", item: "new", parent: ptr("c"), want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateParentAssignment(tc.item, tc.parent, lookup)
			if !errors.Is(err, tc.want) && !(err == nil && tc.want == nil) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateParentAssignmentFailsClosedOnStoredCycle(t *testing.T) {
	lookup := lookupFrom(map[string]string{"x": "y", "y": "x", "n": ""})
	err := ValidateParentAssignment("n", ptr("x"), lookup)
	if !errors.Is(err, domainerrors.ErrCycleDetected) {
		t.Fatalf("expected cycle detection on corrupt data, got %v", err)
	}
}

func TestValidateParentAssignmentTreatsDanglingAncestorAsRoot(t *testing.T) {
	lookup := lookupFrom(map[string]string{"p": "gone", "n": ""})
	if err := ValidateParentAssignment("n", ptr("p"), lookup); err != nil {
		t.Fatalf("expected dangling ancestor to terminate the walk, got %v", err)
	}
}

func TestAncestorChainNearestFirst(t *testing.T) {
	lookup := lookupFrom(map[string]string{"a": "", "b": "a", "c": "b"})
	chain, err := AncestorChain("c", lookup)
	if err != nil {
		t.Fatalf("ancestor chain: %v", err)
	}
	if len(chain) != 2 || chain[0] != "b" || chain[1] != "a" {
		t.Fatalf("unexpected chain %v", chain)
	}

	if _, err := AncestorChain("missing", lookup); !errors.Is(err, domainerrors.ErrItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAncestorChainDetectsCycle(t *testing.T) {
	lookup := lookupFrom(map[string]string{"x": "y", "y": "x"})
	if _, err := AncestorChain("x", lookup); !errors.Is(err, domainerrors.ErrCycleDetected) {
		t.Fatalf("expected cycle, got %v", err)
	}
}

func TestCalculatePriorityBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		waiting time.Duration
		want    entities.Priority
	}{
		{0, entities.PriorityLow},
		{day - time.Second, entities.PriorityLow},
		{day, entities.PriorityNormal},
		{3*day - time.Second, entities.PriorityNormal},
		{3 * day, entities.PriorityHigh},
		{7*day - time.Second, entities.PriorityHigh},
		{7 * day, entities.PriorityUrgent},
		{30 * day, entities.PriorityUrgent},
	}
	for _, tc := range cases {
		if got := CalculatePriority(now.Add(-tc.waiting), now); got != tc.want {
			t.Fatalf("waiting %s: expected %s, got %s", tc.waiting, tc.want, got)
		}
	}
}

func TestBuildModerationQueueOrdersByPriorityThenAge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []entities.ContentItem{
		{ItemID: "fresh", Status: entities.ModerationStatusPending, CreatedAt: now.Add(-time.Hour)},
		{ItemID: "old", Status: entities.ModerationStatusPending, CreatedAt: now.Add(-9 * day)},
		{ItemID: "older", Status: entities.ModerationStatusPending, CreatedAt: now.Add(-10 * day)},
		{ItemID: "done", Status: entities.ModerationStatusApproved, CreatedAt: now.Add(-20 * day)},
		{ItemID: "mid", Status: entities.ModerationStatusPending, CreatedAt: now.Add(-4 * day)},
	}
	queue := BuildModerationQueue(items, now)
	want := []string{"older", "old", "mid", "fresh"}
	if len(queue) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(queue))
	}
	for i, id := range want {
		if queue[i].Item.ItemID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, queue[i].Item.ItemID)
		}
	}

	breakdown := PriorityBreakdown(queue)
	if breakdown[entities.PriorityUrgent] != 2 || breakdown[entities.PriorityNormal] != 0 || breakdown[entities.PriorityLow] != 1 {
		t.Fatalf("unexpected breakdown %v", breakdown)
	}
}

func TestTrendingScoreWeightsAndMonotonicity(t *testing.T) {
	base := ActivityCounts{Posts: 2, Comments: 3, Follows: 1, Edits: 4}
	if got := TrendingScore(base); got != 2*3+3*2+1*2+4*1 {
		t.Fatalf("unexpected score %d", got)
	}

	bumps := []ActivityCounts{
		{Posts: 3, Comments: 3, Follows: 1, Edits: 4},
		{Posts: 2, Comments: 4, Follows: 1, Edits: 4},
		{Posts: 2, Comments: 3, Follows: 2, Edits: 4},
		{Posts: 2, Comments: 3, Follows: 1, Edits: 5},
	}
	for _, bumped := range bumps {
		if TrendingScore(bumped) <= TrendingScore(base) {
			t.Fatalf("score must increase for %+v", bumped)
		}
	}
	if TrendingScore(ActivityCounts{Posts: -5}) != 0 {
		t.Fatalf("negative counts must clamp to zero")
	}
}

func TestRankTrendingTieBreaks(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ranked := RankTrending([]TrendingCandidate{
		{ItemID: "comments", Counts: ActivityCounts{Comments: 3}, CreatedAt: t0},
		{ItemID: "posts", Counts: ActivityCounts{Posts: 2}, CreatedAt: t0.Add(time.Hour)},
		{ItemID: "top", Counts: ActivityCounts{Posts: 5}, CreatedAt: t0},
		{ItemID: "posts-older", Counts: ActivityCounts{Posts: 2}, CreatedAt: t0},
	})
	want := []string{"top", "posts-older", "posts", "comments"}
	for i, id := range want {
		if ranked[i].ItemID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].ItemID)
		}
	}
	if ranked[0].Score != 15 {
		t.Fatalf("expected score filled in, got %d", ranked[0].Score)
	}
}

func TestAverageProcessingTime(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	moderated := func(after time.Duration) *time.Time {
		value := t0.Add(after)
		return &value
	}
	items := []entities.ContentItem{
		{ItemID: "a", CreatedAt: t0, ModeratedAt: moderated(2 * time.Hour)},
		{ItemID: "b", CreatedAt: t0, ModeratedAt: moderated(4 * time.Hour)},
		{ItemID: "c", CreatedAt: t0},
	}
	if got := AverageProcessingTime(items); got != 3*time.Hour {
		t.Fatalf("expected 3h, got %s", got)
	}
	if got := AverageProcessingTime(nil); got != 0 {
		t.Fatalf("expected zero for empty input, got %s", got)
	}
}

func TestTallyModeratorActivity(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	entry := func(actor string, action entities.AuditAction, age time.Duration) entities.AuditEntry {
		return entities.AuditEntry{ActorID: ptr(actor), Action: action, CreatedAt: now.Add(-age)}
	}
	entries := []entities.AuditEntry{
		entry("m1", entities.AuditActionApprove, time.Hour),
		entry("m1", entities.AuditActionReject, time.Hour),
		entry("m2", entities.AuditActionApprove, time.Hour),
		entry("m2", entities.AuditActionApprove, 40*day),
		entry("m3", entities.AuditActionCreate, time.Hour),
		{Action: entities.AuditActionApprove, CreatedAt: now},
	}
	tallies := TallyModeratorActivity(entries, now.Add(-30*day), 0)
	if len(tallies) != 2 {
		t.Fatalf("expected two moderators, got %+v", tallies)
	}
	if tallies[0].ModeratorID != "m1" || tallies[0].Approved != 1 || tallies[0].Rejected != 1 {
		t.Fatalf("unexpected leader %+v", tallies[0])
	}
	if tallies[1].Total != 1 {
		t.Fatalf("old entries must be excluded, got %+v", tallies[1])
	}
	if limited := TallyModeratorActivity(entries, now.Add(-30*day), 1); len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		action  Action
		subject Subject
		allowed bool
	}{
		{ActionModerate, Subject{Role: entities.RoleUser}, false},
		{ActionModerate, Subject{Role: entities.RoleModerator}, true},
		{ActionForceDelete, Subject{Role: entities.RoleModerator}, false},
		{ActionForceDelete, Subject{Role: entities.RoleAdmin}, true},
		{ActionReviewCollaboration, Subject{Role: entities.RoleAdmin}, false},
		{ActionReviewCollaboration, Subject{Role: entities.RoleUser, IsOwner: true}, true},
		{ActionEditMetadata, Subject{Role: entities.RoleUser, IsCollaborator: true}, true},
		{ActionEditMetadata, Subject{Role: entities.RoleModerator}, false},
		{ActionEditMetadata, Subject{Role: entities.RoleAdmin}, true},
		{Action("unknown"), Subject{Role: entities.RoleAdmin}, false},
	}
	for _, tc := range cases {
		if got := Allow(tc.action, tc.subject); got != tc.allowed {
			t.Fatalf("%s %+v: expected %v, got %v", tc.action, tc.subject, tc.allowed, got)
		}
	}

	if err := Authorize(ActionForceDelete, Subject{Role: entities.RoleUser}); !errors.Is(err, domainerrors.ErrAdminRequired) {
		t.Fatalf("expected admin required, got %v", err)
	}
	if err := Authorize(Action("unknown"), Subject{}); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected generic unauthorized, got %v", err)
	}
}
