package services

import (
	"sort"
	"time"

	"kdom/contexts/content-governance/governance-service/domain/entities"
)

const (
	postWeight    = 3
	commentWeight = 2
	followWeight  = 2
	editWeight    = 1
)

// ActivityCounts are the trailing-window signal counts for one item.
type ActivityCounts struct {
	Posts    int
	Comments int
	Follows  int
	Edits    int
}

// TrendingScore is monotonically non-decreasing in every count.
func TrendingScore(counts ActivityCounts) int {
	return postWeight*clampCount(counts.Posts) +
		commentWeight*clampCount(counts.Comments) +
		followWeight*clampCount(counts.Follows) +
		editWeight*clampCount(counts.Edits)
}

type TrendingCandidate struct {
	ItemID    string
	Title     string
	Counts    ActivityCounts
	CreatedAt time.Time
	Score     int
}

// RankTrending scores and sorts candidates: score desc, posts desc, createdAt asc.
func RankTrending(candidates []TrendingCandidate) []TrendingCandidate {
	ranked := make([]TrendingCandidate, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].Score = TrendingScore(ranked[i].Counts)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Counts.Posts != b.Counts.Posts {
			return a.Counts.Posts > b.Counts.Posts
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ItemID < b.ItemID
	})
	return ranked
}

// AverageProcessingTime is the mean of moderatedAt-createdAt over moderated
// items. It returns zero when no item qualifies.
func AverageProcessingTime(items []entities.ContentItem) time.Duration {
	var total time.Duration
	count := 0
	for _, item := range items {
		if item.ModeratedAt == nil {
			continue
		}
		elapsed := item.ModeratedAt.Sub(item.CreatedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		total += elapsed
		count++
	}
	if count == 0 {
		return 0
	}
	return total / time.Duration(count)
}

type ModeratorTally struct {
	ModeratorID string
	Approved    int
	Rejected    int
	Total       int
}

// TallyModeratorActivity counts approve/reject entries at or after since and
// returns the top limit moderators by total. limit <= 0 returns everyone.
func TallyModeratorActivity(entries []entities.AuditEntry, since time.Time, limit int) []ModeratorTally {
	byModerator := make(map[string]*ModeratorTally)
	for _, entry := range entries {
		if entry.ActorID == nil || entry.CreatedAt.Before(since) {
			continue
		}
		if !entities.IsModerationAction(entry.Action) {
			continue
		}
		tally, ok := byModerator[*entry.ActorID]
		if !ok {
			tally = &ModeratorTally{ModeratorID: *entry.ActorID}
			byModerator[*entry.ActorID] = tally
		}
		if entry.Action == entities.AuditActionApprove {
			tally.Approved++
		} else {
			tally.Rejected++
		}
		tally.Total++
	}

	out := make([]ModeratorTally, 0, len(byModerator))
	for _, tally := range byModerator {
		out = append(out, *tally)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].ModeratorID < out[j].ModeratorID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func clampCount(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
