package entities

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for queue sorting; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}

var AllPriorities = []Priority{PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow}

type SignalKind string

const (
	SignalPosts    SignalKind = "posts"
	SignalComments SignalKind = "comments"
	SignalFollows  SignalKind = "follows"
	SignalEdits    SignalKind = "edits"
)

var AllSignalKinds = []SignalKind{SignalPosts, SignalComments, SignalFollows, SignalEdits}

func (k SignalKind) Valid() bool {
	switch k {
	case SignalPosts, SignalComments, SignalFollows, SignalEdits:
		return true
	default:
		return false
	}
}
