package domain

import "fmt"

// EventKind identifies the trigger event that started an invocation.
// It is a closed set: every call site that switches on an EventKind must
// handle all four values.
type EventKind int

const (
	EventPush EventKind = iota
	EventPullRequest
	EventManualDispatch
	EventSchedule
)

// ParseEventKind maps the event name from the hosting environment to an
// EventKind. Unknown names are a fatal configuration problem.
func ParseEventKind(name string) (EventKind, error) {
	switch name {
	case "push":
		return EventPush, nil
	case "pull_request":
		return EventPullRequest, nil
	case "workflow_dispatch":
		return EventManualDispatch, nil
	case "schedule":
		return EventSchedule, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedEvent, name)
	}
}

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventPush:
		return "push"
	case EventPullRequest:
		return "pull_request"
	case EventManualDispatch:
		return "workflow_dispatch"
	case EventSchedule:
		return "schedule"
	default:
		return "unknown"
	}
}

// Repository identifies the repository an event refers to.
type Repository struct {
	Owner    string
	Name     string
	FullName string
	HTMLURL  string
}

// Commit is a single commit as reported by the event payload or the API.
type Commit struct {
	SHA     string
	Author  string
	Email   string
	Message string
}

// PullRequest carries the change-request metadata needed for commenting.
type PullRequest struct {
	Number   int
	BaseSHA  string
	BaseRef  string
	HeadSHA  string
	HeadRef  string
}

// EventContext is the immutable description of the trigger event. It is
// built once per invocation by the event adapter and never mutated.
type EventContext struct {
	Kind        EventKind
	Repository  Repository
	Commits     []Commit
	PullRequest *PullRequest
}
