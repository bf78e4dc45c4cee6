package model

import "fmt"

// Status represents the lifecycle state of an issue in the target tracker.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
	StatusClosed   Status = "closed"
)

var validStatuses = []Status{
	StatusOpen,
	StatusResolved,
	StatusClosed,
}

// ValidateStatus returns an error if s is not a recognized status.
func ValidateStatus(s Status) error {
	for _, v := range validStatuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid status %q: must be one of %v", s, validStatuses)
}

// Priority represents the urgency of an issue.
type Priority string

const (
	PriorityBlocker  Priority = "blocker"
	PriorityCritical Priority = "critical"
	PriorityMajor    Priority = "major"
	PriorityMinor    Priority = "minor"
	PriorityTrivial  Priority = "trivial"
)

var validPriorities = []Priority{
	PriorityBlocker,
	PriorityCritical,
	PriorityMajor,
	PriorityMinor,
	PriorityTrivial,
}

// ValidatePriority returns an error if p is not a recognized priority.
func ValidatePriority(p Priority) error {
	for _, v := range validPriorities {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("invalid priority %q: must be one of %v", p, validPriorities)
}

// Kind classifies an issue as a bug or a task. The source tracker has no
// issue types; the classification is derived from the issue's category.
type Kind string

const (
	KindBug  Kind = "bug"
	KindTask Kind = "task"
)

// DefaultKind is the kind declared in the bundle meta record and assumed
// by the importer for records that omit one.
const DefaultKind = KindTask

var validKinds = []Kind{KindBug, KindTask}

// ValidateKind returns an error if k is not a recognized issue kind.
func ValidateKind(k Kind) error {
	for _, v := range validKinds {
		if k == v {
			return nil
		}
	}
	return fmt.Errorf("invalid issue kind %q: must be one of %v", k, validKinds)
}

// Issue is one migrated issue in the bundle's wire format. Optional
// references are pointers so unresolved ids serialize as null rather than
// being invented or omitted. Timestamps pass through as source strings.
type Issue struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Kind             Kind     `json:"kind"`
	Status           Status   `json:"status"`
	Priority         Priority `json:"priority"`
	Assignee         *string  `json:"assignee"`
	Reporter         *string  `json:"reporter"`
	Component        *string  `json:"component"`
	Milestone        *string  `json:"milestone"`
	Version          *string  `json:"version"`
	Content          string   `json:"content"`
	ContentUpdatedOn *string  `json:"content_updated_on"`
	CreatedOn        *string  `json:"created_on"`
	EditedOn         *string  `json:"edited_on"`
	UpdatedOn        *string  `json:"updated_on"`
	Watchers         []string `json:"watchers"`
	Voters           []string `json:"voters"`
}
