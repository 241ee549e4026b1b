package models

// Priority ranks content requests and bugs.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Priorities lists priorities in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() != UnknownRank
}

// Label returns the display name.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return string(p)
	}
}

// UnknownRank sorts unrecognised enum values after every known one.
const UnknownRank = 999

// Rank orders priorities from LOW (1) to CRITICAL (4).
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return UnknownRank
	}
}

// RequestStatus is the lifecycle of a content request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestInReview RequestStatus = "IN_REVIEW"
	RequestApproved RequestStatus = "APPROVED"
	RequestAdded    RequestStatus = "ADDED"
)

// RequestStatuses lists request statuses in workflow order.
var RequestStatuses = []RequestStatus{RequestPending, RequestInReview, RequestApproved, RequestAdded}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	return s.Rank() != UnknownRank
}

// Label returns the display name.
func (s RequestStatus) Label() string {
	switch s {
	case RequestPending:
		return "Pending"
	case RequestInReview:
		return "In Review"
	case RequestApproved:
		return "Approved"
	case RequestAdded:
		return "Added"
	default:
		return string(s)
	}
}

// Rank orders statuses along the workflow.
func (s RequestStatus) Rank() int {
	switch s {
	case RequestPending:
		return 1
	case RequestInReview:
		return 2
	case RequestApproved:
		return 3
	case RequestAdded:
		return 4
	default:
		return UnknownRank
	}
}

// CanTransitionTo reports whether a request may move from s to next.
// Writing the current status again is always allowed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if s == next {
		return next.Valid()
	}
	switch s {
	case RequestPending:
		return next == RequestInReview
	case RequestInReview:
		return next == RequestApproved || next == RequestPending
	case RequestApproved:
		return next == RequestAdded
	default:
		return false
	}
}

// BugStatus is the lifecycle of a bug report.
type BugStatus string

const (
	BugOpen       BugStatus = "OPEN"
	BugInProgress BugStatus = "IN_PROGRESS"
	BugFixed      BugStatus = "FIXED"
	BugVerified   BugStatus = "VERIFIED"
	BugClosed     BugStatus = "CLOSED"
)

// BugStatuses lists bug statuses in workflow order.
var BugStatuses = []BugStatus{BugOpen, BugInProgress, BugFixed, BugVerified, BugClosed}

// Valid reports whether s is a known status.
func (s BugStatus) Valid() bool {
	return s.Rank() != UnknownRank
}

// Label returns the display name.
func (s BugStatus) Label() string {
	switch s {
	case BugOpen:
		return "Open"
	case BugInProgress:
		return "In Progress"
	case BugFixed:
		return "Fixed"
	case BugVerified:
		return "Verified"
	case BugClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// Rank orders statuses along the workflow.
func (s BugStatus) Rank() int {
	switch s {
	case BugOpen:
		return 1
	case BugInProgress:
		return 2
	case BugFixed:
		return 3
	case BugVerified:
		return 4
	case BugClosed:
		return 5
	default:
		return UnknownRank
	}
}

// CanTransitionTo reports whether a bug may move from s to next. Fixed,
// verified and closed bugs may be re-opened.
func (s BugStatus) CanTransitionTo(next BugStatus) bool {
	if s == next {
		return next.Valid()
	}
	switch s {
	case BugOpen:
		return next == BugInProgress
	case BugInProgress:
		return next == BugFixed
	case BugFixed:
		return next == BugVerified || next == BugOpen
	case BugVerified:
		return next == BugClosed || next == BugOpen
	case BugClosed:
		return next == BugOpen
	default:
		return false
	}
}

// ContentStatus is the catalog state of a content item. Transitions are
// unconstrained.
type ContentStatus string

const (
	ContentAvailable ContentStatus = "AVAILABLE"
	ContentFeatured  ContentStatus = "FEATURED"
	ContentArchived  ContentStatus = "ARCHIVED"
	ContentRemoved   ContentStatus = "REMOVED"
)

// ContentStatuses lists content statuses in display order.
var ContentStatuses = []ContentStatus{ContentAvailable, ContentFeatured, ContentArchived, ContentRemoved}

// Valid reports whether s is a known status.
func (s ContentStatus) Valid() bool {
	return s.Rank() != UnknownRank
}

// Label returns the display name.
func (s ContentStatus) Label() string {
	switch s {
	case ContentAvailable:
		return "Available"
	case ContentFeatured:
		return "Featured"
	case ContentArchived:
		return "Archived"
	case ContentRemoved:
		return "Removed"
	default:
		return string(s)
	}
}

// Rank orders content statuses for sorting.
func (s ContentStatus) Rank() int {
	switch s {
	case ContentAvailable:
		return 1
	case ContentFeatured:
		return 2
	case ContentArchived:
		return 3
	case ContentRemoved:
		return 4
	default:
		return UnknownRank
	}
}

// RequestSourcesFor lists the statuses a request may leave to reach next.
func RequestSourcesFor(next RequestStatus) []RequestStatus {
	out := make([]RequestStatus, 0, len(RequestStatuses))
	for _, s := range RequestStatuses {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}

// BugSourcesFor lists the statuses a bug may leave to reach next.
func BugSourcesFor(next BugStatus) []BugStatus {
	out := make([]BugStatus, 0, len(BugStatuses))
	for _, s := range BugStatuses {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}
