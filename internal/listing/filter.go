package listing

import (
	"strings"
	"time"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

func anyOf[T comparable](set []T, v T) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func anyFold(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// withinDays reports whether t falls on or between the calendar days of
// from and to, in the location of each bound.
func withinDays(t time.Time, from, to *time.Time) bool {
	if from != nil {
		start := startOfDay(*from)
		if t.Before(start) {
			return false
		}
	}
	if to != nil {
		end := startOfDay(*to).AddDate(0, 0, 1)
		if !t.Before(end) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FilterContentRequests applies facet filters then the free-text search.
func FilterContentRequests(items []models.ContentRequest, f models.ContentRequestFilter) []models.ContentRequest {
	out := keep(items, func(r models.ContentRequest) bool {
		if !anyOf(f.Statuses, r.Status) || !anyOf(f.Priorities, r.Priority) || !anyFold(f.Categories, r.Category) {
			return false
		}
		if len(f.ReviewerIDs) > 0 && (r.ReviewedBy == nil || !anyOf(f.ReviewerIDs, *r.ReviewedBy)) {
			return false
		}
		return withinDays(r.CreatedAt, f.CreatedFrom, f.CreatedTo)
	})
	return SearchContentRequests(out, f.Search)
}

// FilterBugs applies facet filters then the free-text search.
func FilterBugs(items []models.Bug, f models.BugFilter) []models.Bug {
	out := keep(items, func(b models.Bug) bool {
		if !anyOf(f.Statuses, b.Status) || !anyOf(f.Priorities, b.Priority) {
			return false
		}
		if len(f.AssigneeIDs) > 0 && (b.AssignedToID == nil || !anyOf(f.AssigneeIDs, *b.AssignedToID)) {
			return false
		}
		return true
	})
	return SearchBugs(out, f.Search)
}

// FilterContent applies facet filters then the free-text search.
func FilterContent(items []models.Content, f models.ContentFilter) []models.Content {
	out := keep(items, func(c models.Content) bool {
		return anyOf(f.Statuses, c.Status) && anyFold(f.Types, c.Type) && anyFold(f.Genres, c.Genre)
	})
	return SearchContent(out, f.Search)
}

// FilterUsers applies the role filter then the free-text search.
func FilterUsers(items []models.User, f models.UserFilter) []models.User {
	out := items
	if f.Role != nil {
		role := *f.Role
		out = keep(items, func(u models.User) bool { return u.Role == role })
	}
	return SearchUsers(out, f.Search)
}
