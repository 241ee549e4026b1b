package listing

import (
	"strings"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

// search keeps the items for which any field contains query,
// case-insensitively. A blank query returns items unchanged.
func search[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if f != "" && strings.Contains(strings.ToLower(f), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// SearchContentRequests matches title, description, requester name and
// category.
func SearchContentRequests(items []models.ContentRequest, query string) []models.ContentRequest {
	return search(items, query, func(r models.ContentRequest) []string {
		return []string{r.Title, r.Description, r.Viewer.DisplayName(), r.Category}
	})
}

// SearchBugs matches title, description, reporter name and affected
// content name.
func SearchBugs(items []models.Bug, query string) []models.Bug {
	return search(items, query, func(b models.Bug) []string {
		fields := []string{b.Title, b.Description, b.Reporter.DisplayName()}
		if b.AffectedContent != nil {
			fields = append(fields, b.AffectedContent.Name)
		}
		return fields
	})
}

// SearchContent matches name, type and genre.
func SearchContent(items []models.Content, query string) []models.Content {
	return search(items, query, func(c models.Content) []string {
		return []string{c.Name, c.Type, c.Genre}
	})
}

// SearchUsers matches name and email.
func SearchUsers(items []models.User, query string) []models.User {
	return search(items, query, func(u models.User) []string {
		return []string{u.Name, u.Email}
	})
}
