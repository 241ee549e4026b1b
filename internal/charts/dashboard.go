package charts

import "github.com/noah-isme/media-catalog-api/internal/models"

// Totals are the dashboard headline counters.
type Totals struct {
	TotalRequests   int `json:"total_requests"`
	PendingRequests int `json:"pending_requests"`
	TotalContent    int `json:"total_content"`
	FeaturedContent int `json:"featured_content"`
	TotalBugs       int `json:"total_bugs"`
	OpenBugs        int `json:"open_bugs"`
}

// DashboardStats counts the rows visible to the caller.
func DashboardStats(requests []models.ContentRequest, content []models.Content, bugs []models.Bug) Totals {
	t := Totals{
		TotalRequests: len(requests),
		TotalContent:  len(content),
		TotalBugs:     len(bugs),
	}
	for _, r := range requests {
		if r.Status == models.RequestPending {
			t.PendingRequests++
		}
	}
	for _, c := range content {
		if c.Status == models.ContentFeatured {
			t.FeaturedContent++
		}
	}
	for _, b := range bugs {
		if b.Status == models.BugOpen {
			t.OpenBugs++
		}
	}
	return t
}
