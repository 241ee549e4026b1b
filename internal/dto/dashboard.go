package dto

import (
	"time"

	"github.com/noah-isme/media-catalog-api/internal/charts"
	"github.com/noah-isme/media-catalog-api/internal/models"
)

// DashboardStatsResponse is the headline counter block plus the most recent
// requests visible to the caller.
type DashboardStatsResponse struct {
	Totals         charts.Totals           `json:"totals"`
	RecentRequests []models.ContentRequest `json:"recent_requests"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// DashboardChartsResponse carries every dashboard chart series.
type DashboardChartsResponse struct {
	RequestTrends        []charts.TrendPoint `json:"request_trends"`
	PriorityDistribution []charts.Slice      `json:"priority_distribution"`
	StatusDistribution   []charts.Slice      `json:"status_distribution"`
	ContentTypes         []charts.Slice      `json:"content_types"`
	BugStatus            []charts.Slice      `json:"bug_status"`
	BugPriority          []charts.Slice      `json:"bug_priority"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// ViewershipTrendsResponse wraps the daily viewership series.
type ViewershipTrendsResponse struct {
	Days        int                      `json:"days"`
	Points      []charts.ViewershipPoint `json:"points"`
	GeneratedAt time.Time                `json:"generated_at"`
}
