package charts

import (
	"sort"
	"time"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

// DefaultTopContent bounds the top-content list when callers pass topN <= 0.
const DefaultTopContent = 10

// ContentPerformance is one entry of the top-content leaderboard.
type ContentPerformance struct {
	Content        models.ContentSummary `json:"content"`
	Views          int                   `json:"views"`
	WatchTime      int                   `json:"watch_time"`
	CompletionRate float64               `json:"completion_rate"`
}

// ViewershipSummary is the headline viewership rollup.
type ViewershipSummary struct {
	TotalViews            int                  `json:"total_views"`
	TotalWatchTime        int                  `json:"total_watch_time"`
	AverageCompletionRate float64              `json:"average_completion_rate"`
	UniqueViewers         int                  `json:"unique_viewers"`
	TopContent            []ContentPerformance `json:"top_content"`
}

// ViewershipPoint is one day of viewership activity.
type ViewershipPoint struct {
	Date      string `json:"date"`
	Views     int    `json:"views"`
	WatchTime int    `json:"watch_time"`
}

// ViewershipStats rolls metric rows up into totals and a top-content list.
// The average completion rate is a plain mean over rows; per-content
// completion is weighted by views.
func ViewershipStats(metrics []models.ViewershipMetric, topN int) ViewershipSummary {
	if topN <= 0 {
		topN = DefaultTopContent
	}

	summary := ViewershipSummary{TopContent: []ContentPerformance{}}
	viewers := make(map[string]struct{})
	perContent := make(map[string]*ContentPerformance)
	order := make([]string, 0)
	var completionSum float64

	for _, m := range metrics {
		summary.TotalViews += m.Views
		summary.TotalWatchTime += m.WatchTimeMinutes
		completionSum += m.CompletionRate
		viewers[m.UserID] = struct{}{}

		entry, ok := perContent[m.ContentID]
		if !ok {
			content := models.ContentSummary{ID: m.ContentID}
			if m.Content != nil {
				content = *m.Content
			}
			perContent[m.ContentID] = &ContentPerformance{
				Content:        content,
				Views:          m.Views,
				WatchTime:      m.WatchTimeMinutes,
				CompletionRate: m.CompletionRate,
			}
			order = append(order, m.ContentID)
			continue
		}

		total := entry.Views + m.Views
		if total > 0 {
			entry.CompletionRate = (entry.CompletionRate*float64(entry.Views) + m.CompletionRate*float64(m.Views)) / float64(total)
		}
		entry.Views = total
		entry.WatchTime += m.WatchTimeMinutes
	}

	summary.UniqueViewers = len(viewers)
	if len(metrics) > 0 {
		summary.AverageCompletionRate = completionSum / float64(len(metrics))
	}

	sort.SliceStable(order, func(i, j int) bool { return perContent[order[i]].Views > perContent[order[j]].Views })
	if len(order) > topN {
		order = order[:topN]
	}
	for _, id := range order {
		summary.TopContent = append(summary.TopContent, *perContent[id])
	}
	return summary
}

// ViewershipTrends sums views and watch time per UTC day for metrics last
// watched within [now-days, now]. Only days with data appear, oldest first.
func ViewershipTrends(metrics []models.ViewershipMetric, days int, now time.Time) []ViewershipPoint {
	if days <= 0 {
		days = DefaultTrendDays
	}
	start := now.AddDate(0, 0, -days)

	byDate := make(map[string]*ViewershipPoint)
	for _, m := range metrics {
		if m.LastWatchedAt.Before(start) || m.LastWatchedAt.After(now) {
			continue
		}
		key := m.LastWatchedAt.UTC().Format("2006-01-02")
		p, ok := byDate[key]
		if !ok {
			p = &ViewershipPoint{Date: key}
			byDate[key] = p
		}
		p.Views += m.Views
		p.WatchTime += m.WatchTimeMinutes
	}

	out := make([]ViewershipPoint, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
