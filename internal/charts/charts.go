// Package charts turns catalog rows into dashboard series. Every function is
// pure: callers pass the clock and the rows.
package charts

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

// DefaultTrendDays is the trend window used when callers pass days <= 0.
const DefaultTrendDays = 30

// Palette fills, matching the frontend chart CSS variables.
const (
	Chart1 = "hsl(var(--chart-1))"
	Chart2 = "hsl(var(--chart-2))"
	Chart3 = "hsl(var(--chart-3))"
	Chart4 = "hsl(var(--chart-4))"
	Chart5 = "hsl(var(--chart-5))"
)

// Palette is the cyclic fill order for open-ended categories.
var Palette = []string{Chart1, Chart2, Chart3, Chart4, Chart5}

// TrendPoint is one calendar-day bucket.
type TrendPoint struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Slice is one category of a distribution.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Fill  string `json:"fill"`
}

// ContentRequestTrends counts requests per calendar day over the trailing
// days ending on now's day, oldest first. Every day is present, zero or
// not. Requests outside [start of first day, now] are ignored.
func ContentRequestTrends(requests []models.ContentRequest, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		days = DefaultTrendDays
	}
	loc := now.Location()
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(days - 1))

	points := make([]TrendPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		points[i] = TrendPoint{Date: key, Label: day.Format("Jan 02")}
		index[key] = i
	}

	for _, r := range requests {
		created := r.CreatedAt.In(loc)
		if created.Before(first) || created.After(now) {
			continue
		}
		if i, ok := index[created.Format("2006-01-02")]; ok {
			points[i].Count++
		}
	}
	return points
}

// PriorityDistribution tallies requests by priority, dropping empty slices.
func PriorityDistribution(requests []models.ContentRequest) []Slice {
	counts := make(map[models.Priority]int, len(models.Priorities))
	for _, r := range requests {
		counts[r.Priority]++
	}
	return prioritySlices(counts)
}

// StatusDistribution tallies requests by workflow status.
func StatusDistribution(requests []models.ContentRequest) []Slice {
	counts := make(map[models.RequestStatus]int, len(models.RequestStatuses))
	for _, r := range requests {
		counts[r.Status]++
	}

	out := make([]Slice, 0, len(models.RequestStatuses))
	for _, s := range models.RequestStatuses {
		if counts[s] > 0 {
			out = append(out, Slice{Name: s.Label(), Value: counts[s], Fill: requestStatusFill(s)})
		}
	}
	return out
}

// BugPriorityDistribution tallies bugs by priority.
func BugPriorityDistribution(bugs []models.Bug) []Slice {
	counts := make(map[models.Priority]int, len(models.Priorities))
	for _, b := range bugs {
		counts[b.Priority]++
	}
	return prioritySlices(counts)
}

// BugStatusDistribution tallies bugs by workflow status.
func BugStatusDistribution(bugs []models.Bug) []Slice {
	counts := make(map[models.BugStatus]int, len(models.BugStatuses))
	for _, b := range bugs {
		counts[b.Status]++
	}

	out := make([]Slice, 0, len(models.BugStatuses))
	for _, s := range models.BugStatuses {
		if counts[s] > 0 {
			out = append(out, Slice{Name: s.Label(), Value: counts[s], Fill: bugStatusFill(s)})
		}
	}
	return out
}

// ContentTypeDistribution counts content per observed type, largest first.
// Ties keep first-seen order; fills cycle through the palette by rank.
func ContentTypeDistribution(content []models.Content) []Slice {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, c := range content {
		if _, seen := counts[c.Type]; !seen {
			order = append(order, c.Type)
		}
		counts[c.Type]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	out := make([]Slice, len(order))
	for i, t := range order {
		out[i] = Slice{Name: FormatContentType(t), Value: counts[t], Fill: Palette[i%len(Palette)]}
	}
	return out
}

var titleCaser = cases.Title(language.Und)

// FormatContentType renders an enum-like type for display: TV_SERIES →
// "Tv Series".
func FormatContentType(t string) string {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(t, "_", " ")))
}

func prioritySlices(counts map[models.Priority]int) []Slice {
	out := make([]Slice, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		if counts[p] > 0 {
			out = append(out, Slice{Name: p.Label(), Value: counts[p], Fill: priorityFill(p)})
		}
	}
	return out
}

func priorityFill(p models.Priority) string {
	switch p {
	case models.PriorityLow:
		return Chart4
	case models.PriorityMedium:
		return Chart5
	case models.PriorityHigh:
		return Chart3
	case models.PriorityCritical:
		return Chart2
	default:
		return Chart1
	}
}

func requestStatusFill(s models.RequestStatus) string {
	switch s {
	case models.RequestPending:
		return Chart5
	case models.RequestInReview:
		return Chart3
	case models.RequestApproved:
		return Chart1
	case models.RequestAdded:
		return Chart4
	default:
		return Chart2
	}
}

func bugStatusFill(s models.BugStatus) string {
	switch s {
	case models.BugOpen:
		return Chart2
	case models.BugInProgress:
		return Chart5
	case models.BugFixed:
		return Chart3
	case models.BugVerified:
		return Chart1
	case models.BugClosed:
		return Chart4
	default:
		return Chart1
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
