// Package listing implements the table behaviour shared by list endpoints:
// sort state, free-text search, facet filters and pagination.
package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort fields understood by the list views.
const (
	FieldTitle       = "title"
	FieldName        = "name"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldCategory    = "category"
	FieldType        = "type"
	FieldGenre       = "genre"
	FieldRating      = "rating"
	FieldEmail       = "email"
	FieldRole        = "role"
	FieldCreatedBy   = "createdBy"
	FieldCreatedDate = "createdDate"
)

// SortState is the current column and direction of a table.
type SortState struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort is newest first.
func DefaultSort() SortState {
	return SortState{Field: FieldCreatedDate, Direction: Desc}
}

// Toggle returns the state after the user picks field: the same field flips
// direction, a different field starts ascending.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// ParseSort builds a state from query parameters, falling back to
// DefaultSort when field is empty.
func ParseSort(field, dir string) SortState {
	field = strings.TrimSpace(field)
	if field == "" {
		return DefaultSort()
	}
	if strings.EqualFold(dir, string(Desc)) {
		return SortState{Field: field, Direction: Desc}
	}
	return SortState{Field: field, Direction: Asc}
}

type comparator[T any] func(a, b T) int

// stableSort orders items in place. Equal elements keep their input order
// in both directions.
func stableSort[T any](items []T, dir Direction, cmp comparator[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
}

func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareOptional orders missing values first.
func compareOptional(col *collate.Collator, a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return col.CompareString(*a, *b)
	}
}

// SortContentRequests orders requests in place. Unknown fields sort by
// creation date.
func SortContentRequests(items []models.ContentRequest, s SortState) {
	col := newCollator()
	var cmp comparator[models.ContentRequest]
	switch s.Field {
	case FieldTitle:
		cmp = func(a, b models.ContentRequest) int { return col.CompareString(a.Title, b.Title) }
	case FieldPriority:
		cmp = func(a, b models.ContentRequest) int { return compareInt(a.Priority.Rank(), b.Priority.Rank()) }
	case FieldStatus:
		cmp = func(a, b models.ContentRequest) int { return compareInt(a.Status.Rank(), b.Status.Rank()) }
	case FieldCategory:
		cmp = func(a, b models.ContentRequest) int { return col.CompareString(a.Category, b.Category) }
	case FieldCreatedBy:
		cmp = func(a, b models.ContentRequest) int {
			return col.CompareString(a.Viewer.DisplayName(), b.Viewer.DisplayName())
		}
	default:
		cmp = func(a, b models.ContentRequest) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	stableSort(items, s.Direction, cmp)
}

// SortBugs orders bugs in place.
func SortBugs(items []models.Bug, s SortState) {
	col := newCollator()
	var cmp comparator[models.Bug]
	switch s.Field {
	case FieldTitle:
		cmp = func(a, b models.Bug) int { return col.CompareString(a.Title, b.Title) }
	case FieldPriority:
		cmp = func(a, b models.Bug) int { return compareInt(a.Priority.Rank(), b.Priority.Rank()) }
	case FieldStatus:
		cmp = func(a, b models.Bug) int { return compareInt(a.Status.Rank(), b.Status.Rank()) }
	case FieldCreatedBy:
		cmp = func(a, b models.Bug) int {
			return col.CompareString(a.Reporter.DisplayName(), b.Reporter.DisplayName())
		}
	default:
		cmp = func(a, b models.Bug) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	stableSort(items, s.Direction, cmp)
}

// SortContent orders content in place.
func SortContent(items []models.Content, s SortState) {
	col := newCollator()
	var cmp comparator[models.Content]
	switch s.Field {
	case FieldName, FieldTitle:
		cmp = func(a, b models.Content) int { return col.CompareString(a.Name, b.Name) }
	case FieldType:
		cmp = func(a, b models.Content) int { return col.CompareString(a.Type, b.Type) }
	case FieldGenre:
		cmp = func(a, b models.Content) int { return col.CompareString(a.Genre, b.Genre) }
	case FieldStatus:
		cmp = func(a, b models.Content) int { return compareInt(a.Status.Rank(), b.Status.Rank()) }
	case FieldRating:
		cmp = func(a, b models.Content) int { return compareOptional(col, a.Rating, b.Rating) }
	default:
		cmp = func(a, b models.Content) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	stableSort(items, s.Direction, cmp)
}

// SortUsers orders users in place.
func SortUsers(items []models.User, s SortState) {
	col := newCollator()
	var cmp comparator[models.User]
	switch s.Field {
	case FieldName:
		cmp = func(a, b models.User) int { return col.CompareString(a.Name, b.Name) }
	case FieldEmail:
		cmp = func(a, b models.User) int { return col.CompareString(a.Email, b.Email) }
	case FieldRole:
		cmp = func(a, b models.User) int { return strings.Compare(string(a.Role), string(b.Role)) }
	default:
		cmp = func(a, b models.User) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	stableSort(items, s.Direction, cmp)
}
