package listing

import "github.com/noah-isme/media-catalog-api/internal/models"

// Page bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Paginate slices items for page (1-based). A pageSize <= 0 returns every
// item on a single page.
func Paginate[T any](items []T, page, pageSize int) ([]T, *models.Pagination) {
	total := len(items)
	if pageSize <= 0 {
		return items, &models.Pagination{Page: 1, PageSize: total, TotalCount: total}
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	// Compare page counts rather than offsets so huge pages cannot overflow.
	if page-1 >= (total+pageSize-1)/pageSize {
		return []T{}, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return items[start:end], &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
