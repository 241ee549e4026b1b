package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/media-catalog-api/internal/middleware"
	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
	"github.com/noah-isme/media-catalog-api/pkg/response"
)

// actorFromContext builds the service actor from the JWT claims. It writes
// a 401 and returns false when the route was not authenticated.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return models.Actor{
		UserID:    claims.UserID,
		Role:      claims.Role,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// listQuery reads the shared q/sort/dir/page/page_size parameters.
func listQuery(c *gin.Context) service.ListQuery {
	q := service.ListQuery{
		Search:  c.Query("q"),
		SortBy:  c.Query("sort"),
		SortDir: c.Query("dir"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		q.PageSize = size
	}
	return q
}

// queryList accepts both repeated (?status=A&status=B) and comma separated
// (?status=A,B) values.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryEnums[T ~string](c *gin.Context, key string) []T {
	values := queryList(c, key)
	if len(values) == 0 {
		return nil
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(strings.ToUpper(v))
	}
	return out
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clonef(appErrors.ErrValidation, "validation failed: %s: invalid date", key)
	}
	return &t, nil
}

func contentRequestFilter(c *gin.Context) (models.ContentRequestFilter, error) {
	filter := models.ContentRequestFilter{
		Statuses:    queryEnums[models.RequestStatus](c, "status"),
		Priorities:  queryEnums[models.Priority](c, "priority"),
		Categories:  queryList(c, "category"),
		ReviewerIDs: queryList(c, "reviewer"),
	}
	var err error
	if filter.CreatedFrom, err = queryDate(c, "from"); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = queryDate(c, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

func bugFilter(c *gin.Context) models.BugFilter {
	return models.BugFilter{
		Statuses:    queryEnums[models.BugStatus](c, "status"),
		Priorities:  queryEnums[models.Priority](c, "priority"),
		AssigneeIDs: queryList(c, "assignee"),
	}
}

func contentFilter(c *gin.Context) models.ContentFilter {
	return models.ContentFilter{
		Statuses: queryEnums[models.ContentStatus](c, "status"),
		Types:    queryList(c, "type"),
		Genres:   queryList(c, "genre"),
	}
}

// respondCached writes data with the cache hit flag and the time spent
// since start in the meta block.
func respondCached(c *gin.Context, data interface{}, hit bool, start time.Time) {
	middleware.SetCacheHit(c, hit)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}
