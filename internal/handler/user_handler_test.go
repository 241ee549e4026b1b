package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type fakeUserSrv struct {
	filter   models.UserFilter
	created  service.CreateUserRequest
	roleID   string
	role     service.UpdateUserRoleRequest
	createEr error
}

func (f *fakeUserSrv) List(_ context.Context, _ models.Actor, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	f.filter = filter
	return []models.User{{ID: "u-1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeUserSrv) Managers(context.Context) ([]models.UserSummary, error) {
	return []models.UserSummary{{ID: "mgr-1", Name: "Goofy"}}, nil
}

func (f *fakeUserSrv) Get(_ context.Context, _ models.Actor, id string) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (f *fakeUserSrv) Create(_ context.Context, _ models.Actor, req service.CreateUserRequest) (*models.User, error) {
	f.created = req
	if f.createEr != nil {
		return nil, f.createEr
	}
	return &models.User{ID: "u-2", Email: req.Email, Role: req.Role}, nil
}

func (f *fakeUserSrv) UpdateRole(_ context.Context, _ models.Actor, id string, req service.UpdateUserRoleRequest) (*models.User, error) {
	f.roleID, f.role = id, req
	return &models.User{ID: id, Role: req.Role}, nil
}

func TestUserHandlerListDefaults(t *testing.T) {
	svc := &fakeUserSrv{}
	handler := NewUserHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/users?role=CONTENT_MANAGER&q=duck&sort=name&dir=desc", nil, managerClaims)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.filter.Page)
	assert.Equal(t, 20, svc.filter.PageSize)
	require.NotNil(t, svc.filter.Role)
	assert.Equal(t, models.RoleContentManager, *svc.filter.Role)
	assert.Equal(t, "duck", svc.filter.Search)
	assert.Equal(t, "name", svc.filter.SortBy)
	assert.Equal(t, "desc", svc.filter.SortOrder)
}

func TestUserHandlerCreateConflict(t *testing.T) {
	svc := &fakeUserSrv{createEr: appErrors.Clone(appErrors.ErrConflict, "email already registered")}
	handler := NewUserHandler(svc)
	body := []byte(`{"name":"Belle","email":"belle@disneyplus.com","role":"VIEWER","password":"Rose#2024"}`)
	c, rec := newTestContext(http.MethodPost, "/users", body, managerClaims)

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "belle@disneyplus.com", svc.created.Email)
}

func TestUserHandlerUpdateRole(t *testing.T) {
	svc := &fakeUserSrv{}
	handler := NewUserHandler(svc)
	c, rec := newTestContext(http.MethodPatch, "/users/u-7/role", []byte(`{"role":"CONTENT_MANAGER"}`), managerClaims)
	c.Params = append(c.Params, ginParam("id", "u-7"))

	handler.UpdateRole(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-7", svc.roleID)
	assert.Equal(t, models.RoleContentManager, svc.role.Role)
}
