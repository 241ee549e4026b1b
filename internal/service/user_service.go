package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/repository"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)
}

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Email    string          `json:"email" validate:"required,email,max=255"`
	Role     models.UserRole `json:"role" validate:"required,oneof=VIEWER CONTENT_MANAGER"`
	Password string          `json:"password" validate:"required,min=6,max=100,strongpassword"`
}

// UpdateUserRoleRequest changes a user's role.
type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=VIEWER CONTENT_MANAGER"`
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	audit     auditRecorder
	cache     viewRevalidator
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, audit auditRecorder, cache viewRevalidator, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger, hashCost: bcrypt.DefaultCost}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, actor models.Actor, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if err := requireManager(actor); err != nil {
		return nil, nil, err
	}
	filter.Search = SanitizeString(filter.Search)
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Managers returns every content manager, for reviewer and assignee pickers.
func (s *UserService) Managers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.repo.ListByRole(ctx, models.RoleContentManager)
	if err != nil {
		return nil, internalError(err, "failed to list content managers")
	}
	out := make([]models.UserSummary, len(users))
	for i, u := range users {
		out[i] = *u.Summary()
	}
	return out, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}
	return user, nil
}

// Create adds a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, actor models.Actor, req CreateUserRequest) (*models.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	req.Name = SanitizeString(req.Name)
	req.Email = SanitizeEmail(req.Email)
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: string(passwordHash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
		return nil, internalError(err, "failed to create user")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUserCreate, models.AuditResourceUser, user.ID, nil,
		map[string]interface{}{"email": user.Email, "role": user.Role})
	revalidate(ctx, s.cache, PathUsers)
	return user, nil
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(ctx context.Context, actor models.Actor, id string, req UpdateUserRoleRequest) (*models.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}
	user, err := s.repo.UpdateRole(ctx, id, req.Role)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to update user role")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUserRoleUpdate, models.AuditResourceUser, id, nil,
		map[string]interface{}{"role": user.Role})
	revalidate(ctx, s.cache, PathUsers, PathDashboard)
	return user, nil
}
