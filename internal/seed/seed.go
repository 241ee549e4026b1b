// Package seed loads demo fixtures into the catalog database.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

const dateLayout = "2006-01-02"

// Fixture is the YAML seed document. Relations are expressed by user email
// and content name.
type Fixture struct {
	DefaultPassword string         `yaml:"default_password"`
	Users           []User         `yaml:"users"`
	Content         []Content      `yaml:"content"`
	ContentRequests []Request      `yaml:"content_requests"`
	Subscriptions   []Subscription `yaml:"subscriptions"`
	Viewership      []Viewership   `yaml:"viewership"`
}

type User struct {
	Name  string          `yaml:"name"`
	Email string          `yaml:"email"`
	Role  models.UserRole `yaml:"role"`
}

type Content struct {
	Name        string               `yaml:"name"`
	Type        string               `yaml:"type"`
	Genre       string               `yaml:"genre"`
	Status      models.ContentStatus `yaml:"status"`
	ReleaseDate string               `yaml:"release_date"`
	Duration    int                  `yaml:"duration"`
	Rating      string               `yaml:"rating"`
	PosterURL   string               `yaml:"poster_url"`
	Description string               `yaml:"description"`
	AssignedTo  string               `yaml:"assigned_to"`
}

type Request struct {
	Title       string               `yaml:"title"`
	Description string               `yaml:"description"`
	Priority    models.Priority      `yaml:"priority"`
	Category    string               `yaml:"category"`
	Status      models.RequestStatus `yaml:"status"`
	Viewer      string               `yaml:"viewer"`
	ReviewedBy  string               `yaml:"reviewed_by"`
}

type Subscription struct {
	Name       string  `yaml:"name"`
	PlanType   string  `yaml:"plan_type"`
	Price      float64 `yaml:"price"`
	ExpiryDate string  `yaml:"expiry_date"`
	AssignedTo string  `yaml:"assigned_to"`
}

type Viewership struct {
	Content          string  `yaml:"content"`
	User             string  `yaml:"user"`
	Views            int     `yaml:"views"`
	WatchTimeMinutes int     `yaml:"watch_time_minutes"`
	CompletionRate   float64 `yaml:"completion_rate"`
	DaysAgo          int     `yaml:"days_ago"`
}

// Load reads and decodes a fixture file.
func Load(file string) (*Fixture, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read seed fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed fixture: %w", err)
	}
	return &f, nil
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type contentStore interface {
	List(ctx context.Context) ([]models.Content, error)
	Create(ctx context.Context, content *models.Content) error
}

type requestStore interface {
	List(ctx context.Context, viewerID *string) ([]models.ContentRequest, error)
	Create(ctx context.Context, req *models.ContentRequest) error
}

type subscriptionStore interface {
	List(ctx context.Context) ([]models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
}

type viewershipStore interface {
	Upsert(ctx context.Context, m *models.ViewershipMetric) error
}

// Stores groups the repositories the seeder writes through.
type Stores struct {
	Users         userStore
	Content       contentStore
	Requests      requestStore
	Subscriptions subscriptionStore
	Viewership    viewershipStore
}

// Summary counts rows created (or upserted) per entity.
type Summary struct {
	Users           int
	Content         int
	ContentRequests int
	Subscriptions   int
	Viewership      int
}

// Seeder applies a Fixture. Rows that already exist are left untouched, so
// running it twice is safe.
type Seeder struct {
	stores   Stores
	logger   *zap.Logger
	hashCost int
	now      func() time.Time
}

// New constructs a seeder.
func New(stores Stores, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{stores: stores, logger: logger, hashCost: bcrypt.DefaultCost, now: time.Now}
}

// Run seeds users first, then everything that references them.
func (s *Seeder) Run(ctx context.Context, f *Fixture) (Summary, error) {
	var sum Summary

	users, created, err := s.seedUsers(ctx, f)
	if err != nil {
		return sum, err
	}
	sum.Users = created

	content, created, err := s.seedContent(ctx, f.Content, users)
	if err != nil {
		return sum, err
	}
	sum.Content = created

	if sum.ContentRequests, err = s.seedRequests(ctx, f.ContentRequests, users); err != nil {
		return sum, err
	}
	if sum.Subscriptions, err = s.seedSubscriptions(ctx, f.Subscriptions, users); err != nil {
		return sum, err
	}
	if sum.Viewership, err = s.seedViewership(ctx, f.Viewership, users, content); err != nil {
		return sum, err
	}

	s.logger.Info("seed completed",
		zap.Int("users", sum.Users),
		zap.Int("content", sum.Content),
		zap.Int("content_requests", sum.ContentRequests),
		zap.Int("subscriptions", sum.Subscriptions),
		zap.Int("viewership", sum.Viewership),
	)
	return sum, nil
}

// seedUsers returns email -> id for every fixture user.
func (s *Seeder) seedUsers(ctx context.Context, f *Fixture) (map[string]string, int, error) {
	ids := make(map[string]string, len(f.Users))
	var hash string
	created := 0
	for _, u := range f.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		existing, err := s.stores.Users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			ids[email] = existing.ID
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return nil, created, err
		}
		if !u.Role.Valid() {
			return nil, created, fmt.Errorf("user %s: invalid role %q", email, u.Role)
		}
		if hash == "" {
			if f.DefaultPassword == "" {
				return nil, created, errors.New("default_password is required to create users")
			}
			raw, err := bcrypt.GenerateFromPassword([]byte(f.DefaultPassword), s.hashCost)
			if err != nil {
				return nil, created, fmt.Errorf("hash default password: %w", err)
			}
			hash = string(raw)
		}
		user := &models.User{Name: u.Name, Email: email, Role: u.Role, PasswordHash: hash}
		if err := s.stores.Users.Create(ctx, user); err != nil {
			return nil, created, fmt.Errorf("create user %s: %w", email, err)
		}
		ids[email] = user.ID
		created++
	}
	return ids, created, nil
}

// seedContent returns name -> id for every fixture content item.
func (s *Seeder) seedContent(ctx context.Context, items []Content, users map[string]string) (map[string]string, int, error) {
	existing, err := s.stores.Content.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	ids := make(map[string]string, len(existing)+len(items))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	created := 0
	for _, item := range items {
		if _, ok := ids[item.Name]; ok {
			continue
		}
		content := &models.Content{
			Name:        item.Name,
			Type:        item.Type,
			Genre:       item.Genre,
			Status:      item.Status,
			Rating:      optional(item.Rating),
			PosterURL:   optional(item.PosterURL),
			Description: optional(item.Description),
		}
		if item.Duration > 0 {
			d := item.Duration
			content.Duration = &d
		}
		if content.ReleaseDate, err = parseDate(item.ReleaseDate); err != nil {
			return nil, created, fmt.Errorf("content %s: %w", item.Name, err)
		}
		if content.AssignedUserID, err = lookup(users, item.AssignedTo); err != nil {
			return nil, created, fmt.Errorf("content %s: %w", item.Name, err)
		}
		if err := s.stores.Content.Create(ctx, content); err != nil {
			return nil, created, fmt.Errorf("create content %s: %w", item.Name, err)
		}
		ids[item.Name] = content.ID
		created++
	}
	return ids, created, nil
}

func (s *Seeder) seedRequests(ctx context.Context, items []Request, users map[string]string) (int, error) {
	existing, err := s.stores.Requests.List(ctx, nil)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.ViewerID+"|"+r.Title] = struct{}{}
	}

	created := 0
	for _, item := range items {
		viewerID, err := lookup(users, item.Viewer)
		if err != nil || viewerID == nil {
			return created, fmt.Errorf("content request %q: viewer %q not seeded", item.Title, item.Viewer)
		}
		if _, ok := seen[*viewerID+"|"+item.Title]; ok {
			continue
		}
		req := &models.ContentRequest{
			Title:       item.Title,
			Description: item.Description,
			Priority:    item.Priority,
			Category:    item.Category,
			Status:      item.Status,
			ViewerID:    *viewerID,
		}
		if req.ReviewedBy, err = lookup(users, item.ReviewedBy); err != nil {
			return created, fmt.Errorf("content request %q: %w", item.Title, err)
		}
		if err := s.stores.Requests.Create(ctx, req); err != nil {
			return created, fmt.Errorf("create content request %q: %w", item.Title, err)
		}
		created++
	}
	return created, nil
}

func (s *Seeder) seedSubscriptions(ctx context.Context, items []Subscription, users map[string]string) (int, error) {
	existing, err := s.stores.Subscriptions.List(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, sub := range existing {
		seen[subscriptionKey(sub.Name, sub.AssignedUserID)] = struct{}{}
	}

	created := 0
	for _, item := range items {
		assigned, err := lookup(users, item.AssignedTo)
		if err != nil {
			return created, fmt.Errorf("subscription %s: %w", item.Name, err)
		}
		key := subscriptionKey(item.Name, assigned)
		if _, ok := seen[key]; ok {
			continue
		}
		sub := &models.Subscription{Name: item.Name, PlanType: item.PlanType, AssignedUserID: assigned}
		if item.Price > 0 {
			price := item.Price
			sub.Price = &price
		}
		if sub.ExpiryDate, err = parseDate(item.ExpiryDate); err != nil {
			return created, fmt.Errorf("subscription %s: %w", item.Name, err)
		}
		if err := s.stores.Subscriptions.Create(ctx, sub); err != nil {
			return created, fmt.Errorf("create subscription %s: %w", item.Name, err)
		}
		seen[key] = struct{}{}
		created++
	}
	return created, nil
}

func (s *Seeder) seedViewership(ctx context.Context, items []Viewership, users, content map[string]string) (int, error) {
	now := s.now().UTC()
	for i, item := range items {
		userID, err := lookup(users, item.User)
		if err != nil || userID == nil {
			return i, fmt.Errorf("viewership %d: user %q not seeded", i, item.User)
		}
		contentID, ok := content[item.Content]
		if !ok {
			return i, fmt.Errorf("viewership %d: content %q not seeded", i, item.Content)
		}
		metric := &models.ViewershipMetric{
			ContentID:        contentID,
			UserID:           *userID,
			Views:            item.Views,
			WatchTimeMinutes: item.WatchTimeMinutes,
			CompletionRate:   item.CompletionRate,
			LastWatchedAt:    now.AddDate(0, 0, -item.DaysAgo),
		}
		if err := s.stores.Viewership.Upsert(ctx, metric); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func subscriptionKey(name string, userID *string) string {
	if userID == nil {
		return name + "|"
	}
	return name + "|" + *userID
}

// lookup resolves an optional email reference.
func lookup(users map[string]string, email string) (*string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	id, ok := users[email]
	if !ok {
		return nil, fmt.Errorf("unknown user %q", email)
	}
	return &id, nil
}

func optional(v string) *string {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return &v
}

func parseDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	return &t, nil
}
