package service

import (
	"context"
	"sync"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

var (
	manager = models.Actor{UserID: "mgr-1", Role: models.RoleContentManager, IP: "127.0.0.1", UserAgent: "test"}
	viewer  = models.Actor{UserID: "viewer-1", Role: models.RoleViewer}
	other   = models.Actor{UserID: "viewer-2", Role: models.RoleViewer}
)

func strPtr(s string) *string { return &s }

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	err     error
}

func (r *recordingAudit) Create(_ context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, log)
	return r.err
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

type recordingRevalidator struct {
	paths []string
}

func (r *recordingRevalidator) Revalidate(_ context.Context, paths ...string) {
	r.paths = append(r.paths, paths...)
}

type countingRejections struct {
	ops []string
}

func (c *countingRejections) RecordRateLimitRejection(op string) {
	c.ops = append(c.ops, op)
}
