package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionUserRoleUpdate = "USER_ROLE_UPDATE"
	AuditActionContentCreate  = "CONTENT_CREATE"
	AuditActionContentStatus  = "CONTENT_STATUS_UPDATE"
	AuditActionContentAssign  = "CONTENT_ASSIGN"
	AuditActionRequestCreate  = "CONTENT_REQUEST_CREATE"
	AuditActionRequestStatus  = "CONTENT_REQUEST_STATUS_UPDATE"
	AuditActionRequestAssign  = "CONTENT_REQUEST_ASSIGN"
	AuditActionBugCreate      = "BUG_CREATE"
	AuditActionBugStatus      = "BUG_STATUS_UPDATE"
	AuditActionBugAssign      = "BUG_ASSIGN"
)

// Audit resources.
const (
	AuditResourceUser           = "user"
	AuditResourceContent        = "content"
	AuditResourceContentRequest = "content_request"
	AuditResourceBug            = "bug"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
