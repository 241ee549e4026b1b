package models

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID    string
	Role      UserRole
	IP        string
	UserAgent string
}

// IsManager reports whether the actor may manage the catalog.
func (a Actor) IsManager() bool {
	return a.Role.IsManager()
}

// Scope returns nil for managers, who see every record, and the actor's id
// for everyone else.
func (a Actor) Scope() *string {
	if a.IsManager() {
		return nil
	}
	id := a.UserID
	return &id
}
