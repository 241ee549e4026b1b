package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrRoleMismatch is returned when a referenced user lacks the role the
// write requires.
var ErrRoleMismatch = errors.New("referenced user does not have the required role")

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// MissingReferenceError reports a foreign reference that does not exist at
// write time.
type MissingReferenceError struct {
	Entity string
	ID     string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// TransitionError reports a status update rejected by the workflow guard.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
