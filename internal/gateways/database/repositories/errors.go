package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
)

// RepositoryError represents a repository-level error
type RepositoryError struct {
	Operation string
	Entity    string
	Err       error
}

func (re *RepositoryError) Error() string {
	return fmt.Sprintf("repository error during %s for %s: %v", re.Operation, re.Entity, re.Err)
}

func (re *RepositoryError) Unwrap() error {
	return re.Err
}

// NotFoundError represents an entity not found error
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", nfe.Entity, nfe.ID)
}

func (nfe *NotFoundError) Is(target error) bool {
	return target == crafting.ErrRecordNotFound
}

// ConstraintError is a write rejected by a CHECK, UNIQUE or NOT NULL rule.
type ConstraintError struct {
	Operation string
	Entity    string
	Err       error
}

func (ce *ConstraintError) Error() string {
	return fmt.Sprintf("%s on %s violates a constraint: %v", ce.Operation, ce.Entity, ce.Err)
}

func (ce *ConstraintError) Unwrap() error {
	return ce.Err
}

func (ce *ConstraintError) Is(target error) bool {
	return target == crafting.ErrConstraintViolation
}

// ConflictError represents a data conflict error
type ConflictError struct {
	Entity string
	ID     interface{}
	Reason string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("%s with ID %v: %s", ce.Entity, ce.ID, ce.Reason)
}

func (ce *ConflictError) Is(target error) bool {
	return target == crafting.ErrAccountReferenced
}

// HandleErrorWithID standardizes error handling with specific ID
func HandleErrorWithID(operation, entity string, id interface{}, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: entity, ID: id}
	}

	if isConstraintViolation(err) {
		return &ConstraintError{Operation: operation, Entity: entity, Err: err}
	}

	return &RepositoryError{
		Operation: operation,
		Entity:    entity,
		Err:       err,
	}
}

// SQLITE_CONSTRAINT primary result code; extended codes keep it in the low byte.
const sqliteConstraint = 19

func isConstraintViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		// SQLSTATE class 23 is integrity_constraint_violation
		return strings.HasPrefix(pgxErr.Code, "23")
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqliteConstraint
	}
	return false
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
