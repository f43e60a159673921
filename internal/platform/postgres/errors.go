package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taktplan/internal/store"
)

// SQLSTATE codes for the integrity violations the schema can raise.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// Constraint names declared in the migrations. Inline REFERENCES get the
// PostgreSQL default <table>_<column>_fkey.
const (
	usersEmailConstraint     = "users_email_key"
	attachmentTaskConstraint = "attachments_task_id_fkey"
)

// MapError translates a driver error into the store error family.
// The driver error stays in the chain for logging; it must not be sent to
// clients verbatim.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		if pgErr.ConstraintName == usersEmailConstraint {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		// The owning task was deleted between the existence check and the insert.
		if pgErr.ConstraintName == attachmentTaskConstraint {
			return fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		return fmt.Errorf("%w: unknown reference %s: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case checkViolationCode:
		return fmt.Errorf("%w: constraint %s: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: column %s is required: %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
	}
	return err
}

// HasCode reports whether err carries a PostgreSQL error with the given SQLSTATE.
func HasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolation reports a unique constraint violation anywhere in err's chain.
func IsUniqueViolation(err error) bool { return HasCode(err, uniqueViolationCode) }

// IsForeignKeyViolation reports a foreign key violation anywhere in err's chain.
func IsForeignKeyViolation(err error) bool { return HasCode(err, foreignKeyViolationCode) }

// CheckRowsAffected returns notFound (store.ErrNotFound if nil) when an
// UPDATE or DELETE by primary key touched no row.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound == nil {
		return store.ErrNotFound
	}
	return notFound
}
