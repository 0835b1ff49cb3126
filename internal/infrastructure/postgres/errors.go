package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
)

const (
	codeForeignKeyViolation = "23503"
	codeInvalidTextRep      = "22P02"
)

// mapErr converts driver errors into the domain taxonomy.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return errs.Persistence(op, fmt.Errorf("%w: %s", errs.ErrOwnerNotFound, pgErr.ConstraintName))
		case codeInvalidTextRep:
			// malformed uuid in a lookup
			return errs.ErrNotFound
		}
	}
	return errs.Persistence(op, err)
}
