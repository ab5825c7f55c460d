package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqForeignKeyViolation  = "23503"
	pqCheckViolation       = "23514"
	pqExclusionViolation   = "23P01"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// runInTx runs fn inside a serializable transaction. Without a provider fn runs against the repositories' own pool.
func runInTx(ctx context.Context, provider txProvider, fn func(exec sqlx.ExtContext) error) error {
	if provider == nil {
		return fn(nil)
	}
	tx, err := provider.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		if mapped := mapConstraintError(err, "conflicting change"); mapped != nil {
			return mapped
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit transaction")
	}
	return nil
}

// mapConstraintError turns Postgres integrity and serialization failures into typed errors.
// It returns nil for anything else.
func mapConstraintError(err error, conflictMessage string) *appErrors.Error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case pqUniqueViolation, pqExclusionViolation:
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflictMessage)
	case pqSerializationFailure:
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "concurrent update detected, please retry")
	case pqForeignKeyViolation, pqCheckViolation:
		return appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, pqErr.Message)
	}
	return nil
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func badRequest(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrBadRequest, message)
}

func conflict(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrConflict, message)
}

func notFound(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

// passThrough keeps typed errors and wraps anything else as internal.
func passThrough(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return internalError(err, message)
}
