// Package dbx carries a sqlx transaction through context.Context so repositories
// join the caller's unit of work without knowing about it.
package dbx

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type txKey struct{}

// Executor is what repositories run queries against: the pool or the active tx.
type Executor interface {
	sqlx.ExtContext
}

// TxManager runs functions inside a database transaction.
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
// Nested calls reuse the outer transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin transaction", errx.TypeInternal)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, context.Canceled) {
				logx.WithError(rbErr).Error("transaction rollback failed")
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if cErr := tx.Commit(); cErr != nil {
		err = errx.Wrap(cErr, "failed to commit transaction", errx.TypeInternal)
		return err
	}
	return nil
}

// Ext returns the transaction bound to ctx, or db.
func Ext(ctx context.Context, db *sqlx.DB) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// postgres error classes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation reports a unique constraint failure.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports a foreign key failure, e.g. deleting a referenced row.
func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == codeForeignKeyViolation
}

// Constraint returns the violated constraint name, if any.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// Internal wraps a database failure as an INTERNAL error with the operation name.
func Internal(err error, op string) *errx.Error {
	return errx.Wrap(err, fmt.Sprintf("database error during %s", op), errx.TypeInternal)
}
