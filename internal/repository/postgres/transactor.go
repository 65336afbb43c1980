package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/systemhub/member-api/internal/repository"
)

type transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *transactor {
	return &transactor{db: db}
}

// WithinSystemLock runs fn in one transaction holding a row lock on the owning
// system, so concurrent callers for the same system are applied one at a time.
func (t *transactor) WithinSystemLock(ctx context.Context, systemID int, fn func(members repository.MemberRepository) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID int
	err = tx.QueryRowContext(ctx, `SELECT id FROM systems WHERE id = $1 FOR UPDATE`, systemID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("lock system %d: %w", systemID, err)
	}

	if err := fn(NewMemberRepositoryWithTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
