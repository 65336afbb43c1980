package repository

import (
	"context"

	"github.com/systemhub/member-api/internal/domain"
)

type SystemRepository interface {
	// GetByAccount returns the system linked to the external account, or ErrNotFound.
	GetByAccount(ctx context.Context, accountID uint64) (*domain.System, error)
	GetByID(ctx context.Context, id int) (*domain.System, error)
}
