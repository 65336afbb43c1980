package service

import (
	"context"

	"github.com/systemhub/member-api/internal/domain"
)

type SystemService interface {
	GetByAccount(ctx context.Context, accountID uint64) (*domain.System, error)
}
