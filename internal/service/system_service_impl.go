package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/cache"
	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

type systemService struct {
	systemRepo repository.SystemRepository
	accounts   cache.AccountCache
	log        *zap.Logger
}

func NewSystemService(systemRepo repository.SystemRepository, accounts cache.AccountCache, log *zap.Logger) SystemService {
	return &systemService{
		systemRepo: systemRepo,
		accounts:   accounts,
		log:        log,
	}
}

// GetByAccount resolves the system an account belongs to. Cache failures are
// logged and fall through to the repository.
func (s *systemService) GetByAccount(ctx context.Context, accountID uint64) (*domain.System, error) {
	if system, ok := s.fromCache(ctx, accountID); ok {
		return system, nil
	}

	system, err := s.systemRepo.GetByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("Account not found.")
		}
		return nil, err
	}

	if err := s.accounts.SetSystemID(ctx, accountID, system.ID); err != nil {
		s.log.Warn("failed to cache account", zap.Uint64("account_id", accountID), zap.Error(err))
	}
	return system, nil
}

func (s *systemService) fromCache(ctx context.Context, accountID uint64) (*domain.System, bool) {
	systemID, ok, err := s.accounts.GetSystemID(ctx, accountID)
	if err != nil {
		s.log.Warn("account cache lookup failed", zap.Uint64("account_id", accountID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	system, err := s.systemRepo.GetByID(ctx, systemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// the system was removed after the entry was cached
			if err := s.accounts.Invalidate(ctx, accountID); err != nil {
				s.log.Warn("failed to invalidate account", zap.Uint64("account_id", accountID), zap.Error(err))
			}
		} else {
			s.log.Warn("cached system lookup failed", zap.Int("system_id", systemID), zap.Error(err))
		}
		return nil, false
	}
	return system, true
}
