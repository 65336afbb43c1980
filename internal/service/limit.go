package service

import (
	"context"

	"github.com/systemhub/member-api/internal/domain"
)

type MemberCounter interface {
	CountForSystem(ctx context.Context, systemID int) (int, error)
}

// LimitEnforcer caps the number of members a system may own. CheckCapacity must
// run inside the same per-system lock as the create that follows it.
type LimitEnforcer struct {
	max int
}

func NewLimitEnforcer(max int) *LimitEnforcer {
	return &LimitEnforcer{max: max}
}

func (l *LimitEnforcer) Max() int {
	return l.max
}

// CheckCapacity returns a *domain.LimitError once the system holds max members.
func (l *LimitEnforcer) CheckCapacity(ctx context.Context, counter MemberCounter, systemID int) error {
	count, err := counter.CountForSystem(ctx, systemID)
	if err != nil {
		return err
	}
	if count >= l.max {
		return &domain.LimitError{Current: count, Max: l.max}
	}
	return nil
}
