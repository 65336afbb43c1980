package repository

import (
	"context"

	"github.com/systemhub/member-api/internal/domain"
)

type MemberRepository interface {
	// Create inserts a member with a fresh id and public id; optional fields start unset.
	Create(ctx context.Context, systemID int, name string) (*domain.Member, error)
	GetByHID(ctx context.Context, hid string) (*domain.Member, error)
	CountForSystem(ctx context.Context, systemID int) (int, error)
	// ApplyPatch writes every set field of p or none of them.
	ApplyPatch(ctx context.Context, memberID int, p domain.MemberPatch) (*domain.Member, error)
	Delete(ctx context.Context, memberID int) error
}

// Transactor serializes work per owning system. fn runs with exclusive access
// to the system's member set; an error from fn discards everything it wrote.
type Transactor interface {
	WithinSystemLock(ctx context.Context, systemID int, fn func(members MemberRepository) error) error
}
