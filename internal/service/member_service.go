package service

import (
	"context"

	"github.com/systemhub/member-api/internal/domain"
)

// MemberService takes raw JSON payloads: an absent field and a null field mean
// different things to the patch engine.
type MemberService interface {
	GetMember(ctx context.Context, hid string) (*domain.Member, error)
	CreateMember(ctx context.Context, callerSystemID int, payload []byte) (*domain.Member, error)
	UpdateMember(ctx context.Context, callerSystemID int, hid string, payload []byte) (*domain.Member, error)
	DeleteMember(ctx context.Context, callerSystemID int, hid string) error
}
