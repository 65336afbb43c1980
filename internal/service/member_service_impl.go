package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

type memberService struct {
	memberRepo repository.MemberRepository
	transactor repository.Transactor
	limits     *LimitEnforcer
	log        *zap.Logger
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	transactor repository.Transactor,
	limits *LimitEnforcer,
	log *zap.Logger,
) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		transactor: transactor,
		limits:     limits,
		log:        log,
	}
}

func (s *memberService) GetMember(ctx context.Context, hid string) (*domain.Member, error) {
	member, err := s.memberRepo.GetByHID(ctx, hid)
	if err != nil {
		return nil, memberLookupError(err)
	}
	return member, nil
}

// CreateMember validates the whole payload before touching storage, then counts,
// inserts and applies the remaining fields under the system lock. A failure at
// any step leaves no member behind.
func (s *memberService) CreateMember(ctx context.Context, callerSystemID int, payload []byte) (*domain.Member, error) {
	if callerSystemID == 0 {
		return nil, domain.ErrUnauthenticated
	}
	if err := requireName(payload); err != nil {
		return nil, err
	}

	p, err := parseMemberPatch(payload)
	if err != nil {
		return nil, err
	}
	name := *p.Name.Value
	rest := p
	rest.Name = domain.Optional[string]{}

	var created *domain.Member
	err = s.transactor.WithinSystemLock(ctx, callerSystemID, func(members repository.MemberRepository) error {
		if err := s.limits.CheckCapacity(ctx, members, callerSystemID); err != nil {
			return err
		}

		member, err := members.Create(ctx, callerSystemID, name)
		if err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		if rest.IsEmpty() {
			created = member
			return nil
		}

		created, err = members.ApplyPatch(ctx, member.ID, rest)
		if err != nil {
			return fmt.Errorf("apply member patch: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("System not found.")
		}
		return nil, err
	}

	s.log.Info("member created",
		zap.Int("system_id", callerSystemID),
		zap.String("member", created.HID),
	)
	return created, nil
}

// UpdateMember checks ownership before the payload is parsed.
func (s *memberService) UpdateMember(ctx context.Context, callerSystemID int, hid string, payload []byte) (*domain.Member, error) {
	member, err := s.memberRepo.GetByHID(ctx, hid)
	if err != nil {
		return nil, memberLookupError(err)
	}
	if err := Authorize(callerSystemID, member, ActionEditMember); err != nil {
		return nil, err
	}

	p, err := parseMemberPatch(payload)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return member, nil
	}

	updated, err := s.memberRepo.ApplyPatch(ctx, member.ID, p)
	if err != nil {
		return nil, memberLookupError(err)
	}
	return updated, nil
}

func (s *memberService) DeleteMember(ctx context.Context, callerSystemID int, hid string) error {
	member, err := s.memberRepo.GetByHID(ctx, hid)
	if err != nil {
		return memberLookupError(err)
	}
	if err := Authorize(callerSystemID, member, ActionEditMember); err != nil {
		return err
	}

	if err := s.memberRepo.Delete(ctx, member.ID); err != nil {
		return memberLookupError(err)
	}

	s.log.Info("member deleted",
		zap.Int("system_id", callerSystemID),
		zap.String("member", member.HID),
	)
	return nil
}

func memberLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewNotFoundError("Member not found.")
	}
	return err
}
