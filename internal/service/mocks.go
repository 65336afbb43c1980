package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

type MockSystemRepository struct {
	mock.Mock
}

func (m *MockSystemRepository) GetByAccount(ctx context.Context, accountID uint64) (*domain.System, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.System), args.Error(1)
}

func (m *MockSystemRepository) GetByID(ctx context.Context, id int) (*domain.System, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.System), args.Error(1)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, systemID int, name string) (*domain.Member, error) {
	args := m.Called(ctx, systemID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByHID(ctx context.Context, hid string) (*domain.Member, error) {
	args := m.Called(ctx, hid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) CountForSystem(ctx context.Context, systemID int) (int, error) {
	args := m.Called(ctx, systemID)
	return args.Int(0), args.Error(1)
}

func (m *MockMemberRepository) ApplyPatch(ctx context.Context, memberID int, p domain.MemberPatch) (*domain.Member, error) {
	args := m.Called(ctx, memberID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Delete(ctx context.Context, memberID int) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}

// MockTransactor runs fn against Members once the recorded call succeeds.
type MockTransactor struct {
	mock.Mock
	Members repository.MemberRepository
}

func (m *MockTransactor) WithinSystemLock(ctx context.Context, systemID int, fn func(members repository.MemberRepository) error) error {
	args := m.Called(ctx, systemID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Members)
}

type MockAccountCache struct {
	mock.Mock
}

func (m *MockAccountCache) GetSystemID(ctx context.Context, accountID uint64) (int, bool, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockAccountCache) SetSystemID(ctx context.Context, accountID uint64, systemID int) error {
	args := m.Called(ctx, accountID, systemID)
	return args.Error(0)
}

func (m *MockAccountCache) Invalidate(ctx context.Context, accountID uint64) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}
