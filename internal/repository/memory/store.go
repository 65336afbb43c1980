// Package memory is an in-process implementation of the repository
// interfaces. Writes to one system's members are serialized by a mutex keyed
// by system id, mirroring the row lock the postgres store takes.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

const maxHIDAttempts = 10

type Store struct {
	mu           sync.RWMutex
	nextSystemID int
	nextMemberID int
	systems      map[int]*domain.System
	accounts     map[uint64]int
	members      map[int]*domain.Member
	byHID        map[string]int

	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		systems:  make(map[int]*domain.System),
		accounts: make(map[uint64]int),
		members:  make(map[int]*domain.Member),
		byHID:    make(map[string]int),
		locks:    make(map[int]*sync.Mutex),
	}
}

// AddSystem stores a copy of sys, assigning an id and hid when unset, and links
// the given accounts to it. Account binding is owned upstream; this exists for
// seeding.
func (s *Store) AddSystem(sys domain.System, accountIDs ...uint64) (*domain.System, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sys.ID != 0 {
		if _, exists := s.systems[sys.ID]; exists {
			return nil, fmt.Errorf("system %d already exists", sys.ID)
		}
	}
	for _, accountID := range accountIDs {
		if owner, ok := s.accounts[accountID]; ok && owner != sys.ID {
			return nil, fmt.Errorf("account %d already linked to system %d", accountID, owner)
		}
	}

	if sys.ID == 0 {
		s.nextSystemID++
		sys.ID = s.nextSystemID
	} else if sys.ID > s.nextSystemID {
		s.nextSystemID = sys.ID
	}
	if sys.HID == "" {
		hid, err := domain.NewHID()
		if err != nil {
			return nil, err
		}
		sys.HID = hid
	}
	if sys.Created.IsZero() {
		sys.Created = time.Now().UTC()
	}
	sys.DescriptionPrivacy = sys.DescriptionPrivacy.OrDefault()

	stored := sys
	s.systems[sys.ID] = &stored
	for _, accountID := range accountIDs {
		s.accounts[accountID] = sys.ID
	}

	out := stored
	return &out, nil
}

func (s *Store) GetByAccount(_ context.Context, accountID uint64) (*domain.System, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	systemID, ok := s.accounts[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.systemLocked(systemID)
}

func (s *Store) GetByID(_ context.Context, id int) (*domain.System, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.systemLocked(id)
}

func (s *Store) systemLocked(id int) (*domain.System, error) {
	sys, ok := s.systems[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *sys
	return &out, nil
}

func (s *Store) GetByHID(_ context.Context, hid string) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHID[hid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.members[id].Clone(), nil
}

func (s *Store) CountForSystem(_ context.Context, systemID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.members {
		if m.SystemID == systemID {
			count++
		}
	}
	return count, nil
}

func (s *Store) Create(ctx context.Context, systemID int, name string) (*domain.Member, error) {
	var created *domain.Member
	err := s.WithinSystemLock(ctx, systemID, func(members repository.MemberRepository) error {
		m, err := members.Create(ctx, systemID, name)
		created = m
		return err
	})
	return created, err
}

func (s *Store) ApplyPatch(ctx context.Context, memberID int, p domain.MemberPatch) (*domain.Member, error) {
	systemID, err := s.ownerOf(memberID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Member
	err = s.WithinSystemLock(ctx, systemID, func(members repository.MemberRepository) error {
		m, err := members.ApplyPatch(ctx, memberID, p)
		updated = m
		return err
	})
	return updated, err
}

func (s *Store) Delete(ctx context.Context, memberID int) error {
	systemID, err := s.ownerOf(memberID)
	if err != nil {
		return err
	}

	return s.WithinSystemLock(ctx, systemID, func(members repository.MemberRepository) error {
		return members.Delete(ctx, memberID)
	})
}

func (s *Store) ownerOf(memberID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return m.SystemID, nil
}

func (s *Store) systemLock(systemID int) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[systemID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[systemID] = l
	}
	return l
}

// WithinSystemLock holds the system's mutex for the duration of fn. Writes made
// through the MemberRepository handed to fn are undone if fn returns an error.
func (s *Store) WithinSystemLock(ctx context.Context, systemID int, fn func(members repository.MemberRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, systemID); err != nil {
		return err
	}

	l := s.systemLock(systemID)
	l.Lock()
	defer l.Unlock()

	tx := &lockedMembers{store: s, systemID: systemID}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}
