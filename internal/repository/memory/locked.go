package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

// lockedMembers is the MemberRepository seen inside WithinSystemLock. It only
// touches members of the locked system and records how to undo each write.
type lockedMembers struct {
	store    *Store
	systemID int
	undo     []func()
}

func (l *lockedMembers) rollback() {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	for i := len(l.undo) - 1; i >= 0; i-- {
		l.undo[i]()
	}
	l.undo = nil
}

func (l *lockedMembers) Create(_ context.Context, systemID int, name string) (*domain.Member, error) {
	if systemID != l.systemID {
		return nil, fmt.Errorf("system %d is not locked", systemID)
	}

	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var hid string
	for attempt := 0; attempt < maxHIDAttempts; attempt++ {
		candidate, err := domain.NewHID()
		if err != nil {
			return nil, err
		}
		if _, taken := s.byHID[candidate]; !taken {
			hid = candidate
			break
		}
	}
	if hid == "" {
		return nil, fmt.Errorf("no free member hid after %d attempts", maxHIDAttempts)
	}

	s.nextMemberID++
	m := domain.NewMember(systemID, hid, name, time.Now().UTC())
	m.ID = s.nextMemberID
	s.members[m.ID] = m
	s.byHID[hid] = m.ID

	l.undo = append(l.undo, func() {
		delete(s.members, m.ID)
		delete(s.byHID, hid)
	})
	return m.Clone(), nil
}

func (l *lockedMembers) GetByHID(ctx context.Context, hid string) (*domain.Member, error) {
	return l.store.GetByHID(ctx, hid)
}

func (l *lockedMembers) CountForSystem(ctx context.Context, systemID int) (int, error) {
	return l.store.CountForSystem(ctx, systemID)
}

func (l *lockedMembers) ApplyPatch(_ context.Context, memberID int, p domain.MemberPatch) (*domain.Member, error) {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.members[memberID]
	if !ok || current.SystemID != l.systemID {
		return nil, repository.ErrNotFound
	}

	// apply to a copy and swap it in, so readers never see a half-written member
	previous := current
	next := current.Clone()
	next.Apply(p)
	s.members[memberID] = next

	l.undo = append(l.undo, func() {
		s.members[memberID] = previous
	})
	return next.Clone(), nil
}

func (l *lockedMembers) Delete(_ context.Context, memberID int) error {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberID]
	if !ok || m.SystemID != l.systemID {
		return repository.ErrNotFound
	}
	delete(s.members, memberID)
	delete(s.byHID, m.HID)

	l.undo = append(l.undo, func() {
		s.members[memberID] = m
		s.byHID[m.HID] = memberID
	})
	return nil
}
