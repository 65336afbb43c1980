package service

import (
	"fmt"

	"github.com/systemhub/member-api/internal/domain"
)

type Action string

const ActionEditMember Action = "EditMember"

// Authorize grants EditMember only to the member's owning system. A zero
// callerSystemID is an unauthenticated caller and never owns anything.
func Authorize(callerSystemID int, member *domain.Member, action Action) error {
	switch action {
	case ActionEditMember:
		if callerSystemID != 0 && member.SystemID == callerSystemID {
			return nil
		}
		return domain.NewNotOwnerError(member.HID)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}
