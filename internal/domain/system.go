package domain

import "time"

type System struct {
	ID                 int
	HID                string
	Name               *string
	Description        *string
	Tag                *string
	AvatarURL          *string
	DescriptionPrivacy Privacy
	Created            time.Time
}

// Account is an upstream identity bound to exactly one system.
type Account struct {
	ID       uint64
	SystemID int
}
