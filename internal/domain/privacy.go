package domain

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// LookupContext describes who is looking at a resource.
type LookupContext int

const (
	LookupPublic LookupContext = iota
	LookupOwner
)

// ContextFor returns LookupOwner when callerSystemID owns the resource.
// A zero callerSystemID is an anonymous caller.
func ContextFor(callerSystemID, ownerSystemID int) LookupContext {
	if callerSystemID != 0 && callerSystemID == ownerSystemID {
		return LookupOwner
	}
	return LookupPublic
}

func (p Privacy) CanAccess(ctx LookupContext) bool {
	return p != PrivacyPrivate || ctx == LookupOwner
}

func (p Privacy) OrDefault() Privacy {
	if p == "" {
		return PrivacyPublic
	}
	return p
}
