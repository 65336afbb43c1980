package domain

import "time"

type ProxyTag struct {
	Prefix *string `json:"prefix"`
	Suffix *string `json:"suffix"`
}

type Member struct {
	ID                 int
	HID                string
	SystemID           int
	Name               string
	DisplayName        *string
	Description        *string
	Pronouns           *string
	Color              *string
	AvatarURL          *string
	Birthday           *time.Time
	ProxyTags          []ProxyTag
	KeepProxy          bool
	Visibility         Privacy
	DescriptionPrivacy Privacy
	PronounPrivacy     Privacy
	BirthdayPrivacy    Privacy
	Created            time.Time
}

// NewMember returns a member with every optional field in its unset state.
func NewMember(systemID int, hid, name string, created time.Time) *Member {
	return &Member{
		HID:                hid,
		SystemID:           systemID,
		Name:               name,
		ProxyTags:          []ProxyTag{},
		Visibility:         PrivacyPublic,
		DescriptionPrivacy: PrivacyPublic,
		PronounPrivacy:     PrivacyPublic,
		BirthdayPrivacy:    PrivacyPublic,
		Created:            created,
	}
}

// Optional is one entry of a sparse patch. Set with a nil Value means "clear".
type Optional[T any] struct {
	Set   bool
	Value *T
}

func SetTo[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Cleared[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// MemberPatch is a validated partial update. Owner and public id are not patchable.
type MemberPatch struct {
	Name               Optional[string]
	DisplayName        Optional[string]
	Description        Optional[string]
	Pronouns           Optional[string]
	Color              Optional[string]
	AvatarURL          Optional[string]
	Birthday           Optional[time.Time]
	ProxyTags          Optional[[]ProxyTag]
	KeepProxy          Optional[bool]
	Visibility         Optional[Privacy]
	DescriptionPrivacy Optional[Privacy]
	PronounPrivacy     Optional[Privacy]
	BirthdayPrivacy    Optional[Privacy]
}

func (p MemberPatch) IsEmpty() bool {
	return !p.Name.Set && !p.DisplayName.Set && !p.Description.Set && !p.Pronouns.Set &&
		!p.Color.Set && !p.AvatarURL.Set && !p.Birthday.Set && !p.ProxyTags.Set &&
		!p.KeepProxy.Set && !p.Visibility.Set && !p.DescriptionPrivacy.Set &&
		!p.PronounPrivacy.Set && !p.BirthdayPrivacy.Set
}

// Apply writes every set field of p onto m.
func (m *Member) Apply(p MemberPatch) {
	if p.Name.Set && p.Name.Value != nil {
		m.Name = *p.Name.Value
	}
	applyPtr(&m.DisplayName, p.DisplayName)
	applyPtr(&m.Description, p.Description)
	applyPtr(&m.Pronouns, p.Pronouns)
	applyPtr(&m.Color, p.Color)
	applyPtr(&m.AvatarURL, p.AvatarURL)
	applyPtr(&m.Birthday, p.Birthday)
	if p.ProxyTags.Set {
		m.ProxyTags = []ProxyTag{}
		if p.ProxyTags.Value != nil {
			m.ProxyTags = append(m.ProxyTags, *p.ProxyTags.Value...)
		}
	}
	if p.KeepProxy.Set && p.KeepProxy.Value != nil {
		m.KeepProxy = *p.KeepProxy.Value
	}
	applyPrivacy(&m.Visibility, p.Visibility)
	applyPrivacy(&m.DescriptionPrivacy, p.DescriptionPrivacy)
	applyPrivacy(&m.PronounPrivacy, p.PronounPrivacy)
	applyPrivacy(&m.BirthdayPrivacy, p.BirthdayPrivacy)
}

func applyPtr[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

func applyPrivacy(dst *Privacy, o Optional[Privacy]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = PrivacyPublic
		return
	}
	*dst = *o.Value
}

// Clone returns a deep copy so stores can hand out members without sharing state.
func (m *Member) Clone() *Member {
	c := *m
	c.DisplayName = clonePtr(m.DisplayName)
	c.Description = clonePtr(m.Description)
	c.Pronouns = clonePtr(m.Pronouns)
	c.Color = clonePtr(m.Color)
	c.AvatarURL = clonePtr(m.AvatarURL)
	c.Birthday = clonePtr(m.Birthday)
	c.ProxyTags = make([]ProxyTag, 0, len(m.ProxyTags))
	for _, tag := range m.ProxyTags {
		c.ProxyTags = append(c.ProxyTags, ProxyTag{Prefix: clonePtr(tag.Prefix), Suffix: clonePtr(tag.Suffix)})
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
