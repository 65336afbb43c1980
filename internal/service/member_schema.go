package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/patch"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 1000
	maxAvatarURLLength   = 256
	maxProxyLength       = 100
)

var privacyOptions = []string{string(domain.PrivacyPublic), string(domain.PrivacyPrivate)}

var proxyTagSchema = patch.Schema{
	Strict: true,
	Fields: []patch.FieldSpec{
		{Name: "prefix", Kind: patch.KindString, Nullable: true, MaxLength: maxProxyLength},
		{Name: "suffix", Kind: patch.KindString, Nullable: true, MaxLength: maxProxyLength},
	},
	RequireOneOf: []string{"prefix", "suffix"},
}

// memberSchema lists every patchable member field. The name stays non-nullable
// after creation: an explicit null is rejected rather than clearing it.
var memberSchema = patch.Schema{
	Fields: []patch.FieldSpec{
		{Name: "name", Kind: patch.KindString, NonBlank: true, MaxLength: maxNameLength},
		{Name: "display_name", Kind: patch.KindString, Nullable: true, MaxLength: maxNameLength},
		{Name: "description", Kind: patch.KindString, Nullable: true, MaxLength: maxDescriptionLength},
		{Name: "pronouns", Kind: patch.KindString, Nullable: true, MaxLength: maxNameLength},
		{Name: "color", Kind: patch.KindColor, Nullable: true},
		{Name: "avatar_url", Kind: patch.KindURL, Nullable: true, MaxLength: maxAvatarURLLength},
		{Name: "birthday", Kind: patch.KindDate, Nullable: true},
		{Name: "proxy_tags", Kind: patch.KindObjectList, Nullable: true, Elem: &proxyTagSchema},
		{Name: "keep_proxy", Kind: patch.KindBool},
		{Name: "visibility", Kind: patch.KindEnum, Nullable: true, Options: privacyOptions},
		{Name: "description_privacy", Kind: patch.KindEnum, Nullable: true, Options: privacyOptions},
		{Name: "pronoun_privacy", Kind: patch.KindEnum, Nullable: true, Options: privacyOptions},
		{Name: "birthday_privacy", Kind: patch.KindEnum, Nullable: true, Options: privacyOptions},
	},
}

// requireName runs before any schema validation on create: the payload must
// carry a non-blank name. Other name problems are left to the schema.
func requireName(payload []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return domain.NewValidationError("", "payload must be a JSON object")
	}

	raw, ok := probe["name"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return domain.ErrMissingName
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil && strings.TrimSpace(name) == "" {
		return domain.ErrMissingName
	}
	return nil
}

func parseMemberPatch(payload []byte) (domain.MemberPatch, error) {
	p, err := patch.Parse(payload, memberSchema)
	if err != nil {
		var verr *patch.ValidationError
		if errors.As(err, &verr) {
			return domain.MemberPatch{}, domain.NewValidationError(verr.Field, verr.Error())
		}
		return domain.MemberPatch{}, err
	}
	return toMemberPatch(p), nil
}

func toMemberPatch(p *patch.Patch) domain.MemberPatch {
	return domain.MemberPatch{
		Name:               optional(p, "name", patch.Value.String),
		DisplayName:        optional(p, "display_name", patch.Value.String),
		Description:        optional(p, "description", patch.Value.String),
		Pronouns:           optional(p, "pronouns", patch.Value.String),
		Color:              optional(p, "color", patch.Value.String),
		AvatarURL:          optional(p, "avatar_url", patch.Value.String),
		Birthday:           optional(p, "birthday", patch.Value.Time),
		ProxyTags:          optional(p, "proxy_tags", proxyTags),
		KeepProxy:          optional(p, "keep_proxy", patch.Value.Bool),
		Visibility:         optional(p, "visibility", privacy),
		DescriptionPrivacy: optional(p, "description_privacy", privacy),
		PronounPrivacy:     optional(p, "pronoun_privacy", privacy),
		BirthdayPrivacy:    optional(p, "birthday_privacy", privacy),
	}
}

func optional[T any](p *patch.Patch, field string, get func(patch.Value) T) domain.Optional[T] {
	v, ok := p.Lookup(field)
	if !ok {
		return domain.Optional[T]{}
	}
	if v.IsNull() {
		return domain.Cleared[T]()
	}
	return domain.SetTo(get(v))
}

func privacy(v patch.Value) domain.Privacy {
	return domain.Privacy(v.String())
}

func proxyTags(v patch.Value) []domain.ProxyTag {
	objects := v.Objects()
	tags := make([]domain.ProxyTag, 0, len(objects))
	for _, obj := range objects {
		tags = append(tags, domain.ProxyTag{
			Prefix: nonEmpty(obj, "prefix"),
			Suffix: nonEmpty(obj, "suffix"),
		})
	}
	return tags
}

func nonEmpty(p *patch.Patch, field string) *string {
	v, ok := p.Lookup(field)
	if !ok || v.IsNull() || v.String() == "" {
		return nil
	}
	s := v.String()
	return &s
}
