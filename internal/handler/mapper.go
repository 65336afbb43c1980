package handler

import (
	"time"

	"github.com/systemhub/member-api/internal/domain"
)

func domainSystemToHTTP(system *domain.System, lookup domain.LookupContext) SystemResponse {
	resp := SystemResponse{
		ID:        system.HID,
		Name:      system.Name,
		Tag:       system.Tag,
		AvatarURL: system.AvatarURL,
		Created:   system.Created.UTC().Format(time.RFC3339),
	}
	if system.DescriptionPrivacy.CanAccess(lookup) {
		resp.Description = system.Description
	}
	if lookup == domain.LookupOwner {
		resp.DescriptionPrivacy = privacyString(system.DescriptionPrivacy)
	}
	return resp
}

// domainMemberToHTTP filters the member for the given lookup context. A private
// member shows only its id and name to anyone but the owner.
func domainMemberToHTTP(member *domain.Member, lookup domain.LookupContext) MemberResponse {
	resp := MemberResponse{
		ID:        member.HID,
		Name:      member.Name,
		KeepProxy: member.KeepProxy,
		Created:   member.Created.UTC().Format(time.RFC3339),
	}

	if lookup == domain.LookupOwner {
		resp.Visibility = privacyString(member.Visibility)
		resp.DescriptionPrivacy = privacyString(member.DescriptionPrivacy)
		resp.PronounPrivacy = privacyString(member.PronounPrivacy)
		resp.BirthdayPrivacy = privacyString(member.BirthdayPrivacy)
	}
	if !member.Visibility.CanAccess(lookup) {
		return resp
	}

	resp.DisplayName = member.DisplayName
	resp.Color = member.Color
	resp.AvatarURL = member.AvatarURL
	resp.ProxyTags = make([]ProxyTagResponse, 0, len(member.ProxyTags))
	for _, tag := range member.ProxyTags {
		resp.ProxyTags = append(resp.ProxyTags, ProxyTagResponse{Prefix: tag.Prefix, Suffix: tag.Suffix})
	}
	if member.DescriptionPrivacy.CanAccess(lookup) {
		resp.Description = member.Description
	}
	if member.PronounPrivacy.CanAccess(lookup) {
		resp.Pronouns = member.Pronouns
	}
	if member.Birthday != nil && member.BirthdayPrivacy.CanAccess(lookup) {
		birthday := member.Birthday.Format(time.DateOnly)
		resp.Birthday = &birthday
	}
	return resp
}

func privacyString(p domain.Privacy) *string {
	s := string(p.OrDefault())
	return &s
}
