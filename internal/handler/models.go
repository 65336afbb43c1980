package handler

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Current *int   `json:"current,omitempty"`
	Max     *int   `json:"max,omitempty"`
}

type SystemResponse struct {
	ID                 string  `json:"id"`
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	Tag                *string `json:"tag"`
	AvatarURL          *string `json:"avatar_url"`
	Created            string  `json:"created"`
	DescriptionPrivacy *string `json:"description_privacy,omitempty"`
}

type ProxyTagResponse struct {
	Prefix *string `json:"prefix"`
	Suffix *string `json:"suffix"`
}

// MemberResponse carries privacy settings only when the caller owns the member.
type MemberResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	DisplayName *string            `json:"display_name"`
	Description *string            `json:"description"`
	Pronouns    *string            `json:"pronouns"`
	Color       *string            `json:"color"`
	AvatarURL   *string            `json:"avatar_url"`
	Birthday    *string            `json:"birthday"`
	ProxyTags   []ProxyTagResponse `json:"proxy_tags"`
	KeepProxy   bool               `json:"keep_proxy"`
	Created     string             `json:"created"`

	Visibility         *string `json:"visibility,omitempty"`
	DescriptionPrivacy *string `json:"description_privacy,omitempty"`
	PronounPrivacy     *string `json:"pronoun_privacy,omitempty"`
	BirthdayPrivacy    *string `json:"birthday_privacy,omitempty"`
}
