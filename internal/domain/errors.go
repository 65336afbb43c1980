package domain

import "fmt"

const (
	CodeNotFound        = "NOT_FOUND"
	CodeMissingName     = "MISSING_NAME"
	CodeValidation      = "VALIDATION_ERROR"
	CodeMemberLimit     = "MEMBER_LIMIT"
	CodeNotOwner        = "NOT_OWNER"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeBadRequest      = "BAD_REQUEST"
)

type DomainError struct {
	Code    string
	Message string
	// Field names the offending payload field for validation errors.
	Field string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so errors.Is works against the sentinels below.
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "resource not found",
	}

	ErrMissingName = &DomainError{
		Code:    CodeMissingName,
		Message: "Member name must be specified.",
	}

	ErrValidation = &DomainError{
		Code:    CodeValidation,
		Message: "invalid payload",
	}

	ErrMemberLimit = &DomainError{
		Code:    CodeMemberLimit,
		Message: "member limit reached",
	}

	ErrNotOwner = &DomainError{
		Code:    CodeNotOwner,
		Message: "resource is not part of your system",
	}

	ErrUnauthenticated = &DomainError{
		Code:    CodeUnauthenticated,
		Message: "authentication required",
	}
)

func NewNotFoundError(message string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: message}
}

func NewValidationError(field, message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message, Field: field}
}

func NewBadRequestError(message string) *DomainError {
	return &DomainError{Code: CodeBadRequest, Message: message}
}

// NewNotOwnerError names the member but nothing about its owner.
func NewNotOwnerError(hid string) *DomainError {
	return &DomainError{
		Code:    CodeNotOwner,
		Message: fmt.Sprintf("Member '%s' is not part of your system.", hid),
	}
}

// LimitError is returned when a system already owns the maximum number of members.
type LimitError struct {
	Current int
	Max     int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("member limit reached (%d/%d)", e.Current, e.Max)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrMemberLimit
}
