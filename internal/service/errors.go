package service

import (
	"errors"
	"fmt"
)

// Error carries a five digit application code. The first three digits
// are the HTTP status the handler layer responds with.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%d:%s", e.Code, e.Message) }

func (e *Error) Status() int { return e.Code / 100 }

// Is matches on the code so that errorf variants still satisfy errors.Is
// against the sentinel they were derived from.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// errorf derives a more specific error from a sentinel.
func errorf(base *Error, format string, args ...interface{}) *Error {
	return &Error{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidInput      = newError(40001, "invalid input")
	ErrWeakPassword      = newError(40002, "password must be at least 8 characters and contain letters and digits")
	ErrSelfAction        = newError(40003, "cannot perform this action on your own account")
	ErrAlreadyProcessed  = newError(40004, "invitation already processed")
	ErrWrongProject      = newError(40005, "participant does not belong to this project")
	ErrCategoryInUse     = newError(40006, "category still has projects")
	ErrUnknownUsers      = newError(40007, "some users were not found")
	ErrInvalidFile       = newError(40008, "only image files are allowed")
	ErrFileTooLarge      = newError(40009, "file is too large")
	ErrInvalidResetToken = newError(40010, "reset token is invalid or expired")

	ErrInvalidCredentials = newError(40101, "invalid email or password")
	ErrUnauthenticated    = newError(40102, "authentication required")

	ErrForbidden = newError(40301, "permission denied")

	ErrUserNotFound        = newError(40401, "user not found")
	ErrProjectNotFound     = newError(40402, "project not found")
	ErrParticipantNotFound = newError(40403, "participant not found")
	ErrInvitationNotFound  = newError(40404, "invitation not found")
	ErrCategoryNotFound    = newError(40405, "category not found")
	ErrAchievementNotFound = newError(40406, "achievement not found")
	ErrNewsNotFound        = newError(40407, "news not found")
	ErrStoryNotFound       = newError(40408, "story not found")
	ErrNotParticipant      = newError(40409, "you are not participating in this project")
	ErrAwardNotFound       = newError(40410, "user does not have this achievement")

	ErrEmailTaken     = newError(40901, "email is already registered")
	ErrSlugTaken      = newError(40902, "an entry with this title already exists")
	ErrAlreadyJoined  = newError(40903, "already participating in this project")
	ErrAlreadyInvited = newError(40904, "all selected users are already invited or participating")
	ErrAlreadyAwarded = newError(40905, "user already has this achievement")
)
