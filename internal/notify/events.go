package notify

import "time"

type Recipient struct {
	UserID uint
	Name   string
	Email  string
}

// InvitationsSentEvent is sent after an organizer invites volunteers to a project.
type InvitationsSentEvent struct {
	ProjectID    uint
	ProjectTitle string
	InviterName  string
	Message      string
	Recipients   []Recipient
}

// PasswordResetRequestedEvent carries the plain reset token. It is the only
// place the token exists outside the requester's inbox.
type PasswordResetRequestedEvent struct {
	Recipient Recipient
	Token     string
	ExpiresAt time.Time
}

// HoursAwardedEvent is sent when a volunteer is credited hours on a project.
type HoursAwardedEvent struct {
	ProjectID    uint
	ProjectTitle string
	Recipient    Recipient
	Hours        float64
	AwardedBy    string
}
