package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	NotifyInvitationsSent(ctx context.Context, e InvitationsSentEvent) error
	NotifyPasswordResetRequested(ctx context.Context, e PasswordResetRequestedEvent) error
	NotifyHoursAwarded(ctx context.Context, e HoursAwardedEvent) error
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) NotifyInvitationsSent(context.Context, InvitationsSentEvent) error { return nil }
func (NoopNotifier) NotifyPasswordResetRequested(context.Context, PasswordResetRequestedEvent) error {
	return nil
}
func (NoopNotifier) NotifyHoursAwarded(context.Context, HoursAwardedEvent) error { return nil }

// LogNotifier delivers notifications as structured log lines. It stands in
// for an email transport.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) NotifyInvitationsSent(_ context.Context, e InvitationsSentEvent) error {
	for _, r := range e.Recipients {
		n.log.Info("invitation sent",
			zap.Uint("project_id", e.ProjectID),
			zap.String("project", e.ProjectTitle),
			zap.String("inviter", e.InviterName),
			zap.Uint("user_id", r.UserID),
			zap.String("email", r.Email),
			zap.String("message", e.Message),
		)
	}
	return nil
}

func (n *LogNotifier) NotifyPasswordResetRequested(_ context.Context, e PasswordResetRequestedEvent) error {
	n.log.Info("password reset requested",
		zap.Uint("user_id", e.Recipient.UserID),
		zap.String("email", e.Recipient.Email),
		zap.String("token", e.Token),
		zap.Time("expires_at", e.ExpiresAt),
	)
	return nil
}

func (n *LogNotifier) NotifyHoursAwarded(_ context.Context, e HoursAwardedEvent) error {
	n.log.Info("hours awarded",
		zap.Uint("project_id", e.ProjectID),
		zap.String("project", e.ProjectTitle),
		zap.Uint("user_id", e.Recipient.UserID),
		zap.Float64("hours", e.Hours),
		zap.String("awarded_by", e.AwardedBy),
	)
	return nil
}

var (
	_ Notifier = NoopNotifier{}
	_ Notifier = (*LogNotifier)(nil)
)
