package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InvitationService struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      *zap.Logger
}

func NewInvitationService(db *gorm.DB, notifier notify.Notifier, log *zap.Logger) *InvitationService {
	return &InvitationService{db: db, notifier: notifier, log: log}
}

type InviteResult struct {
	Invitations []model.ProjectInvitation `json:"invitations"`
	// Skipped lists users that already participate or have a pending invitation.
	Skipped []uint `json:"skipped"`
}

// Invite creates pending invitations for every listed user that neither
// participates in the project nor already holds a pending invitation.
func (s *InvitationService) Invite(ctx context.Context, projectID uint, inviter *model.User, userIDs []uint, message string) (*InviteResult, error) {
	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return nil, errorf(ErrInvalidInput, "user_ids must not be empty")
	}

	var project model.Project
	var recipients []model.User
	result := &InviteResult{Skipped: []uint{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFound(err, ErrProjectNotFound)
		}

		var users []model.User
		if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return err
		}
		if len(users) != len(ids) {
			found := make(map[uint]bool, len(users))
			for _, u := range users {
				found[u.ID] = true
			}
			var missing []uint
			for _, id := range ids {
				if !found[id] {
					missing = append(missing, id)
				}
			}
			return errorf(ErrUnknownUsers, "users not found: %v", missing)
		}

		var participating, pending []uint
		if err := tx.Model(&model.ProjectParticipant{}).
			Where("project_id = ? AND user_id IN ?", projectID, ids).
			Pluck("user_id", &participating).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ProjectInvitation{}).
			Where("project_id = ? AND user_id IN ? AND status = ?", projectID, ids, model.InvitationPending).
			Pluck("user_id", &pending).Error; err != nil {
			return err
		}
		skip := make(map[uint]bool, len(participating)+len(pending))
		for _, id := range participating {
			skip[id] = true
		}
		for _, id := range pending {
			skip[id] = true
		}

		if message == "" {
			message = fmt.Sprintf("You are invited to join %q", project.Title)
		}
		for _, u := range users {
			if skip[u.ID] {
				result.Skipped = append(result.Skipped, u.ID)
				continue
			}
			recipients = append(recipients, u)
			result.Invitations = append(result.Invitations, model.ProjectInvitation{
				ProjectID:   projectID,
				UserID:      u.ID,
				InvitedByID: inviter.ID,
				Status:      model.InvitationPending,
				Message:     message,
			})
		}
		if len(result.Invitations) == 0 {
			return ErrAlreadyInvited
		}
		return tx.Create(&result.Invitations).Error
	})
	if err != nil {
		return nil, err
	}

	event := notify.InvitationsSentEvent{
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
		InviterName:  inviter.Name,
		Message:      message,
	}
	for _, u := range recipients {
		event.Recipients = append(event.Recipients, notify.Recipient{UserID: u.ID, Name: u.Name, Email: u.Email})
	}
	if err := s.notifier.NotifyInvitationsSent(ctx, event); err != nil {
		s.log.Warn("notify invitations", zap.Uint("project_id", project.ID), zap.Error(err))
	}
	return result, nil
}

// Accept resolves a pending invitation addressed to userID and confirms
// the user on the project.
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID uint) (*model.ProjectInvitation, *model.ProjectParticipant, error) {
	var inv model.ProjectInvitation
	var participant model.ProjectParticipant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.resolve(tx, &inv, invitationID, userID, model.InvitationAccepted); err != nil {
			return err
		}

		err := tx.Where("project_id = ? AND user_id = ?", inv.ProjectID, inv.UserID).First(&participant).Error
		switch {
		case err == nil:
			invitedBy := inv.InvitedByID
			participant.Status = model.ParticipantConfirmed
			participant.InvitedByID = &invitedBy
			return tx.Model(&participant).Updates(map[string]interface{}{
				"status":        participant.Status,
				"invited_by_id": invitedBy,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			invitedBy := inv.InvitedByID
			participant = model.ProjectParticipant{
				ProjectID:   inv.ProjectID,
				UserID:      inv.UserID,
				Status:      model.ParticipantConfirmed,
				InvitedByID: &invitedBy,
			}
			return tx.Create(&participant).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return &inv, &participant, nil
}

// Decline resolves a pending invitation without touching participation.
func (s *InvitationService) Decline(ctx context.Context, invitationID, userID uint) (*model.ProjectInvitation, error) {
	var inv model.ProjectInvitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.resolve(tx, &inv, invitationID, userID, model.InvitationDeclined)
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// resolve flips a pending invitation to status. The conditional update
// makes a replayed or concurrent response fail with ErrAlreadyProcessed.
func (s *InvitationService) resolve(tx *gorm.DB, inv *model.ProjectInvitation, invitationID, userID uint, status string) error {
	if err := tx.Where("id = ? AND user_id = ?", invitationID, userID).First(inv).Error; err != nil {
		return notFound(err, ErrInvitationNotFound)
	}
	if inv.Status != model.InvitationPending {
		return ErrAlreadyProcessed
	}
	res := tx.Model(&model.ProjectInvitation{}).
		Where("id = ? AND status = ?", inv.ID, model.InvitationPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}
	inv.Status = status
	return nil
}

// ListPending returns the user's open invitations with project and inviter.
func (s *InvitationService) ListPending(ctx context.Context, userID uint) ([]model.ProjectInvitation, error) {
	var list []model.ProjectInvitation
	err := s.db.WithContext(ctx).
		Preload("Project.Category").
		Preload("InvitedBy").
		Where("user_id = ? AND status = ?", userID, model.InvitationPending).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
