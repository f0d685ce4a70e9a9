package service

import (
	"context"

	"github.com/mrhexvel/ezgu/internal/model"
	"gorm.io/gorm"
)

// ActiveParticipantStatuses count towards a project's volunteers.
var ActiveParticipantStatuses = []string{
	model.ParticipantRegistered,
	model.ParticipantConfirmed,
	model.ParticipantCompleted,
}

type ParticipationService struct {
	db *gorm.DB
}

func NewParticipationService(db *gorm.DB) *ParticipationService {
	return &ParticipationService{db: db}
}

// Join registers userID on the project. A second join for the same pair
// fails with ErrAlreadyJoined, including when two requests race.
func (s *ParticipationService) Join(ctx context.Context, projectID, userID uint) (*model.ProjectParticipant, error) {
	db := s.db.WithContext(ctx)
	var project model.Project
	if err := db.Select("id").First(&project, projectID).Error; err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}

	var count int64
	if err := db.Model(&model.ProjectParticipant{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyJoined
	}

	p := &model.ProjectParticipant{
		ProjectID: projectID,
		UserID:    userID,
		Status:    model.ParticipantRegistered,
	}
	if err := db.Create(p).Error; err != nil {
		return nil, duplicate(err, ErrAlreadyJoined)
	}
	return p, nil
}

// Leave removes the participant record outright.
func (s *ParticipationService) Leave(ctx context.Context, projectID, userID uint) error {
	res := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectParticipant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotParticipant
	}
	return nil
}

// ListForUser returns the user's participations with their projects, newest first.
func (s *ParticipationService) ListForUser(ctx context.Context, userID uint) ([]model.ProjectParticipant, error) {
	var list []model.ProjectParticipant
	err := s.db.WithContext(ctx).
		Preload("Project.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// ListForProject returns the project's participants with their users.
func (s *ParticipationService) ListForProject(ctx context.Context, projectID uint) ([]model.ProjectParticipant, error) {
	var list []model.ProjectParticipant
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}
