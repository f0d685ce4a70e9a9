package service

import (
	"context"
	"strings"

	"github.com/mrhexvel/ezgu/internal/model"
	"gorm.io/gorm"
)

type AchievementService struct {
	db *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db}
}

type AchievementInput struct {
	Title       *string
	Description *string
	Icon        *string
	Color       *string
	Points      *int
}

func (s *AchievementService) List(ctx context.Context) ([]model.Achievement, error) {
	var list []model.Achievement
	err := s.db.WithContext(ctx).Order("points ASC, id ASC").Find(&list).Error
	return list, err
}

func (s *AchievementService) Get(ctx context.Context, id uint) (*model.Achievement, error) {
	var a model.Achievement
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err, ErrAchievementNotFound)
	}
	return &a, nil
}

func applyAchievementInput(a *model.Achievement, in AchievementInput) error {
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Icon != nil {
		a.Icon = *in.Icon
	}
	if in.Color != nil {
		a.Color = *in.Color
	}
	if in.Points != nil {
		a.Points = *in.Points
	}
	if a.Title == "" {
		return errorf(ErrInvalidInput, "title is required")
	}
	if a.Points < 0 {
		return errorf(ErrInvalidInput, "points must not be negative")
	}
	return nil
}

func (s *AchievementService) Create(ctx context.Context, in AchievementInput) (*model.Achievement, error) {
	a := &model.Achievement{}
	if err := applyAchievementInput(a, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// Update changes the definition only. Points already granted to holders
// stay as they were.
func (s *AchievementService) Update(ctx context.Context, id uint, in AchievementInput) (*model.Achievement, error) {
	db := s.db.WithContext(ctx)
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyAchievementInput(a, in); err != nil {
		return nil, err
	}
	if err := db.Model(&model.Achievement{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":       a.Title,
		"description": a.Description,
		"icon":        a.Icon,
		"color":       a.Color,
		"points":      a.Points,
	}).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the achievement and every grant of it, taking back from
// each holder the points recorded on their grant.
func (s *AchievementService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Achievement
		if err := tx.First(&a, id).Error; err != nil {
			return notFound(err, ErrAchievementNotFound)
		}
		var grants []model.UserAchievement
		if err := tx.Where("achievement_id = ?", id).Find(&grants).Error; err != nil {
			return err
		}
		for _, ua := range grants {
			if err := tx.Model(&model.User{}).Where("id = ?", ua.UserID).
				Update("points", gorm.Expr("points - ?", ua.Points)).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("achievement_id = ?", id).Delete(&model.UserAchievement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&a).Error
	})
}

// Award grants the achievement once per user and adds its points.
func (s *AchievementService) Award(ctx context.Context, achievementID, userID, awarderID uint) (*model.UserAchievement, error) {
	ua := &model.UserAchievement{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Achievement
		if err := tx.First(&a, achievementID).Error; err != nil {
			return notFound(err, ErrAchievementNotFound)
		}
		var u model.User
		if err := tx.Select("id").First(&u, userID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		var count int64
		if err := tx.Model(&model.UserAchievement{}).
			Where("user_id = ? AND achievement_id = ?", userID, achievementID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyAwarded
		}
		*ua = model.UserAchievement{UserID: userID, AchievementID: achievementID, AwardedByID: awarderID, Points: a.Points}
		if err := tx.Create(ua).Error; err != nil {
			return duplicate(err, ErrAlreadyAwarded)
		}
		if err := tx.Model(&model.User{}).Where("id = ?", userID).
			Update("points", gorm.Expr("points + ?", a.Points)).Error; err != nil {
			return err
		}
		ua.Achievement = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ua, nil
}

// Revoke removes a grant and subtracts the points it carried when awarded.
func (s *AchievementService) Revoke(ctx context.Context, achievementID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&model.Achievement{}, achievementID).Error; err != nil {
			return notFound(err, ErrAchievementNotFound)
		}
		var ua model.UserAchievement
		if err := tx.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&ua).Error; err != nil {
			return notFound(err, ErrAwardNotFound)
		}
		if err := tx.Delete(&ua).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).
			Update("points", gorm.Expr("points - ?", ua.Points)).Error
	})
}

// ListForUser returns the user's grants, most recent first.
func (s *AchievementService) ListForUser(ctx context.Context, userID uint, limit int) ([]model.UserAchievement, error) {
	q := s.db.WithContext(ctx).Preload("Achievement").
		Where("user_id = ?", userID).
		Order("awarded_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.UserAchievement
	err := q.Find(&list).Error
	return list, err
}
