package service

import (
	"context"
	"strings"

	"github.com/mrhexvel/ezgu/internal/model"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func validRole(role string) bool {
	switch role {
	case model.RoleVolunteer, model.RoleOrganizer, model.RoleAdmin:
		return true
	}
	return false
}

type UserFilter struct {
	Search string
	Role   string
}

func (s *UserService) List(ctx context.Context, f UserFilter, page Page) ([]model.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})
	if f.Search != "" {
		pattern := likePattern(f.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []model.User
	if err := page.apply(query).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Search matches users by email and name fragments for invitation pickers.
func (s *UserService) Search(ctx context.Context, email, name string, excludeProjectID uint, limit int) ([]model.UserBrief, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := s.db.WithContext(ctx).Model(&model.User{})
	if email != "" {
		query = query.Where("LOWER(email) LIKE ?", likePattern(email))
	}
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(name))
	}
	if excludeProjectID != 0 {
		query = query.Where("id NOT IN (?)", s.db.Model(&model.ProjectParticipant{}).Select("user_id").Where("project_id = ?", excludeProjectID))
	}
	var users []model.User
	if err := query.Order("name ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]model.UserBrief, len(users))
	for i := range users {
		out[i] = users[i].Brief()
	}
	return out, nil
}

type UserProfile struct {
	*model.User
	LevelProgress  float64                    `json:"level_progress"`
	Participations []model.ProjectParticipant `json:"participations"`
	Achievements   []model.UserAchievement    `json:"achievements"`
}

func (s *UserService) Get(ctx context.Context, id uint) (*UserProfile, error) {
	db := s.db.WithContext(ctx)
	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	profile := &UserProfile{User: &user, LevelProgress: user.LevelProgress()}
	if err := db.Preload("Project").Where("user_id = ?", id).
		Order("created_at DESC").Find(&profile.Participations).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Achievement").Where("user_id = ?", id).
		Order("awarded_at DESC").Find(&profile.Achievements).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

type UserInput struct {
	Name      *string
	Email     *string
	Password  *string
	Role      *string
	Avatar    *string
	Bio       *string
	Location  *string
	Interests *[]string
}

// Create is the admin path for adding accounts with any role.
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, errorf(ErrInvalidInput, "name is required")
	}
	if in.Email == nil || in.Password == nil {
		return nil, errorf(ErrInvalidInput, "email and password are required")
	}
	email, err := normalizeEmail(*in.Email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(*in.Password); err != nil {
		return nil, err
	}
	role := model.RoleVolunteer
	if in.Role != nil {
		if !validRole(*in.Role) {
			return nil, errorf(ErrInvalidInput, "unknown role %q", *in.Role)
		}
		role = *in.Role
	}
	hash, err := hashPassword(*in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:         strings.TrimSpace(*in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Level:        1,
	}
	applyProfile(user, in)

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if err := db.Create(user).Error; err != nil {
		return nil, duplicate(err, ErrEmailTaken)
	}
	return user, nil
}

func applyProfile(u *model.User, in UserInput) {
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.Bio != nil {
		u.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Location != nil {
		u.Location = strings.TrimSpace(*in.Location)
	}
	if in.Interests != nil {
		u.Interests = append([]string{}, (*in.Interests)...)
	}
}

// Update edits a profile. Users may edit themselves; only admins may edit
// others or change roles.
func (s *UserService) Update(ctx context.Context, actor *model.User, id uint, in UserInput) (*model.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	db := s.db.WithContext(ctx)
	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errorf(ErrInvalidInput, "name must not be empty")
		}
		updates["name"] = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			var count int64
			if err := db.Model(&model.User{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrEmailTaken
			}
			updates["email"] = email
		}
	}
	if in.Role != nil && *in.Role != user.Role {
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		if !validRole(*in.Role) {
			return nil, errorf(ErrInvalidInput, "unknown role %q", *in.Role)
		}
		if actor.ID == id {
			return nil, ErrSelfAction
		}
		updates["role"] = *in.Role
	}
	if in.Password != nil {
		if err := ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	applyProfile(&user, in)
	updates["avatar"] = user.Avatar
	updates["bio"] = user.Bio
	updates["location"] = user.Location
	updates["interests"] = user.Interests

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, duplicate(err, ErrEmailTaken)
	}
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete soft-deletes the account and drops its participations,
// invitations and achievement grants. Hours log rows stay.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrSelfAction
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ProjectParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ProjectInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserAchievement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
