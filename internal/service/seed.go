package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mrhexvel/ezgu/internal/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the YAML document read by the seed command.
type SeedFile struct {
	Admin        *SeedAdmin        `yaml:"admin"`
	Categories   []SeedCategory    `yaml:"categories"`
	Achievements []SeedAchievement `yaml:"achievements"`
}

type SeedAdmin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SeedCategory struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
	Icon        string `yaml:"icon"`
}

type SeedAchievement struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
	Points      int    `yaml:"points"`
}

// ParseSeed decodes a seed document. Unknown keys are rejected.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var f SeedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

type SeedResult struct {
	AdminCreated        bool `json:"admin_created"`
	CategoriesCreated   int  `json:"categories_created"`
	AchievementsCreated int  `json:"achievements_created"`
	Skipped             int  `json:"skipped"`
}

type SeedService struct {
	db           *gorm.DB
	users        *UserService
	categories   *CategoryService
	achievements *AchievementService
	log          *zap.Logger
}

func NewSeedService(db *gorm.DB, log *zap.Logger) *SeedService {
	return &SeedService{
		db:           db,
		users:        NewUserService(db),
		categories:   NewCategoryService(db),
		achievements: NewAchievementService(db),
		log:          log.Named("seed"),
	}
}

// Apply creates whatever in f does not exist yet. Running it twice is a no-op.
func (s *SeedService) Apply(ctx context.Context, f *SeedFile) (*SeedResult, error) {
	res := &SeedResult{}

	if f.Admin != nil {
		role := model.RoleAdmin
		_, err := s.users.Create(ctx, UserInput{
			Name:     &f.Admin.Name,
			Email:    &f.Admin.Email,
			Password: &f.Admin.Password,
			Role:     &role,
		})
		switch {
		case err == nil:
			res.AdminCreated = true
			s.log.Info("admin created", zap.String("email", f.Admin.Email))
		case errors.Is(err, ErrEmailTaken):
			res.Skipped++
		default:
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	for _, c := range f.Categories {
		c := c
		_, err := s.categories.Create(ctx, CategoryInput{
			Name:        &c.Name,
			Description: &c.Description,
			Color:       &c.Color,
			Icon:        &c.Icon,
		})
		switch {
		case err == nil:
			res.CategoriesCreated++
		case errors.Is(err, ErrSlugTaken):
			res.Skipped++
		default:
			return nil, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	for _, a := range f.Achievements {
		a := a
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Achievement{}).
			Where("title = ?", a.Title).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			res.Skipped++
			continue
		}
		if _, err := s.achievements.Create(ctx, AchievementInput{
			Title:       &a.Title,
			Description: &a.Description,
			Icon:        &a.Icon,
			Color:       &a.Color,
			Points:      &a.Points,
		}); err != nil {
			return nil, fmt.Errorf("seed achievement %q: %w", a.Title, err)
		}
		res.AchievementsCreated++
	}

	s.log.Info("seed applied",
		zap.Int("categories", res.CategoriesCreated),
		zap.Int("achievements", res.AchievementsCreated),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
