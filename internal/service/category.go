package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/mrhexvel/ezgu/internal/model"
	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

type CategoryInput struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// List returns all categories by name with their project counts.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	db := s.db.WithContext(ctx)
	var categories []model.Category
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	var rows []struct {
		CategoryID uint
		N          int64
	}
	if err := db.Model(&model.Project{}).
		Select("category_id, COUNT(*) AS n").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.N
	}
	for i := range categories {
		categories[i].ProjectCount = counts[categories[i].ID]
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	db := s.db.WithContext(ctx)
	var c model.Category
	var err error
	if id, perr := strconv.ParseUint(idOrSlug, 10, 64); perr == nil {
		err = db.First(&c, id).Error
	} else {
		err = db.Where("slug = ?", idOrSlug).First(&c).Error
	}
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	if err := db.Model(&model.Project{}).Where("category_id = ?", c.ID).Count(&c.ProjectCount).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func applyCategoryInput(c *model.Category, in CategoryInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
	}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	db := s.db.WithContext(ctx)
	c := &model.Category{}
	applyCategoryInput(c, in)
	if c.Name == "" {
		return nil, errorf(ErrInvalidInput, "name is required")
	}
	c.Slug = makeSlug("category", c.Name)
	taken, err := slugTaken(db, &model.Category{}, c.Slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}
	if err := db.Create(c).Error; err != nil {
		return nil, duplicate(err, ErrSlugTaken)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*model.Category, error) {
	db := s.db.WithContext(ctx)
	var c model.Category
	if err := db.First(&c, id).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	oldName := c.Name
	applyCategoryInput(&c, in)
	if c.Name == "" {
		return nil, errorf(ErrInvalidInput, "name is required")
	}
	if c.Name != oldName {
		c.Slug = makeSlug("category", c.Name)
		taken, err := slugTaken(db, &model.Category{}, c.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
	}
	if err := db.Model(&model.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"color":       c.Color,
		"icon":        c.Icon,
	}).Error; err != nil {
		return nil, duplicate(err, ErrSlugTaken)
	}
	return s.Get(ctx, strconv.FormatUint(uint64(id), 10))
}

// Delete refuses while any project still references the category.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Category
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err, ErrCategoryNotFound)
		}
		var count int64
		if err := tx.Model(&model.Project{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errorf(ErrCategoryInUse, "category still has %d projects", count)
		}
		return tx.Delete(&c).Error
	})
}
