package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/pkg/sanitize"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// ProjectInput carries the writable project fields. Nil fields are left
// unchanged on update.
type ProjectInput struct {
	Title       *string
	Description *string
	Image       *string
	Location    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
	CategoryID  *uint
}

type ProjectFilter struct {
	Search string
	// Category is a category slug or numeric id.
	Category string
	Status   string
}

func (s *ProjectService) List(ctx context.Context, f ProjectFilter, page Page) ([]model.Project, int64, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&model.Project{})
	if f.Search != "" {
		pattern := likePattern(f.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?", pattern, pattern, pattern)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		if id, err := strconv.ParseUint(f.Category, 10, 64); err == nil {
			query = query.Where("category_id = ?", id)
		} else {
			query = query.Where("category_id IN (?)", db.Model(&model.Category{}).Select("id").Where("slug = ?", f.Category))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []model.Project
	if err := page.apply(query.Preload("Category")).
		Order("start_date IS NULL, start_date ASC, id DESC").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	if err := s.fillVolunteerCounts(db, projects); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (s *ProjectService) fillVolunteerCounts(db *gorm.DB, projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]uint, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	var rows []struct {
		ProjectID uint
		N         int64
	}
	if err := db.Model(&model.ProjectParticipant{}).
		Select("project_id, COUNT(*) AS n").
		Where("project_id IN ? AND status IN ?", ids, ActiveParticipantStatuses).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ProjectID] = r.N
	}
	for i := range projects {
		projects[i].VolunteerCount = counts[projects[i].ID]
	}
	return nil
}

// Get looks a project up by numeric id or slug and loads its participants.
func (s *ProjectService) Get(ctx context.Context, idOrSlug string) (*model.Project, error) {
	db := s.db.WithContext(ctx)
	q := db.Preload("Category").Preload("Participants", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC, id ASC")
	}).Preload("Participants.User")

	var project model.Project
	var err error
	if id, perr := strconv.ParseUint(idOrSlug, 10, 64); perr == nil {
		err = q.First(&project, id).Error
	} else {
		err = q.Where("slug = ?", idOrSlug).First(&project).Error
	}
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	for _, p := range project.Participants {
		for _, st := range ActiveParticipantStatuses {
			if p.Status == st {
				project.VolunteerCount++
				break
			}
		}
	}
	return &project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uint) (*model.Project, error) {
	return s.Get(ctx, strconv.FormatUint(uint64(id), 10))
}

func (s *ProjectService) validate(db *gorm.DB, p *model.Project) error {
	if strings.TrimSpace(p.Title) == "" {
		return errorf(ErrInvalidInput, "title is required")
	}
	if !model.ValidProjectStatus(p.Status) {
		return errorf(ErrInvalidInput, "unknown status %q", p.Status)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return errorf(ErrInvalidInput, "end_date must not be before start_date")
	}
	if p.CategoryID != nil {
		var c model.Category
		if err := db.Select("id").First(&c, *p.CategoryID).Error; err != nil {
			return notFound(err, ErrCategoryNotFound)
		}
	}
	return nil
}

func applyProjectInput(p *model.Project, in ProjectInput) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = sanitize.HTML(*in.Description)
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			p.CategoryID = nil
		} else {
			p.CategoryID = in.CategoryID
		}
	}
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput, creatorID uint) (*model.Project, error) {
	db := s.db.WithContext(ctx)
	project := &model.Project{Status: model.ProjectUpcoming, CreatedByID: creatorID}
	applyProjectInput(project, in)
	if err := s.validate(db, project); err != nil {
		return nil, err
	}

	project.Slug = makeSlug("project", project.Title)
	taken, err := slugTaken(db, &model.Project{}, project.Slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}
	if err := db.Create(project).Error; err != nil {
		return nil, duplicate(err, ErrSlugTaken)
	}
	return s.GetByID(ctx, project.ID)
}

// Update applies in to the project. The slug follows the title and is
// left alone when the title does not change.
func (s *ProjectService) Update(ctx context.Context, id uint, in ProjectInput) (*model.Project, error) {
	db := s.db.WithContext(ctx)
	var project model.Project
	if err := db.First(&project, id).Error; err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	oldTitle := project.Title
	applyProjectInput(&project, in)
	if err := s.validate(db, &project); err != nil {
		return nil, err
	}
	if project.Title != oldTitle {
		project.Slug = makeSlug("project", project.Title)
		taken, err := slugTaken(db, &model.Project{}, project.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
	}
	if err := db.Model(&model.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":       project.Title,
		"slug":        project.Slug,
		"description": project.Description,
		"image":       project.Image,
		"location":    project.Location,
		"start_date":  project.StartDate,
		"end_date":    project.EndDate,
		"status":      project.Status,
		"category_id": project.CategoryID,
	}).Error; err != nil {
		return nil, duplicate(err, ErrSlugTaken)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the project with its participants and invitations. Hours
// log rows are kept.
func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectInvitation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}

// Upcoming returns the next projects that have not started yet.
func (s *ProjectService) Upcoming(ctx context.Context, now time.Time, limit int) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("status = ? AND start_date >= ?", model.ProjectUpcoming, now).
		Order("start_date ASC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}
