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

// ArticleService manages one kind of article, news or stories.
type ArticleService struct {
	db      *gorm.DB
	kind    string
	missing *Error
}

func NewNewsService(db *gorm.DB) *ArticleService {
	return &ArticleService{db: db, kind: model.KindNews, missing: ErrNewsNotFound}
}

func NewStoryService(db *gorm.DB) *ArticleService {
	return &ArticleService{db: db, kind: model.KindStory, missing: ErrStoryNotFound}
}

func (s *ArticleService) Kind() string { return s.kind }

type ArticleInput struct {
	Title       *string
	Excerpt     *string
	Content     *string
	Image       *string
	Featured    *bool
	PublishedAt *time.Time
}

type ArticleFilter struct {
	Search   string
	Featured *bool
}

func (s *ArticleService) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&model.Article{}).Where("kind = ?", s.kind)
}

func (s *ArticleService) List(ctx context.Context, f ArticleFilter, page Page) ([]model.Article, int64, error) {
	query := s.scoped(ctx)
	if f.Search != "" {
		pattern := likePattern(f.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", pattern, pattern)
	}
	if f.Featured != nil {
		query = query.Where("featured = ?", *f.Featured)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Article
	if err := page.apply(query.Preload("Author")).
		Order("published_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *ArticleService) Get(ctx context.Context, idOrSlug string) (*model.Article, error) {
	q := s.scoped(ctx).Preload("Author")
	var a model.Article
	var err error
	if id, perr := strconv.ParseUint(idOrSlug, 10, 64); perr == nil {
		err = q.Where("id = ?", id).First(&a).Error
	} else {
		err = q.Where("slug = ?", idOrSlug).First(&a).Error
	}
	if err != nil {
		return nil, notFound(err, s.missing)
	}
	return &a, nil
}

func applyArticleInput(a *model.Article, in ArticleInput) {
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Excerpt != nil {
		a.Excerpt = sanitize.Text(*in.Excerpt)
	}
	if in.Content != nil {
		a.Content = sanitize.HTML(*in.Content)
	}
	if in.Image != nil {
		a.Image = *in.Image
	}
	if in.Featured != nil {
		a.Featured = *in.Featured
	}
	if in.PublishedAt != nil {
		a.PublishedAt = in.PublishedAt.UTC()
	}
}

func (s *ArticleService) slugTaken(db *gorm.DB, slug string, excludeID uint) (bool, error) {
	return slugTaken(db.Where("kind = ?", s.kind), &model.Article{}, slug, excludeID)
}

func (s *ArticleService) Create(ctx context.Context, in ArticleInput, authorID uint) (*model.Article, error) {
	db := s.db.WithContext(ctx)
	a := &model.Article{Kind: s.kind, AuthorID: authorID, PublishedAt: time.Now().UTC()}
	applyArticleInput(a, in)
	if a.Title == "" {
		return nil, errorf(ErrInvalidInput, "title is required")
	}
	if a.Content == "" {
		return nil, errorf(ErrInvalidInput, "content is required")
	}
	a.Slug = makeSlug(s.kind, a.Title)
	taken, err := s.slugTaken(db, a.Slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}
	if err := db.Create(a).Error; err != nil {
		return nil, duplicate(err, ErrSlugTaken)
	}
	return s.Get(ctx, strconv.FormatUint(uint64(a.ID), 10))
}

func (s *ArticleService) Update(ctx context.Context, id uint, in ArticleInput) (*model.Article, error) {
	db := s.db.WithContext(ctx)
	var a model.Article
	if err := db.Where("kind = ?", s.kind).First(&a, id).Error; err != nil {
		return nil, notFound(err, s.missing)
	}
	oldTitle := a.Title
	applyArticleInput(&a, in)
	if a.Title == "" {
		return nil, errorf(ErrInvalidInput, "title is required")
	}
	if a.Title != oldTitle {
		a.Slug = makeSlug(s.kind, a.Title)
		taken, err := s.slugTaken(db, a.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
	}
	if err := db.Model(&model.Article{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":        a.Title,
		"slug":         a.Slug,
		"excerpt":      a.Excerpt,
		"content":      a.Content,
		"image":        a.Image,
		"featured":     a.Featured,
		"published_at": a.PublishedAt,
	}).Error; err != nil {
		return nil, duplicate(err, ErrSlugTaken)
	}
	return s.Get(ctx, strconv.FormatUint(uint64(id), 10))
}

func (s *ArticleService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Where("kind = ?", s.kind).Delete(&model.Article{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.missing
	}
	return nil
}
