package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mrhexvel/ezgu/pkg/slug"
	"gorm.io/gorm"
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

func (p Page) apply(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// notFound maps gorm.ErrRecordNotFound to the given domain error.
func notFound(err error, domain *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain
	}
	return err
}

// duplicate maps gorm.ErrDuplicatedKey to the given domain error.
func duplicate(err error, domain *Error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain
	}
	return err
}

// makeSlug falls back to a random suffix when the title has nothing
// latin to keep. An all-digit slug gets the prefix so lookups by id or
// slug stay unambiguous.
func makeSlug(prefix, title string) string {
	s := slug.Make(title)
	switch {
	case s == "":
		s = prefix + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	case isDigits(s):
		s = prefix + "-" + s
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// slugTaken reports whether slug is used by a row of model other than excludeID.
func slugTaken(db *gorm.DB, model interface{}, slug string, excludeID uint) (bool, error) {
	var count int64
	q := db.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// likePattern builds a case-insensitive LIKE operand.
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
