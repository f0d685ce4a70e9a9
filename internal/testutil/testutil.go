// Package testutil provides an in-memory database and fixture builders
// shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mrhexvel/ezgu/internal/database"
	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of every fixture user.
const Password = "secret123"

var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// NewDB returns a migrated private in-memory sqlite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, name, role string) *model.User {
	t.Helper()
	u := &model.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: passwordHash,
		Role:         role,
		Level:        1,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateCategory(t testing.TB, db *gorm.DB, name string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Slug: fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateProject(t testing.TB, db *gorm.DB, title string, categoryID *uint) *model.Project {
	t.Helper()
	start := time.Now().UTC().AddDate(0, 0, 7)
	p := &model.Project{
		Title:      title,
		Slug:       fmt.Sprintf("project-%s", uuid.NewString()[:8]),
		Status:     model.ProjectUpcoming,
		StartDate:  &start,
		CategoryID: categoryID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateParticipant(t testing.TB, db *gorm.DB, projectID, userID uint, status string) *model.ProjectParticipant {
	t.Helper()
	p := &model.ProjectParticipant{ProjectID: projectID, UserID: userID, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateInvitation(t testing.TB, db *gorm.DB, projectID, userID, invitedBy uint) *model.ProjectInvitation {
	t.Helper()
	inv := &model.ProjectInvitation{ProjectID: projectID, UserID: userID, InvitedByID: invitedBy, Status: model.InvitationPending}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func CreateAchievement(t testing.TB, db *gorm.DB, title string, points int) *model.Achievement {
	t.Helper()
	a := &model.Achievement{Title: title, Points: points}
	require.NoError(t, db.Create(a).Error)
	return a
}

// Reload fetches a fresh copy of dest by its primary key.
func Reload(t testing.TB, db *gorm.DB, dest interface{}, id uint) {
	t.Helper()
	require.NoError(t, db.First(dest, id).Error)
}
