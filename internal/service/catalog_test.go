package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProjectCreateAndSlug(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProjectService(db)
	cat := testutil.CreateCategory(t, db, "environment")
	org := testutil.CreateUser(t, db, "olga", model.RoleOrganizer)

	p, err := svc.Create(ctx, ProjectInput{
		Title:       strPtr("Café Park Cleanup"),
		Description: strPtr(`<p>Bring gloves</p><script>alert(1)</script>`),
		CategoryID:  &cat.ID,
	}, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "cafe-park-cleanup", p.Slug)
	assert.Equal(t, model.ProjectUpcoming, p.Status)
	assert.Equal(t, "<p>Bring gloves</p>", p.Description)
	require.NotNil(t, p.Category)
	assert.Equal(t, cat.ID, p.Category.ID)

	_, err = svc.Create(ctx, ProjectInput{Title: strPtr("Cafe park cleanup")}, org.ID)
	assert.ErrorIs(t, err, ErrSlugTaken)

	bySlug, err := svc.Get(ctx, "cafe-park-cleanup")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	_, err = svc.Get(ctx, "missing-slug")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectNumericTitleSlug(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProjectService(db)

	p, err := svc.Create(ctx, ProjectInput{Title: strPtr("2024")}, 1)
	require.NoError(t, err)
	assert.Equal(t, "project-2024", p.Slug)

	bySlug, err := svc.Get(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	assert.Equal(t, "news-42", makeSlug("news", "42"))
	assert.Equal(t, "2024-summer", makeSlug("news", "2024 Summer"))
}

func TestProjectCreateValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProjectService(db)
	start := time.Now().UTC()
	end := start.Add(-time.Hour)
	missingCategory := uint(4242)

	tests := []struct {
		name string
		in   ProjectInput
		want error
	}{
		{"empty title", ProjectInput{Title: strPtr("  ")}, ErrInvalidInput},
		{"bad status", ProjectInput{Title: strPtr("A"), Status: strPtr("paused")}, ErrInvalidInput},
		{"end before start", ProjectInput{Title: strPtr("A"), StartDate: &start, EndDate: &end}, ErrInvalidInput},
		{"unknown category", ProjectInput{Title: strPtr("A"), CategoryID: &missingCategory}, ErrCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in, 1)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProjectUpdateKeepsSlugUnlessTitleChanges(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProjectService(db)

	p, err := svc.Create(ctx, ProjectInput{Title: strPtr("Beach Day")}, 1)
	require.NoError(t, err)
	other, err := svc.Create(ctx, ProjectInput{Title: strPtr("River Day")}, 1)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, ProjectInput{Status: strPtr(model.ProjectActive), Location: strPtr("Pier 4")})
	require.NoError(t, err)
	assert.Equal(t, "beach-day", updated.Slug)
	assert.Equal(t, model.ProjectActive, updated.Status)
	assert.Equal(t, "Pier 4", updated.Location)

	updated, err = svc.Update(ctx, p.ID, ProjectInput{Title: strPtr("Beach Week")})
	require.NoError(t, err)
	assert.Equal(t, "beach-week", updated.Slug)

	_, err = svc.Update(ctx, p.ID, ProjectInput{Title: strPtr("River Day")})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Update(ctx, 4242, ProjectInput{})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.Update(ctx, other.ID, ProjectInput{Title: strPtr("River Day")})
	assert.NoError(t, err)
}

func TestProjectListFiltersAndCounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProjectService(db)
	env := testutil.CreateCategory(t, db, "environment")
	p1 := testutil.CreateProject(t, db, "Park Cleanup", &env.ID)
	testutil.CreateProject(t, db, "Food Bank", nil)
	a := testutil.CreateUser(t, db, "anna", model.RoleVolunteer)
	b := testutil.CreateUser(t, db, "boris", model.RoleVolunteer)
	c := testutil.CreateUser(t, db, "clara", model.RoleVolunteer)
	testutil.CreateParticipant(t, db, p1.ID, a.ID, model.ParticipantRegistered)
	testutil.CreateParticipant(t, db, p1.ID, b.ID, model.ParticipantCompleted)
	testutil.CreateParticipant(t, db, p1.ID, c.ID, model.ParticipantRejected)

	list, total, err := svc.List(ctx, ProjectFilter{}, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = svc.List(ctx, ProjectFilter{Search: "park"}, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, int64(2), list[0].VolunteerCount)

	_, total, err = svc.List(ctx, ProjectFilter{Category: env.Slug}, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.List(ctx, ProjectFilter{Category: strconv.Itoa(int(env.ID))}, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	list, total, err = svc.List(ctx, ProjectFilter{}, Page{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 1)

	got, err := svc.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Len(t, got.Participants, 3)
	assert.Equal(t, int64(2), got.VolunteerCount)
}

func TestProjectDeleteKeepsHoursLog(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProjectService(db)
	p := testutil.CreateProject(t, db, "Park Cleanup", nil)
	v := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	testutil.CreateParticipant(t, db, p.ID, v.ID, model.ParticipantCompleted)
	testutil.CreateInvitation(t, db, p.ID, v.ID, 1)
	require.NoError(t, db.Create(&model.HoursLog{UserID: v.ID, ProjectID: p.ID, Hours: 2, AwardedByID: 1}).Error)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrProjectNotFound)

	var participants, invitations, logs int64
	db.Model(&model.ProjectParticipant{}).Count(&participants)
	db.Model(&model.ProjectInvitation{}).Count(&invitations)
	db.Model(&model.HoursLog{}).Count(&logs)
	assert.Zero(t, participants)
	assert.Zero(t, invitations)
	assert.Equal(t, int64(1), logs)
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewCategoryService(db)

	c, err := svc.Create(ctx, CategoryInput{Name: strPtr("Animal Care"), Color: strPtr("#aa0000")})
	require.NoError(t, err)
	assert.Equal(t, "animal-care", c.Slug)

	_, err = svc.Create(ctx, CategoryInput{Name: strPtr("animal care")})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Create(ctx, CategoryInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	testutil.CreateProject(t, db, "Shelter Walks", &c.ID)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ProjectCount)

	err = svc.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	updated, err := svc.Update(ctx, c.ID, CategoryInput{Name: strPtr("Animals")})
	require.NoError(t, err)
	assert.Equal(t, "animals", updated.Slug)
	assert.Equal(t, "#aa0000", updated.Color)

	empty, err := svc.Create(ctx, CategoryInput{Name: strPtr("Elderly")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, empty.ID))
	_, err = svc.Get(ctx, "elderly")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestArticlesAreScopedByKind(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	news := NewNewsService(db)
	stories := NewStoryService(db)
	featured := true

	n, err := news.Create(ctx, ArticleInput{
		Title:    strPtr("Spring Drive"),
		Excerpt:  strPtr("<b>Short</b> summary"),
		Content:  strPtr(`<p>Body</p><img src="x" onerror="alert(1)">`),
		Featured: &featured,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "spring-drive", n.Slug)
	assert.Equal(t, "Short summary", n.Excerpt)
	assert.NotContains(t, n.Content, "onerror")

	// The same slug is free for the other kind.
	s, err := stories.Create(ctx, ArticleInput{Title: strPtr("Spring Drive"), Content: strPtr("story")}, 1)
	require.NoError(t, err)
	assert.Equal(t, model.KindStory, s.Kind)

	_, err = news.Create(ctx, ArticleInput{Title: strPtr("Spring drive"), Content: strPtr("dup")}, 1)
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = news.Create(ctx, ArticleInput{Title: strPtr("No body")}, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = stories.Get(ctx, strconv.Itoa(int(n.ID)))
	assert.ErrorIs(t, err, ErrStoryNotFound)

	list, total, err := news.List(ctx, ArticleFilter{Featured: &featured}, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, n.ID, list[0].ID)

	notFeatured := false
	_, total, err = news.List(ctx, ArticleFilter{Featured: &notFeatured}, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	updated, err := news.Update(ctx, n.ID, ArticleInput{Title: strPtr("Summer Drive")})
	require.NoError(t, err)
	assert.Equal(t, "summer-drive", updated.Slug)

	assert.ErrorIs(t, stories.Delete(ctx, n.ID), ErrStoryNotFound)
	require.NoError(t, news.Delete(ctx, n.ID))
	_, err = news.Get(ctx, "summer-drive")
	assert.ErrorIs(t, err, ErrNewsNotFound)
}

func TestAchievementAwardAndRevoke(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewAchievementService(db)
	v := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	org := testutil.CreateUser(t, db, "olga", model.RoleOrganizer)
	a := testutil.CreateAchievement(t, db, "First Steps", 10)

	ua, err := svc.Award(ctx, a.ID, v.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, ua.AwardedByID)

	_, err = svc.Award(ctx, a.ID, v.ID, org.ID)
	assert.ErrorIs(t, err, ErrAlreadyAwarded)

	var user model.User
	testutil.Reload(t, db, &user, v.ID)
	assert.Equal(t, 10, user.Points)

	held, err := svc.ListForUser(ctx, v.ID, 0)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "First Steps", held[0].Achievement.Title)

	require.NoError(t, svc.Revoke(ctx, a.ID, v.ID))
	assert.ErrorIs(t, svc.Revoke(ctx, a.ID, v.ID), ErrAwardNotFound)
	testutil.Reload(t, db, &user, v.ID)
	assert.Equal(t, 0, user.Points)

	_, err = svc.Award(ctx, 4242, v.ID, org.ID)
	assert.ErrorIs(t, err, ErrAchievementNotFound)
	_, err = svc.Award(ctx, a.ID, 4242, org.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAchievementDeleteTakesPointsBack(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewAchievementService(db)
	v := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	keep := testutil.CreateAchievement(t, db, "Helper", 5)
	drop := testutil.CreateAchievement(t, db, "Hero", 20)
	_, err := svc.Award(ctx, keep.ID, v.ID, 1)
	require.NoError(t, err)
	_, err = svc.Award(ctx, drop.ID, v.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, drop.ID))

	var user model.User
	testutil.Reload(t, db, &user, v.ID)
	assert.Equal(t, 5, user.Points)
	var grants int64
	db.Model(&model.UserAchievement{}).Count(&grants)
	assert.Equal(t, int64(1), grants)
}

func TestAchievementRevokeUsesAwardedPoints(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewAchievementService(db)
	v := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	a := testutil.CreateAchievement(t, db, "First Steps", 10)

	ua, err := svc.Award(ctx, a.ID, v.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, ua.Points)

	fifty := 50
	_, err = svc.Update(ctx, a.ID, AchievementInput{Points: &fifty})
	require.NoError(t, err)

	var user model.User
	testutil.Reload(t, db, &user, v.ID)
	assert.Equal(t, 10, user.Points)

	require.NoError(t, svc.Revoke(ctx, a.ID, v.ID))
	testutil.Reload(t, db, &user, v.ID)
	assert.Equal(t, 0, user.Points)
}

func TestAchievementDeleteUsesAwardedPoints(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewAchievementService(db)
	early := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	late := testutil.CreateUser(t, db, "lena", model.RoleVolunteer)
	a := testutil.CreateAchievement(t, db, "Hero", 10)

	_, err := svc.Award(ctx, a.ID, early.ID, 1)
	require.NoError(t, err)
	thirty := 30
	_, err = svc.Update(ctx, a.ID, AchievementInput{Points: &thirty})
	require.NoError(t, err)
	_, err = svc.Award(ctx, a.ID, late.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))

	var user model.User
	testutil.Reload(t, db, &user, early.ID)
	assert.Equal(t, 0, user.Points)
	testutil.Reload(t, db, &user, late.ID)
	assert.Equal(t, 0, user.Points)
}

func TestAchievementValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewAchievementService(db)
	neg := -1

	_, err := svc.Create(ctx, AchievementInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, AchievementInput{Title: strPtr("X"), Points: &neg})
	assert.ErrorIs(t, err, ErrInvalidInput)

	points := 15
	a, err := svc.Create(ctx, AchievementInput{Title: strPtr("Organizer"), Points: &points})
	require.NoError(t, err)
	updated, err := svc.Update(ctx, a.ID, AchievementInput{Icon: strPtr("star")})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Points)
	assert.Equal(t, "star", updated.Icon)
}
