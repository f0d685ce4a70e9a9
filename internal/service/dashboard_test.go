package service

import (
	"context"
	"testing"
	"time"

	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/stats"
	"github.com/mrhexvel/ezgu/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewDashboardService(db)
	now := time.Now().UTC()

	admin := testutil.CreateUser(t, db, "ada", model.RoleAdmin)
	v := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	old := testutil.CreateUser(t, db, "old", model.RoleVolunteer)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", old.ID).
		Update("created_at", now.AddDate(0, 0, -10)).Error)

	p := testutil.CreateProject(t, db, "Park Cleanup", nil)
	part := testutil.CreateParticipant(t, db, p.ID, v.ID, model.ParticipantCompleted)
	require.NoError(t, db.Model(part).Update("hours", 6).Error)
	require.NoError(t, db.Create(&model.HoursLog{UserID: v.ID, ProjectID: p.ID, Hours: 4, AwardedByID: admin.ID}).Error)
	require.NoError(t, db.Create(&model.HoursLog{
		UserID: v.ID, ProjectID: p.ID, Hours: 2, AwardedByID: admin.ID, CreatedAt: now.AddDate(0, 0, -9),
	}).Error)

	got, err := svc.AdminStats(ctx, stats.Weekly, now)
	require.NoError(t, err)

	assert.Equal(t, Metric{Total: 3, New: 2, Previous: 1, Growth: 100}, got.Users)
	assert.Equal(t, Metric{Total: 1, New: 1, Previous: 0, Growth: 100}, got.Projects)
	assert.Equal(t, Metric{Total: 6, New: 4, Previous: 2, Growth: 100}, got.Hours)

	require.Len(t, got.Activity.Labels, 7)
	assert.Len(t, got.Activity.Users, 7)
	assert.Equal(t, 2.0, got.Activity.Users[6])
	assert.Equal(t, 4.0, got.Activity.Hours[6])
	assert.Len(t, got.RecentUsers, 3)
	assert.Len(t, got.RecentProjects, 1)
}

func TestAdminStatsEmptyDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDashboardService(db)

	for _, p := range []stats.Period{stats.Weekly, stats.Monthly, stats.Yearly, stats.All} {
		got, err := svc.AdminStats(context.Background(), p, time.Now())
		require.NoError(t, err)
		assert.Zero(t, got.Users.Growth)
		assert.Equal(t, len(stats.Buckets(p, time.Now().UTC())), len(got.Activity.Labels))
	}
}

func TestAdminStatsAllTimeHasNoGrowth(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDashboardService(db)
	v := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	p := testutil.CreateProject(t, db, "Park Cleanup", nil)
	require.NoError(t, db.Create(&model.HoursLog{UserID: v.ID, ProjectID: p.ID, Hours: 3, AwardedByID: v.ID}).Error)

	got, err := svc.AdminStats(context.Background(), stats.All, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Metric{Total: 1, New: 1, Previous: 0, Growth: 0}, got.Users)
	assert.Equal(t, Metric{Total: 1, New: 1, Previous: 0, Growth: 0}, got.Projects)
	assert.Equal(t, 3.0, got.Hours.New)
	assert.Zero(t, got.Hours.Growth)
}

func TestDashboardByRole(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewDashboardService(db)
	now := time.Now().UTC()

	admin := testutil.CreateUser(t, db, "ada", model.RoleAdmin)
	v := testutil.CreateUser(t, db, "vera", model.RoleVolunteer)
	cat := testutil.CreateCategory(t, db, "parks")
	p := testutil.CreateProject(t, db, "Park Cleanup", &cat.ID)
	testutil.CreateProject(t, db, "Food Bank", nil)
	testutil.CreateParticipant(t, db, p.ID, v.ID, model.ParticipantConfirmed)
	ach := testutil.CreateAchievement(t, db, "First Steps", 10)
	_, err := NewAchievementService(db).Award(ctx, ach.ID, v.ID, admin.ID)
	require.NoError(t, err)

	out, err := svc.Dashboard(ctx, admin, stats.Monthly, now)
	require.NoError(t, err)
	ad, ok := out.(*AdminDashboard)
	require.True(t, ok)
	assert.Equal(t, int64(2), ad.Totals.Users)
	assert.Equal(t, int64(1), ad.Totals.Volunteers)
	assert.Equal(t, int64(2), ad.ProjectStatus[model.ProjectUpcoming])
	require.Len(t, ad.Categories, 1)
	assert.Equal(t, int64(1), ad.Categories[0].ProjectCount)

	out, err = svc.Dashboard(ctx, v, stats.Monthly, now)
	require.NoError(t, err)
	md, ok := out.(*MemberDashboard)
	require.True(t, ok)
	assert.Equal(t, int64(1), md.Projects)
	assert.Equal(t, int64(1), md.Achievements)
	assert.Equal(t, int64(1), md.NewAchievements)
	assert.Equal(t, 10, md.Points)
	require.Len(t, md.UpcomingProjects, 1)
	assert.Equal(t, p.ID, md.UpcomingProjects[0].ID)
	require.Len(t, md.RecentAchievements, 1)
}
