package service

import (
	"context"
	"time"

	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/stats"
	"gorm.io/gorm"
)

const recentLimit = 5

type DashboardService struct {
	db         *gorm.DB
	categories *CategoryService
	projects   *ProjectService
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		db:         db,
		categories: NewCategoryService(db),
		projects:   NewProjectService(db),
	}
}

// Metric is a total plus the amount added in the current and previous window.
type Metric struct {
	Total    float64 `json:"total"`
	New      float64 `json:"new"`
	Previous float64 `json:"previous"`
	Growth   float64 `json:"growth"`
}

type Activity struct {
	Labels   []string  `json:"labels"`
	Users    []float64 `json:"users"`
	Projects []float64 `json:"projects"`
	Hours    []float64 `json:"hours"`
}

type AdminStats struct {
	Period         stats.Period      `json:"period"`
	Users          Metric            `json:"users"`
	Projects       Metric            `json:"projects"`
	Hours          Metric            `json:"hours"`
	Activity       Activity          `json:"activity"`
	RecentUsers    []model.UserBrief `json:"recent_users"`
	RecentProjects []model.Project   `json:"recent_projects"`
}

func countMetric(db *gorm.DB, m interface{}, start, prev time.Time) (Metric, error) {
	var total, current, previous int64
	if err := db.Model(m).Count(&total).Error; err != nil {
		return Metric{}, err
	}
	if err := db.Model(m).Where("created_at >= ?", start).Count(&current).Error; err != nil {
		return Metric{}, err
	}
	if err := db.Model(m).Where("created_at >= ? AND created_at < ?", prev, start).Count(&previous).Error; err != nil {
		return Metric{}, err
	}
	return Metric{
		Total:    float64(total),
		New:      float64(current),
		Previous: float64(previous),
		Growth:   windowGrowth(start, prev, float64(current), float64(previous)),
	}, nil
}

// windowGrowth is zero when there is no previous window to compare with.
func windowGrowth(start, prev time.Time, current, previous float64) float64 {
	if !prev.Before(start) {
		return 0
	}
	return stats.RoundGrowth(current, previous)
}

func sumHours(q *gorm.DB) (float64, error) {
	var total float64
	err := q.Select("COALESCE(SUM(hours), 0)").Scan(&total).Error
	return total, err
}

func createdTimes(db *gorm.DB, m interface{}, from time.Time) ([]time.Time, error) {
	var times []time.Time
	err := db.Model(m).Where("created_at >= ?", from).Pluck("created_at", &times).Error
	return times, err
}

// AdminStats reports platform growth for period as seen at now.
func (s *DashboardService) AdminStats(ctx context.Context, period stats.Period, now time.Time) (*AdminStats, error) {
	db := s.db.WithContext(ctx)
	now = now.UTC()
	start, prev := stats.Window(period, now)
	out := &AdminStats{Period: period}

	var err error
	if out.Users, err = countMetric(db, &model.User{}, start, prev); err != nil {
		return nil, err
	}
	if out.Projects, err = countMetric(db, &model.Project{}, start, prev); err != nil {
		return nil, err
	}

	if out.Hours.Total, err = sumHours(db.Model(&model.ProjectParticipant{})); err != nil {
		return nil, err
	}
	if out.Hours.New, err = sumHours(db.Model(&model.HoursLog{}).Where("created_at >= ?", start)); err != nil {
		return nil, err
	}
	if out.Hours.Previous, err = sumHours(db.Model(&model.HoursLog{}).Where("created_at >= ? AND created_at < ?", prev, start)); err != nil {
		return nil, err
	}
	out.Hours.Growth = windowGrowth(start, prev, out.Hours.New, out.Hours.Previous)

	from, _ := stats.Span(period, now)
	userTimes, err := createdTimes(db, &model.User{}, from)
	if err != nil {
		return nil, err
	}
	projectTimes, err := createdTimes(db, &model.Project{}, from)
	if err != nil {
		return nil, err
	}
	hourRecords, err := hoursRecords(db.Where("created_at >= ?", from))
	if err != nil {
		return nil, err
	}
	users := stats.Counts(userTimes, period, now)
	out.Activity = Activity{
		Labels:   stats.Labels(users),
		Users:    stats.Values(users),
		Projects: stats.Values(stats.Counts(projectTimes, period, now)),
		Hours:    stats.Values(stats.Bucketize(hourRecords, period, now)),
	}

	if out.RecentUsers, err = s.recentUsers(db); err != nil {
		return nil, err
	}
	if out.RecentProjects, err = s.recentProjects(db); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) recentUsers(db *gorm.DB) ([]model.UserBrief, error) {
	var users []model.User
	if err := db.Order("created_at DESC, id DESC").Limit(recentLimit).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]model.UserBrief, len(users))
	for i := range users {
		out[i] = users[i].Brief()
	}
	return out, nil
}

func (s *DashboardService) recentProjects(db *gorm.DB) ([]model.Project, error) {
	var projects []model.Project
	err := db.Preload("Category").Order("created_at DESC, id DESC").Limit(recentLimit).Find(&projects).Error
	return projects, err
}

type Totals struct {
	Users      int64   `json:"users"`
	Volunteers int64   `json:"volunteers"`
	Projects   int64   `json:"projects"`
	Hours      float64 `json:"hours"`
}

type AdminDashboard struct {
	Role           string            `json:"role"`
	Period         stats.Period      `json:"period"`
	Totals         Totals            `json:"totals"`
	NewUsers       int64             `json:"new_users"`
	NewProjects    int64             `json:"new_projects"`
	Categories     []model.Category  `json:"categories"`
	ProjectStatus  map[string]int64  `json:"project_status"`
	RecentUsers    []model.UserBrief `json:"recent_users"`
	RecentProjects []model.Project   `json:"recent_projects"`
}

type MemberDashboard struct {
	Role               string                     `json:"role"`
	Period             stats.Period               `json:"period"`
	Projects           int64                      `json:"projects"`
	Hours              float64                    `json:"hours"`
	Achievements       int64                      `json:"achievements"`
	Points             int                        `json:"points"`
	Level              int                        `json:"level"`
	LevelProgress      float64                    `json:"level_progress"`
	NewProjects        int64                      `json:"new_projects"`
	NewHours           float64                    `json:"new_hours"`
	NewAchievements    int64                      `json:"new_achievements"`
	UpcomingProjects   []model.Project            `json:"upcoming_projects"`
	RecentAchievements []model.UserAchievement    `json:"recent_achievements"`
	Participations     []model.ProjectParticipant `json:"participations"`
}

// Dashboard returns the admin overview for admins and a personal summary
// for everyone else.
func (s *DashboardService) Dashboard(ctx context.Context, user *model.User, period stats.Period, now time.Time) (interface{}, error) {
	if user.IsAdmin() {
		return s.adminDashboard(ctx, period, now.UTC())
	}
	return s.memberDashboard(ctx, user, period, now.UTC())
}

func (s *DashboardService) adminDashboard(ctx context.Context, period stats.Period, now time.Time) (*AdminDashboard, error) {
	db := s.db.WithContext(ctx)
	start, _ := stats.Window(period, now)
	out := &AdminDashboard{Role: model.RoleAdmin, Period: period, ProjectStatus: map[string]int64{}}

	if err := db.Model(&model.User{}).Count(&out.Totals.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleVolunteer).Count(&out.Totals.Volunteers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Project{}).Count(&out.Totals.Projects).Error; err != nil {
		return nil, err
	}
	var err error
	if out.Totals.Hours, err = sumHours(db.Model(&model.ProjectParticipant{})); err != nil {
		return nil, err
	}
	if err := db.Model(&model.User{}).Where("created_at >= ?", start).Count(&out.NewUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Project{}).Where("created_at >= ?", start).Count(&out.NewProjects).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		N      int64
	}
	if err := db.Model(&model.Project{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.ProjectStatus[r.Status] = r.N
	}

	if out.Categories, err = s.categories.List(ctx); err != nil {
		return nil, err
	}
	if out.RecentUsers, err = s.recentUsers(db); err != nil {
		return nil, err
	}
	if out.RecentProjects, err = s.recentProjects(db); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) memberDashboard(ctx context.Context, user *model.User, period stats.Period, now time.Time) (*MemberDashboard, error) {
	db := s.db.WithContext(ctx)
	start, _ := stats.Window(period, now)

	var fresh model.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	out := &MemberDashboard{
		Role:          fresh.Role,
		Period:        period,
		Hours:         fresh.Hours,
		Points:        fresh.Points,
		Level:         fresh.Level,
		LevelProgress: fresh.LevelProgress(),
	}

	if err := db.Model(&model.ProjectParticipant{}).Where("user_id = ?", user.ID).Count(&out.Projects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.ProjectParticipant{}).Where("user_id = ? AND created_at >= ?", user.ID, start).Count(&out.NewProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.UserAchievement{}).Where("user_id = ?", user.ID).Count(&out.Achievements).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.UserAchievement{}).Where("user_id = ? AND awarded_at >= ?", user.ID, start).Count(&out.NewAchievements).Error; err != nil {
		return nil, err
	}
	var err error
	if out.NewHours, err = sumHours(db.Model(&model.HoursLog{}).Where("user_id = ? AND created_at >= ?", user.ID, start)); err != nil {
		return nil, err
	}

	if err := db.Preload("Project.Category").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(recentLimit).
		Find(&out.Participations).Error; err != nil {
		return nil, err
	}

	mine := db.Model(&model.ProjectParticipant{}).Select("project_id").Where("user_id = ?", user.ID)
	if err := db.Preload("Category").
		Where("id IN (?) AND start_date >= ?", mine, now).
		Order("start_date ASC").
		Limit(recentLimit).
		Find(&out.UpcomingProjects).Error; err != nil {
		return nil, err
	}
	if len(out.UpcomingProjects) == 0 {
		if out.UpcomingProjects, err = s.projects.Upcoming(ctx, now, recentLimit); err != nil {
			return nil, err
		}
	}

	if err := db.Preload("Achievement").
		Where("user_id = ?", user.ID).
		Order("awarded_at DESC, id DESC").
		Limit(3).
		Find(&out.RecentAchievements).Error; err != nil {
		return nil, err
	}
	return out, nil
}
