package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/notify"
	"github.com/mrhexvel/ezgu/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HoursService struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      *zap.Logger
}

func NewHoursService(db *gorm.DB, notifier notify.Notifier, log *zap.Logger) *HoursService {
	return &HoursService{db: db, notifier: notifier, log: log}
}

type AwardResult struct {
	Participant *model.ProjectParticipant `json:"participant"`
	Log         *model.HoursLog           `json:"log"`
}

// Award credits hours to a participant of projectID. Participant hours,
// user hours and the log row are written in one transaction; both totals
// are incremented in SQL so concurrent awards add up.
func (s *HoursService) Award(ctx context.Context, projectID uint, awarder *model.User, participantID uint, hours float64, note string) (*AwardResult, error) {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, errorf(ErrInvalidInput, "hours must be a positive number")
	}
	if note == "" {
		note = fmt.Sprintf("Hours awarded by %s", awarder.Name)
	}

	var project model.Project
	var participant model.ProjectParticipant
	var user model.User
	entry := &model.HoursLog{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			return notFound(err, ErrProjectNotFound)
		}
		if err := tx.First(&participant, participantID).Error; err != nil {
			return notFound(err, ErrParticipantNotFound)
		}
		if participant.ProjectID != projectID {
			return ErrWrongProject
		}

		if err := tx.Model(&model.ProjectParticipant{}).Where("id = ?", participant.ID).Updates(map[string]interface{}{
			"hours":  gorm.Expr("hours + ?", hours),
			"status": model.ParticipantCompleted,
		}).Error; err != nil {
			return err
		}

		res := tx.Model(&model.User{}).Where("id = ?", participant.UserID).
			Update("hours", gorm.Expr("hours + ?", hours))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		if err := tx.First(&user, participant.UserID).Error; err != nil {
			return err
		}
		if level := model.LevelForHours(user.Hours); level > user.Level {
			if err := tx.Model(&user).Update("level", level).Error; err != nil {
				return err
			}
		}

		entry = &model.HoursLog{
			UserID:      participant.UserID,
			ProjectID:   projectID,
			Hours:       hours,
			Note:        note,
			AwardedByID: awarder.ID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(&participant, participant.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyHoursAwarded(ctx, notify.HoursAwardedEvent{
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
		Recipient:    notify.Recipient{UserID: user.ID, Name: user.Name, Email: user.Email},
		Hours:        hours,
		AwardedBy:    awarder.Name,
	}); err != nil {
		s.log.Warn("notify hours awarded", zap.Uint("participant_id", participant.ID), zap.Error(err))
	}
	return &AwardResult{Participant: &participant, Log: entry}, nil
}

// List returns the project's hours log, newest first, optionally for one user.
func (s *HoursService) List(ctx context.Context, projectID uint, userID uint) ([]model.HoursLog, error) {
	db := s.db.WithContext(ctx)
	var project model.Project
	if err := db.Select("id").First(&project, projectID).Error; err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	q := db.Preload("User").Preload("AwardedBy").Where("project_id = ?", projectID)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var logs []model.HoursLog
	err := q.Order("created_at DESC, id DESC").Find(&logs).Error
	return logs, err
}

type ProjectHours struct {
	ProjectID uint    `json:"project_id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Hours     float64 `json:"hours"`
}

type HoursSummary struct {
	Period        stats.Period   `json:"period"`
	TotalHours    float64        `json:"total_hours"`
	PeriodHours   float64        `json:"period_hours"`
	PreviousHours float64        `json:"previous_hours"`
	PeriodChange  float64        `json:"period_change"`
	Projects      []ProjectHours `json:"projects"`
	Chart         []stats.Point  `json:"chart"`
}

// Summary aggregates a user's hours log for the given period as seen at now.
func (s *HoursService) Summary(ctx context.Context, userID uint, period stats.Period, now time.Time) (*HoursSummary, error) {
	db := s.db.WithContext(ctx)
	var user model.User
	if err := db.Select("id").First(&user, userID).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	var participations []model.ProjectParticipant
	if err := db.Preload("Project").
		Where("user_id = ? AND hours > 0", userID).
		Order("hours DESC").
		Find(&participations).Error; err != nil {
		return nil, err
	}

	records, err := hoursRecords(db.Where("user_id = ?", userID))
	if err != nil {
		return nil, err
	}

	summary := &HoursSummary{Period: period, Projects: []ProjectHours{}}
	for _, p := range participations {
		summary.TotalHours += p.Hours
		ph := ProjectHours{ProjectID: p.ProjectID, Hours: p.Hours}
		if p.Project != nil {
			ph.Title = p.Project.Title
			ph.Slug = p.Project.Slug
		}
		summary.Projects = append(summary.Projects, ph)
	}
	start, prev := stats.Window(period, now)
	summary.PeriodHours = stats.Sum(records, start, time.Time{})
	summary.PreviousHours = stats.Sum(records, prev, start)
	summary.PeriodChange = stats.RoundGrowth(summary.PeriodHours, summary.PreviousHours)
	summary.Chart = stats.Bucketize(records, period, now)
	return summary, nil
}

// hoursRecords loads (created_at, hours) pairs from hours_logs narrowed by q.
func hoursRecords(q *gorm.DB) ([]stats.Record, error) {
	var rows []struct {
		CreatedAt time.Time
		Hours     float64
	}
	if err := q.Model(&model.HoursLog{}).Select("created_at, hours").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]stats.Record, len(rows))
	for i, r := range rows {
		records[i] = stats.Record{At: r.CreatedAt, Value: r.Hours}
	}
	return records, nil
}

// Drift is a stored total that disagrees with the hours log.
type Drift struct {
	Kind   string  `json:"kind"`
	ID     uint    `json:"id"`
	Stored float64 `json:"stored"`
	Logged float64 `json:"logged"`
}

const driftEpsilon = 1e-6

// Reconcile compares participant and user totals with the sums of the
// hours log. With fix set, drifting totals are overwritten by the log sums.
func (s *HoursService) Reconcile(ctx context.Context, fix bool) ([]Drift, error) {
	var drifts []Drift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pairSums []struct {
			UserID    uint
			ProjectID uint
			Total     float64
		}
		if err := tx.Model(&model.HoursLog{}).
			Select("user_id, project_id, SUM(hours) AS total").
			Group("user_id, project_id").
			Scan(&pairSums).Error; err != nil {
			return err
		}
		byPair := make(map[[2]uint]float64, len(pairSums))
		for _, r := range pairSums {
			byPair[[2]uint{r.UserID, r.ProjectID}] = r.Total
		}

		var participants []model.ProjectParticipant
		if err := tx.Select("id, user_id, project_id, hours").Find(&participants).Error; err != nil {
			return err
		}
		for _, p := range participants {
			logged := byPair[[2]uint{p.UserID, p.ProjectID}]
			if math.Abs(p.Hours-logged) > driftEpsilon {
				drifts = append(drifts, Drift{Kind: "participant", ID: p.ID, Stored: p.Hours, Logged: logged})
			}
		}

		var userSums []struct {
			UserID uint
			Total  float64
		}
		if err := tx.Model(&model.HoursLog{}).
			Select("user_id, SUM(hours) AS total").
			Group("user_id").
			Scan(&userSums).Error; err != nil {
			return err
		}
		byUser := make(map[uint]float64, len(userSums))
		for _, r := range userSums {
			byUser[r.UserID] = r.Total
		}

		var users []model.User
		if err := tx.Select("id, hours").Find(&users).Error; err != nil {
			return err
		}
		for _, u := range users {
			logged := byUser[u.ID]
			if math.Abs(u.Hours-logged) > driftEpsilon {
				drifts = append(drifts, Drift{Kind: "user", ID: u.ID, Stored: u.Hours, Logged: logged})
			}
		}

		if !fix {
			return nil
		}
		for _, d := range drifts {
			var err error
			if d.Kind == "user" {
				err = tx.Model(&model.User{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
					"hours": d.Logged,
					"level": model.LevelForHours(d.Logged),
				}).Error
			} else {
				err = tx.Model(&model.ProjectParticipant{}).Where("id = ?", d.ID).Update("hours", d.Logged).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	return drifts, err
}
