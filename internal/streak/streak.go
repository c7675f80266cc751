// Package streak records devotion completions and maintains the prayer
// streak, best streak, and achievements inside a single database
// transaction.
package streak

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/devotions-api/internal/database"
)

// Result reports what a completion did to the user's streak.
type Result struct {
	Streak           int    `json:"streak"`
	BestStreak       int    `json:"best_streak"`
	AlreadyPrayed    bool   `json:"already_prayed"`
	DevotionsToday   int    `json:"devotions_today_count"`
	MilestoneReached bool   `json:"milestone_reached"`
	MilestoneMsg     string `json:"milestone_msg,omitempty"`
	Message          string `json:"message"`
}

type milestone struct {
	days  int
	title string
	icon  string
}

// milestones are checked lowest first so backfilled achievements land in
// order.
var milestones = []milestone{
	{7, "1 Week Streak", "🔥"},
	{30, "1 Month Streak", "🎗️"},
	{90, "3 Months Streak", "🥉"},
	{180, "6 Months Streak", "🥈"},
	{270, "9 Months Streak", "🥇"},
	{365, "1 Year Streak", "🏆"},
}

// requiredOffices must all be completed on one local day for the daily
// office achievement.
var requiredOffices = []string{"morning", "midday", "evening", "close_of_day"}

// Service applies completions against the database.
type Service struct {
	db     *database.DB
	logger *slog.Logger
}

func NewService(db *database.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// RecordCompletion marks devotionType complete for the user and updates the
// streak. "Today" is judged in the user's timezone; an unknown zone falls
// back to UTC. The read-modify-write runs in one transaction so concurrent
// completions cannot double-increment.
func (s *Service) RecordCompletion(ctx context.Context, userID, devotionType, timezone string, now time.Time) (*Result, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	todayStr := local.Format("2006-01-02")

	var result *Result
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		user, err := database.GetUserTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("loading user %s: %w", userID, err)
		}

		if user.CompletedDevotions == nil {
			user.CompletedDevotions = make(map[string]string)
		}
		user.CompletedDevotions[devotionType] = local.Format(time.RFC3339)

		devotionsToday := 0
		for _, ts := range user.CompletedDevotions {
			if len(ts) >= len(todayStr) && ts[:len(todayStr)] == todayStr {
				devotionsToday++
			}
		}

		streak, updated := nextStreak(user.StreakCount, user.LastPrayerDate, local)
		if updated {
			user.StreakCount = streak
		}
		if streak > user.BestStreakCount {
			user.BestStreakCount = streak
		}
		user.LastPrayerDate = todayStr

		result = &Result{
			Streak:         streak,
			BestStreak:     user.BestStreakCount,
			AlreadyPrayed:  !updated,
			DevotionsToday: devotionsToday,
		}

		s.applyMilestones(user, streak, todayStr, result)
		s.applyDailyOffice(user, todayStr, result)

		if updated {
			result.Message = fmt.Sprintf("Prayer recorded! Current Streak: %d days", streak)
		} else {
			result.Message = fmt.Sprintf("You've already prayed today! Streak: %d", streak)
		}
		if devotionsToday > 1 {
			result.Message += fmt.Sprintf(". You have completed %d devotions today!", devotionsToday)
		}

		return database.SaveUserStreakTx(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("devotion completed",
		"user_id", userID, "devotion", devotionType,
		"streak", result.Streak, "already_prayed", result.AlreadyPrayed)
	return result, nil
}

// nextStreak computes the streak after a completion on the local day of
// now: unchanged when already counted today, incremented when yesterday was
// the last prayer day, reset to 1 otherwise.
func nextStreak(current int, lastDateStr string, now time.Time) (streak int, updated bool) {
	today := now.Format("2006-01-02")
	if lastDateStr == today {
		return current, false
	}
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if lastDateStr == yesterday {
		return current + 1, true
	}
	return 1, true
}

func (s *Service) applyMilestones(user *database.User, streak int, todayStr string, result *Result) {
	for _, m := range milestones {
		if m.days <= streak {
			s.addAchievement(user, fmt.Sprintf("streak_%d", m.days), m.title, m.icon, todayStr, result)
		}
	}
	// Past a year, every further 90 days earns a dated crown.
	if streak > 365 && (streak-365)%90 == 0 && !result.AlreadyPrayed {
		s.addAchievement(user, fmt.Sprintf("streak_%d", streak),
			fmt.Sprintf("%d Day Streak", streak), "👑", todayStr, result)
	}
}

func (s *Service) applyDailyOffice(user *database.User, todayStr string, result *Result) {
	for _, office := range requiredOffices {
		ts, ok := user.CompletedDevotions[office]
		if !ok || len(ts) < len(todayStr) || ts[:len(todayStr)] != todayStr {
			return
		}
	}
	s.addAchievement(user, "daily_office_"+todayStr, "Daily Office Completed", "📖", todayStr, result)
}

func (s *Service) addAchievement(user *database.User, id, title, icon, todayStr string, result *Result) {
	for _, a := range user.Achievements {
		if a.ID == id {
			return
		}
	}
	user.Achievements = append(user.Achievements, database.Achievement{
		ID: id, Title: title, Date: todayStr, Icon: icon,
	})
	if !result.MilestoneReached {
		result.MilestoneReached = true
		result.MilestoneMsg = fmt.Sprintf("Achievement Unlocked: %s!", title)
	}
}
