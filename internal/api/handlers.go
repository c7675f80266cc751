// Package api implements the HTTP surface: day resolution, the calendar
// grid, reminders, and devotion completions.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zapponejosh/devotions-api/internal/calendar"
	"github.com/zapponejosh/devotions-api/internal/config"
	"github.com/zapponejosh/devotions-api/internal/database"
	"github.com/zapponejosh/devotions-api/internal/devotion"
	"github.com/zapponejosh/devotions-api/internal/observance"
	"github.com/zapponejosh/devotions-api/internal/reminder"
	"github.com/zapponejosh/devotions-api/internal/streak"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db        *database.DB
	registry  *observance.Registry
	assembler *devotion.Assembler
	streaks   *streak.Service
	cfg       *config.Config
	logger    *slog.Logger

	now func() time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(db *database.DB, registry *observance.Registry, assembler *devotion.Assembler, streaks *streak.Service, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:        db,
		registry:  registry,
		assembler: assembler,
		streaks:   streaks,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// HealthCheck returns service health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"status": "ok"})
}

// DayResponse combines the resolved liturgical day with its devotion
// content.
type DayResponse struct {
	observance.Day
	Devotion *devotion.Data `json:"devotion"`
}

// GetToday resolves the current date in the configured default timezone.
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	loc, err := time.LoadLocation(h.cfg.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	h.writeDay(w, r, calendar.Midnight(h.now().In(loc)))
}

// GetDay resolves an explicit YYYY-MM-DD date.
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDateString(chi.URLParam(r, "date"))
	if err != nil {
		WriteBadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	h.writeDay(w, r, date)
}

func (h *Handlers) writeDay(w http.ResponseWriter, r *http.Request, date time.Time) {
	cy := calendar.NewChurchYear(date.Year())
	day := observance.Resolve(date, cy, h.registry)

	data, err := h.assembler.ForOffice(r.Context(), date, r.URL.Query().Get("office"))
	if err != nil {
		h.logger.Error("assembling devotion", "date", calendar.FormatDate(date), "error", err)
		WriteInternalError(w, "Failed to assemble devotion")
		return
	}

	WriteSuccess(w, DayResponse{Day: day, Devotion: data})
}

// GetCalendarMonth returns the month grid. Absent or malformed year/month
// query parameters fall back to the current month rather than erroring, so
// the calendar page always renders.
func (h *Handlers) GetCalendarMonth(w http.ResponseWriter, r *http.Request) {
	loc, err := time.LoadLocation(h.cfg.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	today := calendar.Midnight(h.now().In(loc))

	year := today.Year()
	month := today.Month()
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y >= 1583 && y <= 4099 {
		year = y
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}

	grid := observance.MonthGrid(year, month, today, h.registry)
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	WriteSuccess(w, map[string]interface{}{
		"year":       year,
		"month":      int(month),
		"weeks":      grid,
		"prev_year":  prev.Year(),
		"prev_month": int(prev.Month()),
		"next_year":  next.Year(),
		"next_month": int(next.Month()),
	})
}

// CreateReminderRequest is the body for POST /reminders.
type CreateReminderRequest struct {
	TimeOfDay   string   `json:"time_of_day"`
	Timezone    string   `json:"timezone"`
	Devotion    string   `json:"devotion"`
	Methods     []string `json:"methods"`
	ReadingType string   `json:"reading_type,omitempty"`
}

var validMethods = map[string]bool{"push": true, "sms": true, "email": true}

// CreateReminder validates and stores a new reminder, computing its first
// run time.
func (h *Handlers) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	if _, _, err := reminder.ParseTimeOfDay(req.TimeOfDay); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if !devotion.Known(req.Devotion) {
		WriteBadRequest(w, "Unknown devotion: "+req.Devotion)
		return
	}
	if len(req.Methods) == 0 {
		WriteBadRequest(w, "At least one delivery method is required")
		return
	}
	for _, m := range req.Methods {
		if !validMethods[m] {
			WriteBadRequest(w, "Unknown delivery method: "+m)
			return
		}
	}
	if req.Timezone == "" {
		req.Timezone = h.cfg.DefaultTimezone
	}

	next, err := reminder.NextRun(req.TimeOfDay, req.Timezone, h.now())
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	userID := GetUserID(r)
	if err := h.db.UpsertUser(r.Context(), database.User{ID: userID}); err != nil {
		h.logger.Error("ensuring user exists", "user_id", userID, "error", err)
		WriteInternalError(w, "Failed to create reminder")
		return
	}

	rec := database.Reminder{
		ID:          uuid.New(),
		UserID:      userID,
		TimeOfDay:   req.TimeOfDay,
		Timezone:    req.Timezone,
		Devotion:    req.Devotion,
		Methods:     req.Methods,
		ReadingType: req.ReadingType,
		NextRunUTC:  next,
	}
	if err := h.db.CreateReminder(r.Context(), rec); err != nil {
		h.logger.Error("creating reminder", "user_id", userID, "error", err)
		WriteInternalError(w, "Failed to create reminder")
		return
	}

	WriteCreated(w, rec)
}

// ListReminders returns the caller's reminders with display names attached.
func (h *Handlers) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)
	reminders, err := h.db.GetRemindersByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("listing reminders", "user_id", userID, "error", err)
		WriteInternalError(w, "Failed to list reminders")
		return
	}

	type listItem struct {
		database.Reminder
		DevotionName string `json:"devotion_name"`
	}
	items := make([]listItem, 0, len(reminders))
	for _, rec := range reminders {
		name, ok := devotion.Names[rec.Devotion]
		if !ok {
			name = rec.Devotion
		}
		items = append(items, listItem{Reminder: rec, DevotionName: name})
	}
	WriteSuccess(w, items)
}

// DeleteReminder removes one of the caller's reminders.
func (h *Handlers) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteBadRequest(w, "Invalid reminder id")
		return
	}

	userID := GetUserID(r)
	err = h.db.DeleteReminder(r.Context(), userID, id)
	if errors.Is(err, database.ErrNotFound) {
		WriteNotFound(w, "Reminder not found")
		return
	}
	if err != nil {
		h.logger.Error("deleting reminder", "user_id", userID, "reminder_id", id, "error", err)
		WriteInternalError(w, "Failed to delete reminder")
		return
	}
	WriteSuccess(w, map[string]string{"deleted": id.String()})
}

// CompletionRequest is the body for POST /completions.
type CompletionRequest struct {
	Devotion string `json:"devotion"`
	Timezone string `json:"timezone,omitempty"`
}

// RecordCompletion marks a devotion complete and returns the streak result.
func (h *Handlers) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if !devotion.Known(req.Devotion) {
		WriteBadRequest(w, "Unknown devotion: "+req.Devotion)
		return
	}
	if req.Timezone == "" {
		req.Timezone = h.cfg.DefaultTimezone
	}

	userID := GetUserID(r)
	if err := h.db.UpsertUser(r.Context(), database.User{ID: userID}); err != nil {
		h.logger.Error("ensuring user exists", "user_id", userID, "error", err)
		WriteInternalError(w, "Failed to record completion")
		return
	}

	result, err := h.streaks.RecordCompletion(r.Context(), userID, req.Devotion, req.Timezone, h.now())
	if err != nil {
		h.logger.Error("recording completion", "user_id", userID, "error", err)
		WriteInternalError(w, "Failed to record completion")
		return
	}
	WriteSuccess(w, result)
}

// GetStreak returns the caller's streak state.
func (h *Handlers) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)
	user, err := h.db.GetUser(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		WriteSuccess(w, map[string]interface{}{
			"streak_count":      0,
			"best_streak_count": 0,
			"achievements":      []database.Achievement{},
		})
		return
	}
	if err != nil {
		h.logger.Error("loading user", "user_id", userID, "error", err)
		WriteInternalError(w, "Failed to load streak")
		return
	}
	WriteSuccess(w, map[string]interface{}{
		"streak_count":      user.StreakCount,
		"best_streak_count": user.BestStreakCount,
		"last_prayer_date":  user.LastPrayerDate,
		"achievements":      user.Achievements,
	})
}
