package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zapponejosh/devotions-api/internal/config"
	"github.com/zapponejosh/devotions-api/internal/database"
	"github.com/zapponejosh/devotions-api/internal/devotion"
	"github.com/zapponejosh/devotions-api/internal/observance"
	"github.com/zapponejosh/devotions-api/internal/streak"
)

func testServer(t *testing.T) (http.Handler, *Handlers) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	registry, err := observance.LoadRegistry("")
	if err != nil {
		t.Fatalf("loading registry: %v", err)
	}

	cfg := &config.Config{
		Port:            8080,
		Env:             config.EnvDevelopment,
		DatabasePath:    ":memory:",
		SweepInterval:   time.Minute,
		SendTimeout:     10 * time.Second,
		DefaultTimezone: "UTC",
		LogLevel:        "info",
		LogFormat:       "text",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandlers(db,
		registry,
		devotion.NewAssembler(db, logger, false),
		streak.NewService(db, logger),
		cfg, logger)
	h.now = func() time.Time { return time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC) }

	return SetupRoutes(h, cfg, logger), h
}

func decodeData(t *testing.T, body *bytes.Buffer, out interface{}) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response envelope: %v\n%s", err, body.String())
	}
	if !resp.Success {
		t.Fatalf("response not successful: %s", body.String())
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("decoding response data: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetDay(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	// Easter Sunday 2025.
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/day/2025-04-20", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var day struct {
		Key         string `json:"key"`
		DisplayName string `json:"display_name"`
		Color       string `json:"color"`
		Season      string `json:"season"`
		Devotion    struct {
			PsalmRef     string `json:"psalm_ref"`
			OldTestament string `json:"old_testament"`
		} `json:"devotion"`
	}
	decodeData(t, rec.Body, &day)

	if day.Key != "Easter Sunday" {
		t.Errorf("key = %q, want Easter Sunday", day.Key)
	}
	if day.Color != "White" {
		t.Errorf("color = %q, want White", day.Color)
	}
	// Empty lectionary degrades to a placeholder rather than erroring.
	if day.Devotion.OldTestament != devotion.ReadingNotFound {
		t.Errorf("old testament = %q, want placeholder", day.Devotion.OldTestament)
	}
}

func TestGetDayBadDate(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/day/easter", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetToday(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/day/today", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var day struct {
		Date time.Time `json:"date"`
	}
	decodeData(t, rec.Body, &day)
	if got := day.Date.Format("2006-01-02"); got != "2025-06-01" {
		t.Errorf("date = %q, want the injected clock's date", got)
	}
}

func TestGetCalendarMonth(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar?year=2025&month=12", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var grid struct {
		Year      int `json:"year"`
		Month     int `json:"month"`
		PrevYear  int `json:"prev_year"`
		PrevMonth int `json:"prev_month"`
		NextYear  int `json:"next_year"`
		NextMonth int `json:"next_month"`
		Weeks     [][]struct {
			InMonth bool `json:"in_month"`
		} `json:"weeks"`
	}
	decodeData(t, rec.Body, &grid)
	if grid.Year != 2025 || grid.Month != 12 {
		t.Errorf("got %d-%d, want 2025-12", grid.Year, grid.Month)
	}
	if grid.PrevYear != 2025 || grid.PrevMonth != 11 || grid.NextYear != 2026 || grid.NextMonth != 1 {
		t.Errorf("navigation = %d-%d / %d-%d", grid.PrevYear, grid.PrevMonth, grid.NextYear, grid.NextMonth)
	}
	for _, week := range grid.Weeks {
		if len(week) != 7 {
			t.Fatalf("week has %d days", len(week))
		}
	}

	// Malformed parameters fall back to the current month.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar?year=banana&month=99", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("fallback status = %d, want 200", rec.Code)
	}
	decodeData(t, rec.Body, &grid)
	if grid.Year != 2025 || grid.Month != 6 {
		t.Errorf("fallback got %d-%d, want 2025-6", grid.Year, grid.Month)
	}
}

func postJSON(srv http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestReminderLifecycleOverHTTP(t *testing.T) {
	srv, _ := testServer(t)

	rec := postJSON(srv, "/api/v1/reminders", CreateReminderRequest{
		TimeOfDay: "09:00",
		Timezone:  "America/New_York",
		Devotion:  "morning",
		Methods:   []string{"push"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID         string    `json:"id"`
		NextRunUTC time.Time `json:"next_run_utc"`
	}
	decodeData(t, rec.Body, &created)
	// Clock is 10:00 UTC = 06:00 Eastern, so the first run is today 13:00 UTC.
	want := time.Date(2025, time.June, 1, 13, 0, 0, 0, time.UTC)
	if !created.NextRunUTC.Equal(want) {
		t.Errorf("next run = %v, want %v", created.NextRunUTC, want)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reminders", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []struct {
		ID           string `json:"id"`
		DevotionName string `json:"devotion_name"`
	}
	decodeData(t, rec.Body, &list)
	if len(list) != 1 || list[0].DevotionName != "Morning Prayer" {
		t.Fatalf("list = %+v", list)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/reminders/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/reminders/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateReminderValidation(t *testing.T) {
	srv, _ := testServer(t)

	cases := []struct {
		name string
		req  CreateReminderRequest
	}{
		{"bad time", CreateReminderRequest{TimeOfDay: "9am", Devotion: "morning", Methods: []string{"push"}}},
		{"off-increment time", CreateReminderRequest{TimeOfDay: "09:07", Devotion: "morning", Methods: []string{"push"}}},
		{"unknown devotion", CreateReminderRequest{TimeOfDay: "09:00", Devotion: "matins", Methods: []string{"push"}}},
		{"no methods", CreateReminderRequest{TimeOfDay: "09:00", Devotion: "morning"}},
		{"unknown method", CreateReminderRequest{TimeOfDay: "09:00", Devotion: "morning", Methods: []string{"carrier_pigeon"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(srv, "/api/v1/reminders", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRecordCompletionAndStreak(t *testing.T) {
	srv, _ := testServer(t)

	rec := postJSON(srv, "/api/v1/completions", CompletionRequest{Devotion: "morning"})
	if rec.Code != http.StatusOK {
		t.Fatalf("completion status = %d: %s", rec.Code, rec.Body.String())
	}
	var result streak.Result
	decodeData(t, rec.Body, &result)
	if result.Streak != 1 || result.AlreadyPrayed {
		t.Errorf("result = %+v, want fresh streak of 1", result)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/streak", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("streak status = %d", rec.Code)
	}
	var state struct {
		StreakCount    int    `json:"streak_count"`
		LastPrayerDate string `json:"last_prayer_date"`
	}
	decodeData(t, rec.Body, &state)
	if state.StreakCount != 1 || state.LastPrayerDate != "2025-06-01" {
		t.Errorf("state = %+v", state)
	}
}

func TestGetStreakUnknownUserIsZero(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/streak", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var state struct {
		StreakCount int `json:"streak_count"`
	}
	decodeData(t, rec.Body, &state)
	if state.StreakCount != 0 {
		t.Errorf("streak = %d, want 0", state.StreakCount)
	}
}
