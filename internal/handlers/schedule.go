package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studiobook/internal/booking"
	"studiobook/internal/httpx"
	"studiobook/internal/model"
	"studiobook/internal/storage"
)

// ScheduleHandler serves the weekly opening hours and the blackout calendar.
type ScheduleHandler struct {
	schedule *storage.Schedule
	logger   *slog.Logger
	now      booking.Clock
	loc      *time.Location
}

func NewScheduleHandler(schedule *storage.Schedule, logger *slog.Logger, now booking.Clock, loc *time.Location) *ScheduleHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleHandler{schedule: schedule, logger: logger, now: now, loc: loc}
}

type hoursPayload struct {
	Weekday int    `json:"weekday"`
	Active  bool   `json:"active"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

type hoursResponse struct {
	Weekday int    `json:"weekday"`
	Active  bool   `json:"active"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

func toHoursResponse(h model.BusinessHours) hoursResponse {
	return hoursResponse{
		Weekday: h.Weekday,
		Active:  h.Active,
		Open:    model.FormatClock(h.OpenMinute),
		Close:   model.FormatClock(h.CloseMinute),
	}
}

// PublicHours lists the bookable weekdays with their windows.
func (h *ScheduleHandler) PublicHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}
	h.listHours(w, r, true)
}

// AdminHours dispatches /admin/business-hours: GET lists every configured
// weekday, PUT upserts one weekday's window.
func (h *ScheduleHandler) AdminHours(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listHours(w, r, false)
	case http.MethodPut:
		h.upsertHours(w, r)
	default:
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
	}
}

func (h *ScheduleHandler) listHours(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	hours, err := h.schedule.ListHours(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("hours list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list business hours")
		return
	}
	items := make([]hoursResponse, 0, len(hours))
	for _, bh := range hours {
		items = append(items, toHoursResponse(bh))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *ScheduleHandler) upsertHours(w http.ResponseWriter, r *http.Request) {
	var p hoursPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "invalid json body")
		return
	}
	if p.Weekday < 0 || p.Weekday > 6 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "weekday must be 0 (Monday) through 6 (Sunday)")
		return
	}

	openMin, err := model.ParseClock(strings.TrimSpace(p.Open))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "open must be HH:MM")
		return
	}
	closeMin, err := model.ParseClock(strings.TrimSpace(p.Close))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "close must be HH:MM")
		return
	}
	if openMin >= closeMin {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "open must be before close")
		return
	}

	bh := model.BusinessHours{
		Weekday:     p.Weekday,
		Active:      p.Active,
		OpenMinute:  openMin,
		CloseMinute: closeMin,
	}
	if err := h.schedule.UpsertHours(r.Context(), bh); err != nil {
		h.logger.Error("hours upsert failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to save business hours")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toHoursResponse(bh))
}

type blackoutPayload struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type blackoutResponse struct {
	Date      string `json:"date"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Blackouts dispatches /admin/blackouts: GET lists upcoming blackout dates,
// POST registers one.
func (h *ScheduleHandler) Blackouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBlackouts(w, r)
	case http.MethodPost:
		h.createBlackout(w, r)
	default:
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
	}
}

func (h *ScheduleHandler) listBlackouts(w http.ResponseWriter, r *http.Request) {
	from := h.startOfToday()
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := parseDate(raw, h.loc)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, booking.CodeInvalidDateFormat, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	blackouts, err := h.schedule.ListBlackouts(r.Context(), from, limit)
	if err != nil {
		h.logger.Error("blackout list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list blackout dates")
		return
	}
	items := make([]blackoutResponse, 0, len(blackouts))
	for _, b := range blackouts {
		items = append(items, blackoutResponse{
			Date:      b.Date.Format("2006-01-02"),
			Reason:    b.Reason,
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *ScheduleHandler) createBlackout(w http.ResponseWriter, r *http.Request) {
	var p blackoutPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "invalid json body")
		return
	}
	date, err := parseDate(strings.TrimSpace(p.Date), h.loc)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, booking.CodeInvalidDateFormat, "date must be YYYY-MM-DD")
		return
	}

	b := model.BlackoutDate{Date: date, Reason: strings.TrimSpace(p.Reason)}
	if err := h.schedule.CreateBlackout(r.Context(), b); err != nil {
		if storage.IsUniqueViolation(err) {
			httpx.WriteError(w, http.StatusConflict, "already-exists", "date is already blacked out")
			return
		}
		h.logger.Error("blackout create failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to create blackout date")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, blackoutResponse{
		Date:      date.Format("2006-01-02"),
		Reason:    b.Reason,
		CreatedAt: h.now().UTC().Format(time.RFC3339),
	})
}

// Blackout handles DELETE /admin/blackouts/{date}.
func (h *ScheduleHandler) Blackout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}
	date, err := parseDate(strings.TrimSpace(r.PathValue("date")), h.loc)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, booking.CodeInvalidDateFormat, "date must be YYYY-MM-DD")
		return
	}
	if err := h.schedule.DeleteBlackout(r.Context(), date); err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "blackout date not found")
			return
		}
		h.logger.Error("blackout delete failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to delete blackout date")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) startOfToday() time.Time {
	now := h.now().In(h.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
}
