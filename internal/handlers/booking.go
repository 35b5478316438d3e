package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studiobook/internal/booking"
	"studiobook/internal/db"
	"studiobook/internal/httpx"
	"studiobook/internal/metrics"
	"studiobook/internal/model"
	"studiobook/internal/notify"
	"studiobook/internal/outbox"
	"studiobook/internal/storage"
)

type BookingHandler struct {
	pool         *db.Pool
	appointments *storage.Appointments
	services     *storage.Services
	clients      *storage.Clients
	schedule     *storage.Schedule
	outboxRepo   *outbox.Repository
	notifier     *notify.Dispatcher
	logger       *slog.Logger
	now          booking.Clock
	loc          *time.Location
}

func NewBookingHandler(
	pool *db.Pool,
	appointments *storage.Appointments,
	services *storage.Services,
	clients *storage.Clients,
	schedule *storage.Schedule,
	outboxRepo *outbox.Repository,
	notifier *notify.Dispatcher,
	logger *slog.Logger,
	now booking.Clock,
	loc *time.Location,
) *BookingHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{
		pool:         pool,
		appointments: appointments,
		services:     services,
		clients:      clients,
		schedule:     schedule,
		outboxRepo:   outboxRepo,
		notifier:     notifier,
		logger:       logger,
		now:          now,
		loc:          loc,
	}
}

type clientPayload struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type createAppointmentRequest struct {
	Client    clientPayload `json:"client"`
	ServiceID string        `json:"service_id"`
	Date      string        `json:"date"`
	StartTime string        `json:"start_time"`
	Notes     string        `json:"notes"`
}

type appointmentResponse struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type availabilityResponse struct {
	Slots  []string `json:"slots"`
	Reason string   `json:"reason,omitempty"`
}

func toAppointmentResponse(a model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID,
		ClientID:    a.ClientID,
		ClientName:  a.ClientName,
		ServiceID:   a.ServiceID,
		ServiceName: a.ServiceName,
		Date:        a.Date.Format("2006-01-02"),
		StartTime:   model.FormatClock(a.StartMinute),
		Status:      string(a.Status),
		StatusLabel: a.Status.Label(),
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// loadDay gathers the schedule state for one date: weekday hours (absent
// config resolves to closed), blackout flag, and the non-cancelled
// appointments. Passing the booking transaction as q keeps the conflict read
// inside the serialized section.
func (h *BookingHandler) loadDay(r *http.Request, q storage.Querier, date time.Time) (booking.Day, error) {
	ctx := r.Context()
	day := booking.Day{Date: date}

	hours, found, err := h.schedule.HoursFor(ctx, q, model.WeekdayIndex(date))
	if err != nil {
		return booking.Day{}, err
	}
	if found {
		day.Hours = &hours
	}

	day.Blackout, err = h.schedule.BlackoutExists(ctx, q, date)
	if err != nil {
		return booking.Day{}, err
	}

	day.Booked, err = h.appointments.ActiveByDate(ctx, q, date)
	if err != nil {
		return booking.Day{}, err
	}
	return day, nil
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}
	metrics.IncAvailabilityQuery()

	serviceID := strings.TrimSpace(r.PathValue("id"))
	date, err := parseDate(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, booking.CodeInvalidDateFormat, "date must be YYYY-MM-DD")
		return
	}

	svc, err := h.services.Get(r.Context(), serviceID)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "service not found")
			return
		}
		h.logger.Error("service lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load service")
		return
	}

	day, err := h.loadDay(r, h.pool, date)
	if err != nil {
		h.logger.Error("availability load failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load availability")
		return
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	slots, reason := booking.SlotTimes(day, duration, h.now().In(h.loc))
	if slots == nil {
		slots = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, availabilityResponse{Slots: slots, Reason: string(reason)})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "invalid json body")
		return
	}

	req.Client.Name = strings.TrimSpace(req.Client.Name)
	req.Client.Surname = strings.TrimSpace(req.Client.Surname)
	req.Client.Email = strings.TrimSpace(req.Client.Email)
	req.Client.Phone = strings.TrimSpace(req.Client.Phone)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.Notes = strings.TrimSpace(req.Notes)

	if req.Client.Name == "" || req.Client.Surname == "" || req.Client.Email == "" || req.ServiceID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "client name, surname, email and service_id are required")
		return
	}

	date, err := parseDate(req.Date, h.loc)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, booking.CodeInvalidDateFormat, "date must be YYYY-MM-DD")
		return
	}
	startMinute, err := model.ParseClock(strings.TrimSpace(req.StartTime))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, booking.CodeInvalidDateFormat, "start_time must be HH:MM")
		return
	}

	ctx := r.Context()
	svc, err := h.services.Get(ctx, req.ServiceID)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "service not found")
			return
		}
		h.logger.Error("service lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load service")
		return
	}
	if !svc.Active {
		httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "service not found")
		return
	}

	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The advisory lock plus the in-transaction conflict read guarantee that
	// two concurrent requests for the same date cannot both observe a free
	// window and both commit.
	if err := h.appointments.LockDate(ctx, tx, date); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "db error")
		return
	}

	day, err := h.loadDay(r, tx, date)
	if err != nil {
		h.logger.Error("booking day load failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load schedule")
		return
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	if verr := booking.Validate(day, startMinute, duration, h.now().In(h.loc)); verr != nil {
		metrics.IncBookingRejected(verr.Code)
		status := http.StatusBadRequest
		if verr.Code == booking.CodeScheduleConflict {
			status = http.StatusConflict
		}
		httpx.WriteError(w, status, verr.Code, verr.Message)
		return
	}

	client, err := h.clients.GetOrCreate(ctx, tx, model.Client{
		Name:    req.Client.Name,
		Surname: req.Client.Surname,
		Email:   req.Client.Email,
		Phone:   req.Client.Phone,
	})
	if err != nil {
		h.logger.Error("client upsert failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to save client")
		return
	}

	// Creation always yields Pending; status is not client-writable.
	appt := &model.Appointment{
		ClientID:    client.ID,
		ServiceID:   svc.ID,
		Date:        date,
		StartMinute: startMinute,
		Status:      model.StatusPending,
		Notes:       req.Notes,
	}
	id, err := h.appointments.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			metrics.IncBookingRejected(booking.CodeScheduleConflict)
			httpx.WriteError(w, http.StatusConflict, booking.CodeScheduleConflict, "time slot already booked")
			return
		}
		h.logger.Error("appointment insert failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to create appointment")
		return
	}

	dateStr := date.Format("2006-01-02")
	startStr := model.FormatClock(startMinute)
	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"client_name":    client.FullName(),
		"client_email":   client.Email,
		"service_id":     svc.ID,
		"service_name":   svc.Name,
		"date":           dateStr,
		"start_time":     startStr,
		"status":         string(model.StatusPending),
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     "appointments.booked.v1",
		Payload:       evtPayload,
	}); err != nil {
		h.logger.Error("outbox insert failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to commit")
		return
	}
	metrics.IncBookingCreated()

	// Best-effort side channel: the booking is already committed, a failed
	// email never surfaces to the caller.
	h.notifier.Dispatch(notify.Confirmation{
		ClientName:  client.FullName(),
		ClientEmail: client.Email,
		ServiceName: svc.Name,
		Date:        dateStr,
		StartTime:   startStr,
	})

	httpx.WriteJSON(w, http.StatusCreated, appointmentResponse{
		ID:          id,
		ClientID:    client.ID,
		ClientName:  client.FullName(),
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Date:        dateStr,
		StartTime:   startStr,
		Status:      string(model.StatusPending),
		StatusLabel: model.StatusPending.Label(),
		Notes:       req.Notes,
		CreatedAt:   h.now().UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}

	var datePtr *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		date, err := parseDate(raw, h.loc)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, booking.CodeInvalidDateFormat, "date must be YYYY-MM-DD")
			return
		}
		datePtr = &date
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	appts, err := h.appointments.List(r.Context(), datePtr, limit)
	if err != nil {
		h.logger.Error("appointment list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list appointments")
		return
	}

	items := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		items = append(items, toAppointmentResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.StatusConfirmed, "appointments.confirmed.v1")
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.StatusCancelled, "appointments.cancelled.v1")
}

// transition moves an appointment to next under a row lock. Cancelling an
// already-cancelled appointment is idempotent; any other invalid transition
// is a conflict.
func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, next model.Status, eventType string) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "appointment id required")
		return
	}

	ctx := r.Context()
	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appointments.GetForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "appointment not found")
			return
		}
		h.logger.Error("appointment load failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load appointment")
		return
	}

	if appt.Status == next {
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
		return
	}
	if !appt.Status.CanTransitionTo(next) {
		httpx.WriteError(w, http.StatusConflict, "invalid-transition",
			"appointment cannot move from "+appt.Status.Label()+" to "+next.Label())
		return
	}

	if err := h.appointments.UpdateStatus(ctx, tx, id, next); err != nil {
		h.logger.Error("status update failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to update appointment")
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"client_name":    appt.ClientName,
		"service_name":   appt.ServiceName,
		"date":           appt.Date.Format("2006-01-02"),
		"start_time":     model.FormatClock(appt.StartMinute),
		"status":         string(next),
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     eventType,
		Payload:       evtPayload,
	}); err != nil {
		h.logger.Error("outbox insert failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to commit")
		return
	}

	appt.Status = next
	httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
}
