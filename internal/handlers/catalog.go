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

// CatalogHandler serves the service catalog (public read, admin write) and
// the admin client registry.
type CatalogHandler struct {
	services *storage.Services
	clients  *storage.Clients
	logger   *slog.Logger
}

func NewCatalogHandler(services *storage.Services, clients *storage.Clients, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{services: services, clients: clients, logger: logger}
}

type servicePayload struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          *bool  `json:"active"`
}

type serviceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Price           string `json:"price"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          bool   `json:"active"`
	CreatedAt       string `json:"created_at"`
}

func toServiceResponse(s model.Service) serviceResponse {
	return serviceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
		CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (p *servicePayload) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Price = strings.TrimSpace(p.Price)
	if p.Name == "" {
		return "name is required"
	}
	if p.DurationMinutes <= 0 {
		return "duration_minutes must be positive"
	}
	if p.Price == "" {
		p.Price = "0"
	}
	if _, err := strconv.ParseFloat(p.Price, 64); err != nil {
		return "price must be a decimal number"
	}
	return ""
}

// ListPublic returns the bookable catalog: active services only, ordered by
// name.
func (h *CatalogHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}
	h.listServices(w, r, true)
}

func (h *CatalogHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listServices(w, r, false)
	case http.MethodPost:
		h.createService(w, r)
	default:
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
	}
}

func (h *CatalogHandler) listServices(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	services, err := h.services.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("service list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list services")
		return
	}
	items := make([]serviceResponse, 0, len(services))
	for _, s := range services {
		items = append(items, toServiceResponse(s))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) createService(w http.ResponseWriter, r *http.Request) {
	var p servicePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "invalid json body")
		return
	}
	if msg := p.validate(); msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", msg)
		return
	}

	active := true
	if p.Active != nil {
		active = *p.Active
	}
	svc := model.Service{
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		DurationMinutes: p.DurationMinutes,
		Active:          active,
	}
	id, err := h.services.Create(r.Context(), &svc)
	if err != nil {
		h.logger.Error("service create failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to create service")
		return
	}

	created, err := h.services.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("service reload failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load service")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toServiceResponse(created))
}

// Service dispatches /admin/services/{id} by method.
func (h *CatalogHandler) Service(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "service id required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		svc, err := h.services.Get(r.Context(), id)
		if err != nil {
			if storage.IsNotFound(err) {
				httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "service not found")
				return
			}
			h.logger.Error("service load failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load service")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toServiceResponse(svc))

	case http.MethodPut:
		var p servicePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "invalid json body")
			return
		}
		if msg := p.validate(); msg != "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid-body", msg)
			return
		}
		active := true
		if p.Active != nil {
			active = *p.Active
		}
		svc := model.Service{
			ID:              id,
			Name:            p.Name,
			Description:     p.Description,
			Price:           p.Price,
			DurationMinutes: p.DurationMinutes,
			Active:          active,
		}
		if err := h.services.Update(r.Context(), &svc); err != nil {
			if storage.IsNotFound(err) {
				httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "service not found")
				return
			}
			h.logger.Error("service update failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to update service")
			return
		}
		updated, err := h.services.Get(r.Context(), id)
		if err != nil {
			h.logger.Error("service reload failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load service")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toServiceResponse(updated))

	default:
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
	}
}

type clientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toClientResponse(c model.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Surname:   c.Surname,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *CatalogHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
		return
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	clients, err := h.clients.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("client list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list clients")
		return
	}
	items := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		items = append(items, toClientResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

// Client dispatches /admin/clients/{id} by method. DELETE removes the client
// and, through the cascade, their appointment history.
func (h *CatalogHandler) Client(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid-body", "client id required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := h.clients.Get(r.Context(), id)
		if err != nil {
			if storage.IsNotFound(err) {
				httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "client not found")
				return
			}
			h.logger.Error("client load failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load client")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toClientResponse(c))

	case http.MethodDelete:
		if err := h.clients.Delete(r.Context(), id); err != nil {
			if storage.IsNotFound(err) {
				httpx.WriteError(w, http.StatusNotFound, booking.CodeNotFound, "client not found")
				return
			}
			h.logger.Error("client delete failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to delete client")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method-not-allowed", "method not allowed")
	}
}
