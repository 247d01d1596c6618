package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/ingest"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/request"
	"github.com/benvon/life-tracker/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PendingService is the ingestion surface used by PendingHandler
type PendingService interface {
	Ingest(ctx context.Context, req ingest.Request) ([]*models.PendingLog, error)
	List(ctx context.Context, date time.Time) (map[models.Category][]*models.PendingLog, error)
	UpdateParsedData(ctx context.Context, id uuid.UUID, raw json.RawMessage) (*models.PendingLog, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ PendingService = (*ingest.Ingestor)(nil)

// PendingHandler handles pending entry requests
type PendingHandler struct {
	service  PendingService
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewPendingHandler creates a pending entry handler. Dates without a timezone are read in loc.
func NewPendingHandler(service PendingService, loc *time.Location, logger *zap.Logger) *PendingHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PendingHandler{service: service, location: loc, now: time.Now, logger: logger}
}

// RegisterRoutes registers pending routes on a router already prefixed with /pending.
// ingestLimit wraps the LLM-backed create route; nil leaves it unlimited.
func (h *PendingHandler) RegisterRoutes(r *mux.Router, ingestLimit func(http.Handler) http.Handler) {
	var create http.Handler = http.HandlerFunc(h.Create)
	if ingestLimit != nil {
		create = ingestLimit(create)
	}
	r.Handle("", create).Methods(http.MethodPost)
	r.HandleFunc("", h.List).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.Update).Methods(http.MethodPatch)
	r.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
}

// CreatePendingRequest is the body of POST /pending
type CreatePendingRequest struct {
	Input string `json:"input" validate:"required,max=1000"`
	Date  string `json:"date,omitempty" validate:"omitempty,iso_date"`
}

// UpdatePendingRequest is the body of PATCH /pending/{id}
type UpdatePendingRequest struct {
	ParsedData json.RawMessage `json:"parsed_data" validate:"required"`
}

// Create ingests a free-text entry. The date defaults to today.
func (h *PendingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePendingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	now := h.now().In(h.location)
	date := models.TruncateDay(now)
	if req.Date != "" {
		d, err := parseDate(req.Date, h.location)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		date = d
	}

	entries, err := h.service.Ingest(r.Context(), ingest.Request{
		Text: validation.SanitizeText(req.Input),
		Date: date,
		Now:  now,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, entries)
}

// List returns the uncompiled entries of ?date= grouped by category, optionally narrowed by ?category=
func (h *PendingHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := request.QueryDate(r, "date", h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	day := models.TruncateDay(h.now().In(h.location))
	if date != nil {
		day = *date
	}

	category := r.URL.Query().Get("category")
	if category != "" {
		if err := validation.ValidateCategory(category); err != nil {
			respondError(w, r, h.logger, err)
			return
		}
	}

	grouped, err := h.service.List(r.Context(), day)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if category != "" {
		only := grouped[models.Category(category)]
		if only == nil {
			only = []*models.PendingLog{}
		}
		grouped = map[models.Category][]*models.PendingLog{models.Category(category): only}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":    models.FormatDate(day),
		"entries": grouped,
	})
}

// Update replaces the parsed data of an uncompiled entry
func (h *PendingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req UpdatePendingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	entry, err := h.service.UpdateParsedData(r.Context(), id, req.ParsedData)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Delete removes an uncompiled entry
func (h *PendingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
