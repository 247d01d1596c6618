package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ChecklistCompleter records daily checklist completions
type ChecklistCompleter interface {
	UpsertCompletion(ctx context.Context, itemID uuid.UUID, date time.Time, completed bool, notes *string) (*models.ChecklistCompletion, error)
}

var _ ChecklistCompleter = (*database.ChecklistRepository)(nil)

// ChecklistHandler handles daily checklist requests
type ChecklistHandler struct {
	checklists ChecklistCompleter
	location   *time.Location
	logger     *zap.Logger
}

// NewChecklistHandler creates a checklist handler
func NewChecklistHandler(checklists ChecklistCompleter, loc *time.Location, logger *zap.Logger) *ChecklistHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChecklistHandler{checklists: checklists, location: loc, logger: logger}
}

// RegisterRoutes registers checklist routes on a router already prefixed with /checklist
func (h *ChecklistHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{item_id}/completion", h.SetCompletion).Methods(http.MethodPut)
}

// CompletionRequest is the body of PUT /checklist/{item_id}/completion
type CompletionRequest struct {
	Date        string  `json:"date" validate:"required,iso_date"`
	IsCompleted *bool   `json:"is_completed" validate:"required"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// SetCompletion marks a checklist item done or not done for a date
func (h *ChecklistHandler) SetCompletion(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "item_id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req CompletionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	date, err := parseDate(req.Date, h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	completion, err := h.checklists.UpsertCompletion(r.Context(), itemID, date, *req.IsCompleted, req.Notes)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, completion)
}
