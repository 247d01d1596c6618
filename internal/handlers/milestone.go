package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MilestoneChecklist ticks the sub-items of checklist milestones
type MilestoneChecklist interface {
	SetChecklistItemCompleted(ctx context.Context, itemID uuid.UUID, completed bool) (*models.Milestone, error)
}

var _ MilestoneChecklist = (*database.MilestoneRepository)(nil)

// MilestoneHandler handles milestone requests
type MilestoneHandler struct {
	milestones MilestoneChecklist
	progress   ProgressService
	location   *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewMilestoneHandler creates a milestone handler. With a non-nil p the parent goal
// is recomputed after every change.
func NewMilestoneHandler(m MilestoneChecklist, p ProgressService, loc *time.Location, logger *zap.Logger) *MilestoneHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MilestoneHandler{milestones: m, progress: p, location: loc, now: time.Now, logger: logger}
}

// RegisterRoutes registers milestone routes on a router already prefixed with /milestones
func (h *MilestoneHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/checklist/{item_id}", h.SetChecklistItem).Methods(http.MethodPut)
}

// MilestoneItemRequest is the body of PUT /milestones/checklist/{item_id}
type MilestoneItemRequest struct {
	IsCompleted *bool  `json:"is_completed" validate:"required"`
	Date        string `json:"date,omitempty" validate:"omitempty,iso_date"`
}

// MilestoneItemResponse carries the milestone after the change and the parent goal's progress
type MilestoneItemResponse struct {
	Milestone *models.Milestone      `json:"milestone"`
	Progress  *progress.GoalProgress `json:"progress,omitempty"`
}

// SetChecklistItem ticks or unticks one checklist item. The milestone closes once every
// item is ticked and reopens when one is unticked.
func (h *MilestoneHandler) SetChecklistItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "item_id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req MilestoneItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	date := models.TruncateDay(h.now().In(h.location))
	if req.Date != "" {
		if date, err = parseDate(req.Date, h.location); err != nil {
			respondError(w, r, h.logger, err)
			return
		}
	}

	milestone, err := h.milestones.SetChecklistItemCompleted(r.Context(), itemID, *req.IsCompleted)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := MilestoneItemResponse{Milestone: milestone}
	if h.progress != nil {
		// The item change is committed; a failed recompute is reported in the log only
		gp, err := h.progress.UpdateGoalProgress(r.Context(), milestone.GoalID, date)
		if err != nil {
			h.logger.Error("milestone_recompute_failed",
				zap.String("goal_id", milestone.GoalID.String()), zap.Error(err))
		}
		resp.Progress = gp
	}
	respondJSON(w, http.StatusOK, resp)
}
