package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/benvon/life-tracker/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProgressService computes, stores and reads goal progress
type ProgressService interface {
	UpdateGoalProgress(ctx context.Context, goalID uuid.UUID, date time.Time) (*progress.GoalProgress, error)
	UpdateAllGoalsProgress(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error)
	History(ctx context.Context, goalID uuid.UUID, start, end *time.Time) ([]*models.ProgressHistory, error)
	WeeklyProgress(ctx context.Context, goalID uuid.UUID, start, end time.Time) (*progress.WeeklySummary, error)
}

var _ ProgressService = (*progress.Service)(nil)

// ProgressHandler handles progress requests
type ProgressHandler struct {
	service  ProgressService
	jobs     JobEnqueuer
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewProgressHandler creates a progress handler. With a nil jobs a full recompute runs
// inside the request.
func NewProgressHandler(service ProgressService, jobs JobEnqueuer, loc *time.Location, logger *zap.Logger) *ProgressHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressHandler{service: service, jobs: jobs, location: loc, now: time.Now, logger: logger}
}

// RegisterRoutes registers progress routes on a router already prefixed with /progress
func (h *ProgressHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/recompute", h.RecomputeAll).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id}", h.RecomputeGoal).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id}/history", h.History).Methods(http.MethodGet)
	r.HandleFunc("/goals/{id}/weekly", h.Weekly).Methods(http.MethodGet)
}

// RecomputeGoal recomputes and stores one goal's progress for a date.
// A goal with nothing to measure answers with null data.
func (h *ProgressHandler) RecomputeGoal(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	date, ok := h.bodyDate(w, r)
	if !ok {
		return
	}

	result, err := h.service.UpdateGoalProgress(r.Context(), goalID, date)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RecomputeAll recomputes every top-level active goal for a date
func (h *ProgressHandler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	date, ok := h.bodyDate(w, r)
	if !ok {
		return
	}

	if h.jobs != nil {
		enqueue(w, r, h.jobs, h.logger, queue.NewRecomputeProgressJob(date, nil))
		return
	}

	results, err := h.service.UpdateAllGoalsProgress(r.Context(), date)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// History returns stored progress rows between the optional ?start= and ?end= dates
func (h *ProgressHandler) History(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	start, err := request.QueryDate(r, "start", h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	end, err := request.QueryDate(r, "end", h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	history, err := h.service.History(r.Context(), goalID, start, end)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if history == nil {
		history = []*models.ProgressHistory{}
	}
	respondJSON(w, http.StatusOK, history)
}

// Weekly summarises stored progress over a range, by default the seven days ending today
func (h *ProgressHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	start, err := request.QueryDate(r, "start", h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	end, err := request.QueryDate(r, "end", h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	to := models.TruncateDay(h.now().In(h.location))
	if end != nil {
		to = *end
	}
	from := to.AddDate(0, 0, -6)
	if start != nil {
		from = *start
	}

	summary, err := h.service.WeeklyProgress(r.Context(), goalID, from, to)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *ProgressHandler) bodyDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	var req DateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return time.Time{}, false
	}
	date, err := parseDate(req.Date, h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return time.Time{}, false
	}
	return date, true
}
