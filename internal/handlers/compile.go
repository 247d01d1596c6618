package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/compiler"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DayCompiler compiles one date's pending entries
type DayCompiler interface {
	CompileDay(ctx context.Context, date time.Time) (*compiler.Result, error)
	PendingCount(ctx context.Context, date time.Time) (int, error)
}

// JobEnqueuer hands work to the background worker
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

var _ DayCompiler = (*compiler.DayCompiler)(nil)

// DateRequest is a body carrying a single calendar date
type DateRequest struct {
	Date string `json:"date" validate:"required,iso_date"`
}

// JobAccepted is returned when work was queued instead of run
type JobAccepted struct {
	JobID  string `json:"job_id"`
	Type   string `json:"type"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// CompileResponse is returned by an inline compile
type CompileResponse struct {
	Result   *compiler.Result              `json:"result"`
	Progress []progress.GoalProgressResult `json:"progress,omitempty"`
}

// CompileHandler handles day compile requests
type CompileHandler struct {
	compiler DayCompiler
	progress ProgressService
	jobs     JobEnqueuer
	location *time.Location
	logger   *zap.Logger
}

// NewCompileHandler creates a compile handler. With a nil jobs the compile and the
// progress recompute that follows it run inside the request.
func NewCompileHandler(c DayCompiler, p ProgressService, jobs JobEnqueuer, loc *time.Location, logger *zap.Logger) *CompileHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompileHandler{compiler: c, progress: p, jobs: jobs, location: loc, logger: logger}
}

// RegisterRoutes registers the compile route on the API router
func (h *CompileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/compile", h.Compile).Methods(http.MethodPost)
}

// Compile commits the pending entries of the requested date
func (h *CompileHandler) Compile(w http.ResponseWriter, r *http.Request) {
	var req DateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	date, err := parseDate(req.Date, h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if h.jobs != nil {
		// An empty day is reported now; the worker would only drop the job
		n, err := h.compiler.PendingCount(r.Context(), date)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		if n == 0 {
			respondError(w, r, h.logger, apperr.Precondition(compiler.ErrNothingToCompile))
			return
		}
		enqueue(w, r, h.jobs, h.logger, queue.NewCompileDayJob(date))
		return
	}

	result, err := h.compiler.CompileDay(r.Context(), date)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := CompileResponse{Result: result}
	if h.progress != nil {
		// The compile is committed; a failed recompute is reported in the log only
		results, err := h.progress.UpdateAllGoalsProgress(r.Context(), date)
		if err != nil {
			h.logger.Error("post_compile_recompute_failed", zap.String("date", req.Date), zap.Error(err))
		}
		resp.Progress = results
	}
	respondJSON(w, http.StatusOK, resp)
}

func enqueue(w http.ResponseWriter, r *http.Request, jobs JobEnqueuer, logger *zap.Logger, job *queue.Job) {
	if err := jobs.Enqueue(r.Context(), job); err != nil {
		respondError(w, r, logger, err)
		return
	}
	respondJSON(w, http.StatusAccepted, JobAccepted{
		JobID:  job.ID.String(),
		Type:   string(job.Type),
		Date:   job.Date,
		Status: "queued",
	})
}
