package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func TestProgressHandler_RecomputeGoal(t *testing.T) {
	t.Parallel()

	goalID := uuid.New()
	tests := []struct {
		name         string
		path         string
		result       *progress.GoalProgress
		err          error
		expectStatus int
		expectError  string
		expectNull   bool
	}{
		{
			name:         "returns computed progress",
			path:         "/api/v1/progress/goals/" + goalID.String(),
			result:       &progress.GoalProgress{GoalID: goalID, Percentage: 95, Stars: 3},
			expectStatus: http.StatusOK,
		},
		{
			name:         "goal with nothing to measure",
			path:         "/api/v1/progress/goals/" + goalID.String(),
			expectStatus: http.StatusOK,
			expectNull:   true,
		},
		{
			name:         "unknown goal",
			path:         "/api/v1/progress/goals/" + goalID.String(),
			err:          apperr.NotFound("goal", goalID),
			expectStatus: http.StatusNotFound,
			expectError:  "not_found",
		},
		{
			name:         "cyclic contributions",
			path:         "/api/v1/progress/goals/" + goalID.String(),
			err:          apperr.Cycle(goalID),
			expectStatus: http.StatusUnprocessableEntity,
			expectError:  "cycle_detected",
		},
		{
			name:         "bad goal id",
			path:         "/api/v1/progress/goals/123",
			expectStatus: http.StatusBadRequest,
			expectError:  "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &mockProgressService{
				updateGoalFunc: func(ctx context.Context, id uuid.UUID, date time.Time) (*progress.GoalProgress, error) {
					if id != goalID {
						t.Errorf("Expected goal %s, got %s", goalID, id)
					}
					if models.FormatDate(date) != "2025-06-01" {
						t.Errorf("Expected date 2025-06-01, got %v", date)
					}
					return tt.result, tt.err
				},
			}
			h := newTestRouter(RouterConfig{Progress: service})

			rr, env := serve(t, h, newTestRequest(http.MethodPost, tt.path, map[string]string{"date": "2025-06-01"}))
			if rr.Code != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.expectStatus, rr.Code, rr.Body.String())
			}
			if tt.expectError != "" {
				if env.Error != tt.expectError {
					t.Errorf("Expected error %q, got %q", tt.expectError, env.Error)
				}
				return
			}
			if tt.expectNull {
				if string(env.Data) != "null" {
					t.Errorf("Expected null data, got %s", env.Data)
				}
				return
			}
			var got progress.GoalProgress
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("Failed to decode data: %v", err)
			}
			if got.Stars != 3 || got.Percentage != 95 {
				t.Errorf("Unexpected progress: %+v", got)
			}
		})
	}
}

func TestProgressHandler_RecomputeAll(t *testing.T) {
	t.Parallel()

	t.Run("inline", func(t *testing.T) {
		t.Parallel()

		failing := uuid.New()
		service := &mockProgressService{
			updateAllFunc: func(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error) {
				return []progress.GoalProgressResult{
					{GoalID: uuid.New(), Progress: &progress.GoalProgress{Percentage: 50, Stars: 1}},
					{GoalID: failing, Error: "goal is its own ancestor"},
				}, nil
			},
		}
		h := newTestRouter(RouterConfig{Progress: service})

		rr, env := serve(t, h, newTestRequest(http.MethodPost, "/api/v1/progress/recompute", map[string]string{"date": "2025-06-01"}))
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		var results []progress.GoalProgressResult
		if err := json.Unmarshal(env.Data, &results); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
		if len(results) != 2 || results[1].GoalID != failing || results[1].Error == "" {
			t.Errorf("Expected per-goal failure to be reported, got %+v", results)
		}
	})

	t.Run("queued", func(t *testing.T) {
		t.Parallel()

		service := &mockProgressService{
			updateAllFunc: func(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error) {
				t.Error("Expected no inline recompute when a queue is configured")
				return nil, nil
			},
		}
		jobs := &mockJobs{}
		h := newTestRouter(RouterConfig{Progress: service, Jobs: jobs})

		rr, _ := serve(t, h, newTestRequest(http.MethodPost, "/api/v1/progress/recompute", map[string]string{"date": "2025-06-01"}))
		if rr.Code != http.StatusAccepted {
			t.Fatalf("Expected status 202, got %d", rr.Code)
		}
		queued := jobs.jobs()
		if len(queued) != 1 || queued[0].Type != queue.JobTypeRecomputeProgress || queued[0].GoalID != nil {
			t.Errorf("Expected one recompute-all job, got %+v", queued)
		}
	})
}

func TestProgressHandler_History(t *testing.T) {
	t.Parallel()

	goalID := uuid.New()
	tests := []struct {
		name         string
		query        string
		expectStatus int
		expectStart  string
		expectEnd    string
	}{
		{name: "open range", expectStatus: http.StatusOK},
		{name: "bounded range", query: "?start=2025-05-01&end=2025-05-31", expectStatus: http.StatusOK, expectStart: "2025-05-01", expectEnd: "2025-05-31"},
		{name: "start only", query: "?start=2025-05-01", expectStatus: http.StatusOK, expectStart: "2025-05-01"},
		{name: "malformed bound", query: "?end=yesterday", expectStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &mockProgressService{
				historyFunc: func(ctx context.Context, id uuid.UUID, start, end *time.Time) ([]*models.ProgressHistory, error) {
					if got := formatOptional(start); got != tt.expectStart {
						t.Errorf("Expected start %q, got %q", tt.expectStart, got)
					}
					if got := formatOptional(end); got != tt.expectEnd {
						t.Errorf("Expected end %q, got %q", tt.expectEnd, got)
					}
					return nil, nil
				},
			}
			h := newTestRouter(RouterConfig{Progress: service})

			rr, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/progress/goals/"+goalID.String()+"/history"+tt.query, nil))
			if rr.Code != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectStatus, rr.Code)
			}
			if tt.expectStatus == http.StatusOK && string(env.Data) != "[]" {
				t.Errorf("Expected an empty list, got %s", env.Data)
			}
		})
	}
}

func TestProgressHandler_Weekly(t *testing.T) {
	t.Parallel()

	goalID := uuid.New()
	tests := []struct {
		name        string
		query       string
		expectStart string
		expectEnd   string
	}{
		{name: "defaults to the seven days ending today", expectStart: "2025-05-26", expectEnd: "2025-06-01"},
		{name: "explicit range", query: "?start=2025-05-01&end=2025-05-07", expectStart: "2025-05-01", expectEnd: "2025-05-07"},
		{name: "end only", query: "?end=2025-05-10", expectStart: "2025-05-04", expectEnd: "2025-05-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &mockProgressService{
				weeklyFunc: func(ctx context.Context, id uuid.UUID, start, end time.Time) (*progress.WeeklySummary, error) {
					if models.FormatDate(start) != tt.expectStart || models.FormatDate(end) != tt.expectEnd {
						t.Errorf("Expected %s..%s, got %s..%s", tt.expectStart, tt.expectEnd, models.FormatDate(start), models.FormatDate(end))
					}
					return &progress.WeeklySummary{DaysTracked: 7, AvgPercentage: 81, AvgStars: 2, Stars: 2}, nil
				},
			}
			h := NewProgressHandler(service, nil, time.UTC, nil)
			h.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }
			r := mux.NewRouter()
			h.RegisterRoutes(r)

			rr, env := serve(t, r, httptest.NewRequest(http.MethodGet, "/goals/"+goalID.String()+"/weekly"+tt.query, nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}
			var summary progress.WeeklySummary
			if err := json.Unmarshal(env.Data, &summary); err != nil {
				t.Fatalf("Failed to decode data: %v", err)
			}
			if summary.DaysTracked != 7 {
				t.Errorf("Unexpected summary: %+v", summary)
			}
		})
	}
}

func TestProgressHandler_WeeklyInvalidRange(t *testing.T) {
	t.Parallel()

	service := &mockProgressService{
		weeklyFunc: func(ctx context.Context, id uuid.UUID, start, end time.Time) (*progress.WeeklySummary, error) {
			return nil, apperr.Validation("end date must not be before start date")
		},
	}
	h := newTestRouter(RouterConfig{Progress: service})

	rr, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/progress/goals/"+uuid.NewString()+"/weekly?start=2025-06-07&end=2025-06-01", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
	if env.Message != "end date must not be before start date" {
		t.Errorf("Unexpected message %q", env.Message)
	}
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return models.FormatDate(*t)
}
