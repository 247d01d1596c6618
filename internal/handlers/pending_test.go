package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/ingest"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func TestPendingHandler_Create(t *testing.T) {
	t.Parallel()

	fixedNow := time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		body         any
		ingestErr    error
		expectStatus int
		expectError  string
		expectDate   string
		expectText   string
	}{
		{
			name:         "defaults to today",
			body:         map[string]string{"input": "drank 500ml water"},
			expectStatus: http.StatusCreated,
			expectDate:   "2025-06-01",
			expectText:   "drank 500ml water",
		},
		{
			name:         "explicit date",
			body:         map[string]string{"input": "slept 7 hours", "date": "2025-05-30"},
			expectStatus: http.StatusCreated,
			expectDate:   "2025-05-30",
			expectText:   "slept 7 hours",
		},
		{
			name:         "input is trimmed",
			body:         map[string]string{"input": "  walked 8000 steps  "},
			expectStatus: http.StatusCreated,
			expectDate:   "2025-06-01",
			expectText:   "walked 8000 steps",
		},
		{
			name:         "missing input",
			body:         map[string]string{"date": "2025-06-01"},
			expectStatus: http.StatusBadRequest,
			expectError:  "validation_error",
		},
		{
			name:         "input too long",
			body:         map[string]string{"input": strings.Repeat("a", validation.MaxEntryLength+1)},
			expectStatus: http.StatusBadRequest,
			expectError:  "validation_error",
		},
		{
			name:         "malformed date",
			body:         map[string]string{"input": "water", "date": "06/01/2025"},
			expectStatus: http.StatusBadRequest,
			expectError:  "validation_error",
		},
		{
			name:         "unknown field",
			body:         map[string]string{"input": "water", "user": "x"},
			expectStatus: http.StatusBadRequest,
			expectError:  "validation_error",
		},
		{
			name:         "classifier failure",
			body:         map[string]string{"input": "water"},
			ingestErr:    apperr.External("classifier unavailable", context.DeadlineExceeded),
			expectStatus: http.StatusBadGateway,
			expectError:  "external_dependency_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got ingest.Request
			service := &mockPendingService{
				ingestFunc: func(ctx context.Context, req ingest.Request) ([]*models.PendingLog, error) {
					got = req
					if tt.ingestErr != nil {
						return nil, tt.ingestErr
					}
					return []*models.PendingLog{{ID: uuid.New(), Date: req.Date, Category: models.CategoryWater, RawInput: req.Text}}, nil
				},
			}
			h := NewPendingHandler(service, time.UTC, nil)
			h.now = func() time.Time { return fixedNow }
			r := mux.NewRouter()
			h.RegisterRoutes(r.PathPrefix("/pending").Subrouter(), nil)

			rr, env := serve(t, r, newTestRequest(http.MethodPost, "/pending", tt.body))

			if rr.Code != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.expectStatus, rr.Code, rr.Body.String())
			}
			if tt.expectError != "" {
				if env.Error != tt.expectError {
					t.Errorf("Expected error %q, got %q", tt.expectError, env.Error)
				}
				return
			}
			if got.Text != tt.expectText {
				t.Errorf("Expected text %q, got %q", tt.expectText, got.Text)
			}
			if d := models.FormatDate(got.Date); d != tt.expectDate {
				t.Errorf("Expected date %s, got %s", tt.expectDate, d)
			}
			if !got.Now.Equal(fixedNow) {
				t.Errorf("Expected now %v, got %v", fixedNow, got.Now)
			}

			var entries []map[string]any
			if err := json.Unmarshal(env.Data, &entries); err != nil {
				t.Fatalf("Failed to decode entries: %v", err)
			}
			if len(entries) != 1 || entries[0]["category"] != "water" {
				t.Errorf("Unexpected entries: %v", entries)
			}
		})
	}
}

func TestPendingHandler_List(t *testing.T) {
	t.Parallel()

	var gotDate time.Time
	service := &mockPendingService{
		listFunc: func(ctx context.Context, date time.Time) (map[models.Category][]*models.PendingLog, error) {
			gotDate = date
			return map[models.Category][]*models.PendingLog{
				models.CategoryWater: {{ID: uuid.New(), Category: models.CategoryWater, Date: date}},
			}, nil
		},
	}
	h := newTestRouter(RouterConfig{Pending: service})

	rr, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/pending?date=2025-06-02", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if models.FormatDate(gotDate) != "2025-06-02" {
		t.Errorf("Expected date 2025-06-02, got %s", models.FormatDate(gotDate))
	}

	var data struct {
		Date    string                      `json:"date"`
		Entries map[string][]map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if data.Date != "2025-06-02" {
		t.Errorf("Expected date echo, got %q", data.Date)
	}
	if len(data.Entries["water"]) != 1 {
		t.Errorf("Expected one water entry, got %v", data.Entries)
	}

	rr, env = serve(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/pending?date=2025-06-02&category=food", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for category filter, got %d", rr.Code)
	}
	data.Entries = nil
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if food, ok := data.Entries["food"]; !ok || len(food) != 0 || len(data.Entries) != 1 {
		t.Errorf("Expected only an empty food group, got %v", data.Entries)
	}

	for _, target := range []string{"/api/v1/pending?date=tomorrow", "/api/v1/pending?category=yoga"} {
		rr, env = serve(t, h, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusBadRequest || env.Error != "validation_error" {
			t.Errorf("%s: expected 400 validation_error, got %d %q", target, rr.Code, env.Error)
		}
	}
}

func TestPendingHandler_Update(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name         string
		path         string
		body         any
		updateErr    error
		expectStatus int
		expectError  string
	}{
		{
			name:         "replaces parsed data",
			path:         "/api/v1/pending/" + id.String(),
			body:         `{"parsed_data":{"amount_ml":750}}`,
			expectStatus: http.StatusOK,
		},
		{
			name:         "missing parsed data",
			path:         "/api/v1/pending/" + id.String(),
			body:         `{}`,
			expectStatus: http.StatusBadRequest,
			expectError:  "validation_error",
		},
		{
			name:         "bad id",
			path:         "/api/v1/pending/not-a-uuid",
			body:         `{"parsed_data":{}}`,
			expectStatus: http.StatusBadRequest,
			expectError:  "validation_error",
		},
		{
			name:         "unknown entry",
			path:         "/api/v1/pending/" + id.String(),
			body:         `{"parsed_data":{"amount_ml":1}}`,
			updateErr:    apperr.NotFound("pending log", id),
			expectStatus: http.StatusNotFound,
			expectError:  "not_found",
		},
		{
			name:         "already compiled",
			path:         "/api/v1/pending/" + id.String(),
			body:         `{"parsed_data":{"amount_ml":1}}`,
			updateErr:    apperr.Precondition("pending log has already been compiled"),
			expectStatus: http.StatusConflict,
			expectError:  "precondition_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotRaw json.RawMessage
			service := &mockPendingService{
				updateFunc: func(ctx context.Context, gotID uuid.UUID, raw json.RawMessage) (*models.PendingLog, error) {
					if gotID != id {
						t.Errorf("Expected id %s, got %s", id, gotID)
					}
					gotRaw = raw
					if tt.updateErr != nil {
						return nil, tt.updateErr
					}
					return &models.PendingLog{ID: id, Category: models.CategoryWater, Payload: models.WaterPayload{AmountML: 750}}, nil
				},
			}
			h := newTestRouter(RouterConfig{Pending: service})

			rr, env := serve(t, h, newTestRequest(http.MethodPatch, tt.path, tt.body))
			if rr.Code != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.expectStatus, rr.Code, rr.Body.String())
			}
			if tt.expectError != "" {
				if env.Error != tt.expectError {
					t.Errorf("Expected error %q, got %q", tt.expectError, env.Error)
				}
				return
			}
			if string(gotRaw) != `{"amount_ml":750}` {
				t.Errorf("Expected raw parsed data to be passed through, got %s", gotRaw)
			}
			if !strings.Contains(string(env.Data), `"parsed_data":{"amount_ml":750}`) {
				t.Errorf("Expected parsed data in response, got %s", env.Data)
			}
		})
	}
}

func TestPendingHandler_Delete(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name         string
		deleteErr    error
		expectStatus int
	}{
		{name: "deleted", expectStatus: http.StatusNoContent},
		{name: "unknown", deleteErr: apperr.NotFound("pending log", id), expectStatus: http.StatusNotFound},
		{name: "compiled", deleteErr: apperr.Precondition("pending log has already been compiled"), expectStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &mockPendingService{
				deleteFunc: func(ctx context.Context, gotID uuid.UUID) error {
					return tt.deleteErr
				},
			}
			h := newTestRouter(RouterConfig{Pending: service})

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/pending/"+id.String(), nil))
			if rr.Code != tt.expectStatus {
				t.Errorf("Expected status %d, got %d", tt.expectStatus, rr.Code)
			}
		})
	}
}
