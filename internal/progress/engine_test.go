package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func metricPtr(m models.HealthMetric) *models.HealthMetric { return &m }

func newTestEngine(graph *goalGraph, milestones *mockMilestoneRepo, checklists *mockChecklistRepo, metrics *mockMetricRepo) *Engine {
	if milestones == nil {
		milestones = &mockMilestoneRepo{}
	}
	if checklists == nil {
		checklists = &mockChecklistRepo{}
	}
	if metrics == nil {
		metrics = &mockMetricRepo{}
	}
	return NewEngine(graph.repo(), milestones, checklists, metrics, Thresholds{}, zap.NewNop())
}

// fixedMetrics reports the same total for every kind
func fixedMetrics(values map[models.HealthMetric]float64) *mockMetricRepo {
	return &mockMetricRepo{
		DailyTotalFunc: func(_ context.Context, kind models.HealthMetric, _ time.Time) (float64, error) {
			return values[kind], nil
		},
	}
}

func TestEngine_GoalProgress_NoChildren(t *testing.T) {
	t.Parallel()

	graph := newGoalGraph()
	id := graph.add(models.Goal{Title: "Get fit"})

	got, err := newTestEngine(graph, nil, nil, nil).GoalProgress(context.Background(), id, testDate)
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if got == nil {
		t.Fatal("Expected zero progress, got nil")
	}
	if got.Percentage != 0 || got.Stars != 0 || got.TotalWeight != 0 {
		t.Errorf("Expected 0/0/0, got %v/%d/%v", got.Percentage, got.Stars, got.TotalWeight)
	}
}

func TestEngine_GoalProgress_WeightedChildren(t *testing.T) {
	t.Parallel()

	graph := newGoalGraph()
	parent := graph.add(models.Goal{Title: "Health", GoalType: models.GoalTypeQuarterly})
	water := graph.add(models.Goal{
		Title:            "Drink water",
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetricWater),
		TargetValue:      floatPtr(2000),
	})
	steps := graph.add(models.Goal{
		Title:            "Walk",
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetricSteps),
		TargetValue:      floatPtr(10000),
	})
	graph.link(parent, water, 60)
	graph.link(parent, steps, 40)

	metrics := fixedMetrics(map[models.HealthMetric]float64{
		models.HealthMetricWater: 2500,
		models.HealthMetricSteps: 5000,
	})

	got, err := newTestEngine(graph, nil, nil, metrics).GoalProgress(context.Background(), parent, testDate)
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if got.Percentage != 80 {
		t.Errorf("Percentage = %v, want 80", got.Percentage)
	}
	if got.Stars != 2 {
		t.Errorf("Stars = %d, want 2", got.Stars)
	}
	if got.TotalWeight != 100 || got.ContributionsCount != 2 {
		t.Errorf("Expected weight 100 over 2 contributions, got %v over %d", got.TotalWeight, got.ContributionsCount)
	}
}

func TestEngine_GoalProgress_NormalisesPartialWeights(t *testing.T) {
	t.Parallel()

	graph := newGoalGraph()
	parent := graph.add(models.Goal{Title: "Parent"})
	child := graph.add(models.Goal{
		Title:            "Protein",
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetricProtein),
		TargetValue:      floatPtr(100),
	})
	graph.link(parent, child, 30)

	metrics := fixedMetrics(map[models.HealthMetric]float64{models.HealthMetricProtein: 50})

	got, err := newTestEngine(graph, nil, nil, metrics).GoalProgress(context.Background(), parent, testDate)
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if got.Percentage != 50 {
		t.Errorf("Percentage = %v, want 50", got.Percentage)
	}
}

func TestEngine_GoalProgress_SkipsUndefinedChildren(t *testing.T) {
	t.Parallel()

	graph := newGoalGraph()
	parent := graph.add(models.Goal{Title: "Parent"})
	measured := graph.add(models.Goal{
		Title:            "Water",
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetricWater),
		TargetValue:      floatPtr(1000),
	})
	noTarget := graph.add(models.Goal{
		Title:            "Steps without target",
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetricSteps),
	})
	plain := graph.add(models.Goal{Title: "Untracked daily", GoalType: models.GoalTypeDaily})
	graph.link(parent, measured, 50)
	graph.link(parent, noTarget, 25)
	graph.link(parent, plain, 25)

	metrics := fixedMetrics(map[models.HealthMetric]float64{models.HealthMetricWater: 250})

	got, err := newTestEngine(graph, nil, nil, metrics).GoalProgress(context.Background(), parent, testDate)
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if got.TotalWeight != 50 {
		t.Errorf("TotalWeight = %v, want 50", got.TotalWeight)
	}
	if got.Percentage != 25 {
		t.Errorf("Percentage = %v, want 25", got.Percentage)
	}
}

func TestEngine_GoalProgress_DailyGoal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		goal       models.Goal
		metrics    map[models.HealthMetric]float64
		checklist  []models.ChecklistItemStatus
		wantNil    bool
		wantPct    float64
		wantStars  int
		wantTarget *float64
	}{
		{
			name: "metric over target",
			goal: models.Goal{
				HealthMetricType: metricPtr(models.HealthMetricWater),
				TargetValue:      floatPtr(2000),
			},
			metrics:    map[models.HealthMetric]float64{models.HealthMetricWater: 3000},
			wantPct:    100,
			wantStars:  3,
			wantTarget: floatPtr(2000),
		},
		{
			name: "zero target is undefined",
			goal: models.Goal{
				HealthMetricType: metricPtr(models.HealthMetricWater),
				TargetValue:      floatPtr(0),
			},
			wantNil: true,
		},
		{
			name: "unknown metric is undefined",
			goal: models.Goal{
				HealthMetricType: metricPtr(models.HealthMetric("mood")),
				TargetValue:      floatPtr(10),
			},
			wantNil: true,
		},
		{
			name: "metric goal ignores its checklist",
			goal: models.Goal{
				HealthMetricType: metricPtr(models.HealthMetricSteps),
				IsQualitative:    true,
			},
			checklist: []models.ChecklistItemStatus{{IsCompleted: true, DailyChecklistItem: models.DailyChecklistItem{WeightPercentage: 100}}},
			wantNil:   true,
		},
		{
			name: "qualitative checklist",
			goal: models.Goal{IsQualitative: true},
			checklist: []models.ChecklistItemStatus{
				{DailyChecklistItem: models.DailyChecklistItem{WeightPercentage: 30}},
				{DailyChecklistItem: models.DailyChecklistItem{WeightPercentage: 30}},
				{DailyChecklistItem: models.DailyChecklistItem{WeightPercentage: 40}, IsCompleted: true},
			},
			wantPct:   40,
			wantStars: 1,
		},
		{
			name:    "qualitative without items is zero",
			goal:    models.Goal{IsQualitative: true},
			wantPct: 0,
		},
		{
			name:    "neither metric nor checklist",
			goal:    models.Goal{},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			graph := newGoalGraph()
			tt.goal.GoalType = models.GoalTypeDaily
			id := graph.add(tt.goal)
			checklists := &mockChecklistRepo{
				ListForDateFunc: func(_ context.Context, _ uuid.UUID, _ time.Time) ([]models.ChecklistItemStatus, error) {
					return tt.checklist, nil
				},
			}

			got, err := newTestEngine(graph, nil, checklists, fixedMetrics(tt.metrics)).GoalProgress(context.Background(), id, testDate)
			if err != nil {
				t.Fatalf("GoalProgress() error = %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("Expected nil progress, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected progress, got nil")
			}
			if got.Percentage != tt.wantPct || got.Stars != tt.wantStars {
				t.Errorf("Got %v%%/%d stars, want %v%%/%d", got.Percentage, got.Stars, tt.wantPct, tt.wantStars)
			}
			if got.Daily == nil {
				t.Fatal("Expected daily breakdown")
			}
			if tt.wantTarget != nil && (got.Daily.TargetValue == nil || *got.Daily.TargetValue != *tt.wantTarget) {
				t.Errorf("TargetValue = %v, want %v", got.Daily.TargetValue, *tt.wantTarget)
			}
		})
	}
}

func TestEngine_GoalProgress_UnknownMetricLogsWarning(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	graph := newGoalGraph()
	id := graph.add(models.Goal{
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetric("mood")),
		TargetValue:      floatPtr(5),
	})
	engine := NewEngine(graph.repo(), &mockMilestoneRepo{}, &mockChecklistRepo{}, &mockMetricRepo{}, Thresholds{}, zap.New(core))

	if _, err := engine.GoalProgress(context.Background(), id, testDate); err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if logs.FilterMessage("goal_unknown_health_metric").Len() != 1 {
		t.Errorf("Expected one unknown metric warning, got %d", logs.Len())
	}
}

func TestEngine_GoalProgress_DailyWithoutDateUsesChildren(t *testing.T) {
	t.Parallel()

	graph := newGoalGraph()
	id := graph.add(models.Goal{
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetricWater),
		TargetValue:      floatPtr(2000),
	})
	milestones := &mockMilestoneRepo{
		ListIncompleteFunc: func(_ context.Context, _ uuid.UUID) ([]*models.Milestone, error) {
			return []*models.Milestone{{
				ID:               uuid.New(),
				MilestoneType:    models.MilestoneTypeQuantitative,
				TargetValue:      floatPtr(10),
				CurrentValue:     5,
				WeightPercentage: 100,
			}}, nil
		},
	}

	got, err := newTestEngine(graph, milestones, nil, nil).GoalProgress(context.Background(), id, time.Time{})
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if got == nil || got.Daily != nil {
		t.Fatalf("Expected a roll-up without daily breakdown, got %+v", got)
	}
	if got.Percentage != 50 || got.MilestonesCount != 1 {
		t.Errorf("Expected 50%% from one milestone, got %v%% from %d", got.Percentage, got.MilestonesCount)
	}
}

func TestEngine_GoalProgress_Milestones(t *testing.T) {
	t.Parallel()

	checklistID := uuid.New()
	graph := newGoalGraph()
	id := graph.add(models.Goal{Title: "Run a marathon"})
	milestones := &mockMilestoneRepo{
		ListIncompleteFunc: func(_ context.Context, _ uuid.UUID) ([]*models.Milestone, error) {
			return []*models.Milestone{
				{ID: uuid.New(), MilestoneType: models.MilestoneTypeQuantitative, TargetValue: floatPtr(42), CurrentValue: 21, WeightPercentage: 50},
				{ID: checklistID, MilestoneType: models.MilestoneTypeChecklist, WeightPercentage: 50},
			}, nil
		},
		ListChecklistItemsFunc: func(_ context.Context, milestoneID uuid.UUID) ([]models.MilestoneChecklistItem, error) {
			if milestoneID != checklistID {
				t.Errorf("Unexpected checklist lookup for %s", milestoneID)
			}
			return []models.MilestoneChecklistItem{{IsCompleted: true}, {IsCompleted: true}, {IsCompleted: true}, {}}, nil
		},
	}

	got, err := newTestEngine(graph, milestones, nil, nil).GoalProgress(context.Background(), id, testDate)
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	// (50 * 50 + 75 * 50) / 100
	if got.Percentage != 62.5 {
		t.Errorf("Percentage = %v, want 62.5", got.Percentage)
	}
}

func TestEngine_GoalProgress_Cycles(t *testing.T) {
	t.Parallel()

	t.Run("self loop", func(t *testing.T) {
		t.Parallel()
		graph := newGoalGraph()
		a := graph.add(models.Goal{Title: "A"})
		graph.link(a, a, 100)

		_, err := newTestEngine(graph, nil, nil, nil).GoalProgress(context.Background(), a, testDate)
		if !errors.Is(err, apperr.ErrCycleDetected) {
			t.Errorf("Expected ErrCycleDetected, got %v", err)
		}
	})

	t.Run("three goal loop", func(t *testing.T) {
		t.Parallel()
		graph := newGoalGraph()
		a := graph.add(models.Goal{Title: "A"})
		b := graph.add(models.Goal{Title: "B"})
		c := graph.add(models.Goal{Title: "C"})
		graph.link(a, b, 100)
		graph.link(b, c, 100)
		graph.link(c, a, 100)

		_, err := newTestEngine(graph, nil, nil, nil).GoalProgress(context.Background(), a, testDate)
		if !errors.Is(err, apperr.ErrCycleDetected) {
			t.Errorf("Expected ErrCycleDetected, got %v", err)
		}
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		t.Parallel()
		graph := newGoalGraph()
		top := graph.add(models.Goal{Title: "Top"})
		left := graph.add(models.Goal{Title: "Left"})
		right := graph.add(models.Goal{Title: "Right"})
		shared := graph.add(models.Goal{
			Title:            "Shared",
			GoalType:         models.GoalTypeDaily,
			HealthMetricType: metricPtr(models.HealthMetricWater),
			TargetValue:      floatPtr(1000),
		})
		graph.link(top, left, 50)
		graph.link(top, right, 50)
		graph.link(left, shared, 100)
		graph.link(right, shared, 100)

		metrics := fixedMetrics(map[models.HealthMetric]float64{models.HealthMetricWater: 1000})
		got, err := newTestEngine(graph, nil, nil, metrics).GoalProgress(context.Background(), top, testDate)
		if err != nil {
			t.Fatalf("GoalProgress() error = %v", err)
		}
		if got.Percentage != 100 {
			t.Errorf("Percentage = %v, want 100", got.Percentage)
		}
	})
}

func TestEngine_GoalProgress_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing goal", func(t *testing.T) {
		t.Parallel()
		_, err := newTestEngine(newGoalGraph(), nil, nil, nil).GoalProgress(context.Background(), uuid.New(), testDate)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("metric read failure propagates", func(t *testing.T) {
		t.Parallel()
		graph := newGoalGraph()
		id := graph.add(models.Goal{
			GoalType:         models.GoalTypeDaily,
			HealthMetricType: metricPtr(models.HealthMetricSleep),
			TargetValue:      floatPtr(8),
		})
		boom := errors.New("database is locked")
		metrics := &mockMetricRepo{
			DailyTotalFunc: func(context.Context, models.HealthMetric, time.Time) (float64, error) {
				return 0, boom
			},
		}
		_, err := newTestEngine(graph, nil, nil, metrics).GoalProgress(context.Background(), id, testDate)
		if !errors.Is(err, boom) {
			t.Errorf("Expected wrapped metric error, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		graph := newGoalGraph()
		id := graph.add(models.Goal{Title: "A"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestEngine(graph, nil, nil, nil).GoalProgress(ctx, id, testDate)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestEngine_GoalProgress_GoalThresholdOverride(t *testing.T) {
	t.Parallel()

	graph := newGoalGraph()
	id := graph.add(models.Goal{
		GoalType:         models.GoalTypeDaily,
		HealthMetricType: metricPtr(models.HealthMetricSteps),
		TargetValue:      floatPtr(10000),
		StarThreshold2:   floatPtr(40),
		StarThreshold3:   floatPtr(60),
	})
	metrics := fixedMetrics(map[models.HealthMetric]float64{models.HealthMetricSteps: 6500})

	got, err := newTestEngine(graph, nil, nil, metrics).GoalProgress(context.Background(), id, testDate)
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if got.Stars != 3 {
		t.Errorf("Stars = %d, want 3 with goal thresholds 40/60", got.Stars)
	}
}
