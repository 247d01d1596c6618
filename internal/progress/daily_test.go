package progress

import (
	"testing"

	"github.com/benvon/life-tracker/internal/models"
)

func TestMetricProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		achieved       float64
		target         float64
		wantPercentage float64
		wantStars      int
	}{
		{"nothing logged", 0, 2000, 0, 0},
		{"half way", 1000, 2000, 50, 1},
		{"two stars", 1500, 2000, 75, 2},
		{"exact target", 2000, 2000, 100, 3},
		{"over target clamps", 3000, 2000, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MetricProgress(tt.achieved, tt.target, DefaultThresholds)
			if got.Percentage != tt.wantPercentage {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.wantPercentage)
			}
			if got.Stars != tt.wantStars {
				t.Errorf("Stars = %d, want %d", got.Stars, tt.wantStars)
			}
			if got.AchievedValue == nil || *got.AchievedValue != tt.achieved {
				t.Errorf("AchievedValue = %v, want %v", got.AchievedValue, tt.achieved)
			}
			if got.TargetValue == nil || *got.TargetValue != tt.target {
				t.Errorf("TargetValue = %v, want %v", got.TargetValue, tt.target)
			}
		})
	}
}

func TestChecklistProgress(t *testing.T) {
	t.Parallel()

	item := func(weight float64, done bool) models.ChecklistItemStatus {
		return models.ChecklistItemStatus{
			DailyChecklistItem: models.DailyChecklistItem{WeightPercentage: weight},
			IsCompleted:        done,
		}
	}

	tests := []struct {
		name           string
		items          []models.ChecklistItemStatus
		wantPercentage float64
		wantCompleted  int
	}{
		{"no items", nil, 0, 0},
		{"only heaviest done", []models.ChecklistItemStatus{item(30, false), item(30, false), item(40, true)}, 40, 1},
		{"all done", []models.ChecklistItemStatus{item(30, true), item(70, true)}, 100, 2},
		{"zero weights", []models.ChecklistItemStatus{item(0, true)}, 0, 1},
		{"uneven weights normalise", []models.ChecklistItemStatus{item(1, true), item(3, false)}, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ChecklistProgress(tt.items, DefaultThresholds)
			if got.Percentage != tt.wantPercentage {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.wantPercentage)
			}
			if got.CompletedItems != tt.wantCompleted {
				t.Errorf("CompletedItems = %d, want %d", got.CompletedItems, tt.wantCompleted)
			}
			if got.TotalItems != len(tt.items) {
				t.Errorf("TotalItems = %d, want %d", got.TotalItems, len(tt.items))
			}
			if got.AchievedValue != nil || got.TargetValue != nil {
				t.Error("Expected checklist progress to carry no achieved or target value")
			}
		})
	}
}
