package models

import (
	"time"

	"github.com/google/uuid"
)

// GoalType is the horizon a goal sits at in the goal hierarchy
type GoalType string

const (
	GoalTypeHighLevel GoalType = "high_level"
	GoalTypeYearly    GoalType = "yearly"
	GoalTypeQuarterly GoalType = "quarterly"
	GoalTypeMonthly   GoalType = "monthly"
	GoalTypeWeekly    GoalType = "weekly"
	GoalTypeDaily     GoalType = "daily"
)

// Valid reports whether t is a known goal type
func (t GoalType) Valid() bool {
	switch t {
	case GoalTypeHighLevel, GoalTypeYearly, GoalTypeQuarterly, GoalTypeMonthly, GoalTypeWeekly, GoalTypeDaily:
		return true
	default:
		return false
	}
}

// GoalStatus represents the lifecycle state of a goal
type GoalStatus string

const (
	GoalStatusActive   GoalStatus = "active"
	GoalStatusArchived GoalStatus = "archived"
)

// HealthMetric selects the log aggregate a quantitative daily goal is measured against
type HealthMetric string

const (
	HealthMetricCalories HealthMetric = "calories"
	HealthMetricProtein  HealthMetric = "protein"
	HealthMetricCarbs    HealthMetric = "carbs"
	HealthMetricFats     HealthMetric = "fats"
	HealthMetricWater    HealthMetric = "water"
	HealthMetricSteps    HealthMetric = "steps"
	HealthMetricSleep    HealthMetric = "sleep"
	HealthMetricCaffeine HealthMetric = "caffeine"
)

// Valid reports whether m is one of the supported metric kinds
func (m HealthMetric) Valid() bool {
	switch m {
	case HealthMetricCalories, HealthMetricProtein, HealthMetricCarbs, HealthMetricFats,
		HealthMetricWater, HealthMetricSteps, HealthMetricSleep, HealthMetricCaffeine:
		return true
	default:
		return false
	}
}

// ContributionType records whether a contribution edge was created by the user or derived
type ContributionType string

const (
	ContributionAutomatic ContributionType = "automatic"
	ContributionManual    ContributionType = "manual"
)

// Goal is a node in the goal tree
type Goal struct {
	ID                 uuid.UUID     `json:"id"`
	ParentID           *uuid.UUID    `json:"parent_id,omitempty"`
	CategoryID         *uuid.UUID    `json:"category_id,omitempty"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	GoalType           GoalType      `json:"goal_type"`
	TargetValue        *float64      `json:"target_value,omitempty"`
	TargetUnit         *string       `json:"target_unit,omitempty"`
	HealthMetricType   *HealthMetric `json:"health_metric_type,omitempty"`
	IsQualitative      bool          `json:"is_qualitative"`
	StarThreshold2     *float64      `json:"star_threshold_2,omitempty"`
	StarThreshold3     *float64      `json:"star_threshold_3,omitempty"`
	ProgressPercentage float64       `json:"progress_percentage"`
	Status             GoalStatus    `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Contribution is a weighted edge from a child goal into a parent goal
type Contribution struct {
	ID               uuid.UUID        `json:"id"`
	ParentGoalID     uuid.UUID        `json:"parent_goal_id"`
	ChildGoalID      uuid.UUID        `json:"child_goal_id"`
	WeightPercentage float64          `json:"weight_percentage"`
	ContributionType ContributionType `json:"contribution_type"`
	Notes            string           `json:"notes,omitempty"`
}

// GoalUpdate lists every goal column that may be changed after creation.
// Nil fields are left untouched.
type GoalUpdate struct {
	Title            *string       `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Description      *string       `json:"description,omitempty"`
	GoalType         *GoalType     `json:"goal_type,omitempty" validate:"omitempty,goal_type"`
	TargetValue      *float64      `json:"target_value,omitempty" validate:"omitempty,gte=0"`
	TargetUnit       *string       `json:"target_unit,omitempty"`
	HealthMetricType *HealthMetric `json:"health_metric_type,omitempty" validate:"omitempty,health_metric"`
	IsQualitative    *bool         `json:"is_qualitative,omitempty"`
	StarThreshold2   *float64      `json:"star_threshold_2,omitempty" validate:"omitempty,gte=0,lte=100"`
	StarThreshold3   *float64      `json:"star_threshold_3,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status           *GoalStatus   `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
}

// IsEmpty reports whether the update changes nothing
func (u GoalUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.GoalType == nil && u.TargetValue == nil &&
		u.TargetUnit == nil && u.HealthMetricType == nil && u.IsQualitative == nil &&
		u.StarThreshold2 == nil && u.StarThreshold3 == nil && u.Status == nil
}
