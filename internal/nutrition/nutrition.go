// Package nutrition estimates macros for parsed food items from an embedded per-100 g table.
package nutrition

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/benvon/life-tracker/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed foods.yaml
var defaultTable []byte

// Food is one table row. Values are per 100 g.
type Food struct {
	Name       string   `yaml:"name"`
	Aliases    []string `yaml:"aliases"`
	Calories   float64  `yaml:"calories"`
	Protein    float64  `yaml:"protein"`
	Carbs      float64  `yaml:"carbs"`
	Fats       float64  `yaml:"fats"`
	CaffeineMG float64  `yaml:"caffeine_mg"`
}

type table struct {
	Foods []Food `yaml:"foods"`
}

// Estimator fills missing macros on food items
type Estimator struct {
	foods []Food
}

// NewEstimator loads the embedded table
func NewEstimator() (*Estimator, error) {
	return Parse(defaultTable)
}

// Parse builds an estimator from a YAML table
func Parse(data []byte) (*Estimator, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition table: %w", err)
	}
	for i, f := range t.Foods {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("nutrition table entry %d has no name", i)
		}
	}
	return &Estimator{foods: t.Foods}, nil
}

// Lookup finds the first entry whose name or alias occurs in name as a whole word,
// case-insensitively and allowing a plural "s". Table order decides ties, so more
// specific entries are listed first.
func (e *Estimator) Lookup(name string) (Food, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Food{}, false
	}
	for _, f := range e.foods {
		if containsWord(name, strings.ToLower(f.Name)) {
			return f, true
		}
		for _, alias := range f.Aliases {
			if containsWord(name, strings.ToLower(alias)) {
				return f, true
			}
		}
	}
	return Food{}, false
}

// Estimate returns item with macros filled from the table, scaled by its amount in grams.
// Items that already carry macros, or match nothing, are returned unchanged.
func (e *Estimator) Estimate(item models.FoodItem) models.FoodItem {
	if item.HasMacros() {
		return item
	}
	f, ok := e.Lookup(item.Food)
	if !ok {
		return item
	}

	grams := item.Amount
	if grams <= 0 {
		grams = 100
	}
	scale := grams / 100
	item.Calories = round1(f.Calories * scale)
	item.Protein = round1(f.Protein * scale)
	item.Carbs = round1(f.Carbs * scale)
	item.Fats = round1(f.Fats * scale)
	if item.CaffeineMG == 0 {
		item.CaffeineMG = round1(f.CaffeineMG * scale)
	}
	return item
}

// EstimatePayload fills every item of p
func (e *Estimator) EstimatePayload(p *models.FoodPayload) {
	if p == nil {
		return
	}
	for i := range p.Items {
		p.Items[i] = e.Estimate(p.Items[i])
	}
}

// containsWord reports whether word occurs in s bounded by non-letters, so "steak" does not match "tea"
func containsWord(s, word string) bool {
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], word)
		if i == -1 {
			return false
		}
		start := offset + i
		end := start + len(word)
		if end < len(s) && s[end] == 's' {
			end++
		}
		if (start == 0 || !isLetter(s[start-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
