package database

import (
	"context"
	"testing"
	"time"

	"github.com/benvon/life-tracker/internal/models"
)

// setupTestDB opens an in-memory SQLite database with the authoritative schema.
// Tests never declare their own tables.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db, err := New(ctx, DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func seedGoal(t *testing.T, db *DB, goal models.Goal) *models.Goal {
	t.Helper()
	if goal.Title == "" {
		goal.Title = "Test Goal"
	}
	if goal.GoalType == "" {
		goal.GoalType = models.GoalTypeMonthly
	}
	if err := NewGoalRepository(db).Create(context.Background(), &goal); err != nil {
		t.Fatalf("failed to seed goal: %v", err)
	}
	return &goal
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s, time.UTC)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func countRows(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}

func optionalDate(t *testing.T, s string) *time.Time {
	t.Helper()
	if s == "" {
		return nil
	}
	d := mustDate(t, s)
	return &d
}
