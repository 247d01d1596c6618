package database

import "strings"

// schemaTemplate is the authoritative schema. {{uuid}} and {{json}} are replaced per driver.
// Date columns hold YYYY-MM-DD values; timestamp columns hold wall-clock time without a zone.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS goals (
	id {{uuid}} PRIMARY KEY,
	parent_id {{uuid}} REFERENCES goals(id) ON DELETE CASCADE,
	category_id {{uuid}},
	title VARCHAR(300) NOT NULL,
	description TEXT,
	goal_type VARCHAR(20) NOT NULL,
	target_value DOUBLE PRECISION,
	target_unit VARCHAR(50),
	health_metric_type VARCHAR(20),
	is_qualitative BOOLEAN NOT NULL DEFAULT FALSE,
	star_threshold_2 DOUBLE PRECISION,
	star_threshold_3 DOUBLE PRECISION,
	progress_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_goals_parent_status ON goals (parent_id, status);

CREATE TABLE IF NOT EXISTS goal_contributions (
	id {{uuid}} PRIMARY KEY,
	parent_goal_id {{uuid}} NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
	child_goal_id {{uuid}} NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
	weight_percentage DOUBLE PRECISION NOT NULL,
	contribution_type VARCHAR(20) NOT NULL DEFAULT 'automatic',
	notes TEXT,
	UNIQUE (parent_goal_id, child_goal_id)
);

CREATE TABLE IF NOT EXISTS milestones (
	id {{uuid}} PRIMARY KEY,
	goal_id {{uuid}} NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
	title VARCHAR(300) NOT NULL,
	milestone_type VARCHAR(20) NOT NULL DEFAULT 'quantitative',
	target_value DOUBLE PRECISION,
	target_unit VARCHAR(50),
	current_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	weight_percentage DOUBLE PRECISION NOT NULL DEFAULT 10,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	due_date DATE,
	display_order INTEGER NOT NULL DEFAULT 0,
	completed_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS milestone_checklist_items (
	id {{uuid}} PRIMARY KEY,
	milestone_id {{uuid}} NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
	title VARCHAR(300) NOT NULL,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	display_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS daily_checklist_items (
	id {{uuid}} PRIMARY KEY,
	goal_id {{uuid}} NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
	title VARCHAR(300) NOT NULL,
	weight_percentage DOUBLE PRECISION NOT NULL DEFAULT 10,
	is_recurring BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS daily_checklist_completions (
	id {{uuid}} PRIMARY KEY,
	checklist_item_id {{uuid}} NOT NULL REFERENCES daily_checklist_items(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	notes TEXT,
	completed_at TIMESTAMP,
	UNIQUE (checklist_item_id, date)
);

CREATE TABLE IF NOT EXISTS goal_progress_history (
	goal_id {{uuid}} NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	achieved_value DOUBLE PRECISION,
	target_value DOUBLE PRECISION,
	percentage DOUBLE PRECISION NOT NULL,
	stars INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (goal_id, date)
);

CREATE TABLE IF NOT EXISTS pending_logs (
	id {{uuid}} PRIMARY KEY,
	date DATE NOT NULL,
	category VARCHAR(20) NOT NULL,
	raw_input TEXT NOT NULL,
	parsed_data {{json}},
	logged_at TIMESTAMP NOT NULL,
	compiled BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pending_logs_date_compiled ON pending_logs (date, compiled);

CREATE TABLE IF NOT EXISTS water_logs (
	id {{uuid}} PRIMARY KEY,
	date DATE NOT NULL,
	amount_ml DOUBLE PRECISION NOT NULL,
	target_ml INTEGER NOT NULL DEFAULT 2000
);

CREATE TABLE IF NOT EXISTS food_logs (
	id {{uuid}} PRIMARY KEY,
	description TEXT NOT NULL,
	calories DOUBLE PRECISION NOT NULL DEFAULT 0,
	protein DOUBLE PRECISION NOT NULL DEFAULT 0,
	carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
	fats DOUBLE PRECISION NOT NULL DEFAULT 0,
	caffeine_mg DOUBLE PRECISION NOT NULL DEFAULT 0,
	date TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS steps_logs (
	id {{uuid}} PRIMARY KEY,
	date DATE NOT NULL,
	total_steps INTEGER NOT NULL,
	from_running INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS gym_logs (
	id {{uuid}} PRIMARY KEY,
	exercise VARCHAR(100) NOT NULL,
	sets INTEGER NOT NULL DEFAULT 0,
	reps INTEGER NOT NULL DEFAULT 0,
	weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	weight_unit VARCHAR(10) NOT NULL DEFAULT 'lbs',
	notes TEXT,
	date TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sleep_logs (
	id {{uuid}} PRIMARY KEY,
	date DATE NOT NULL,
	duration_hours DOUBLE PRECISION,
	quality_score INTEGER,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS ratelimit_config (
	config_key VARCHAR(50) PRIMARY KEY,
	rate VARCHAR(50) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SchemaSQL returns the schema for driver
func SchemaSQL(driver string) string {
	r := strings.NewReplacer("{{uuid}}", "UUID", "{{json}}", "JSONB")
	if driver == DriverSQLite {
		r = strings.NewReplacer("{{uuid}}", "TEXT", "{{json}}", "TEXT")
	}
	return r.Replace(schemaTemplate)
}
