package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	date          TEXT NOT NULL,
	start_time    TEXT NOT NULL,
	end_time      TEXT NOT NULL,
	category      TEXT NOT NULL,
	priority      TEXT NOT NULL DEFAULT 'medium',
	completed     INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	reminder      INTEGER NOT NULL DEFAULT 0 CHECK(reminder IN (0, 1)),
	checklist_ids TEXT NOT NULL DEFAULT '[]',
	subtasks      TEXT NOT NULL DEFAULT '[]',
	recurring     TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date);
CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);

CREATE TABLE IF NOT EXISTS checklist_items (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	category     TEXT NOT NULL,
	frequency    TEXT NOT NULL CHECK(frequency IN ('daily', 'weekly', 'monthly', 'yearly')),
	completed    INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at DATETIME,
	sort_order   INTEGER NOT NULL DEFAULT 0,
	is_template  INTEGER NOT NULL DEFAULT 0 CHECK(is_template IN (0, 1)),
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checklist_items_frequency ON checklist_items(frequency);
CREATE INDEX IF NOT EXISTS idx_checklist_items_category ON checklist_items(category);

CREATE TABLE IF NOT EXISTS checklist_state (
	id                   INTEGER PRIMARY KEY CHECK(id = 1),
	initialized          INTEGER NOT NULL DEFAULT 0 CHECK(initialized IN (0, 1)),
	current              INTEGER NOT NULL DEFAULT 0,
	longest              INTEGER NOT NULL DEFAULT 0,
	last_completed_date  TEXT NOT NULL DEFAULT '',
	total_days_completed INTEGER NOT NULL DEFAULT 0,
	last_daily_reset     DATETIME,
	last_weekly_reset    DATETIME,
	last_monthly_reset   DATETIME,
	last_yearly_reset    DATETIME
);

INSERT INTO checklist_state (id) VALUES (1);

CREATE TABLE IF NOT EXISTS completion_history (
	date       TEXT PRIMARY KEY,
	completed  INTEGER NOT NULL,
	total      INTEGER NOT NULL,
	percentage INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS check_ins (
	id                         TEXT PRIMARY KEY,
	date                       TEXT NOT NULL UNIQUE,
	mood                       TEXT NOT NULL,
	energy                     INTEGER NOT NULL,
	focus                      INTEGER NOT NULL,
	reflection                 TEXT NOT NULL DEFAULT '',
	gratitude                  TEXT NOT NULL DEFAULT '[]',
	completed_tasks_count      INTEGER NOT NULL DEFAULT 0,
	missed_tasks_count         INTEGER NOT NULL DEFAULT 0,
	activities                 TEXT NOT NULL DEFAULT '[]',
	sleep_quality              INTEGER NOT NULL DEFAULT 0,
	stress                     INTEGER NOT NULL DEFAULT 0,
	time_of_day                TEXT NOT NULL DEFAULT '',
	micro_commitment           TEXT NOT NULL DEFAULT '',
	micro_commitment_completed INTEGER NOT NULL DEFAULT 0 CHECK(micro_commitment_completed IN (0, 1)),
	created_at                 DATETIME NOT NULL,
	updated_at                 DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_check_ins_date ON check_ins(date);

CREATE TABLE IF NOT EXISTS checkin_state (
	id                INTEGER PRIMARY KEY CHECK(id = 1),
	longest_streak    INTEGER NOT NULL DEFAULT 0,
	freezes_remaining INTEGER NOT NULL DEFAULT 2,
	last_freeze_reset DATETIME
);

INSERT INTO checkin_state (id) VALUES (1);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_date_completed ON tasks(date, completed);
CREATE INDEX IF NOT EXISTS idx_checklist_items_freq_cat
	ON checklist_items(frequency, category, sort_order);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
