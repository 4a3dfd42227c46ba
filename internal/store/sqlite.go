package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/idlecore/internal/automation"
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/game"
	"github.com/papapumpkin/idlecore/internal/idle"
	"github.com/papapumpkin/idlecore/internal/unlock"
)

// schema contains the DDL executed on first open. Quantities are stored as
// TEXT in bignum's lossless "<mantissa>e<exponent>" form.
const schema = `
CREATE TABLE IF NOT EXISTS slots (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL,
    definition         TEXT NOT NULL,
    wallet             TEXT NOT NULL DEFAULT '0',
    lifetime           TEXT NOT NULL DEFAULT '0',
    all_time           TEXT NOT NULL DEFAULT '0',
    play_time          REAL NOT NULL DEFAULT 0,
    snapshot_time      INTEGER NOT NULL DEFAULT 0,
    global_multiplier  REAL NOT NULL DEFAULT 1,
    prestige_points    TEXT NOT NULL DEFAULT '0',
    times_prestiged    INTEGER NOT NULL DEFAULT 0,
    prestige_threshold TEXT NOT NULL DEFAULT '0',
    scaling_exponent   REAL NOT NULL DEFAULT 0,
    automation_enabled INTEGER NOT NULL DEFAULT 1,
    saved_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS generators (
    slot_id    TEXT NOT NULL,
    position   INTEGER NOT NULL,
    id         TEXT NOT NULL,
    name       TEXT NOT NULL DEFAULT '',
    base_rate  TEXT NOT NULL,
    count      INTEGER NOT NULL,
    multiplier REAL NOT NULL,
    enabled    INTEGER NOT NULL,
    PRIMARY KEY (slot_id, id)
);

CREATE TABLE IF NOT EXISTS nodes (
    slot_id     TEXT NOT NULL,
    id          TEXT NOT NULL,
    name        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    icon        TEXT NOT NULL DEFAULT '',
    cost        TEXT NOT NULL,
    unlocked    INTEGER NOT NULL,
    unlock_time INTEGER NOT NULL,
    tier        INTEGER NOT NULL,
    PRIMARY KEY (slot_id, id)
);

CREATE TABLE IF NOT EXISTS edges (
    slot_id  TEXT NOT NULL,
    position INTEGER NOT NULL,
    node     TEXT NOT NULL,
    requires TEXT NOT NULL,
    PRIMARY KEY (slot_id, node, requires)
);

CREATE TABLE IF NOT EXISTS rules (
    slot_id          TEXT NOT NULL,
    position         INTEGER NOT NULL,
    id               TEXT NOT NULL,
    name             TEXT NOT NULL DEFAULT '',
    trigger_kind     TEXT NOT NULL,
    interval_secs    REAL NOT NULL,
    threshold        TEXT NOT NULL,
    enabled          INTEGER NOT NULL,
    max_triggers     INTEGER NOT NULL,
    latch            INTEGER NOT NULL,
    trigger_count    INTEGER NOT NULL,
    accumulated_time REAL NOT NULL,
    latched          INTEGER NOT NULL,
    PRIMARY KEY (slot_id, id)
);

CREATE TABLE IF NOT EXISTS milestones (
    slot_id       TEXT NOT NULL,
    position      INTEGER NOT NULL,
    id            TEXT NOT NULL,
    achieved      INTEGER NOT NULL,
    achieved_time INTEGER NOT NULL,
    PRIMARY KEY (slot_id, id)
);
`

// childTables hold per-slot rows that are replaced wholesale on save.
var childTables = []string{"generators", "nodes", "edges", "rules", "milestones"}

// SQLiteStore implements Store using a local SQLite database in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, enables WAL
// mode and busy timeout, and creates the schema tables if they do not exist.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection keeps PRAGMAs applied.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save upserts the slot row and replaces its child rows in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, slot *Slot) error {
	if err := prepare(slot); err != nil {
		return err
	}
	st := slot.State

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const upsert = `
		INSERT INTO slots (id, name, definition, wallet, lifetime, all_time, play_time,
			snapshot_time, global_multiplier, prestige_points, times_prestiged,
			prestige_threshold, scaling_exponent, automation_enabled, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			definition = excluded.definition,
			wallet = excluded.wallet,
			lifetime = excluded.lifetime,
			all_time = excluded.all_time,
			play_time = excluded.play_time,
			snapshot_time = excluded.snapshot_time,
			global_multiplier = excluded.global_multiplier,
			prestige_points = excluded.prestige_points,
			times_prestiged = excluded.times_prestiged,
			prestige_threshold = excluded.prestige_threshold,
			scaling_exponent = excluded.scaling_exponent,
			automation_enabled = excluded.automation_enabled,
			saved_at = excluded.saved_at`
	if _, err := tx.ExecContext(ctx, upsert,
		slot.ID, slot.Name, st.Definition,
		numText(st.Wallet), numText(st.Lifetime), numText(st.AllTime), st.PlayTime,
		st.Calculator.SnapshotTime, st.Calculator.GlobalMultiplier,
		numText(st.Prestige.Points), st.Prestige.TimesPrestiged,
		numText(st.Prestige.Threshold), st.Prestige.ScalingExponent,
		st.Automation.Enabled, slot.SavedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("store: upsert slot %q: %w", slot.ID, err)
	}

	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE slot_id = ?", slot.ID); err != nil {
			return fmt.Errorf("store: clear %s for %q: %w", table, slot.ID, err)
		}
	}

	for i, g := range st.Calculator.Generators {
		const q = `INSERT INTO generators (slot_id, position, id, name, base_rate, count, multiplier, enabled)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, slot.ID, i, g.ID, g.Name, numText(g.BaseRate), g.Count, g.Multiplier, g.Enabled); err != nil {
			return fmt.Errorf("store: insert generator %q: %w", g.ID, err)
		}
	}
	for _, n := range st.Tree.Nodes {
		const q = `INSERT INTO nodes (slot_id, id, name, description, icon, cost, unlocked, unlock_time, tier)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, slot.ID, n.ID, n.Name, n.Description, n.Icon, numText(n.Cost), n.Unlocked, n.UnlockTime, n.Tier); err != nil {
			return fmt.Errorf("store: insert node %q: %w", n.ID, err)
		}
	}
	for i, e := range st.Tree.Edges {
		const q = `INSERT INTO edges (slot_id, position, node, requires) VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, slot.ID, i, e.Node, e.Requires); err != nil {
			return fmt.Errorf("store: insert edge %s->%s: %w", e.Node, e.Requires, err)
		}
	}
	for i, r := range st.Automation.Rules {
		const q = `INSERT INTO rules (slot_id, position, id, name, trigger_kind, interval_secs, threshold, enabled,
			max_triggers, latch, trigger_count, accumulated_time, latched)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, slot.ID, i, r.ID, r.Name, r.Trigger.String(), r.Interval,
			numText(r.Threshold), r.Enabled, r.MaxTriggers, r.Latch, r.TriggerCount, r.AccumulatedTime, r.Latched); err != nil {
			return fmt.Errorf("store: insert rule %q: %w", r.ID, err)
		}
	}
	for i, m := range st.Milestones {
		const q = `INSERT INTO milestones (slot_id, position, id, achieved, achieved_time) VALUES (?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, slot.ID, i, m.ID, m.Achieved, m.AchievedTime); err != nil {
			return fmt.Errorf("store: insert milestone %q: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit slot %q: %w", slot.ID, err)
	}
	return nil
}

// Load reads a slot and all of its child rows.
func (s *SQLiteStore) Load(ctx context.Context, id string) (Slot, error) {
	const q = `SELECT id, name, definition, wallet, lifetime, all_time, play_time,
		snapshot_time, global_multiplier, prestige_points, times_prestiged,
		prestige_threshold, scaling_exponent, automation_enabled, saved_at
		FROM slots WHERE id = ?`

	var (
		slot                       Slot
		wallet, lifetime, allTime  string
		points, threshold, savedAt string
	)
	st := &slot.State
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&slot.ID, &slot.Name, &st.Definition, &wallet, &lifetime, &allTime, &st.PlayTime,
		&st.Calculator.SnapshotTime, &st.Calculator.GlobalMultiplier,
		&points, &st.Prestige.TimesPrestiged, &threshold, &st.Prestige.ScalingExponent,
		&st.Automation.Enabled, &savedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, fmt.Errorf("%w: %q", ErrSlotNotFound, id)
	}
	if err != nil {
		return Slot{}, fmt.Errorf("store: load slot %q: %w", id, err)
	}

	if slot.SavedAt, err = parseTimestamp(savedAt); err != nil {
		return Slot{}, fmt.Errorf("store: parse saved_at for %q: %w", id, err)
	}
	for _, f := range []struct {
		dst *bignum.Number
		src string
	}{
		{&st.Wallet, wallet},
		{&st.Lifetime, lifetime},
		{&st.AllTime, allTime},
		{&st.Prestige.Points, points},
		{&st.Prestige.Threshold, threshold},
	} {
		if *f.dst, err = bignum.Parse(f.src); err != nil {
			return Slot{}, fmt.Errorf("store: slot %q: %w", id, err)
		}
	}

	if st.Calculator.Generators, err = s.loadGenerators(ctx, id); err != nil {
		return Slot{}, err
	}
	if st.Tree.Nodes, err = s.loadNodes(ctx, id); err != nil {
		return Slot{}, err
	}
	if st.Tree.Edges, err = s.loadEdges(ctx, id); err != nil {
		return Slot{}, err
	}
	if st.Automation.Rules, err = s.loadRules(ctx, id); err != nil {
		return Slot{}, err
	}
	if st.Milestones, err = s.loadMilestones(ctx, id); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

func (s *SQLiteStore) loadGenerators(ctx context.Context, id string) ([]idle.GeneratorState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, base_rate, count, multiplier, enabled
		FROM generators WHERE slot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("store: query generators: %w", err)
	}
	defer rows.Close()

	var out []idle.GeneratorState
	for rows.Next() {
		var (
			g    idle.GeneratorState
			rate string
		)
		if err := rows.Scan(&g.ID, &g.Name, &rate, &g.Count, &g.Multiplier, &g.Enabled); err != nil {
			return nil, fmt.Errorf("store: scan generator: %w", err)
		}
		if g.BaseRate, err = bignum.Parse(rate); err != nil {
			return nil, fmt.Errorf("store: generator %q base rate: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadNodes(ctx context.Context, id string) ([]unlock.NodeState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, icon, cost, unlocked, unlock_time, tier
		FROM nodes WHERE slot_id = ? ORDER BY tier, id`, id)
	if err != nil {
		return nil, fmt.Errorf("store: query nodes: %w", err)
	}
	defer rows.Close()

	var out []unlock.NodeState
	for rows.Next() {
		var (
			n    unlock.NodeState
			cost string
		)
		if err := rows.Scan(&n.ID, &n.Name, &n.Description, &n.Icon, &cost, &n.Unlocked, &n.UnlockTime, &n.Tier); err != nil {
			return nil, fmt.Errorf("store: scan node: %w", err)
		}
		if n.Cost, err = bignum.Parse(cost); err != nil {
			return nil, fmt.Errorf("store: node %q cost: %w", n.ID, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadEdges(ctx context.Context, id string) ([]unlock.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT node, requires FROM edges WHERE slot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("store: query edges: %w", err)
	}
	defer rows.Close()

	var out []unlock.Edge
	for rows.Next() {
		var e unlock.Edge
		if err := rows.Scan(&e.Node, &e.Requires); err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadRules(ctx context.Context, id string) ([]automation.RuleState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, trigger_kind, interval_secs, threshold, enabled,
		max_triggers, latch, trigger_count, accumulated_time, latched
		FROM rules WHERE slot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("store: query rules: %w", err)
	}
	defer rows.Close()

	var out []automation.RuleState
	for rows.Next() {
		var (
			r              automation.RuleState
			trigger, thres string
		)
		if err := rows.Scan(&r.ID, &r.Name, &trigger, &r.Interval, &thres, &r.Enabled,
			&r.MaxTriggers, &r.Latch, &r.TriggerCount, &r.AccumulatedTime, &r.Latched); err != nil {
			return nil, fmt.Errorf("store: scan rule: %w", err)
		}
		var ok bool
		if r.Trigger, ok = automation.ParseTrigger(trigger); !ok {
			return nil, fmt.Errorf("store: rule %q: unknown trigger %q", r.ID, trigger)
		}
		if r.Threshold, err = bignum.Parse(thres); err != nil {
			return nil, fmt.Errorf("store: rule %q threshold: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadMilestones(ctx context.Context, id string) ([]game.MilestoneState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, achieved, achieved_time
		FROM milestones WHERE slot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("store: query milestones: %w", err)
	}
	defer rows.Close()

	var out []game.MilestoneState
	for rows.Next() {
		var m game.MilestoneState
		if err := rows.Scan(&m.ID, &m.Achieved, &m.AchievedTime); err != nil {
			return nil, fmt.Errorf("store: scan milestone: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// List returns slot summaries, most recently saved first.
func (s *SQLiteStore) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, definition, all_time, play_time, saved_at
		FROM slots ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list slots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var (
			si               SlotInfo
			allTime, savedAt string
		)
		if err := rows.Scan(&si.ID, &si.Name, &si.Definition, &allTime, &si.PlayTime, &savedAt); err != nil {
			return nil, fmt.Errorf("store: scan slot: %w", err)
		}
		if si.AllTime, err = bignum.Parse(allTime); err != nil {
			return nil, fmt.Errorf("store: slot %q all_time: %w", si.ID, err)
		}
		if si.SavedAt, err = parseTimestamp(savedAt); err != nil {
			return nil, fmt.Errorf("store: slot %q saved_at: %w", si.ID, err)
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

// Delete removes a slot and its child rows.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, "DELETE FROM slots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete slot %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete slot rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, id)
	}
	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE slot_id = ?", id); err != nil {
			return fmt.Errorf("store: delete %s for %q: %w", table, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit delete %q: %w", id, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// timestampFormats lists the formats saved_at may come back in. Slots
// written by Save use RFC 3339 with nanoseconds; rows defaulted by SQLite
// use the space-separated DateTime format.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
}

// parseTimestamp attempts to parse a SQLite timestamp string using known formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

func numText(n bignum.Number) string {
	b, _ := n.MarshalText()
	return string(b)
}
