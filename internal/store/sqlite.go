package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/breardon2011/mitigationDB/internal/core"
)

const ruleSchema = `
CREATE TABLE IF NOT EXISTS rules (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL UNIQUE,
	category       TEXT NOT NULL DEFAULT '',
	conditions     TEXT NOT NULL,
	params         TEXT,
	explanation    TEXT NOT NULL DEFAULT '',
	mitigations    TEXT,
	effective_date TIMESTAMP NOT NULL,
	retired_date   TIMESTAMP,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rules_window ON rules (effective_date, retired_date);
`

// SQLiteRuleStore persists rules in a SQLite database. Conditions and the
// free-form JSON columns are stored as serialized JSON text.
type SQLiteRuleStore struct {
	db *sql.DB
}

type SQLiteOptions struct {
	Path        string
	BusyTimeout time.Duration
}

func NewSQLiteRuleStore(opts SQLiteOptions) (*SQLiteRuleStore, error) {
	if dir := filepath.Dir(opts.Path); dir != "." && dir != "" && opts.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// WAL allows concurrent readers during writes. The single writer
	// constraint is enforced through the pool size.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", opts.BusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ruleSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteRuleStore{db: db}, nil
}

func (s *SQLiteRuleStore) Create(ctx context.Context, rule *core.Rule) error {
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if rule.EffectiveDate.IsZero() {
		rule.EffectiveDate = now
	}

	cols, err := encodeRuleColumns(*rule)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (name, category, conditions, params, explanation, mitigations,
			effective_date, retired_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.Name, rule.Category, cols.conditions, cols.params, rule.Explanation, cols.mitigations,
		rule.EffectiveDate, nullableTime(rule.RetiredDate), rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting rule '%s': %w", rule.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading rule id: %w", err)
	}
	rule.ID = id
	return nil
}

func (s *SQLiteRuleStore) Get(ctx context.Context, id int64) (*core.Rule, error) {
	row := s.db.QueryRowContext(ctx, selectRules+" WHERE id = ?", id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *SQLiteRuleStore) Update(ctx context.Context, rule *core.Rule) error {
	rule.UpdatedAt = time.Now().UTC()

	cols, err := encodeRuleColumns(*rule)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rules SET name = ?, category = ?, conditions = ?, params = ?,
			explanation = ?, mitigations = ?, effective_date = ?, retired_date = ?,
			updated_at = ?
		WHERE id = ?`,
		rule.Name, rule.Category, cols.conditions, cols.params, rule.Explanation, cols.mitigations,
		rule.EffectiveDate, nullableTime(rule.RetiredDate), rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("updating rule %d: %w", rule.ID, err)
	}
	return requireAffected(res)
}

func (s *SQLiteRuleStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting rule %d: %w", id, err)
	}
	return requireAffected(res)
}

func (s *SQLiteRuleStore) List(ctx context.Context) ([]core.Rule, error) {
	return s.query(ctx, selectRules+" ORDER BY id")
}

func (s *SQLiteRuleStore) ListActive(ctx context.Context, asOf time.Time) ([]core.Rule, error) {
	return s.query(ctx,
		selectRules+" WHERE effective_date <= ? AND (retired_date IS NULL OR retired_date > ?) ORDER BY id",
		asOf, asOf,
	)
}

func (s *SQLiteRuleStore) UpsertByName(ctx context.Context, rule core.Rule) (bool, error) {
	row := s.db.QueryRowContext(ctx, selectRules+" WHERE name = ?", rule.Name)
	existing, err := scanRule(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := s.Create(ctx, &rule); err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt
	if rule.EffectiveDate.IsZero() {
		rule.EffectiveDate = existing.EffectiveDate
	}
	if err := s.Update(ctx, &rule); err != nil {
		return false, err
	}
	return false, nil
}

func (s *SQLiteRuleStore) Close() error {
	return s.db.Close()
}

const selectRules = `
	SELECT id, name, category, conditions, params, explanation, mitigations,
		effective_date, retired_date, created_at, updated_at
	FROM rules`

func (s *SQLiteRuleStore) query(ctx context.Context, query string, args ...any) ([]core.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	out := make([]core.Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (*core.Rule, error) {
	var (
		rule        core.Rule
		conditions  string
		params      sql.NullString
		mitigations sql.NullString
		retired     sql.NullTime
	)
	err := row.Scan(&rule.ID, &rule.Name, &rule.Category, &conditions, &params,
		&rule.Explanation, &mitigations, &rule.EffectiveDate, &retired,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(conditions), &rule.Conditions); err != nil {
		return nil, fmt.Errorf("decoding conditions for rule %d: %w", rule.ID, err)
	}
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &rule.Params); err != nil {
			return nil, fmt.Errorf("decoding params for rule %d: %w", rule.ID, err)
		}
	}
	if mitigations.Valid && mitigations.String != "" {
		if err := json.Unmarshal([]byte(mitigations.String), &rule.Mitigations); err != nil {
			return nil, fmt.Errorf("decoding mitigations for rule %d: %w", rule.ID, err)
		}
	}
	if retired.Valid {
		t := retired.Time
		rule.RetiredDate = &t
	}
	return &rule, nil
}

type ruleColumns struct {
	conditions  string
	params      sql.NullString
	mitigations sql.NullString
}

func encodeRuleColumns(rule core.Rule) (ruleColumns, error) {
	var cols ruleColumns

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return cols, fmt.Errorf("encoding conditions for rule '%s': %w", rule.Name, err)
	}
	cols.conditions = string(conditions)

	if rule.Params != nil {
		params, err := json.Marshal(rule.Params)
		if err != nil {
			return cols, fmt.Errorf("encoding params for rule '%s': %w", rule.Name, err)
		}
		cols.params = sql.NullString{String: string(params), Valid: true}
	}
	if rule.Mitigations != nil {
		mitigations, err := json.Marshal(rule.Mitigations)
		if err != nil {
			return cols, fmt.Errorf("encoding mitigations for rule '%s': %w", rule.Name, err)
		}
		cols.mitigations = sql.NullString{String: string(mitigations), Valid: true}
	}
	return cols, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return core.ErrRuleNotFound
	}
	return nil
}
