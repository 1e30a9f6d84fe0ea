// Package recorder keeps the history of evaluations in a SQLite database.
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	_ "modernc.org/sqlite"

	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
	"github.com/specialistvlad/nastranwrap/internal/nastran"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	run_id TEXT PRIMARY KEY,
	component TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL,
	workdir TEXT NOT NULL,
	retained INTEGER NOT NULL,
	source TEXT NOT NULL,
	inputs_json TEXT NOT NULL,
	outputs_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cases_component ON cases(component, started_at);
`

// Case is one recorded evaluation.
type Case struct {
	RunID     string
	Component string
	Started   time.Time
	Duration  time.Duration
	Workdir   string
	Retained  bool
	Source    string
	Inputs    map[string]cty.Value
	Outputs   map[string]cty.Value
}

// Store records evaluations. It implements nastran.Recorder.
type Store struct {
	db   *sql.DB
	path string
}

var _ nastran.Recorder = (*Store)(nil)

// Open creates or opens the case database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time keeps SQLite from reporting busy errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record stores an evaluation.
func (s *Store) Record(ctx context.Context, ev *nastran.Evaluation) error {
	inputs, err := encodeValues(ev.Inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	outputs, err := encodeValues(ev.Outputs)
	if err != nil {
		return fmt.Errorf("encoding outputs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cases (run_id, component, started_at, duration_ms, workdir, retained, source, inputs_json, outputs_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.Component, ev.Started.UTC(), ev.Duration.Milliseconds(), ev.Dir, ev.Retained,
		string(ev.Source), inputs, outputs)
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Recorded case.", "run_id", ev.RunID, "db", s.path)
	return nil
}

// Cases returns the recorded evaluations of component, oldest first. An
// empty component returns every case.
func (s *Store) Cases(ctx context.Context, component string) ([]*Case, error) {
	query := `SELECT run_id, component, started_at, duration_ms, workdir, retained, source, inputs_json, outputs_json FROM cases`
	var args []any
	if component != "" {
		query += ` WHERE component = ?`
		args = append(args, component)
	}
	query += ` ORDER BY started_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	var out []*Case
	for rows.Next() {
		var (
			c               Case
			durationMs      int64
			inputs, outputs string
		)
		if err := rows.Scan(&c.RunID, &c.Component, &c.Started, &durationMs, &c.Workdir, &c.Retained, &c.Source, &inputs, &outputs); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		c.Duration = time.Duration(durationMs) * time.Millisecond
		if c.Inputs, err = decodeValues(inputs); err != nil {
			return nil, fmt.Errorf("case %s: decoding inputs: %w", c.RunID, err)
		}
		if c.Outputs, err = decodeValues(outputs); err != nil {
			return nil, fmt.Errorf("case %s: decoding outputs: %w", c.RunID, err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func encodeValues(m map[string]cty.Value) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	raw, err := ctyjson.SimpleJSONValue{Value: cty.ObjectVal(m)}.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeValues(raw string) (map[string]cty.Value, error) {
	var v ctyjson.SimpleJSONValue
	if err := v.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, err
	}
	if !v.Type().IsObjectType() {
		return nil, fmt.Errorf("expected a JSON object, got %s", v.Type().FriendlyName())
	}
	if v.LengthInt() == 0 {
		return map[string]cty.Value{}, nil
	}
	return v.AsValueMap(), nil
}
