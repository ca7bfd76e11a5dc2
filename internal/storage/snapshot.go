package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/railscope/railscope/internal/graph"
	"github.com/railscope/railscope/internal/parser"
)

// Store persists a graph snapshot to SQLite so the file-hash skip
// optimization stays valid across process restarts. Without the snapshot a
// cached hash would suppress re-indexing of a file whose facts exist only in
// the previous process's memory.
type Store struct {
	db     *sql.DB
	ownsDB bool
}

// Open opens (or creates) the snapshot database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return &Store{db: db, ownsDB: true}, nil
}

// NewStoreWithDB creates a Store over an existing connection. The caller is
// responsible for the schema and for closing the connection.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db, ownsDB: false}
}

// Close closes the database connection if this store opened it.
func (s *Store) Close() error {
	if !s.ownsDB || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the stored snapshot with the current graph contents in a
// single transaction.
func (s *Store) Save(g *graph.Graph) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	for _, table := range []string{"call_edges", "associations", "methods", "classes"} {
		if _, err := sq.Delete(table).RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := writeClasses(tx, g.Classes()); err != nil {
		return err
	}
	if err := writeMethods(tx, g.Methods()); err != nil {
		return err
	}
	if err := writeAssociations(tx, g.AllAssociations()); err != nil {
		return err
	}
	if err := writeCallEdges(tx, g.CallEdges()); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := sq.Update("snapshot_meta").
		Set("value", now).
		Set("updated_at", now).
		Where(sq.Eq{"key": "saved_at"}).
		RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to update snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func writeClasses(tx *sql.Tx, classes []*graph.ClassInfo) error {
	for _, c := range classes {
		mixins, err := json.Marshal(c.Mixins)
		if err != nil {
			return fmt.Errorf("failed to encode mixins for %s: %w", c.Name, err)
		}
		constants, err := json.Marshal(c.Constants)
		if err != nil {
			return fmt.Errorf("failed to encode constants for %s: %w", c.Name, err)
		}
		_, err = sq.Insert("classes").
			Columns("name", "superclass", "file", "line", "is_module", "mixins", "constants").
			Values(c.Name, c.Superclass, c.File, c.Line, c.IsModule, string(mixins), string(constants)).
			RunWith(tx).Exec()
		if err != nil {
			return fmt.Errorf("failed to write class %s: %w", c.Name, err)
		}
	}
	return nil
}

func writeMethods(tx *sql.Tx, methods []*graph.MethodInfo) error {
	for _, m := range methods {
		params, err := json.Marshal(m.Params)
		if err != nil {
			return fmt.Errorf("failed to encode params for %s: %w", m.ID, err)
		}
		_, err = sq.Insert("methods").
			Columns("id", "class", "name", "params", "visibility", "return_type", "usage_count", "file", "line").
			Values(m.ID, m.Class, m.Name, string(params), string(m.Visibility), m.ReturnType, m.UsageCount, m.File, m.Line).
			RunWith(tx).Exec()
		if err != nil {
			return fmt.Errorf("failed to write method %s: %w", m.ID, err)
		}
	}
	return nil
}

func writeAssociations(tx *sql.Tx, assocs []graph.Association) error {
	for _, a := range assocs {
		_, err := sq.Insert("associations").
			Columns("source_model", "target_model", "type", "name").
			Values(a.SourceModel, a.TargetModel, string(a.Type), a.Name).
			RunWith(tx).Exec()
		if err != nil {
			return fmt.Errorf("failed to write association %s.%s: %w", a.SourceModel, a.Name, err)
		}
	}
	return nil
}

func writeCallEdges(tx *sql.Tx, edges []graph.MethodCallEdge) error {
	for _, e := range edges {
		_, err := sq.Insert("call_edges").
			Columns("caller", "callee", "file", "line").
			Values(e.Caller, e.Callee, e.Location.File, e.Location.Line).
			RunWith(tx).Exec()
		if err != nil {
			return fmt.Errorf("failed to write call edge %s -> %s: %w", e.Caller, e.Callee, err)
		}
	}
	return nil
}

// Load reads the stored snapshot into a fresh graph. A missing or unreadable
// snapshot returns an error; callers should treat that as a cold start and
// discard the hash cache.
func (s *Store) Load() (*graph.Graph, error) {
	g := graph.New()

	if err := s.loadClasses(g); err != nil {
		return nil, err
	}
	if err := s.loadMethods(g); err != nil {
		return nil, err
	}
	if err := s.loadAssociations(g); err != nil {
		return nil, err
	}
	if err := s.loadCallEdges(g); err != nil {
		return nil, err
	}

	// Subclass links recorded before their superclass row was replayed.
	g.ResolvePending()
	return g, nil
}

func (s *Store) loadClasses(g *graph.Graph) error {
	rows, err := sq.Select("name", "superclass", "file", "line", "is_module", "mixins", "constants").
		From("classes").RunWith(s.db).Query()
	if err != nil {
		return fmt.Errorf("failed to read classes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c graph.ClassInfo
		var mixins, constants string
		if err := rows.Scan(&c.Name, &c.Superclass, &c.File, &c.Line, &c.IsModule, &mixins, &constants); err != nil {
			return fmt.Errorf("failed to scan class row: %w", err)
		}
		if err := json.Unmarshal([]byte(mixins), &c.Mixins); err != nil {
			return fmt.Errorf("failed to decode mixins for %s: %w", c.Name, err)
		}
		if err := json.Unmarshal([]byte(constants), &c.Constants); err != nil {
			return fmt.Errorf("failed to decode constants for %s: %w", c.Name, err)
		}
		g.AddClass(&c)
	}
	return rows.Err()
}

func (s *Store) loadMethods(g *graph.Graph) error {
	rows, err := sq.Select("id", "class", "name", "params", "visibility", "return_type", "usage_count", "file", "line").
		From("methods").RunWith(s.db).Query()
	if err != nil {
		return fmt.Errorf("failed to read methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m graph.MethodInfo
		var params, visibility string
		var savedUsage int
		if err := rows.Scan(&m.ID, &m.Class, &m.Name, &params, &visibility, &m.ReturnType, &savedUsage, &m.File, &m.Line); err != nil {
			return fmt.Errorf("failed to scan method row: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &m.Params); err != nil {
			return fmt.Errorf("failed to decode params for %s: %w", m.ID, err)
		}
		m.Visibility = parser.Visibility(visibility)
		// Usage counts and Calls/CalledBy lists are rebuilt by the call edge
		// replay; the stored count is kept for snapshot inspection only.
		m.UsageCount = 0
		m.Calls = nil
		m.CalledBy = nil
		g.AddMethod(&m)
	}
	return rows.Err()
}

func (s *Store) loadAssociations(g *graph.Graph) error {
	rows, err := sq.Select("source_model", "target_model", "type", "name").
		From("associations").RunWith(s.db).Query()
	if err != nil {
		return fmt.Errorf("failed to read associations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a graph.Association
		var kind string
		if err := rows.Scan(&a.SourceModel, &a.TargetModel, &kind, &a.Name); err != nil {
			return fmt.Errorf("failed to scan association row: %w", err)
		}
		a.Type = parser.AssociationKind(kind)
		g.AddAssociation(a)
	}
	return rows.Err()
}

func (s *Store) loadCallEdges(g *graph.Graph) error {
	rows, err := sq.Select("caller", "callee", "file", "line").
		From("call_edges").RunWith(s.db).Query()
	if err != nil {
		return fmt.Errorf("failed to read call edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e graph.MethodCallEdge
		if err := rows.Scan(&e.Caller, &e.Callee, &e.Location.File, &e.Location.Line); err != nil {
			return fmt.Errorf("failed to scan call edge row: %w", err)
		}
		g.AddMethodCall(e)
	}
	return rows.Err()
}

// SavedAt returns the timestamp of the last saved snapshot, or the zero time
// when no snapshot has been saved.
func (s *Store) SavedAt() (time.Time, error) {
	var value string
	err := sq.Select("value").From("snapshot_meta").
		Where(sq.Eq{"key": "saved_at"}).
		RunWith(s.db).QueryRow().Scan(&value)
	if err == sql.ErrNoRows || value == "" {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
	}
	return ts, nil
}
