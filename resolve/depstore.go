package resolve

import (
	"fmt"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DepStore persists dependency registrations between runs so a host
// pipeline can decide what needs recompiling after a source change.
// Records are keyed by the source file that triggered the resolution.
type DepStore struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenDepStore opens (creating when necessary) the registry database at path.
func OpenDepStore(path string) (*DepStore, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("open dependency store: %w", err)
	}
	err = sqlitex.ExecuteTransient(conn, `CREATE TABLE IF NOT EXISTS dependencies (
		source     TEXT NOT NULL,
		dependency TEXT NOT NULL,
		UNIQUE (source, dependency))`, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("prepare dependency store: %w", err)
	}
	return &DepStore{conn: conn}, nil
}

// Record stores dependency as registered for source. Duplicate
// registrations are ignored.
func (s *DepStore) Record(source, dependency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn, `INSERT OR IGNORE INTO dependencies (source, dependency) VALUES (?, ?)`,
		&sqlitex.ExecOptions{Args: []any{source, dependency}})
	if err != nil {
		return fmt.Errorf("record dependency: %w", err)
	}
	return nil
}

// List returns every dependency registered for source, ordered by path.
func (s *DepStore) List(source string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deps []string
	err := sqlitex.Execute(s.conn, `SELECT dependency FROM dependencies WHERE source = ? ORDER BY dependency`,
		&sqlitex.ExecOptions{
			Args: []any{source},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				deps = append(deps, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	return deps, nil
}

// Forget drops all records for source. Used before re-registering on a
// fresh compile so stale edges do not accumulate.
func (s *DepStore) Forget(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn, `DELETE FROM dependencies WHERE source = ?`,
		&sqlitex.ExecOptions{Args: []any{source}})
	if err != nil {
		return fmt.Errorf("forget dependencies: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *DepStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
