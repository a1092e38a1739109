package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	ketchup "github.com/nilq/ketchup/pkg"
)

// Store keeps compiled programs in SQLite, encoded as CBOR.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the cache database at path. ":memory:" gives a cache
// that lives as long as the Store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	// A memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		key TEXT PRIMARY KEY,
		code BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	commonlog.GetLogger("ketchup.cache").Debugf("opened program cache %s", path)
	return &Store{db: db, path: path}, nil
}

// DefaultPath is the cache location used when none is configured.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("getting cache dir: %w", err)
	}

	return filepath.Join(dir, "ketchup", "programs.db"), nil
}

// OpenOrDefault opens the cache at path, or at DefaultPath when path is empty.
func OpenOrDefault(path string) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	return Open(path)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(key string) (ketchup.Program, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code []byte
	err := s.db.QueryRow("SELECT code FROM programs WHERE key = ?", key).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying program: %w", err)
	}

	p, err := ketchup.DecodeProgram(code)
	if err != nil {
		return nil, false, fmt.Errorf("decoding program %s: %w", key, err)
	}

	return p, true, nil
}

func (s *Store) Put(key string, p ketchup.Program) error {
	code, err := ketchup.EncodeProgram(p)
	if err != nil {
		return fmt.Errorf("encoding program %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec("INSERT OR REPLACE INTO programs (key, code) VALUES (?, ?)", key, code)
	if err != nil {
		return fmt.Errorf("saving program: %w", err)
	}

	return nil
}

// Len reports how many programs are cached.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM programs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting programs: %w", err)
	}

	return n, nil
}
