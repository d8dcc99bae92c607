package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"
)

const lockRetryInterval = 50 * time.Millisecond

// ErrLocked is returned when another process holds the records lock.
var ErrLocked = errors.New("records: file is locked by another build")

// Store reads and writes records at a fixed path. A sibling ".lock" file
// serializes access between processes.
// Thread-safe for concurrent access.
type Store struct {
	mu       sync.Mutex
	path     string
	fileLock *flock.Flock
}

// Open returns a store for path. The file does not need to exist yet.
func Open(path string) *Store {
	return &Store{path: path, fileLock: flock.New(path + ".lock")}
}

// lock takes the cross-process lock, retrying until ctx is done.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, err
	}
	locked, err := s.fileLock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrLocked, err)
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() { _ = s.fileLock.Unlock() }, nil
}

// Path returns the records file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Load reads the records. A missing file is not an error: found is false.
func (s *Store) Load(ctx context.Context) (rec *Records, found bool, err error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	rec, err = Decode(f)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", s.path, err)
	}
	return rec, true, nil
}

// Save writes rec atomically: it encodes to a temp file in the target
// directory and renames it over the old file.
func (s *Store) Save(ctx context.Context, rec *Records) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	dir := filepath.Dir(s.path)
	f, err := os.CreateTemp(dir, ".records-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // already renamed on success

	if err := Encode(f, rec); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Encode writes rec as msgpack.
func Encode(w io.Writer, rec *Records) error {
	if rec == nil {
		rec = New()
	}
	if rec.Schema == 0 {
		rec.Schema = schemaVersion
	}
	return msgpack.NewEncoder(w).Encode(rec)
}

// Decode reads msgpack records and checks the schema.
func Decode(r io.Reader) (*Records, error) {
	var rec Records
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if err := rec.check(); err != nil {
		return nil, err
	}
	return &rec, nil
}
