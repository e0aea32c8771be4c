// Package sensorstore persists a small set of durable controller sensors
// (most importantly next_cluster_member_id) across restarts, encoded with
// CBOR's deterministic encoding so the same logical value always produces
// identical bytes on disk.
package sensorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sensorstore: cbor encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("sensorstore: cbor decoder initialization failed: " + err.Error())
	}
}

// Store is a flat, file-backed key-value store for durable sensor values.
// One Store is normally shared by every cluster a controller process
// manages; keys are namespaced by caller (typically "<cluster-id>/<sensor>").
//
// Store is safe for concurrent use. Writes are durable: each Put writes to
// a temp file in the same directory and renames it over the target, so a
// crash mid-write never corrupts a previously-committed value.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open returns a Store rooted at dir, creating dir if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sensorstore: creating directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, escapeKey(key)+".cbor")
}

// escapeKey replaces path-unsafe characters in a sensor key so it can be
// used directly as a filename.
func escapeKey(key string) string {
	b := make([]rune, 0, len(key))
	for _, r := range key {
		switch {
		case r == '/' || r == '\\' || r == ' ':
			b = append(b, '_')
		default:
			b = append(b, r)
		}
	}
	return string(b)
}

// Put encodes value as CBOR and durably writes it under key.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	data, err := encMode.Marshal(value)
	if err != nil {
		return fmt.Errorf("sensorstore: encoding %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("sensorstore: writing %q: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("sensorstore: committing %q: %w", key, err)
	}
	return nil
}

// Get decodes the value stored under key into out, reporting ok=false if
// no value has ever been stored for key.
func (s *Store) Get(ctx context.Context, key string, out any) (ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("sensorstore: reading %q: %w", key, err)
	}
	if err := decMode.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("sensorstore: decoding %q: %w", key, err)
	}
	return true, nil
}

// SaveInt64 is a convenience wrapper around Put for the common case of
// persisting a monotonic counter.
func (s *Store) SaveInt64(ctx context.Context, key string, value int64) error {
	return s.Put(ctx, key, value)
}

// LoadInt64 is a convenience wrapper around Get for the common case of
// resuming a monotonic counter.
func (s *Store) LoadInt64(ctx context.Context, key string, out *int64) (bool, error) {
	return s.Get(ctx, key, out)
}
