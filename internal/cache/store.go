// Package cache persists the most recent trip search in the workflow cache
// directory, one JSON file per key.
package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/glundgren93/fahrplan/internal/model"
)

// TripsKey is the file name of the trip snapshot.
const TripsKey = "trips"

// Store reads and writes snapshots. Failures are logged and never returned:
// a missing or broken file reads as absent and writes are best effort.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore returns a store rooted at dir. An empty dir disables the store.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Read returns the trip snapshot, if one can be loaded.
func (s *Store) Read() (*model.Snapshot, bool) {
	return s.load(TripsKey)
}

// Write replaces the trip snapshot.
func (s *Store) Write(snap model.Snapshot) {
	if err := s.save(TripsKey, snap); err != nil {
		s.logger.Warn("writing cache failed", slog.String("key", TripsKey), slog.String("error", err.Error()))
	}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *Store) load(key string) (*model.Snapshot, bool) {
	if s.dir == "" {
		s.logger.Debug("cache dir not set")
		return nil, false
	}
	p := s.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("cache file not found", slog.String("path", p))
		} else {
			s.logger.Warn("reading cache failed", slog.String("path", p), slog.String("error", err.Error()))
		}
		return nil, false
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("decoding cache failed", slog.String("path", p), slog.String("error", err.Error()))
		return nil, false
	}
	return &snap, true
}

// save writes through a temporary file so readers never see a partial snapshot.
func (s *Store) save(key string, snap model.Snapshot) error {
	if s.dir == "" {
		return errors.New("cache dir not set")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating cache dir %s", s.dir)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrapf(err, "replacing %s", s.path(key))
	}
	return nil
}
