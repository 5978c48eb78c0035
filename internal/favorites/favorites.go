// Package favorites keeps saved places and the home location in flat files
// inside the workflow data directory.
package favorites

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/glundgren93/fahrplan/internal/model"
)

const (
	placesFile = "places.txt"
	homeFile   = "home.txt"

	// HomeName replaces the name of the resolved home place.
	HomeName = "Home"
)

var (
	ErrHomeNotSet   = errors.New("home not set")
	ErrHomeNotFound = errors.New("home not found")
)

// PlaceLookup finds places by keyword.
type PlaceLookup interface {
	LookupPlaces(ctx context.Context, query string) ([]model.Place, error)
}

// Store reads and edits places.txt and home.txt.
type Store struct {
	dir    string
	home   string
	lookup PlaceLookup
	logger *slog.Logger
}

// New returns a store in dir. home is the configured home address query and
// may be empty.
func New(dir, home string, lookup PlaceLookup, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, home: home, lookup: lookup, logger: logger}
}

// List returns the saved places. Lines without a name component are skipped.
func (s *Store) List() []model.Place {
	lines, err := s.readLines(placesFile)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			s.logger.Warn("reading favorites failed", slog.String("error", err.Error()))
		}
		return nil
	}
	var places []model.Place
	for _, line := range lines {
		name, ok := model.NameFromID(line)
		if !ok {
			continue
		}
		p := model.NewPlace(line)
		p.Name = name
		places = append(places, p)
	}
	return places
}

// Home resolves the configured home address. A previous resolution stored in
// home.txt is reused while the address is unchanged; otherwise the first
// lookup result is taken and remembered.
func (s *Store) Home(ctx context.Context) (model.Place, error) {
	if s.home == "" {
		return model.Place{}, ErrHomeNotSet
	}
	if lines, err := s.readLines(homeFile); err == nil &&
		len(lines) > 1 && lines[0] == s.home && strings.Contains(lines[1], "@") {
		p := model.NewPlace(lines[1])
		p.Name = HomeName
		return p, nil
	}

	places, err := s.lookup.LookupPlaces(ctx, s.home)
	if err != nil {
		return model.Place{}, errors.Wrap(err, "resolving home")
	}
	if len(places) == 0 {
		return model.Place{}, ErrHomeNotFound
	}
	home := places[0]
	home.Name = HomeName
	if err := s.writeLines(homeFile, []string{s.home, home.ID}); err != nil {
		s.logger.Warn("saving home failed", slog.String("error", err.Error()))
	}
	return home, nil
}

// Add saves a place id. It reports false when the id was already saved.
func (s *Store) Add(id string) (bool, error) {
	lines, err := s.readLines(placesFile)
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		return false, err
	}
	for _, line := range lines {
		if line == id {
			return false, nil
		}
	}
	if err := s.writeLines(placesFile, append(lines, id)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a saved place id. It reports false when the id was not saved.
func (s *Store) Remove(id string) (bool, error) {
	lines, err := s.readLines(placesFile)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return false, nil
		}
		return false, err
	}
	kept := lines[:0]
	removed := false
	for _, line := range lines {
		if line == id {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return false, nil
	}
	if err := s.writeLines(placesFile, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) readLines(name string) ([]string, error) {
	p := filepath.Join(s.dir, name)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", p)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (s *Store) writeLines(name string, lines []string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", s.dir)
	}
	p := filepath.Join(s.dir, name)
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", p)
	}
	return nil
}
