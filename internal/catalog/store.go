package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/model"
)

// Store loads and saves the catalog document.
//
// Implementations must make Load safe to call while a Save is in
// flight; callers treat the catalog as eventually consistent, not
// transactional.
type Store interface {
	Load() (*model.Catalog, error)
	Save(c *model.Catalog) error
}

// FileStore persists the catalog as a single JSON document on disk.
//
// Writes go through a temp file followed by an atomic rename, so a
// reader either sees the previous complete document or the new one,
// never a partial write.
type FileStore struct {
	path      string
	channelID string
	log       zerolog.Logger
}

// NewFileStore creates a store backed by the JSON document at path.
// channelID seeds the default catalog returned when the file is absent.
func NewFileStore(path, channelID string, log zerolog.Logger) *FileStore {
	return &FileStore{
		path:      path,
		channelID: channelID,
		log:       log.With().Str("component", "catalog").Logger(),
	}
}

// Load reads the catalog from disk.
//
// A missing file yields a fresh default catalog. An unreadable or
// corrupt file also yields the default catalog (with a warning logged)
// so read endpoints never propagate storage errors to clients.
func (s *FileStore) Load() (*model.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("catalog unreadable, using defaults")
		}
		return model.NewCatalog(s.channelID), nil
	}

	c := model.NewCatalog(s.channelID)
	if err := json.Unmarshal(data, c); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("catalog corrupt, using defaults")
		return model.NewCatalog(s.channelID), nil
	}
	if c.CoverJobs == nil {
		c.CoverJobs = map[string]*model.CoverJob{}
	}
	if c.ChannelID == "" {
		c.ChannelID = s.channelID
	}
	return c, nil
}

// Save writes the catalog atomically, creating parent directories as
// needed.
func (s *FileStore) Save(c *model.Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}
