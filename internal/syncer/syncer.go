package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/catalog"
	"github.com/wantzavod/musicsync/internal/covers"
	"github.com/wantzavod/musicsync/internal/library"
	"github.com/wantzavod/musicsync/internal/model"
	"github.com/wantzavod/musicsync/internal/scanner"
)

var (
	// ErrSyncInProgress is returned when a sync is already running.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrAlbumNotFound is returned for unknown album ids.
	ErrAlbumNotFound = errors.New("album not found")

	// ErrJobNotFound is returned for unknown cover task ids.
	ErrJobNotFound = errors.New("cover job not found")

	// ErrJobInProgress is returned when a regenerate request races an
	// unresolved job for the same album.
	ErrJobInProgress = errors.New("cover job still processing")
)

// Syncer owns the catalog mutation flow. All writes to the persisted
// catalog go through it; read endpoints load snapshots directly from
// the store.
type Syncer struct {
	store        catalog.Store
	scanner      *scanner.Scanner
	orchestrator *covers.Orchestrator
	log          zerolog.Logger
	now          func() time.Time

	mu sync.Mutex
}

// New creates a syncer. orchestrator may be nil when image-generation
// credentials are not configured; scanning still works and the cover
// phase is skipped.
func New(store catalog.Store, sc *scanner.Scanner, orch *covers.Orchestrator, log zerolog.Logger) *Syncer {
	return &Syncer{
		store:        store,
		scanner:      sc,
		orchestrator: orch,
		log:          log.With().Str("component", "syncer").Logger(),
		now:          time.Now,
	}
}

// Sync runs one full scan-and-resolve pass and returns the updated
// catalog.
//
// The catalog is marked syncing up front so observers see progress,
// and always leaves with a terminal success or error status. A scan
// failure is returned after the error status is persisted; cover job
// failures are recorded per job and never fail the pass.
func (s *Syncer) Sync(ctx context.Context) (*model.Catalog, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	cat, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	cat.SyncStatus = model.SyncSyncing
	if err := s.store.Save(cat); err != nil {
		return nil, fmt.Errorf("persist syncing status: %w", err)
	}

	agg := library.NewAggregator(cat, library.DashClassifier{}, s.log)
	if err := s.scanner.Scan(ctx, cat, agg); err != nil {
		cat.SyncStatus = model.SyncError
		if saveErr := s.store.Save(cat); saveErr != nil {
			s.log.Error().Err(saveErr).Msg("failed to persist error status")
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	if s.orchestrator != nil {
		s.orchestrator.Run(ctx, cat)
	} else {
		s.log.Info().Msg("image generation not configured, skipping cover pass")
	}

	sort.SliceStable(cat.Albums, func(i, j int) bool {
		return cat.Albums[i].CreatedAt.After(cat.Albums[j].CreatedAt)
	})
	cat.Recount()
	now := s.now()
	cat.LastSync = &now
	cat.SyncStatus = model.SyncSuccess

	if err := s.store.Save(cat); err != nil {
		return nil, fmt.Errorf("persist catalog: %w", err)
	}

	s.log.Info().
		Int("albums", len(cat.Albums)).
		Int("tracks", cat.TotalTracks).
		Int("checkpoint", cat.LastScannedMessageID).
		Msg("sync complete")
	return cat, nil
}

// RegenerateCover discards an album's current cover state and starts a
// fresh generation job. prompt overrides the fixed template when
// non-empty.
//
// Returns ErrJobInProgress while an unresolved job exists for the
// album; the caller should poll that job instead of stacking a second
// one.
func (s *Syncer) RegenerateCover(ctx context.Context, albumID, prompt string) (string, error) {
	if s.orchestrator == nil {
		return "", errors.New("image generation not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := s.store.Load()
	if err != nil {
		return "", fmt.Errorf("load catalog: %w", err)
	}

	album := cat.FindAlbum(albumID)
	if album == nil {
		return "", ErrAlbumNotFound
	}
	if job, ok := cat.CoverJobs[albumID]; ok && job.Status == model.CoverJobProcessing {
		return "", ErrJobInProgress
	}

	album.CoverURL = ""
	album.CoverGenerated = false
	delete(cat.CoverJobs, albumID)

	taskID, err := s.orchestrator.StartJob(ctx, cat, album, prompt)
	if err != nil {
		if saveErr := s.store.Save(cat); saveErr != nil {
			s.log.Error().Err(saveErr).Msg("failed to persist failed job")
		}
		return "", fmt.Errorf("start cover job: %w", err)
	}

	if err := s.store.Save(cat); err != nil {
		return "", fmt.Errorf("persist catalog: %w", err)
	}
	return taskID, nil
}

// CoverStatus polls the job behind taskID once, persists any state
// change, and returns the job.
func (s *Syncer) CoverStatus(ctx context.Context, taskID string) (*model.CoverJob, error) {
	if s.orchestrator == nil {
		return nil, errors.New("image generation not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	job := cat.JobForTask(taskID)
	if job == nil {
		return nil, ErrJobNotFound
	}

	before := job.Status
	s.orchestrator.ResolveOnce(ctx, cat, job)
	if job.Status != before {
		if err := s.store.Save(cat); err != nil {
			return nil, fmt.Errorf("persist catalog: %w", err)
		}
	}
	return job, nil
}

// ApplyCover sets an album's cover to an already hosted image URL
// without running a generation job. The URL must pass the remote-URL
// guard at the HTTP layer before reaching here.
func (s *Syncer) ApplyCover(ctx context.Context, albumID, coverURL string) (*model.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	album := cat.FindAlbum(albumID)
	if album == nil {
		return nil, ErrAlbumNotFound
	}

	album.CoverURL = coverURL
	album.CoverGenerated = true
	delete(cat.CoverJobs, albumID)

	if err := s.store.Save(cat); err != nil {
		return nil, fmt.Errorf("persist catalog: %w", err)
	}
	return album, nil
}
