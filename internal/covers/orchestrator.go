package covers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/httpx"
	"github.com/wantzavod/musicsync/internal/imagegen"
	"github.com/wantzavod/musicsync/internal/model"
	"github.com/wantzavod/musicsync/internal/urlguard"
)

// Job error reason codes persisted on the catalog.
const (
	ReasonSubmitFailed = "submit_failed"
	ReasonPollFailed   = "poll_failed"
	ReasonUpstream     = "upstream_failed"
	ReasonBlockedURL   = "blocked_url"
	ReasonDownload     = "download_failed"
	ReasonWrite        = "write_failed"
)

// Generator is the async image-generation API. Implemented by the
// imagegen client.
type Generator interface {
	CreateTask(ctx context.Context, prompt string) (string, error)
	TaskStatus(ctx context.Context, taskID string) (imagegen.Result, error)
}

// Config bounds one orchestration pass.
type Config struct {
	// CoversDir is where finished cover files are written.
	CoversDir string

	// PollInterval is the fixed delay between poll rounds.
	PollInterval time.Duration

	// MaxPollRounds caps how many rounds one pass will wait for
	// outstanding jobs. With the default interval this absorbs normal
	// generation latency inside a single sync request.
	MaxPollRounds int

	// MaxCoverBytes is the compression target per cover file.
	MaxCoverBytes int
}

// DefaultConfig returns the polling bounds used in production.
func DefaultConfig(coversDir string) Config {
	return Config{
		CoversDir:     coversDir,
		PollInterval:  5 * time.Second,
		MaxPollRounds: 12,
		MaxCoverBytes: 512 << 10,
	}
}

// Orchestrator runs the per-album cover job state machine.
//
// Per album: no job -> processing -> success or error. Success is
// terminal, as is any album that already has a cover. An error job is
// retried on a later pass that still finds the album coverless, never
// within the pass that marked it.
type Orchestrator struct {
	cfg   Config
	gen   Generator
	httpc *httpx.Client
	comp  *Compressor
	log   zerolog.Logger
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	guard func(rawURL string) bool
}

// New creates an orchestrator.
func New(cfg Config, gen Generator, httpc *httpx.Client, log zerolog.Logger) *Orchestrator {
	l := log.With().Str("component", "covers").Logger()
	return &Orchestrator{
		cfg:   cfg,
		gen:   gen,
		httpc: httpc,
		comp:  NewCompressor(cfg.MaxCoverBytes, log),
		log:   l,
		now:   time.Now,
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
		guard: urlguard.IsAllowed,
	}
}

// Prompt builds the fixed generation prompt for an album title.
func Prompt(albumTitle string) string {
	return fmt.Sprintf("Abstract album cover art for %q music album, digital art, vibrant colors, professional design", albumTitle)
}

// Run launches jobs for every coverless album and then polls all
// outstanding jobs until they resolve or the round budget runs out.
// Job failures are recorded on the catalog, never returned; one bad
// album must not break the rest of the pass.
func (o *Orchestrator) Run(ctx context.Context, cat *model.Catalog) {
	launched := o.ensureJobs(ctx, cat)
	o.poll(ctx, cat)
	if launched > 0 {
		o.log.Info().Int("launched", launched).Msg("cover pass complete")
	}
}

func (o *Orchestrator) ensureJobs(ctx context.Context, cat *model.Catalog) int {
	launched := 0
	for _, album := range cat.Albums {
		if album.HasCover() {
			continue
		}
		if job, ok := cat.CoverJobs[album.ID]; ok && job.Status == model.CoverJobProcessing {
			continue
		}
		if _, err := o.StartJob(ctx, cat, album, ""); err != nil {
			o.log.Warn().Err(err).Str("album", album.Title).Msg("cover job submit failed")
			continue
		}
		launched++
	}
	return launched
}

// StartJob submits one generation task for album and records the
// processing job on the catalog. Any existing job entry for the album
// is replaced. An empty prompt selects the fixed template; callers may
// pass their own. On submission failure the job is recorded with
// status error so the album is retried on a later pass.
func (o *Orchestrator) StartJob(ctx context.Context, cat *model.Catalog, album *model.Album, prompt string) (string, error) {
	if prompt == "" {
		prompt = Prompt(album.Title)
	}
	taskID, err := o.gen.CreateTask(ctx, prompt)
	if err != nil {
		cat.CoverJobs[album.ID] = &model.CoverJob{
			AlbumID:   album.ID,
			Status:    model.CoverJobError,
			Reason:    ReasonSubmitFailed,
			UpdatedAt: o.now(),
		}
		return "", err
	}

	cat.CoverJobs[album.ID] = &model.CoverJob{
		AlbumID:   album.ID,
		TaskID:    taskID,
		Status:    model.CoverJobProcessing,
		UpdatedAt: o.now(),
	}
	o.log.Info().Str("album", album.Title).Str("taskId", taskID).Msg("cover job started")
	return taskID, nil
}

func (o *Orchestrator) poll(ctx context.Context, cat *model.Catalog) {
	for round := 0; round < o.cfg.MaxPollRounds; round++ {
		pending := 0
		for _, job := range cat.CoverJobs {
			if job.Status != model.CoverJobProcessing {
				continue
			}
			o.resolveJob(ctx, cat, job)
			if job.Status == model.CoverJobProcessing {
				pending++
			}
		}
		if pending == 0 {
			return
		}
		if err := o.sleep(ctx, o.cfg.PollInterval); err != nil {
			return
		}
	}
	o.log.Warn().Msg("poll budget exhausted with jobs still processing")
}

// ResolveOnce polls job a single time and applies the outcome to the
// catalog. Used by the on-demand status endpoint; the sync pass uses
// the bounded poll loop instead.
func (o *Orchestrator) ResolveOnce(ctx context.Context, cat *model.Catalog, job *model.CoverJob) {
	if job.Status == model.CoverJobProcessing {
		o.resolveJob(ctx, cat, job)
	}
}

func (o *Orchestrator) resolveJob(ctx context.Context, cat *model.Catalog, job *model.CoverJob) {
	result, err := o.gen.TaskStatus(ctx, job.TaskID)
	if err != nil {
		o.failJob(job, ReasonPollFailed, err)
		return
	}

	switch result.State {
	case imagegen.StateProcessing:
		// Still running, next round will check again.
	case imagegen.StateSuccess:
		o.finishJob(ctx, cat, job, result.URL)
	default:
		o.failJob(job, ReasonUpstream, fmt.Errorf("upstream: %s", result.Reason))
	}
}

// finishJob downloads the generated image, compresses it, writes it to
// the covers directory, and flips the album's cover fields. The album
// is only marked covered after the file write succeeds.
func (o *Orchestrator) finishJob(ctx context.Context, cat *model.Catalog, job *model.CoverJob, resultURL string) {
	if !o.guard(resultURL) {
		o.failJob(job, ReasonBlockedURL, fmt.Errorf("disallowed result url"))
		return
	}

	data, err := o.httpc.Get(ctx, resultURL)
	if err != nil {
		o.failJob(job, ReasonDownload, err)
		return
	}

	encoded, ext := o.comp.Compress(ctx, data)
	filename := fmt.Sprintf("%s-%s.%s", job.AlbumID, job.TaskID, ext)

	if err := os.MkdirAll(o.cfg.CoversDir, 0755); err != nil {
		o.failJob(job, ReasonWrite, err)
		return
	}
	if err := os.WriteFile(filepath.Join(o.cfg.CoversDir, filename), encoded, 0644); err != nil {
		o.failJob(job, ReasonWrite, err)
		return
	}

	job.Status = model.CoverJobSuccess
	job.Filename = filename
	job.Reason = ""
	job.UpdatedAt = o.now()

	if album := cat.FindAlbum(job.AlbumID); album != nil {
		album.CoverURL = "/api/music/cover-file/" + filename
		album.CoverGenerated = true
	}
	o.log.Info().Str("albumId", job.AlbumID).Str("file", filename).Msg("cover written")
}

func (o *Orchestrator) failJob(job *model.CoverJob, reason string, err error) {
	job.Status = model.CoverJobError
	job.Reason = reason
	job.UpdatedAt = o.now()
	o.log.Warn().Err(err).Str("albumId", job.AlbumID).Str("reason", reason).Msg("cover job failed")
}
