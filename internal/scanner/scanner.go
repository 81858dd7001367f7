package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/catalog"
	"github.com/wantzavod/musicsync/internal/model"
	"github.com/wantzavod/musicsync/internal/telegram"
)

// MessageSource retrieves channel metadata and individual messages by
// numeric id. Implemented by the telegram client.
type MessageSource interface {
	Chat(ctx context.Context, chatID string) (*telegram.Chat, error)
	MessageByID(ctx context.Context, channelID string, probeChatID int64, messageID int) (*telegram.Message, error)
}

// Sink receives audio attachments found during the scan. Implemented
// by the library aggregator.
type Sink interface {
	Ingest(audio *telegram.Audio, postID int, postedAt time.Time) bool
}

// Config bounds one scan run.
type Config struct {
	// ChannelUsername is the public channel name, without the @ prefix.
	ChannelUsername string

	// ProbeChatID is the chat message probes are forwarded into.
	ProbeChatID int64

	// FirstRunBound is how far past the pinned message the very first
	// scan may reach.
	FirstRunBound int

	// IncrementalBound is the same reach for subsequent scans, kept
	// smaller because only new activity matters.
	IncrementalBound int

	// StepDelay is the pause between message probes, bounding outbound
	// request rate.
	StepDelay time.Duration

	// CheckpointEvery is how many messages pass between progress
	// persists.
	CheckpointEvery int
}

// DefaultConfig returns the scan bounds used in production.
func DefaultConfig(channelUsername string, probeChatID int64) Config {
	return Config{
		ChannelUsername:  channelUsername,
		ProbeChatID:      probeChatID,
		FirstRunBound:    300,
		IncrementalBound: 50,
		StepDelay:        350 * time.Millisecond,
		CheckpointEvery:  10,
	}
}

// Scanner walks a window of channel message ids on each Scan call.
type Scanner struct {
	cfg    Config
	source MessageSource
	store  catalog.Store
	log    zerolog.Logger
}

// New creates a scanner. store is used for periodic checkpoint
// persists during the walk.
func New(cfg Config, source MessageSource, store catalog.Store, log zerolog.Logger) *Scanner {
	return &Scanner{
		cfg:    cfg,
		source: source,
		store:  store,
		log:    log.With().Str("component", "scanner").Logger(),
	}
}

// Scan walks the current scan window, handing every audio post to
// sink and advancing the catalog checkpoint.
//
// Per-message failures are skipped, never fatal: deleted posts leave
// gaps in the id space and a transient upstream error on one message
// must not abort the run. The checkpoint still advances past skipped
// ids so they are not re-probed forever.
func (s *Scanner) Scan(ctx context.Context, cat *model.Catalog, sink Sink) error {
	chat, err := s.source.Chat(ctx, "@"+s.cfg.ChannelUsername)
	if err != nil {
		return fmt.Errorf("resolve channel: %w", err)
	}

	pin := 0
	if chat.PinnedMessage != nil {
		pin = chat.PinnedMessage.MessageID
	}

	start := cat.LastScannedMessageID + 1
	bound := s.cfg.IncrementalBound
	if cat.LastScannedMessageID == 0 {
		start = 1
		bound = s.cfg.FirstRunBound
	}
	end := pin + bound

	if end >= start {
		if err := s.walk(ctx, cat, sink, start, end); err != nil {
			return err
		}
	} else {
		s.log.Info().Int("checkpoint", cat.LastScannedMessageID).Int("pin", pin).Msg("no new messages to scan")
	}

	// The pinned post may predate the first scan window entirely.
	// Inspecting it directly is idempotent thanks to dedup.
	if chat.PinnedMessage != nil && chat.PinnedMessage.Audio != nil {
		postedAt := time.Unix(chat.PinnedMessage.Date, 0)
		if sink.Ingest(chat.PinnedMessage.Audio, pin, postedAt) {
			s.log.Info().Int("messageId", pin).Msg("ingested pinned post")
		}
	}

	cat.SyncProgress = ""
	return nil
}

func (s *Scanner) walk(ctx context.Context, cat *model.Catalog, sink Sink, start, end int) error {
	total := end - start + 1
	s.log.Info().Int("start", start).Int("end", end).Msg("scanning message window")

	for id := start; id <= end; id++ {
		msg, err := s.source.MessageByID(ctx, "@"+s.cfg.ChannelUsername, s.cfg.ProbeChatID, id)
		switch {
		case errors.Is(err, telegram.ErrNotFound):
			// Gap in the id space, normal for deleted posts.
		case err != nil:
			s.log.Warn().Err(err).Int("messageId", id).Msg("probe failed, skipping message")
		case msg.FromChannel(s.cfg.ChannelUsername) && msg.Audio != nil:
			sink.Ingest(msg.Audio, id, time.Unix(msg.Date, 0))
		}

		cat.LastScannedMessageID = id

		done := id - start + 1
		if s.cfg.CheckpointEvery > 0 && done%s.cfg.CheckpointEvery == 0 {
			cat.SyncProgress = fmt.Sprintf("%d/%d", done, total)
			if err := s.store.Save(cat); err != nil {
				s.log.Warn().Err(err).Msg("checkpoint persist failed")
			}
		}

		if s.cfg.StepDelay > 0 && id < end {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.StepDelay):
			}
		}
	}
	return nil
}
