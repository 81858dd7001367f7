package scanner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/model"
	"github.com/wantzavod/musicsync/internal/telegram"
)

// fakeSource serves a fixed set of channel messages by id.
type fakeSource struct {
	pin      int
	messages map[int]*telegram.Message
	probed   []int
	chatErr  error
}

func (f *fakeSource) Chat(ctx context.Context, chatID string) (*telegram.Chat, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	chat := &telegram.Chat{ID: -100123, Type: "channel", Username: "testchannel"}
	if f.pin > 0 {
		if m, ok := f.messages[f.pin]; ok {
			chat.PinnedMessage = m
		} else {
			chat.PinnedMessage = &telegram.Message{MessageID: f.pin}
		}
	}
	return chat, nil
}

func (f *fakeSource) MessageByID(ctx context.Context, channelID string, probeChatID int64, messageID int) (*telegram.Message, error) {
	f.probed = append(f.probed, messageID)
	m, ok := f.messages[messageID]
	if !ok {
		return nil, telegram.ErrNotFound
	}
	return m, nil
}

// recordingSink captures ingested post ids.
type recordingSink struct {
	posts []int
}

func (r *recordingSink) Ingest(audio *telegram.Audio, postID int, postedAt time.Time) bool {
	for _, id := range r.posts {
		if id == postID {
			return false
		}
	}
	r.posts = append(r.posts, postID)
	return true
}

// memStore counts checkpoint persists.
type memStore struct {
	saves     int
	snapshots []string
}

func (m *memStore) Load() (*model.Catalog, error) { return model.NewCatalog("testchannel"), nil }

func (m *memStore) Save(c *model.Catalog) error {
	m.saves++
	m.snapshots = append(m.snapshots, fmt.Sprintf("%d:%s", c.LastScannedMessageID, c.SyncProgress))
	return nil
}

func audioMessage(id int, uniqueID string) *telegram.Message {
	return &telegram.Message{
		MessageID:            id,
		Date:                 1700000000 + int64(id),
		ForwardFromChat:      &telegram.Chat{Username: "testchannel"},
		ForwardFromMessageID: id,
		Audio: &telegram.Audio{
			FileID:       "file-" + uniqueID,
			FileUniqueID: uniqueID,
			Title:        "Neon Drive - Starlight",
			Duration:     182,
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig("testchannel", 555)
	cfg.StepDelay = 0
	return cfg
}

func TestScanFirstRunWindow(t *testing.T) {
	source := &fakeSource{
		pin: 5,
		messages: map[int]*telegram.Message{
			3: audioMessage(3, "u3"),
			7: audioMessage(7, "u7"),
		},
	}
	cfg := testConfig()
	cfg.FirstRunBound = 10
	store := &memStore{}
	sink := &recordingSink{}
	cat := model.NewCatalog("testchannel")

	s := New(cfg, source, store, zerolog.Nop())
	if err := s.Scan(context.Background(), cat, sink); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// Window is [1, pin+bound] on the first run.
	if len(source.probed) != 15 || source.probed[0] != 1 || source.probed[14] != 15 {
		t.Errorf("probed %v, want ids 1..15", source.probed)
	}
	if len(sink.posts) != 2 {
		t.Errorf("ingested posts = %v, want [3 7]", sink.posts)
	}
	if cat.LastScannedMessageID != 15 {
		t.Errorf("checkpoint = %d, want 15", cat.LastScannedMessageID)
	}
	if cat.SyncProgress != "" {
		t.Errorf("SyncProgress = %q, want cleared", cat.SyncProgress)
	}
}

func TestScanIncrementalWindow(t *testing.T) {
	source := &fakeSource{
		pin: 118,
		messages: map[int]*telegram.Message{
			121: audioMessage(121, "u121"),
		},
	}
	cfg := testConfig()
	cfg.IncrementalBound = 5
	store := &memStore{}
	sink := &recordingSink{}
	cat := model.NewCatalog("testchannel")
	cat.LastScannedMessageID = 115

	s := New(cfg, source, store, zerolog.Nop())
	if err := s.Scan(context.Background(), cat, sink); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// Window is [checkpoint+1, pin+bound].
	if source.probed[0] != 116 {
		t.Errorf("scan started at %d, want 116", source.probed[0])
	}
	if last := source.probed[len(source.probed)-1]; last != 123 {
		t.Errorf("scan ended at %d, want 123", last)
	}
	if cat.LastScannedMessageID != 123 {
		t.Errorf("checkpoint = %d, want 123", cat.LastScannedMessageID)
	}
}

func TestScanCheckpointMonotonic(t *testing.T) {
	source := &fakeSource{pin: 10, messages: map[int]*telegram.Message{}}
	cfg := testConfig()
	cfg.FirstRunBound = 5
	cfg.IncrementalBound = 5
	store := &memStore{}
	sink := &recordingSink{}
	cat := model.NewCatalog("testchannel")

	s := New(cfg, source, store, zerolog.Nop())
	if err := s.Scan(context.Background(), cat, sink); err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	first := cat.LastScannedMessageID

	source.pin = 20
	source.probed = nil
	if err := s.Scan(context.Background(), cat, sink); err != nil {
		t.Fatalf("second Scan: %v", err)
	}

	if source.probed[0] != first+1 {
		t.Errorf("second run started at %d, want %d", source.probed[0], first+1)
	}
	if cat.LastScannedMessageID <= first {
		t.Errorf("checkpoint did not advance: %d -> %d", first, cat.LastScannedMessageID)
	}
}

func TestScanPeriodicCheckpointPersist(t *testing.T) {
	source := &fakeSource{pin: 20, messages: map[int]*telegram.Message{}}
	cfg := testConfig()
	cfg.FirstRunBound = 5
	cfg.CheckpointEvery = 10
	store := &memStore{}
	cat := model.NewCatalog("testchannel")

	s := New(cfg, source, store, zerolog.Nop())
	if err := s.Scan(context.Background(), cat, &recordingSink{}); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// 25 messages with a persist every 10 gives two mid-run saves.
	if store.saves != 2 {
		t.Fatalf("saves = %d, want 2", store.saves)
	}
	if store.snapshots[0] != "10:10/25" || store.snapshots[1] != "20:20/25" {
		t.Errorf("snapshots = %v", store.snapshots)
	}
}

func TestScanPinnedFallback(t *testing.T) {
	// Pinned audio post predates the scan window.
	source := &fakeSource{
		pin: 2,
		messages: map[int]*telegram.Message{
			2: audioMessage(2, "u2"),
		},
	}
	cfg := testConfig()
	cfg.IncrementalBound = 3
	sink := &recordingSink{}
	cat := model.NewCatalog("testchannel")
	cat.LastScannedMessageID = 50

	s := New(cfg, source, &memStore{}, zerolog.Nop())
	if err := s.Scan(context.Background(), cat, sink); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// Window [51, 5] is empty, but the pinned post is still ingested
	// and the checkpoint never moves backwards.
	if len(sink.posts) != 1 || sink.posts[0] != 2 {
		t.Errorf("posts = %v, want pinned post 2", sink.posts)
	}
	if cat.LastScannedMessageID != 50 {
		t.Errorf("checkpoint = %d, want unchanged 50", cat.LastScannedMessageID)
	}
}

func TestScanSkipsForeignAndGapMessages(t *testing.T) {
	foreign := audioMessage(4, "u4")
	foreign.ForwardFromChat = &telegram.Chat{Username: "otherchannel"}
	source := &fakeSource{
		pin: 3,
		messages: map[int]*telegram.Message{
			2: audioMessage(2, "u2"),
			4: foreign,
		},
	}
	cfg := testConfig()
	cfg.FirstRunBound = 2
	sink := &recordingSink{}
	cat := model.NewCatalog("testchannel")

	s := New(cfg, source, &memStore{}, zerolog.Nop())
	if err := s.Scan(context.Background(), cat, sink); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(sink.posts) != 1 || sink.posts[0] != 2 {
		t.Errorf("posts = %v, want only channel post 2", sink.posts)
	}
}

func TestScanChannelResolveError(t *testing.T) {
	source := &fakeSource{chatErr: fmt.Errorf("boom")}
	cat := model.NewCatalog("testchannel")

	s := New(testConfig(), source, &memStore{}, zerolog.Nop())
	if err := s.Scan(context.Background(), cat, &recordingSink{}); err == nil {
		t.Fatal("expected error when channel cannot be resolved")
	}
}
