package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	return NewFileStore(path, "testchannel", zerolog.Nop())
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)

	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ChannelID != "testchannel" {
		t.Errorf("ChannelID = %q, want %q", c.ChannelID, "testchannel")
	}
	if c.SyncStatus != model.SyncNever {
		t.Errorf("SyncStatus = %q, want %q", c.SyncStatus, model.SyncNever)
	}
	if len(c.Albums) != 0 || c.TotalTracks != 0 {
		t.Errorf("default catalog not empty: %d albums, %d tracks", len(c.Albums), c.TotalTracks)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ChannelID != "testchannel" || len(c.Albums) != 0 {
		t.Error("corrupt file should load as default catalog")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	c := model.NewCatalog("testchannel")
	album := model.NewAlbum("Neon Drive", "AI Generated", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	album.PrependTrack(&model.Track{
		ID:       model.TrackID("AgAD_unique1"),
		Title:    "Starlight",
		Artist:   "AI Generated",
		AlbumID:  album.ID,
		Duration: 182,
	})
	c.Albums = append(c.Albums, album)
	c.Recount()
	c.SyncStatus = model.SyncSuccess
	c.LastScannedMessageID = 120
	c.CoverJobs[album.ID] = &model.CoverJob{
		AlbumID: album.ID,
		TaskID:  "task-1",
		Status:  model.CoverJobProcessing,
	}

	if err := s.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TotalTracks != 1 || got.LastScannedMessageID != 120 {
		t.Errorf("round trip lost counters: %+v", got)
	}
	if got.SyncStatus != model.SyncSuccess {
		t.Errorf("SyncStatus = %q, want %q", got.SyncStatus, model.SyncSuccess)
	}
	a := got.FindAlbum(album.ID)
	if a == nil {
		t.Fatal("album missing after round trip")
	}
	if a.TrackCount != 1 || a.Tracks[0].Duration != 182 {
		t.Errorf("track lost after round trip: %+v", a)
	}
	if job := got.JobForTask("task-1"); job == nil || job.Status != model.CoverJobProcessing {
		t.Errorf("cover job lost after round trip: %v", job)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(model.NewCatalog("testchannel")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(s.path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "catalog.json")
	s := NewFileStore(path, "testchannel", zerolog.Nop())
	if err := s.Save(model.NewCatalog("testchannel")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("catalog not written: %v", err)
	}
}
