package model

import (
	"testing"
	"time"
)

func TestAlbumID(t *testing.T) {
	tests := []struct {
		name   string
		titleA string
		titleB string
		same   bool
	}{
		{name: "same title same id", titleA: "Neon Drive", titleB: "Neon Drive", same: true},
		{name: "different titles differ", titleA: "Neon Drive", titleB: "Dawn Circuit", same: false},
		{name: "case sensitive", titleA: "neon drive", titleB: "Neon Drive", same: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AlbumID(tt.titleA)
			b := AlbumID(tt.titleB)
			if (a == b) != tt.same {
				t.Errorf("AlbumID(%q)=%q, AlbumID(%q)=%q, same=%v, want %v", tt.titleA, a, tt.titleB, b, a == b, tt.same)
			}
		})
	}
}

func TestAlbumIDFormat(t *testing.T) {
	id := AlbumID("Starlight")
	if len(id) != len("album_")+16 {
		t.Errorf("AlbumID length = %d, want %d", len(id), len("album_")+16)
	}
	if id[:6] != "album_" {
		t.Errorf("AlbumID prefix = %q, want %q", id[:6], "album_")
	}
}

func TestPrependTrackOrdering(t *testing.T) {
	album := NewAlbum("Neon Drive", "AI Generated", time.Now())
	album.PrependTrack(&Track{ID: "track_a", Title: "First"})
	album.PrependTrack(&Track{ID: "track_b", Title: "Second"})

	if album.TrackCount != 2 {
		t.Fatalf("TrackCount = %d, want 2", album.TrackCount)
	}
	if album.Tracks[0].ID != "track_b" {
		t.Errorf("newest track should be first, got %q", album.Tracks[0].ID)
	}
	if !album.HasTrack("track_a") || album.HasTrack("track_c") {
		t.Error("HasTrack gave wrong membership")
	}
}

func TestCatalogRecount(t *testing.T) {
	c := NewCatalog("testchannel")
	a := NewAlbum("Neon Drive", "AI Generated", time.Now())
	a.Tracks = []*Track{{ID: "track_1"}, {ID: "track_2"}}
	b := NewAlbum("Dawn Circuit", "AI Generated", time.Now())
	b.Tracks = []*Track{{ID: "track_3"}}
	c.Albums = []*Album{a, b}

	c.Recount()

	if c.TotalTracks != 3 {
		t.Errorf("TotalTracks = %d, want 3", c.TotalTracks)
	}
	if a.TrackCount != 2 || b.TrackCount != 1 {
		t.Errorf("TrackCount = %d/%d, want 2/1", a.TrackCount, b.TrackCount)
	}
}

func TestCatalogLookups(t *testing.T) {
	c := NewCatalog("testchannel")
	a := NewAlbum("Neon Drive", "AI Generated", time.Now())
	a.PrependTrack(&Track{ID: "track_x"})
	c.Albums = append(c.Albums, a)
	c.CoverJobs[a.ID] = &CoverJob{AlbumID: a.ID, TaskID: "task-42", Status: CoverJobProcessing}

	if got := c.FindAlbum(a.ID); got != a {
		t.Errorf("FindAlbum returned %v", got)
	}
	if c.FindAlbum("album_missing") != nil {
		t.Error("FindAlbum should return nil for unknown id")
	}
	if !c.HasTrack("track_x") || c.HasTrack("track_y") {
		t.Error("HasTrack gave wrong membership")
	}
	if job := c.JobForTask("task-42"); job == nil || job.AlbumID != a.ID {
		t.Errorf("JobForTask = %v", job)
	}
	if c.JobForTask("task-0") != nil {
		t.Error("JobForTask should return nil for unknown task")
	}
}
