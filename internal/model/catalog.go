package model

import (
	"time"
)

// SyncStatus describes the lifecycle of the catalog with respect to the
// source channel.
type SyncStatus string

const (
	// SyncNever means no sync run has ever completed (fresh catalog).
	SyncNever SyncStatus = "never"

	// SyncSyncing means a sync run is currently in flight.
	SyncSyncing SyncStatus = "syncing"

	// SyncSuccess means the last sync run completed normally.
	SyncSuccess SyncStatus = "success"

	// SyncError means the last sync run failed; the checkpoint marks
	// where it stopped.
	SyncError SyncStatus = "error"
)

// Catalog is the persisted sync state: albums reconstructed from the
// source channel, job bookkeeping, and the scan checkpoint.
//
// The catalog is a singleton. It is created with defaults on first read
// if the backing file is absent, mutated exclusively by the sync flow,
// and read by all query endpoints.
type Catalog struct {
	// Albums holds every known album, newest first.
	Albums []*Album `json:"albums"`

	// LastSync is the wall-clock time the last sync run finished.
	// Nil until the first run completes.
	LastSync *time.Time `json:"lastSync"`

	// SyncStatus reflects the state of the most recent sync run.
	SyncStatus SyncStatus `json:"syncStatus"`

	// ChannelID identifies the source channel the catalog mirrors.
	ChannelID string `json:"channelId"`

	// TotalTracks is the number of tracks across all albums.
	// Invariant: equals the sum of len(album.Tracks).
	TotalTracks int `json:"totalTracks"`

	// LastScannedMessageID is the scan checkpoint: the highest message
	// id the scanner has finished processing. The next run starts at
	// LastScannedMessageID+1.
	LastScannedMessageID int `json:"lastScannedMessageId"`

	// SyncProgress is a human-readable "N/M" counter persisted
	// periodically during a scan so observers can follow a long run.
	// Empty when no scan is in progress.
	SyncProgress string `json:"syncProgress,omitempty"`

	// CoverJobs tracks one asynchronous cover-generation job per album,
	// keyed by album id.
	CoverJobs map[string]*CoverJob `json:"coverJobs"`
}

// NewCatalog returns an empty catalog with defaults for the given
// source channel.
func NewCatalog(channelID string) *Catalog {
	return &Catalog{
		Albums:     []*Album{},
		SyncStatus: SyncNever,
		ChannelID:  channelID,
		CoverJobs:  map[string]*CoverJob{},
	}
}

// FindAlbum returns the album with the given id, or nil.
func (c *Catalog) FindAlbum(id string) *Album {
	for _, a := range c.Albums {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// HasTrack reports whether any album already contains a track with the
// given id.
func (c *Catalog) HasTrack(id string) bool {
	for _, a := range c.Albums {
		for _, t := range a.Tracks {
			if t.ID == id {
				return true
			}
		}
	}
	return false
}

// Recount recomputes TotalTracks and every album's TrackCount from the
// track slices, restoring the counting invariants after bulk mutation.
func (c *Catalog) Recount() {
	total := 0
	for _, a := range c.Albums {
		a.TrackCount = len(a.Tracks)
		total += a.TrackCount
	}
	c.TotalTracks = total
}

// JobForTask returns the cover job with the given upstream task id,
// or nil if no album is tracking that task.
func (c *Catalog) JobForTask(taskID string) *CoverJob {
	for _, job := range c.CoverJobs {
		if job.TaskID == taskID {
			return job
		}
	}
	return nil
}
