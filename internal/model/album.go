package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Album groups tracks that share an album title inferred from the
// source posts.
//
// The id is derived deterministically from the title (see AlbumID), so
// repeated syncs map posts onto the same album without a separate
// lookup table. Tracks are ordered newest-first.
type Album struct {
	// ID is the stable, title-derived identifier (see AlbumID).
	ID string `json:"id"`

	// Title is the album title as inferred from track titles.
	Title string `json:"title"`

	// Artist is the performer taken from the first track seen.
	Artist string `json:"artist"`

	// CoverURL is the serving path of the generated cover image, empty
	// until a cover job has succeeded.
	CoverURL string `json:"coverUrl,omitempty"`

	// CoverGenerated is true once cover art has been written to disk.
	CoverGenerated bool `json:"coverGenerated"`

	// TrackCount mirrors len(Tracks). Invariant maintained by
	// Catalog.Recount and PrependTrack.
	TrackCount int `json:"trackCount"`

	// Tracks holds the album's tracks, newest first.
	Tracks []*Track `json:"tracks"`

	// CreatedAt is when this album was first seen.
	CreatedAt time.Time `json:"createdAt"`
}

// AlbumID derives the stable album identifier from a title.
//
// The id is "album_" plus the first 16 hex characters of the title's
// SHA-256 digest. Equal titles always yield equal ids, which is what
// lets the aggregator fold repeated scans into existing albums.
func AlbumID(title string) string {
	sum := sha256.Sum256([]byte(title))
	return "album_" + hex.EncodeToString(sum[:])[:16]
}

// NewAlbum creates an album for the given title and artist with its
// derived id and no tracks.
func NewAlbum(title, artist string, createdAt time.Time) *Album {
	return &Album{
		ID:        AlbumID(title),
		Title:     title,
		Artist:    artist,
		Tracks:    []*Track{},
		CreatedAt: createdAt,
	}
}

// HasCover returns true if the album already has generated cover art.
func (a *Album) HasCover() bool {
	return a.CoverGenerated && a.CoverURL != ""
}

// PrependTrack inserts a track at the front of the album, keeping the
// newest-first ordering cheap, and updates TrackCount.
func (a *Album) PrependTrack(t *Track) {
	a.Tracks = append([]*Track{t}, a.Tracks...)
	a.TrackCount = len(a.Tracks)
}

// HasTrack reports whether the album contains a track with the given id.
func (a *Album) HasTrack(id string) bool {
	for _, t := range a.Tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}
