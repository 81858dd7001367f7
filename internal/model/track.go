package model

import "time"

// Track is a single audio post ingested from the source channel.
//
// A track is immutable once created: a re-sync can only add new tracks,
// never alter existing ones. The id is globally unique across the
// catalog (see TrackID).
type Track struct {
	// ID is derived from the source file's stable unique identifier
	// (see TrackID) and is the deduplication key.
	ID string `json:"id"`

	// Title is the track title with the album prefix and any audio
	// file extension stripped.
	Title string `json:"title"`

	// Artist is the performer from the attachment metadata.
	Artist string `json:"artist"`

	// AlbumID links the track to its album.
	AlbumID string `json:"albumId"`

	// Duration is the track length in seconds.
	Duration int `json:"duration"`

	// AudioRef is the opaque remote file handle resolved by the asset
	// proxy at serve time. It is not a URL and carries no credentials.
	AudioRef string `json:"audioRef"`

	// AudioURL is the serving path clients stream the track from.
	AudioURL string `json:"audioUrl"`

	// SourcePostID is the message id of the channel post the track was
	// extracted from.
	SourcePostID int `json:"sourcePostId"`

	// CreatedAt is the timestamp of the source post.
	CreatedAt time.Time `json:"createdAt"`
}

// TrackID derives the globally unique track identifier from the source
// file's stable unique id.
func TrackID(fileUniqueID string) string {
	return "track_" + fileUniqueID
}
