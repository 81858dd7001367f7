package library

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wantzavod/musicsync/internal/model"
	"github.com/wantzavod/musicsync/internal/telegram"
)

// audioExtensions are stripped from raw titles before classification.
var audioExtensions = []string{".mp3", ".m4a", ".ogg", ".oga", ".opus", ".flac", ".wav", ".aac"}

// defaultDuration is assumed when the attachment reports none.
const defaultDuration = 180

// Aggregator folds audio attachments into a catalog, one at a time.
//
// Deduplication is purely on the attachment's stable unique id: an
// attachment already present in the catalog, or already ingested in
// this run, is a no-op. The seen set makes repeated Ingest calls within
// one scan idempotent even before the catalog is persisted.
type Aggregator struct {
	catalog    *model.Catalog
	classifier Classifier
	seen       map[string]bool
	log        zerolog.Logger
}

// NewAggregator creates an aggregator mutating catalog in place.
func NewAggregator(catalog *model.Catalog, classifier Classifier, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		catalog:    catalog,
		classifier: classifier,
		seen:       map[string]bool{},
		log:        log.With().Str("component", "library").Logger(),
	}
}

// Ingest adds the audio attachment from a channel post to the catalog.
// Returns true when a new track was added, false on a duplicate or an
// attachment without a usable unique id.
func (a *Aggregator) Ingest(audio *telegram.Audio, postID int, postedAt time.Time) bool {
	if audio == nil || audio.FileUniqueID == "" {
		return false
	}

	trackID := model.TrackID(audio.FileUniqueID)
	if a.seen[trackID] || a.catalog.HasTrack(trackID) {
		return false
	}
	a.seen[trackID] = true

	rawTitle := audio.Title
	if rawTitle == "" {
		rawTitle = audio.FileName
	}
	if rawTitle == "" {
		rawTitle = "Unknown Track"
	}
	rawTitle = stripAudioExtension(rawTitle)

	artist := audio.Performer
	if artist == "" {
		artist = DefaultArtist
	}
	duration := audio.Duration
	if duration <= 0 {
		duration = defaultDuration
	}

	albumTitle, trackTitle := a.classifier.Classify(rawTitle)
	album := a.findOrCreateAlbum(albumTitle, artist, postedAt)

	album.PrependTrack(&model.Track{
		ID:           trackID,
		Title:        trackTitle,
		Artist:       artist,
		AlbumID:      album.ID,
		Duration:     duration,
		AudioRef:     audio.FileID,
		AudioURL:     "/api/music/file/" + audio.FileID,
		SourcePostID: postID,
		CreatedAt:    postedAt,
	})
	a.catalog.Recount()

	a.log.Debug().
		Str("track", trackTitle).
		Str("album", albumTitle).
		Int("postId", postID).
		Msg("ingested track")
	return true
}

func (a *Aggregator) findOrCreateAlbum(title, artist string, createdAt time.Time) *model.Album {
	id := model.AlbumID(title)
	if album := a.catalog.FindAlbum(id); album != nil {
		return album
	}
	album := model.NewAlbum(title, artist, createdAt)
	a.catalog.Albums = append(a.catalog.Albums, album)
	return album
}

func stripAudioExtension(title string) string {
	lower := strings.ToLower(title)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return strings.TrimSpace(title[:len(title)-len(ext)])
		}
	}
	return strings.TrimSpace(title)
}
