package library

import "strings"

// DefaultAlbumTitle is the bucket for tracks whose title carries no
// album information.
const DefaultAlbumTitle = "Neuro Music Collection"

// DefaultArtist is used when the attachment has no performer metadata.
const DefaultArtist = "AI Generated"

// Classifier splits a raw track title into an album title and a track
// title.
type Classifier interface {
	Classify(rawTitle string) (albumTitle, trackTitle string)
}

// DashClassifier groups on the first " - " separator: the text before
// it is the album title, the remainder the track title. Titles without
// the separator fall into the default album.
//
// This is deliberately naive. It groups tracks with zero external
// tagging, at the cost of being sensitive to how posts format their
// titles. A title like "Neon Drive - Starlight - Remix" lands in album
// "Neon Drive" with track "Starlight - Remix".
type DashClassifier struct{}

// Classify implements Classifier.
func (DashClassifier) Classify(rawTitle string) (string, string) {
	album, track, found := strings.Cut(rawTitle, " - ")
	if !found {
		return DefaultAlbumTitle, strings.TrimSpace(rawTitle)
	}
	album = strings.TrimSpace(album)
	track = strings.TrimSpace(track)
	if album == "" || track == "" {
		return DefaultAlbumTitle, strings.TrimSpace(rawTitle)
	}
	return album, track
}
