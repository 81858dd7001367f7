package audio

import (
	"fmt"
	"strings"

	"github.com/wantzavod/musicsync/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u playlists (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls playlists (Winamp/SHOUTcast format).
	// INI-style format with file, title, and length info.
	FormatPLS
)

// PlaylistCreator generates playlist documents from an album's tracks.
//
// Entries point at the asset-proxy streaming URLs, prefixed with the
// caller-supplied base URL so the playlist works outside a browser.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(album, "https://music.example.com")
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:182,AI Generated - Echo Run
//	// https://music.example.com/api/music/file/file-abc
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended controls #EXTINF lines for the M3U format and is ignored
// for other formats.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// ContentType returns the MIME type for the generated playlist.
func (p *PlaylistCreator) ContentType() string {
	if p.format == FormatPLS {
		return "audio/x-scpls"
	}
	return "audio/x-mpegurl"
}

// CreatePlaylist generates playlist content for an album, ready to be
// served or written to a file.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album, baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	switch p.format {
	case FormatPLS:
		return p.createPLS(album, baseURL)
	default:
		return p.createM3U(album, baseURL)
	}
}

// createM3U generates an M3U playlist.
//
// Standard M3U format:
//
//	https://host/api/music/file/a
//	https://host/api/music/file/b
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:182,Artist - Title
//	https://host/api/music/file/a
func (p *PlaylistCreator) createM3U(album *model.Album, baseURL string) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range album.Tracks {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s - %s\n", track.Duration, track.Artist, track.Title))
		}
		sb.WriteString(baseURL + track.AudioURL + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
// PLS format is an INI-style text file:
//
//	[playlist]
//	File1=https://host/api/music/file/a
//	Title1=Song Title
//	Length1=182
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(album *model.Album, baseURL string) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range album.Tracks {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, baseURL+track.AudioURL))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, track.Title))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, track.Duration))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(album.Tracks)))
	sb.WriteString("Version=2\n")

	return sb.String()
}
