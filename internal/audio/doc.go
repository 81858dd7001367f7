// Package audio generates streaming playlists for albums.
//
// Playlists reference the service's proxy URLs rather than local
// files, so any player that can follow HTTP audio links can play an
// album directly:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(album, "https://music.example.com")
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
