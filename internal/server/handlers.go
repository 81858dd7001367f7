package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/wantzavod/musicsync/internal/audio"
	"github.com/wantzavod/musicsync/internal/model"
	"github.com/wantzavod/musicsync/internal/syncer"
	"github.com/wantzavod/musicsync/internal/telegram"
	"github.com/wantzavod/musicsync/internal/urlguard"
)

// Identifier patterns. Everything that arrives in a URL path is
// validated before it touches storage or an upstream API.
var (
	fileIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	albumIDPattern   = regexp.MustCompile(`^album_[0-9a-f]{16}$`)
	taskIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	coverFilePattern = regexp.MustCompile(`^album_[0-9a-f]{16}-[A-Za-z0-9_-]+\.(webp|jpg|jpeg|png)$`)
)

// audioContentTypes maps resolved file extensions to MIME types for
// the audio proxy.
var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".wav":  "audio/wav",
}

var coverContentTypes = map[string]string{
	".webp": "image/webp",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAlbums returns the full catalog document.
func (s *Server) handleAlbums(w http.ResponseWriter, r *http.Request) {
	cat, err := s.store.Load()
	if err != nil {
		s.log.Error().Err(err).Msg("catalog load failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	s.writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	cat, err := s.store.Load()
	if err != nil {
		s.log.Error().Err(err).Msg("catalog load failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"syncStatus":           cat.SyncStatus,
		"lastSync":             cat.LastSync,
		"totalTracks":          cat.TotalTracks,
		"totalAlbums":          len(cat.Albums),
		"lastScannedMessageId": cat.LastScannedMessageID,
		"syncProgress":         cat.SyncProgress,
	})
}

// handleSync triggers one full scan-and-resolve pass.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	cat, err := s.syncer.Sync(r.Context())
	switch {
	case errors.Is(err, syncer.ErrSyncInProgress):
		s.writeError(w, http.StatusConflict, "sync already in progress")
	case err != nil:
		s.log.Error().Err(err).Msg("sync failed")
		s.writeError(w, http.StatusInternalServerError, "sync failed")
	default:
		s.writeJSON(w, http.StatusOK, cat)
	}
}

// handleFile streams an audio file through the upstream proxy. The
// upstream URL, which embeds credentials, never reaches the client.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	if !fileIDPattern.MatchString(fileID) {
		s.writeError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	fileURL, err := s.resolver.FileURL(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, telegram.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "file not found")
			return
		}
		s.log.Warn().Err(err).Str("fileId", fileID).Msg("file resolve failed")
		s.writeError(w, http.StatusBadGateway, "failed to resolve file")
		return
	}

	resp, err := s.httpc.Stream(r.Context(), fileURL)
	if err != nil {
		s.log.Warn().Err(err).Str("fileId", fileID).Msg("file stream failed")
		s.writeError(w, http.StatusBadGateway, "failed to fetch file")
		return
	}
	defer resp.Body.Close()

	contentType := audioContentTypes[strings.ToLower(path.Ext(fileURL))]
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", resp.Header.Get("Content-Length"))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Debug().Err(err).Str("fileId", fileID).Msg("stream interrupted")
	}
}

// handleCoverFile serves a generated cover from the covers directory.
// The filename pattern rules out path traversal before any filesystem
// access happens.
func (s *Server) handleCoverFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !coverFilePattern.MatchString(filename) {
		s.writeError(w, http.StatusBadRequest, "invalid cover filename")
		return
	}

	full := filepath.Join(s.cfg.Storage.CoversDir, filename)
	if _, err := os.Stat(full); err != nil {
		s.writeError(w, http.StatusNotFound, "cover not found")
		return
	}

	w.Header().Set("Content-Type", coverContentTypes[strings.ToLower(filepath.Ext(filename))])
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, full)
}

// handleRegenerateCover discards an album's cover and starts a new
// generation job. The request body may carry a custom prompt.
func (s *Server) handleRegenerateCover(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumID")
	if !albumIDPattern.MatchString(albumID) {
		s.writeError(w, http.StatusBadRequest, "invalid album id")
		return
	}

	var body struct {
		Prompt string `json:"prompt"`
	}
	if r.Body != nil {
		// A missing or malformed body just means no custom prompt.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	taskID, err := s.syncer.RegenerateCover(r.Context(), albumID, body.Prompt)
	switch {
	case errors.Is(err, syncer.ErrAlbumNotFound):
		s.writeError(w, http.StatusNotFound, "album not found")
	case errors.Is(err, syncer.ErrJobInProgress):
		s.writeError(w, http.StatusConflict, "cover generation already in progress")
	case err != nil:
		s.log.Error().Err(err).Str("albumId", albumID).Msg("cover regenerate failed")
		s.writeError(w, http.StatusInternalServerError, "failed to start cover generation")
	default:
		s.writeJSON(w, http.StatusOK, map[string]string{
			"taskId":  taskID,
			"albumId": albumID,
			"message": "Cover generation started",
		})
	}
}

// handleCoverStatus polls one job and reports its state.
func (s *Server) handleCoverStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if !taskIDPattern.MatchString(taskID) {
		s.writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	job, err := s.syncer.CoverStatus(r.Context(), taskID)
	switch {
	case errors.Is(err, syncer.ErrJobNotFound):
		s.writeError(w, http.StatusNotFound, "cover job not found")
		return
	case err != nil:
		s.log.Error().Err(err).Str("taskId", taskID).Msg("cover status failed")
		s.writeError(w, http.StatusInternalServerError, "failed to check cover status")
		return
	}

	switch job.Status {
	case model.CoverJobSuccess:
		s.writeJSON(w, http.StatusOK, map[string]string{
			"status":   "success",
			"coverUrl": "/api/music/cover-file/" + job.Filename,
		})
	case model.CoverJobProcessing:
		s.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "processing",
			"message": "Cover is still being generated",
		})
	default:
		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "error",
			"error":  job.Reason,
		})
	}
}

// handleApplyCover sets an album cover to an already hosted image.
// The URL must be either a cover served by this service or an allowed
// remote HTTPS location.
func (s *Server) handleApplyCover(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumID")
	if !albumIDPattern.MatchString(albumID) {
		s.writeError(w, http.StatusBadRequest, "invalid album id")
		return
	}

	var body struct {
		CoverURL string `json:"coverUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CoverURL == "" {
		s.writeError(w, http.StatusBadRequest, "coverUrl is required")
		return
	}
	if !s.allowedCoverURL(body.CoverURL) {
		s.writeError(w, http.StatusForbidden, "cover url not allowed")
		return
	}

	album, err := s.syncer.ApplyCover(r.Context(), albumID, body.CoverURL)
	switch {
	case errors.Is(err, syncer.ErrAlbumNotFound):
		s.writeError(w, http.StatusNotFound, "album not found")
	case err != nil:
		s.log.Error().Err(err).Str("albumId", albumID).Msg("apply cover failed")
		s.writeError(w, http.StatusInternalServerError, "failed to apply cover")
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "album": album})
	}
}

func (s *Server) allowedCoverURL(coverURL string) bool {
	if strings.HasPrefix(coverURL, "/api/music/cover-file/") {
		return coverFilePattern.MatchString(strings.TrimPrefix(coverURL, "/api/music/cover-file/"))
	}
	return urlguard.IsAllowed(coverURL)
}

// handlePlaylist serves an album as a streaming playlist. The format
// query parameter selects m3u (default) or pls.
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumID")
	if !albumIDPattern.MatchString(albumID) {
		s.writeError(w, http.StatusBadRequest, "invalid album id")
		return
	}

	cat, err := s.store.Load()
	if err != nil {
		s.log.Error().Err(err).Msg("catalog load failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	album := cat.FindAlbum(albumID)
	if album == nil {
		s.writeError(w, http.StatusNotFound, "album not found")
		return
	}

	format := audio.FormatM3U
	ext := "m3u"
	if r.URL.Query().Get("format") == "pls" {
		format = audio.FormatPLS
		ext = "pls"
	}

	baseURL := s.cfg.Server.BaseURL
	if baseURL == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		baseURL = scheme + "://" + r.Host
	}

	creator := audio.NewPlaylistCreator(format, true)
	w.Header().Set("Content-Type", creator.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+sanitizeFilename(album.Title)+"."+ext+`"`)
	io.WriteString(w, creator.CreatePlaylist(album, baseURL))
}

// sanitizeFilename keeps download filenames header-safe.
var filenameSanitizer = regexp.MustCompile(`[^A-Za-z0-9 _.-]`)

func sanitizeFilename(name string) string {
	clean := filenameSanitizer.ReplaceAllString(name, "_")
	if clean == "" {
		clean = "album"
	}
	return clean
}
