// Package covers drives asynchronous cover-art generation for albums.
//
// The Orchestrator launches one generation job per coverless album,
// polls outstanding jobs for a bounded number of rounds, and on success
// validates the result URL, downloads the image, and writes it through
// the Compressor into the covers directory. The Compressor targets a
// maximum file size by re-encoding with external tools, degrading to an
// in-process re-encode and finally to the unmodified original rather
// than failing the job over a compression-only problem.
package covers
