// Package model defines the catalog data model shared by every part of
// the media-sync pipeline.
//
// # Catalog
//
// Catalog is the single document describing all known albums, their
// tracks, the per-album cover-generation jobs, and the scan checkpoint.
// It is persisted as one JSON file (see package catalog) and mutated
// only by the active sync flow.
//
// # Identifiers
//
// Identifiers are derived, never allocated:
//   - Album IDs are a stable hash of the album title, so repeated scans
//     map the same title onto the same album without a lookup table.
//   - Track IDs are derived from the source file's unique identifier,
//     which is also the deduplication key across re-scans.
//
// # Invariants
//
// TotalTracks always equals the sum of track counts across albums, and
// each album's TrackCount equals len(Tracks). Recount restores both
// after bulk mutation. Tracks within an album are ordered newest-first.
package model
