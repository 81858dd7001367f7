// Package library folds audio posts into the album/track catalog.
//
// The Aggregator deduplicates on the attachment's stable unique id,
// derives titles from unstructured attachment metadata, and groups
// tracks into albums with a single formatting heuristic (see
// DashClassifier). Albums are created lazily and tracks are prepended
// so the newest post always appears first.
package library
