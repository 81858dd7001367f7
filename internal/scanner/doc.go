// Package scanner walks the source channel's message id space and
// feeds audio posts to the aggregator.
//
// Scanning is incremental: each run covers the window from the last
// persisted checkpoint up to a bounded distance past the channel's
// pinned message, so cost tracks new activity rather than full channel
// history. The checkpoint advances after every message and is persisted
// periodically, making an interrupted run resumable without re-scanning
// completed ranges.
package scanner
