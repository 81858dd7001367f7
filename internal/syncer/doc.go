// Package syncer ties the pipeline together: one Sync call runs a full
// scan-then-resolve pass over the catalog and persists the result.
//
// Only one sync runs at a time. A second caller gets ErrSyncInProgress
// immediately instead of queueing, matching the single-flow request
// model. Read paths never go through the syncer and stay available
// during a run.
package syncer
