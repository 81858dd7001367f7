// Package catalog persists the catalog document.
//
// The Store interface exposes Load and Save over an immutable snapshot;
// FileStore backs it with a single JSON file written atomically
// (temp file + rename), so concurrent readers never observe a torn
// document. A missing or unreadable file loads as the default empty
// catalog rather than an error, per the read-endpoint contract.
package catalog
