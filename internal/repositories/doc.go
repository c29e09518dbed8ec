// Package repositories implements SQLite persistence for the client's durable local storage.
//
// The client keeps two kinds of state between runs: the persisted session and a
// local-only image per catalog record. Both live in a single key/value table.
//
// Key Implementations:
//   - [KVRepository] : String values addressed by key, with prefix listing
//   - [ImageRepository] : Data URLs keyed by record id under the movieImage_ prefix
//
// Images are never uploaded. The side table is not shared across devices and can
// drift from the server when records are deleted elsewhere.
package repositories
