// Package repositories persists catalog content locally and reconciles it with the remote backend.
//
// Every collection is kept in two places: the remote tables, which are the source of truth, and a
// local SQLite mirror ([LocalStore]) used whenever the backend is unconfigured or unreachable.
//
// Key Implementations:
//   - [Collection] : ordered banners, videos and notices with remote upsert/diff-delete reconciliation
//   - [Promos] : the two singleton promo card slots
//   - [SessionCache] : the persisted admin session
//   - [UploadLog] : record of uploaded media objects
//
// Writes always go to the mirror first. The remote outcome is reported as a [SyncResult] value
// rather than an error, so callers can warn that other clients will not see a change that was only
// saved locally.
package repositories
