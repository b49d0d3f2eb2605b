// Package tasks keeps local snapshots current while the backend changes underneath them.
//
// # Change Listener
//
// [Listener.Subscribe] opens one realtime subscription per collection with a callback:
//
//   - banners-changes, videos-changes, notices-changes: each event triggers a remote refresh,
//     which also rewrites the local mirror, and the callback receives the full snapshot
//   - promos-changes: the callback is invoked with no payload and the consumer re-reads
//
// Each subscription runs in its own goroutine, so callbacks for different collections may run
// concurrently. Events that arrive while a refresh is in flight collapse into one follow-up
// refresh, and refreshes per collection are throttled by a token bucket.
//
// # Progress Reporting
//
// An optional [Update] channel receives subscription and refresh events. Sends never block;
// updates are dropped when the channel is full.
package tasks
