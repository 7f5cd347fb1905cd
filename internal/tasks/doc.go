// Package tasks orchestrates multi-video lookups against the Twitch API with real-time progress reporting.
//
// # Core Operations
//
// [VideoEngine.BulkFetch] fetches many videos with a bounded worker pool:
//   - Checks the optional [VideoCacher] first and skips the API on a fresh hit
//   - Waits on a shared rate limiter before every API request
//   - Records a per-video result, so one missing video does not fail the batch
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Video Caching
//
// The optional [VideoCacher] interface is satisfied by repositories.VideoRepository.
// Cache write failures are reported on the result but never turn a fetched video into a failure.
package tasks
