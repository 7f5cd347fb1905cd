// Package repositories implements SQLite persistence for the local video cache.
//
// Key Implementations:
//   - [VideoRepository] : cached API lookups keyed by the Twitch video id, stored as JSON payloads
//   - [VideoRepository.Fetch] : read-through lookup that falls back to a [FetchFunc] on a miss
//
// Entries expire by age: callers pass a maximum age to [VideoRepository.Get] and stale rows count as misses.
// Tokens are never written to the database.
package repositories
