// Package models defines the Twitch entities shared by the API client, the cache and the formatters.
//
//   - [Video] : a VOD, highlight or upload as returned by the videos endpoints
//   - [Videos], [TopVideos] : list responses
//   - [CachedVideo] : a [Video] with the time it was stored locally
package models
