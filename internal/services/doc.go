// Package services defines the [Service] interface for the video provider and implements it for Twitch.
//
// # Twitch Implementation
//
// [TwitchService] talks to the v5 videos resource. Every request carries the application's
// Client-ID and the versioned Accept header, and waits on a [rate.Limiter].
//
// # Implicit Grant
//
// Twitch desktop clients use the OAuth2 implicit grant: [TwitchService.AuthURL] builds the
// authorize URL with response_type=token, the browser returns the token to the local
// callback server (see internal/server), and [TwitchService.Authenticate] attaches it
// through an [oauth2.StaticTokenSource]. Tokens are never refreshed or stored.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrTokenExpired] : 401, run the login again
//   - [shared.ErrVideoNotFound] : 404
//   - [shared.ErrAPIRequest] : transport failures and other statuses
//   - [shared.ErrInvalidArgument] : rejected [TopVideosParams]
package services
