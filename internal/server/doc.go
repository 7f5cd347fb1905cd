// Package server implements the loopback callback listener for the OAuth2 implicit grant.
//
// # Why two requests
//
// The provider returns the token in the URL fragment
// (http://127.0.0.1:{port}/authorize.html#access_token=...), and browsers never send
// fragments to a server. The flow therefore takes two requests:
//
//  1. Landing: the browser requests the bare path. The [Server] answers with the auth
//     page, whose script copies window.location.hash into the query string of the
//     same path and navigates there.
//  2. Callback: the browser requests the path again with ?access_token=... or
//     ?error=...&error_description=... The [Server] records the [Result], stops
//     itself, notifies the registered [Listener] and serves the success or failure page.
//
// Any other request (bad request line, other path, non-GET) gets a 4xx and leaves the
// server running.
//
// # Server
//
// [Server] speaks just enough HTTP/1.1 over a raw TCP listener bound to 127.0.0.1.
// [Server.Run] handles each connection on its own goroutine so stray requests (favicon,
// preconnects) never block the callback. [Server.Stop] closes the listener, which ends
// the accept loop without an error.
//
// The captured [Result] is first-writer-wins: a retried callback is answered but does
// not change the result or notify the listener again.
//
// # Pages
//
// [Pages] holds the three HTML documents. Missing pages fall back to the built-in
// views in views/. Content is served verbatim.
package server
