// Package ui implements the interactive terminal views using bubbletea's Elm architecture.
//
// Two models are provided:
//  1. [LoginModel] : spinner shown while the loopback callback server waits for the browser redirect
//  2. [VideosModel] : browsable list of videos with a detail view
//
// Both implement bubbletea's standard Init/Update/View pattern and receive messages via the [Msg] union type.
// The login result flows through a channel fed by the callback server's listener, so the UI never blocks on the network.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
