package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/twx/internal/server"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAuthResult MsgKind = iota
	MsgAuthClosed
)

// authResultMsg is the constructor for [MsgAuthResult]
func authResultMsg(result server.Result) Msg {
	return Msg{kind: MsgAuthResult, data: result}
}

// authClosedMsg is the constructor for [MsgAuthClosed], sent when the result channel closes without a result.
func authClosedMsg() Msg {
	return Msg{kind: MsgAuthClosed}
}
