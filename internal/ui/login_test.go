package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/twx/internal/server"
)

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestLoginModel(t *testing.T) {
	const (
		authURL     = "https://id.twitch.tv/oauth2/authorize?response_type=token"
		redirectURL = "http://127.0.0.1:23522/authorize.html"
	)

	t.Run("waiting view", func(t *testing.T) {
		m := NewLoginModel(authURL, redirectURL, make(chan server.Result), nil)
		view := m.View()

		if !strings.Contains(view, "Waiting for authorization on "+redirectURL) {
			t.Errorf("expected redirect URL in view, got:\n%s", view)
		}
		if !strings.Contains(view, authURL) {
			t.Errorf("expected auth URL in view, got:\n%s", view)
		}
		if !strings.Contains(view, "quit") {
			t.Errorf("expected help in view, got:\n%s", view)
		}
	})

	t.Run("token result", func(t *testing.T) {
		results := make(chan server.Result, 1)
		results <- server.Result{Kind: server.ResultToken, Token: "abcdefghijkl"}

		m := NewLoginModel(authURL, redirectURL, results, nil)
		msg := m.waitForResult()()

		_, cmd := m.Update(msg)
		if !isQuit(t, cmd) {
			t.Error("expected quit after result")
		}
		if m.Result().Token != "abcdefghijkl" || m.Cancelled() {
			t.Errorf("unexpected result %+v cancelled=%v", m.Result(), m.Cancelled())
		}

		view := m.View()
		if !strings.Contains(view, "Authenticated") || !strings.Contains(view, "abcd…ijkl") {
			t.Errorf("expected masked token in view, got:\n%s", view)
		}
		if strings.Contains(view, "abcdefghijkl") {
			t.Error("view must not show the full token")
		}
	})

	t.Run("error result", func(t *testing.T) {
		m := NewLoginModel(authURL, redirectURL, nil, nil)
		result := server.Result{Kind: server.ResultError, Err: &server.AuthError{Code: "access_denied", Description: "User denied"}}

		m.Update(authResultMsg(result))

		if view := m.View(); !strings.Contains(view, "access_denied: User denied") {
			t.Errorf("expected error in view, got:\n%s", view)
		}
	})

	t.Run("closed channel", func(t *testing.T) {
		results := make(chan server.Result)
		close(results)

		m := NewLoginModel(authURL, redirectURL, results, nil)
		_, cmd := m.Update(m.waitForResult()())

		if !isQuit(t, cmd) || !m.Cancelled() {
			t.Error("expected a closed channel to end the login as cancelled")
		}
	})

	t.Run("quit cancels", func(t *testing.T) {
		for _, k := range []tea.KeyMsg{
			{Type: tea.KeyRunes, Runes: []rune("q")},
			{Type: tea.KeyCtrlC},
		} {
			called := 0
			m := NewLoginModel(authURL, redirectURL, nil, func() { called++ })

			_, cmd := m.Update(k)
			if !isQuit(t, cmd) {
				t.Errorf("%s: expected quit", k)
			}
			if called != 1 || !m.Cancelled() {
				t.Errorf("%s: expected cancel to be called once, got %d", k, called)
			}
			if !strings.Contains(m.View(), "Login cancelled") {
				t.Errorf("%s: expected cancelled view", k)
			}

			m.Update(k)
			if called != 1 {
				t.Errorf("%s: cancel called again after done", k)
			}
		}
	})

	t.Run("other keys are ignored", func(t *testing.T) {
		m := NewLoginModel(authURL, redirectURL, nil, func() { t.Error("unexpected cancel") })
		if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
			t.Error("expected no command")
		}
	})
}
