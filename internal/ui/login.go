package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/twx/internal/server"
	"github.com/desertthunder/twx/internal/shared"
)

// LoginModel waits for the callback server to report a token or an authorization error.
type LoginModel struct {
	authURL     string
	redirectURL string
	results     <-chan server.Result
	cancel      func()
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	result      server.Result
	done        bool
	cancelled   bool
}

// NewLoginModel creates a login view for authURL. results receives the server outcome and
// cancel is called when the user quits before it arrives.
func NewLoginModel(authURL, redirectURL string, results <-chan server.Result, cancel func()) *LoginModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &LoginModel{
		authURL:     authURL,
		redirectURL: redirectURL,
		results:     results,
		cancel:      cancel,
		spinner:     s,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the spinner and waits for the server result.
func (m *LoginModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForResult())
}

// Update handles incoming messages and updates the model state.
func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && !m.done {
			m.cancelled = true
			m.done = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgAuthResult:
			m.result = msg.data.(server.Result)
		case MsgAuthClosed:
			m.cancelled = !m.result.IsSet()
		}
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the waiting screen or the outcome.
func (m *LoginModel) View() string {
	switch {
	case m.cancelled:
		return styles.warn.Render("Login cancelled") + "\n"
	case m.result.Kind == server.ResultToken:
		return fmt.Sprintf("%s\n\nAccess token: %s\n", styles.ok.Render("✓ Authenticated"), shared.MaskToken(m.result.Token))
	case m.result.Kind == server.ResultError:
		return styles.err.Render(fmt.Sprintf("Authorization failed: %v", m.result.Err)) + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Twitch login"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s Waiting for authorization on %s\n\n", m.spinner.View(), m.redirectURL))
	b.WriteString("If the browser did not open, visit:\n")
	b.WriteString(m.authURL)
	b.WriteString("\n\n")
	b.WriteString(styles.help.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return b.String()
}

// Result returns the server outcome once the model is done. It is unset when cancelled.
func (m *LoginModel) Result() server.Result {
	return m.result
}

// Cancelled reports whether the user quit before a result arrived.
func (m *LoginModel) Cancelled() bool {
	return m.cancelled
}

func (m *LoginModel) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-m.results
		if !ok {
			return authClosedMsg()
		}
		return authResultMsg(result)
	}
}
