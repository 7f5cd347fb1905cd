package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/twx/internal/formatter"
	"github.com/desertthunder/twx/internal/models"
)

// ViewState represents the current view of a [VideosModel].
type ViewState int

const (
	VideoListView ViewState = iota
	VideoDetailView
)

// VideosModel lists videos and shows the details of the selected one.
type VideosModel struct {
	view     ViewState
	list     list.Model
	selected *models.Video
	width    int
	height   int
	help     help.Model
	keys     keyMap
}

// NewVideosModel creates a list view titled title.
func NewVideosModel(title string, videos []models.Video) *VideosModel {
	items := make([]list.Item, len(videos))
	for i, v := range videos {
		items[i] = videoItem{video: v}
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = title

	return &VideosModel{
		view: VideoListView,
		list: l,
		help: help.New(),
		keys: newKeyMap(),
	}
}

func (m *VideosModel) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *VideosModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case VideoListView:
			return m.handleListKeys(msg)
		case VideoDetailView:
			return m.handleDetailKeys(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *VideosModel) View() string {
	if m.view == VideoDetailView && m.selected != nil {
		title := styles.title.Render(m.selected.Title)
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n%s\n%s", title, formatter.VideoToText(m.selected), helpView)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
}

// Selected returns the video opened in the detail view, if any.
func (m *VideosModel) Selected() *models.Video {
	return m.selected
}

func (m *VideosModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(videoItem); ok {
				v := item.video
				m.selected = &v
				m.view = VideoDetailView
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *VideosModel) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = VideoListView
		return m, nil
	}
	return m, nil
}
