package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/shared"
)

var (
	_ list.Item = videoItem{}
)

// videoItem wraps [models.Video] to implement [list.Item].
type videoItem struct {
	video models.Video
}

func (i videoItem) FilterValue() string { return i.video.Title }
func (i videoItem) Title() string       { return i.video.Title }
func (i videoItem) Description() string {
	parts := []string{}
	if name := i.video.Channel.DisplayName; name != "" {
		parts = append(parts, name)
	} else if i.video.Channel.Name != "" {
		parts = append(parts, i.video.Channel.Name)
	}
	if i.video.Game != "" {
		parts = append(parts, i.video.Game)
	}
	parts = append(parts, shared.FormatDuration(i.video.Length), fmt.Sprintf("%d views", i.video.Views))
	return strings.Join(parts, " • ")
}
