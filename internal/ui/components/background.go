// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
	"github.com/SehejGit/lofi-hack/internal/util"
)

// Previewer is implemented by image handles that can draw themselves in a
// terminal.
type Previewer interface {
	Preview(cols, rows int) string
}

// defaultScene is the default background.
var defaultScene = []string{
	`      .        *          .       `,
	`  *        .        .        *    `,
	`        ___________________        `,
	`       |  ~ lofi radio ~   |       `,
	`       |___________________|       `,
	`  .        *            .       . `,
}

// Background renders the generated image, or the default scene when no
// image is installed.
type Background struct {
	width   int
	height  int
	enabled bool

	theme *styles.Theme
}

// NewBackground creates the background panel. enabled=false never draws
// image previews.
func NewBackground(theme *styles.Theme, enabled bool) *Background {
	return &Background{width: 40, height: 12, enabled: enabled, theme: theme}
}

// SetSize sets the panel dimensions, border included.
func (b *Background) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// View renders handle with its prompt as a caption.
func (b *Background) View(handle orchestrator.ImageHandle, prompt string) string {
	cols := max(b.width-2, 4)
	rows := max(b.height-3, 2)

	var body string
	if p, ok := handle.(Previewer); ok && b.enabled {
		body = p.Preview(cols, rows)
	} else {
		body = b.scene(cols, rows)
	}

	caption := "default background"
	if handle != nil {
		caption = prompt
	}
	caption = b.theme.BackgroundCaption.Render(util.TruncateWidth(caption, cols))

	return b.theme.Background.Render(lipgloss.JoinVertical(lipgloss.Left, body, caption))
}

func (b *Background) scene(cols, rows int) string {
	lines := make([]string, 0, rows)
	top := max((rows-len(defaultScene))/2, 0)
	for i := 0; i < top; i++ {
		lines = append(lines, strings.Repeat(" ", cols))
	}
	for _, l := range defaultScene {
		if len(lines) >= rows {
			break
		}
		lines = append(lines, lipgloss.PlaceHorizontal(cols, lipgloss.Center, util.TruncateWidth(l, cols)))
	}
	for len(lines) < rows {
		lines = append(lines, strings.Repeat(" ", cols))
	}
	return lipgloss.NewStyle().Foreground(styles.TextMuted).Render(strings.Join(lines, "\n"))
}
