// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
)

// upperHalf renders the top pixel in the foreground and the bottom pixel in
// the background, so one cell shows two pixel rows.
const upperHalf = "▀"

// Decoder decodes generated images into displayable handles.
type Decoder struct {
	// Dir receives the encoded files. Empty means os.TempDir.
	Dir string
}

var _ orchestrator.ImageDecoder = (*Decoder)(nil)

// NewDecoder creates a decoder writing into dir.
func NewDecoder(dir string) *Decoder {
	return &Decoder{Dir: dir}
}

// Decode validates data as PNG, JPEG or GIF and stores it on disk.
func (d *Decoder) Decode(data []byte) (orchestrator.ImageHandle, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dir := d.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "background-*."+format)
	if err != nil {
		return nil, fmt.Errorf("create image file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close image file: %w", err)
	}

	return &Image{img: img, format: format, path: f.Name()}, nil
}

// Image is a decoded background image.
type Image struct {
	img    image.Image
	format string
	path   string

	mu       sync.Mutex
	released bool
	cacheKey [2]int
	cached   string
}

// Path returns the encoded file on disk. It is removed by Release.
func (i *Image) Path() string {
	return i.path
}

// Format returns the decoder name, e.g. "png".
func (i *Image) Format() string {
	return i.format
}

// Bounds returns the pixel bounds.
func (i *Image) Bounds() image.Rectangle {
	return i.img.Bounds()
}

// Release removes the file on disk. The in-memory preview stays usable
// until the handle is dropped.
func (i *Image) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.released {
		return nil
	}
	i.released = true
	if err := os.Remove(i.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Preview renders the image into cols x rows terminal cells.
func (i *Image) Preview(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cacheKey == [2]int{cols, rows} && i.cached != "" {
		return i.cached
	}

	b := i.img.Bounds()
	pixelRows := rows * 2
	var sb strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			sx := b.Min.X + x*b.Dx()/cols
			top := i.img.At(sx, b.Min.Y+(2*y)*b.Dy()/pixelRows)
			bottom := i.img.At(sx, b.Min.Y+(2*y+1)*b.Dy()/pixelRows)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top))).
				Background(lipgloss.Color(hexColor(bottom))).
				Render(upperHalf))
		}
	}

	i.cacheKey = [2]int{cols, rows}
	i.cached = sb.String()
	return i.cached
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
