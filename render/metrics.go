package render

import (
	"errors"
	"fmt"
)

// Default layout constants for the bitmap8 font.
const (
	DefaultMargin     = 10
	DefaultLineHeight = 13

	// ScrollbarWidth is the width of the thumb drawn at the right edge.
	ScrollbarWidth = 5

	// MinScrollbarHeight keeps the thumb visible on very long logs.
	MinScrollbarHeight = 5
)

// Metrics describes the text area of a display.
type Metrics struct {
	Width      int
	Height     int
	Margin     int
	LineHeight int
}

// NewMetrics returns metrics for a width x height surface with the default
// margin and line height.
func NewMetrics(width, height int) (Metrics, error) {
	m := Metrics{Width: width, Height: height, Margin: DefaultMargin, LineHeight: DefaultLineHeight}
	return m, m.Validate()
}

// Validate reports whether at least one line of text fits.
func (m Metrics) Validate() error {
	if m.LineHeight <= 0 {
		return errors.New("render: line height must be positive")
	}
	if m.WrapWidth() <= 0 || m.Capacity() <= 0 {
		return fmt.Errorf("render: %dx%d surface leaves no room for text with margin %d", m.Width, m.Height, m.Margin)
	}
	return nil
}

// Capacity returns how many lines fit between the top and bottom margins.
func (m Metrics) Capacity() int {
	return (m.Height - 2*m.Margin) / m.LineHeight
}

// WrapWidth returns the usable text width between the side margins.
func (m Metrics) WrapWidth() int {
	return m.Width - 2*m.Margin
}

// Scrollbar returns the thumb geometry for a log of total lines scrolled to
// position. ok is false when everything fits and no scrollbar is drawn.
func (m Metrics) Scrollbar(total, position int) (y, height int, ok bool) {
	capacity := m.Capacity()
	if total <= capacity {
		return 0, 0, false
	}
	height = max(m.Height*capacity/total, MinScrollbarHeight)
	y = (m.Height - height) * position / (total - capacity)
	return y, height, true
}
