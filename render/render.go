// Package render draws a message log onto a gfx.Surface: one full redraw
// per call, committed with a single Update.
package render

import (
	"fmt"

	"github.com/picoportal/picoportal/gfx"
	"github.com/picoportal/picoportal/layout"
	"github.com/picoportal/picoportal/msglog"
)

// Renderer draws log pages. Engine must be the one used to count lines for
// scrolling.
type Renderer struct {
	Surface gfx.Surface
	Metrics Metrics
	Engine  *layout.Engine
	Palette Palette
}

// Palette holds the pens used besides each entry's own.
type Palette struct {
	Background gfx.Pen
	Neutral    gfx.Pen // timestamps
	Scrollbar  gfx.Pen
}

// New returns a Renderer whose layout engine wraps at the metrics' text
// width using the surface for measurement.
func New(s gfx.Surface, m Metrics, p Palette) *Renderer {
	return &Renderer{
		Surface: s,
		Metrics: m,
		Engine:  layout.New(s, m.WrapWidth()),
		Palette: p,
	}
}

// Render redraws the page starting at wrapped line position.
func (r *Renderer) Render(log *msglog.Log, position int) error {
	s := r.Surface
	m := r.Metrics
	capacity := m.Capacity()
	total := log.TotalLines(r.Engine)
	wrap := m.WrapWidth()

	s.SetPen(r.Palette.Background)
	s.Clear()

	line, drawn := 0, 0
	emit := func(text string) {
		if line >= position && drawn < capacity {
			s.Text(text, m.Margin, m.Margin+drawn*m.LineHeight, wrap, r.Engine.Scale)
			drawn++
		}
		line++
	}

	for _, e := range log.Entries() {
		if drawn >= capacity {
			break
		}
		body := r.Engine.Wrap(e.Text)
		n := len(body)
		if e.Timestamp != "" {
			n++
		}
		// Entries that end above the viewport are only counted.
		if line+n <= position {
			line += n
			continue
		}

		if ts := e.TimestampLine(); ts != "" {
			s.SetPen(r.Palette.Neutral)
			emit(ts)
		}
		s.SetPen(e.Pen)
		for _, l := range body {
			emit(l)
		}
	}

	if y, h, ok := m.Scrollbar(total, position); ok {
		s.SetPen(r.Palette.Scrollbar)
		s.Rectangle(m.Width-ScrollbarWidth, y, ScrollbarWidth, h)
	}

	if err := s.Update(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
