// Package gfxtest is meant to be used to test drivers using fake surfaces.
package gfxtest

import (
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/picoportal/picoportal/gfx"
)

// RGB is the color a pen was created with.
type RGB struct {
	R, G, B uint8
}

// TextOp is one Text call.
type TextOp struct {
	Text       string
	X, Y, Wrap int
	Pen        gfx.Pen
}

// RectOp is one Rectangle call.
type RectOp struct {
	X, Y, W, H int
	Pen        gfx.Pen
}

// Frame is what was drawn between two Update calls.
type Frame struct {
	Background gfx.Pen
	Texts      []TextOp
	Rects      []RectOp
}

// Surface is a fake gfx.Surface with a fixed-width font. Every rune is
// CharWidth pixels wide at scale 1.
//
// It records drawing operations; Update moves the pending operations to
// Frames.
type Surface struct {
	sync.Mutex
	W, H      int
	CharWidth int
	Font      string
	Pens      []RGB
	UpdateErr error // returned by Update when set
	Frames    []Frame

	pen     gfx.Pen
	pending Frame
}

// New returns a Surface of the given size with 6px wide runes.
func New(w, h int) *Surface {
	return &Surface{W: w, H: h, CharWidth: 6}
}

// Bounds implements gfx.Surface.
func (s *Surface) Bounds() (int, int) {
	return s.W, s.H
}

// MeasureText implements gfx.Surface.
func (s *Surface) MeasureText(text string, scale int) int {
	return s.CharWidth * scale * utf8.RuneCountInString(text)
}

// CreatePen implements gfx.Surface.
func (s *Surface) CreatePen(r, g, b uint8) gfx.Pen {
	s.Lock()
	defer s.Unlock()
	s.Pens = append(s.Pens, RGB{r, g, b})
	return gfx.Pen(len(s.Pens) - 1)
}

// SetPen implements gfx.Surface.
func (s *Surface) SetPen(p gfx.Pen) {
	s.Lock()
	defer s.Unlock()
	s.pen = p
}

// SetFont implements gfx.Surface. Only "bitmap8" is known.
func (s *Surface) SetFont(name string) error {
	if name != "bitmap8" {
		return errors.New("gfxtest: unknown font " + name)
	}
	s.Lock()
	defer s.Unlock()
	s.Font = name
	return nil
}

// Clear implements gfx.Surface. It discards pending operations.
func (s *Surface) Clear() {
	s.Lock()
	defer s.Unlock()
	s.pending = Frame{Background: s.pen}
}

// Text implements gfx.Surface.
func (s *Surface) Text(text string, x, y, wrap, scale int) {
	s.Lock()
	defer s.Unlock()
	s.pending.Texts = append(s.pending.Texts, TextOp{Text: text, X: x, Y: y, Wrap: wrap, Pen: s.pen})
}

// Rectangle implements gfx.Surface.
func (s *Surface) Rectangle(x, y, w, h int) {
	s.Lock()
	defer s.Unlock()
	s.pending.Rects = append(s.pending.Rects, RectOp{X: x, Y: y, W: w, H: h, Pen: s.pen})
}

// Update implements gfx.Surface.
func (s *Surface) Update() error {
	s.Lock()
	defer s.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.Frames = append(s.Frames, s.pending)
	s.pending = Frame{}
	return nil
}

// Last returns the most recently committed frame.
func (s *Surface) Last() Frame {
	s.Lock()
	defer s.Unlock()
	if len(s.Frames) == 0 {
		return Frame{}
	}
	return s.Frames[len(s.Frames)-1]
}

// Lines returns the texts of the most recent frame, top to bottom.
func (s *Surface) Lines() []string {
	var out []string
	for _, t := range s.Last().Texts {
		out = append(out, t.Text)
	}
	return out
}

var _ gfx.Surface = &Surface{}
