// Package gfx defines the drawing capabilities the log renderer needs from a
// display surface.
package gfx

// Pen is an opaque color handle created by a Surface.
type Pen int

// Surface is a pen-based 2D drawing target with an off-screen frame that
// becomes visible only on Update.
type Surface interface {
	// Bounds returns the drawable size in pixels.
	Bounds() (width, height int)

	// MeasureText returns the width of text in the current font.
	MeasureText(text string, scale int) int

	CreatePen(r, g, b uint8) Pen
	SetPen(p Pen)
	SetFont(name string) error

	// Clear fills the whole frame with the current pen.
	Clear()

	// Text draws text with its top-left corner at (x, y), clipped to
	// wrap pixels of width.
	Text(text string, x, y, wrap, scale int)

	// Rectangle fills a rectangle with the current pen.
	Rectangle(x, y, w, h int)

	// Update commits the frame to the physical display.
	Update() error
}
