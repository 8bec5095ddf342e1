// Package surface implements gfx.Surface on top of an RGB565 back buffer
// that is flushed to a periph display.Drawer.
//
// A Canvas is not safe for concurrent use; callers serialise access.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"

	"github.com/picoportal/picoportal/gfx"
	"github.com/picoportal/picoportal/image565"
)

// Font names accepted by SetFont.
const (
	FontBitmap8 = "bitmap8"
	FontMono    = "mono"
)

// Canvas draws into an off-screen frame the size of the display.
type Canvas struct {
	dev   display.Drawer
	buf   *image565.Image
	pens  []image565.RGB565
	pen   gfx.Pen
	face  font.Face
	faces map[string]font.Face
}

// New returns a Canvas sized to dev, using the bitmap8 font.
func New(dev display.Drawer) *Canvas {
	b := dev.Bounds()
	return &Canvas{
		dev:   dev,
		buf:   image565.New(image.Rect(0, 0, b.Dx(), b.Dy())),
		face:  basicfont.Face7x13,
		faces: map[string]font.Face{FontBitmap8: basicfont.Face7x13},
	}
}

// Image returns the back buffer.
func (c *Canvas) Image() *image565.Image {
	return c.buf
}

// Bounds implements gfx.Surface.
func (c *Canvas) Bounds() (int, int) {
	return c.buf.Rect.Dx(), c.buf.Rect.Dy()
}

// MeasureText implements gfx.Surface.
func (c *Canvas) MeasureText(text string, scale int) int {
	if scale < 1 {
		scale = 1
	}
	return font.MeasureString(c.face, text).Ceil() * scale
}

// CreatePen implements gfx.Surface.
func (c *Canvas) CreatePen(r, g, b uint8) gfx.Pen {
	c.pens = append(c.pens, image565.FromRGB(r, g, b))
	return gfx.Pen(len(c.pens) - 1)
}

// SetPen implements gfx.Surface.
func (c *Canvas) SetPen(p gfx.Pen) {
	c.pen = p
}

// SetFont implements gfx.Surface.
func (c *Canvas) SetFont(name string) error {
	if f, ok := c.faces[name]; ok {
		c.face = f
		return nil
	}
	if name != FontMono {
		return fmt.Errorf("surface: unknown font %q", name)
	}
	f, err := loadMono()
	if err != nil {
		return err
	}
	c.faces[name] = f
	c.face = f
	return nil
}

func loadMono() (font.Face, error) {
	tt, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("surface: parse mono: %w", err)
	}
	f, err := opentype.NewFace(tt, &opentype.FaceOptions{Size: 10, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("surface: mono face: %w", err)
	}
	return f, nil
}

// color is the value of the current pen. Unknown pens draw black.
func (c *Canvas) color() image565.RGB565 {
	if int(c.pen) < 0 || int(c.pen) >= len(c.pens) {
		return 0
	}
	return c.pens[c.pen]
}

// Clear implements gfx.Surface.
func (c *Canvas) Clear() {
	c.buf.Fill(c.color())
}

// Rectangle implements gfx.Surface.
func (c *Canvas) Rectangle(x, y, w, h int) {
	r := image.Rect(x, y, x+w, y+h)
	draw.Draw(c.buf, r, image.NewUniform(c.color()), image.Point{}, draw.Src)
}

// Text implements gfx.Surface. Nothing is drawn right of x+wrap; a wrap of
// zero or less clips at the frame edge.
func (c *Canvas) Text(text string, x, y, wrap, scale int) {
	if text == "" {
		return
	}
	if scale < 1 {
		scale = 1
	}
	m := c.face.Metrics()
	lineH := m.Height.Ceil()

	clip := image.Rect(x, y, c.buf.Rect.Max.X, y+lineH*scale)
	if wrap > 0 {
		clip.Max.X = x + wrap
	}
	dst, ok := c.buf.SubImage(clip).(*image565.Image)
	if !ok || dst.Rect.Empty() {
		return
	}
	src := image.NewUniform(c.color())

	if scale == 1 {
		d := font.Drawer{Dst: dst, Src: src, Face: c.face, Dot: fixed.P(x, y+m.Ascent.Ceil())}
		d.DrawString(text)
		return
	}

	// Render at native size, then blow up without smoothing so bitmap
	// glyphs keep hard edges.
	w := font.MeasureString(c.face, text).Ceil()
	tmp := image.NewRGBA(image.Rect(0, 0, w, lineH))
	d := font.Drawer{Dst: tmp, Src: src, Face: c.face, Dot: fixed.P(0, m.Ascent.Ceil())}
	d.DrawString(text)
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+w*scale, y+lineH*scale), tmp, tmp.Bounds(), xdraw.Over, nil)
}

// Update implements gfx.Surface.
func (c *Canvas) Update() error {
	if c.dev == nil {
		return errors.New("surface: no display")
	}
	if err := c.dev.Draw(c.dev.Bounds(), c.buf, c.buf.Rect.Min); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	return nil
}

var _ gfx.Surface = &Canvas{}
