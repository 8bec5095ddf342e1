// Package st7789 controls an ST7789 TFT panel via SPI.
//
// The ST7789 is a 240x320 RGB controller. Smaller glass (such as the 240x135
// panel on the Pico Display) is addressed through a window offset into the
// controller RAM.
//
// See cmd/picoportal for how to use this package.
package st7789

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/picoportal/picoportal/image565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Controller commands.
const (
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
)

// MADCTL bits.
const (
	madctlMY = 0x80 // Row address order
	madctlMX = 0x40 // Column address order
	madctlMV = 0x20 // Row/column exchange
)

// Controller RAM limits.
const (
	ramWidth  = 240
	ramHeight = 320
)

// Rotation is the panel orientation applied through MADCTL.
type Rotation int

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

func (r Rotation) madctl() (byte, error) {
	switch r {
	case Rotation0:
		return 0, nil
	case Rotation90:
		return madctlMX | madctlMV, nil
	case Rotation180:
		return madctlMX | madctlMY, nil
	case Rotation270:
		return madctlMY | madctlMV, nil
	}
	return 0, fmt.Errorf("st7789: invalid rotation %d", int(r))
}

// swapsAxes reports whether the rotation exchanges rows and columns.
func (r Rotation) swapsAxes() bool {
	return r == Rotation90 || r == Rotation270
}

// Opts is the configuration for the ST7789 panel.
type Opts struct {
	// Visible dimensions in pixels, after rotation.
	W int // Width (default: 240)
	H int // Height (default: 135)

	// Position of the visible window inside controller RAM, after rotation.
	XOffset int
	YOffset int

	Rotation Rotation

	// Optional pins
	RST       gpio.PinIO  // Reset pin (nil if not used)
	Backlight gpio.PinOut // Backlight enable (nil if always on)

	// SPI clock (default: 32MHz)
	Frequency physic.Frequency
}

// Dev is the device handle for the ST7789 panel.
type Dev struct {
	// Communication
	c   conn.Conn   // SPI connection
	dc  gpio.PinOut // Data/Command pin
	rst gpio.PinIO  // Reset pin (optional)
	bl  gpio.PinOut // Backlight pin (optional)

	// Display geometry
	rect             image.Rectangle
	xOffset, yOffset int

	// Pixel buffers
	buffer []byte          // Last frame sent to the panel
	next   *image565.Image // For lazy double buffering

	// Largest single transfer accepted by the bus, 0 for unlimited.
	maxTx int

	// State
	halted bool
}

// NewSPI creates a new ST7789 device connected via SPI.
//
// The SPI port is configured for Mode0 with 8-bit words. The dc (Data/Command)
// GPIO pin must be provided.
//
// opts can be nil to use defaults (240x135 landscape, Pico Display offsets).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 240, H: 135, XOffset: 40, YOffset: 53, Rotation: Rotation90}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("st7789: dc pin is required")
	}

	f := opts.Frequency
	if f == 0 {
		f = 32 * physic.MegaHertz
	}
	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: %w", err)
	}

	d := &Dev{
		c:       c,
		dc:      dc,
		rst:     opts.RST,
		bl:      opts.Backlight,
		rect:    image.Rect(0, 0, opts.W, opts.H),
		xOffset: opts.XOffset,
		yOffset: opts.YOffset,
		buffer:  make([]byte, 2*opts.W*opts.H),
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize()
	}

	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func (o *Opts) validate() error {
	maxW, maxH := ramWidth, ramHeight
	if o.Rotation.swapsAxes() {
		maxW, maxH = maxH, maxW
	}
	if _, err := o.Rotation.madctl(); err != nil {
		return err
	}
	if o.W <= 0 || o.XOffset < 0 || o.XOffset+o.W > maxW {
		return fmt.Errorf("st7789: width %d at offset %d does not fit %d columns", o.W, o.XOffset, maxW)
	}
	if o.H <= 0 || o.YOffset < 0 || o.YOffset+o.H > maxH {
		return fmt.Errorf("st7789: height %d at offset %d does not fit %d rows", o.H, o.YOffset, maxH)
	}
	return nil
}

// init sends the initialization sequence to the panel.
func (d *Dev) init(opts *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("st7789: failed to pull RST low: %w", err)
		}
		time.Sleep(50 * time.Millisecond)

		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("st7789: failed to pull RST high: %w", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if err := d.command(cmdSWRESET); err != nil {
		return err
	}
	time.Sleep(150 * time.Millisecond)

	if err := d.command(cmdSLPOUT); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)

	madctl, _ := opts.Rotation.madctl()
	seq := []struct {
		cmd    byte
		params []byte
	}{
		{cmdCOLMOD, []byte{0x55}}, // 16 bits per pixel
		{cmdMADCTL, []byte{madctl}},
		{cmdINVON, nil}, // IPS glass is inverted at rest
		{cmdNORON, nil},
	}
	for _, s := range seq {
		if err := d.command(s.cmd, s.params...); err != nil {
			return err
		}
	}

	if err := d.clearRAM(); err != nil {
		return err
	}
	if err := d.command(cmdDISPON); err != nil {
		return err
	}
	return d.SetBacklight(true)
}

// clearRAM blanks the visible window.
func (d *Dev) clearRAM() error {
	return d.writeRect(0, 0, d.rect.Dx(), d.rect.Dy(), make([]byte, len(d.buffer)))
}

// command sends a command byte followed by its parameters.
func (d *Dev) command(cmd byte, params ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return d.sendData(params)
}

// sendData sends a slice of data bytes, split to the bus transfer limit.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := len(data)
		if d.maxTx > 0 && n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// writeRect writes pixel data to a rectangular region of the panel.
func (d *Dev) writeRect(x, y, width, height int, pixels []byte) error {
	x0 := x + d.xOffset
	x1 := x0 + width - 1
	y0 := y + d.yOffset
	y1 := y0 + height - 1

	if err := d.command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.command(cmdRASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	if err := d.command(cmdRAMWR); err != nil {
		return err
	}
	return d.sendData(pixels)
}

// ColorModel returns the color model of the panel.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds returns the image bounds of the panel.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes raw RGB565 pixel data to the panel.
// The data must be exactly d.rect.Dx() * d.rect.Dy() * 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("st7789: halted")
	}
	if len(pixels) != len(d.buffer) {
		return 0, errors.New("st7789: invalid buffer size")
	}
	if err := d.writeFullFrame(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws an image onto the panel, sending only the rectangle that
// changed since the previous frame.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("st7789: halted")
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	if d.next == nil {
		d.next = image565.New(d.rect)
		copy(d.next.Pix, d.buffer)
	}
	draw.Draw(d.next, dst, src, sp, draw.Src)

	minCol, maxCol, minRow, maxRow := d.calculateDiff()
	if minCol > maxCol {
		return nil
	}

	// A full-width dirty band is already contiguous in the frame buffer.
	var changed []byte
	if minCol == 0 && maxCol == d.rect.Dx()-1 {
		changed = d.next.Pix[minRow*d.next.Stride : (maxRow+1)*d.next.Stride]
	} else {
		changed = d.extractRegion(minCol, maxCol, minRow, maxRow)
	}
	if err := d.writeRect(minCol, minRow, maxCol-minCol+1, maxRow-minRow+1, changed); err != nil {
		return err
	}

	copy(d.buffer, d.next.Pix)
	return nil
}

// calculateDiff compares the last sent frame against the pending one and
// returns the bounding box of changed pixels, or (1, 0, 0, 0) if nothing
// changed.
func (d *Dev) calculateDiff() (minCol, maxCol, minRow, maxRow int) {
	width := d.rect.Dx()
	height := d.rect.Dy()
	stride := width * 2

	minRow = height
	maxRow = -1
	minCol = width
	maxCol = -1

	for y := 0; y < height; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		last, next := d.buffer[rowStart:rowEnd], d.next.Pix[rowStart:rowEnd]

		if bytes.Equal(last, next) {
			continue
		}
		if y < minRow {
			minRow = y
		}
		maxRow = y

		for x := 0; x < width; x++ {
			i := x * 2
			if last[i] != next[i] || last[i+1] != next[i+1] {
				if x < minCol {
					minCol = x
				}
				if x > maxCol {
					maxCol = x
				}
			}
		}
	}

	if maxRow < 0 {
		return 1, 0, 0, 0
	}
	return minCol, maxCol, minRow, maxRow
}

// extractRegion copies the pixel data for a rectangular region of the
// pending frame.
func (d *Dev) extractRegion(minCol, maxCol, minRow, maxRow int) []byte {
	rowBytes := (maxCol - minCol + 1) * 2
	result := make([]byte, 0, rowBytes*(maxRow-minRow+1))

	for y := minRow; y <= maxRow; y++ {
		start := y*d.next.Stride + minCol*2
		result = append(result, d.next.Pix[start:start+rowBytes]...)
	}
	return result
}

// writeFullFrame writes the entire frame to the panel and records it as
// the last sent frame.
func (d *Dev) writeFullFrame(pixels []byte) error {
	if err := d.writeRect(0, 0, d.rect.Dx(), d.rect.Dy(), pixels); err != nil {
		return err
	}
	copy(d.buffer, pixels)
	if d.next != nil {
		copy(d.next.Pix, pixels)
	}
	return nil
}

// SetBacklight switches the backlight pin, if one was configured.
func (d *Dev) SetBacklight(on bool) error {
	if d.bl == nil {
		return nil
	}
	l := gpio.Low
	if on {
		l = gpio.High
	}
	if err := d.bl.Out(l); err != nil {
		return fmt.Errorf("st7789: backlight: %w", err)
	}
	return nil
}

// Invert inverts the panel colors.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	// Inversion is relative to the INVON state set during init.
	if invert {
		return d.command(cmdINVOFF)
	}
	return d.command(cmdINVON)
}

// Halt turns the panel off and puts the controller to sleep.
// After calling Halt, the panel will not respond to further drawing
// until the device is re-initialized.
func (d *Dev) Halt() error {
	d.halted = true
	if err := d.command(cmdDISPOFF); err != nil {
		return err
	}
	if err := d.command(cmdSLPIN); err != nil {
		return err
	}
	return d.SetBacklight(false)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
