package st7789

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/picoportal/picoportal/image565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var _ display.Drawer = &Dev{}

// txOp is one recorded SPI transaction and the level of DC during it.
type txOp struct {
	data bool
	b    []byte
}

type recordPort struct {
	dc   *gpiotest.Pin
	freq physic.Frequency
	ops  []txOp
}

func (p *recordPort) String() string { return "record" }

func (p *recordPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.freq = f
	return &recordConn{p: p}, nil
}

type recordConn struct {
	p *recordPort
}

func (c *recordConn) String() string { return "record" }

func (c *recordConn) Tx(w, r []byte) error {
	c.p.ops = append(c.p.ops, txOp{
		data: c.p.dc.Read() == gpio.High,
		b:    append([]byte(nil), w...),
	})
	return nil
}

func (c *recordConn) Duplex() conn.Duplex { return conn.Half }

func (c *recordConn) TxPackets(p []spi.Packet) error { return nil }

func newTestDev(w, h int) (*Dev, *recordPort) {
	dc := &gpiotest.Pin{N: "DC"}
	p := &recordPort{dc: dc}
	c, _ := p.Connect(0, spi.Mode0, 8)
	return &Dev{
		c:      c,
		dc:     dc,
		rect:   image.Rect(0, 0, w, h),
		buffer: make([]byte, 2*w*h),
	}, p
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Opts
		wantErr bool
	}{
		{"pico display landscape", Opts{W: 240, H: 135, XOffset: 40, YOffset: 53, Rotation: Rotation90}, false},
		{"pico display 2 portrait", Opts{W: 240, H: 320, Rotation: Rotation0}, false},
		{"pico display 2 landscape", Opts{W: 320, H: 240, Rotation: Rotation270}, false},
		{"width zero", Opts{W: 0, H: 135}, true},
		{"height zero", Opts{W: 240, H: 0}, true},
		{"too wide for portrait", Opts{W: 320, H: 240, Rotation: Rotation0}, true},
		{"offset overflows", Opts{W: 240, H: 135, XOffset: 100, Rotation: Rotation90}, true},
		{"negative offset", Opts{W: 240, H: 135, YOffset: -1}, true},
		{"invalid rotation", Opts{W: 240, H: 135, Rotation: Rotation(7)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRotationMADCTL(t *testing.T) {
	tests := []struct {
		rot  Rotation
		want byte
	}{
		{Rotation0, 0x00},
		{Rotation90, 0x60},
		{Rotation180, 0xC0},
		{Rotation270, 0xA0},
	}

	for _, tt := range tests {
		got, err := tt.rot.madctl()
		if err != nil {
			t.Fatalf("madctl(%d) error: %v", tt.rot, err)
		}
		if got != tt.want {
			t.Errorf("madctl(%d) = 0x%02X, want 0x%02X", tt.rot, got, tt.want)
		}
	}
}

func TestNewSPIInitSequence(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	bl := &gpiotest.Pin{N: "BL"}
	p := &recordPort{dc: dc}

	dev, err := NewSPI(p, dc, &Opts{W: 240, H: 135, XOffset: 40, YOffset: 53, Rotation: Rotation90, Backlight: bl})
	if err != nil {
		t.Fatalf("NewSPI() error: %v", err)
	}
	if p.freq != 32*physic.MegaHertz {
		t.Errorf("SPI frequency = %s, want 32MHz", p.freq)
	}
	if len(p.ops) == 0 {
		t.Fatal("no SPI traffic recorded")
	}

	first := p.ops[0]
	if first.data || !bytes.Equal(first.b, []byte{cmdSWRESET}) {
		t.Errorf("first transaction = %+v, want SWRESET command", first)
	}

	var cmds []byte
	for _, op := range p.ops {
		if !op.data {
			cmds = append(cmds, op.b...)
		}
	}
	want := []byte{cmdSWRESET, cmdSLPOUT, cmdCOLMOD, cmdMADCTL, cmdINVON, cmdNORON, cmdCASET, cmdRASET, cmdRAMWR, cmdDISPON}
	if !bytes.Equal(cmds, want) {
		t.Errorf("command sequence = % X, want % X", cmds, want)
	}

	if bl.Read() != gpio.High {
		t.Error("backlight should be on after init")
	}
	if got := dev.String(); got != "st7789.Dev{240x135}" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewSPIRequiresDC(t *testing.T) {
	p := &recordPort{dc: &gpiotest.Pin{}}
	if _, err := NewSPI(p, nil, nil); err == nil {
		t.Error("NewSPI without dc pin should fail")
	}
}

func TestDevBounds(t *testing.T) {
	dev := &Dev{rect: image.Rect(0, 0, 240, 135)}
	want := image.Rect(0, 0, 240, 135)
	if got := dev.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestDevColorModel(t *testing.T) {
	dev := &Dev{}
	if dev.ColorModel() != image565.Model {
		t.Error("ColorModel() did not return image565.Model")
	}
}

func TestDevHalted(t *testing.T) {
	dev, _ := newTestDev(4, 2)
	if err := dev.Halt(); err != nil {
		t.Fatalf("Halt() error: %v", err)
	}

	if _, err := dev.Write(make([]byte, 16)); err == nil {
		t.Error("Write should fail when halted")
	}
	if err := dev.Draw(dev.Bounds(), image.NewRGBA(dev.Bounds()), image.Point{}); err == nil {
		t.Error("Draw should fail when halted")
	}
	if err := dev.Invert(true); err == nil {
		t.Error("Invert should fail when halted")
	}
}

func TestWriteInvalidBufferSize(t *testing.T) {
	tests := []struct {
		name       string
		bufferSize int
	}{
		{"too small", 4*2*2 - 1},
		{"too large", 4*2*2 + 1},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := newTestDev(4, 2)
			_, err := dev.Write(make([]byte, tt.bufferSize))
			if err == nil {
				t.Fatal("Write should fail with invalid buffer size")
			}
			if err.Error() != "st7789: invalid buffer size" {
				t.Errorf("Write error = %v, want 'st7789: invalid buffer size'", err)
			}
		})
	}
}

func TestDrawSendsOnlyChangedRegion(t *testing.T) {
	dev, p := newTestDev(8, 4)
	dev.xOffset, dev.yOffset = 40, 53

	img := image565.New(dev.Bounds())
	img.SetRGB565(5, 3, 0xF800)

	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}

	want := []txOp{
		{false, []byte{cmdCASET}},
		{true, []byte{0x00, 45, 0x00, 45}},
		{false, []byte{cmdRASET}},
		{true, []byte{0x00, 56, 0x00, 56}},
		{false, []byte{cmdRAMWR}},
		{true, []byte{0xF8, 0x00}},
	}
	if len(p.ops) != len(want) {
		t.Fatalf("recorded %d transactions, want %d", len(p.ops), len(want))
	}
	for i, op := range p.ops {
		if op.data != want[i].data || !bytes.Equal(op.b, want[i].b) {
			t.Errorf("op[%d] = {%v % X}, want {%v % X}", i, op.data, op.b, want[i].data, want[i].b)
		}
	}

	// Same frame again: nothing to send.
	p.ops = nil
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if len(p.ops) != 0 {
		t.Errorf("unchanged frame sent %d transactions, want 0", len(p.ops))
	}
}

func TestDrawFullWidthBand(t *testing.T) {
	dev, p := newTestDev(4, 3)
	img := image.NewUniform(color.White)

	if err := dev.Draw(image.Rect(0, 1, 4, 2), img, image.Point{}); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	last := p.ops[len(p.ops)-1]
	if !last.data || len(last.b) != 4*2 {
		t.Errorf("pixel payload = %d bytes, want 8", len(last.b))
	}
	for _, b := range last.b {
		if b != 0xFF {
			t.Fatalf("pixel payload = % X, want all 0xFF", last.b)
		}
	}
}

func TestCalculateDiffNoChanges(t *testing.T) {
	dev, _ := newTestDev(4, 2)
	dev.next = image565.New(dev.rect)

	minCol, maxCol, _, _ := dev.calculateDiff()
	if minCol <= maxCol {
		t.Errorf("No changes should result in minCol > maxCol, got %d <= %d", minCol, maxCol)
	}
}

func TestCalculateDiffWithChanges(t *testing.T) {
	dev, _ := newTestDev(4, 3)
	dev.next = image565.New(dev.rect)
	dev.next.SetRGB565(1, 1, 0x1234)
	dev.next.SetRGB565(2, 2, 0x0001)

	minCol, maxCol, minRow, maxRow := dev.calculateDiff()
	if minCol != 1 || maxCol != 2 || minRow != 1 || maxRow != 2 {
		t.Errorf("calculateDiff() = (%d, %d, %d, %d), want (1, 2, 1, 2)", minCol, maxCol, minRow, maxRow)
	}
}

func TestExtractRegion(t *testing.T) {
	dev, _ := newTestDev(4, 2)
	dev.next = image565.New(dev.rect)
	dev.next.SetRGB565(1, 0, 0x1111)
	dev.next.SetRGB565(2, 0, 0x2222)
	dev.next.SetRGB565(1, 1, 0x3333)
	dev.next.SetRGB565(2, 1, 0x4444)

	got := dev.extractRegion(1, 2, 0, 1)
	want := []byte{0x11, 0x11, 0x22, 0x22, 0x33, 0x33, 0x44, 0x44}
	if !bytes.Equal(got, want) {
		t.Errorf("extractRegion() = % X, want % X", got, want)
	}
}

func TestSendDataChunking(t *testing.T) {
	dev, p := newTestDev(4, 2)
	dev.maxTx = 4

	if err := dev.sendData(make([]byte, 10)); err != nil {
		t.Fatalf("sendData() error: %v", err)
	}
	if len(p.ops) != 3 {
		t.Fatalf("sendData split into %d transfers, want 3", len(p.ops))
	}
	sizes := []int{len(p.ops[0].b), len(p.ops[1].b), len(p.ops[2].b)}
	if sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
		t.Errorf("transfer sizes = %v, want [4 4 2]", sizes)
	}
}

func TestWriteRecordsFrame(t *testing.T) {
	dev, p := newTestDev(2, 1)
	frame := []byte{0xAA, 0xBB, 0xCC, 0xDD}

	n, err := dev.Write(frame)
	if err != nil || n != 4 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if !bytes.Equal(dev.buffer, frame) {
		t.Errorf("buffer = % X, want % X", dev.buffer, frame)
	}

	// Drawing the same pixels afterwards is a no-op.
	p.ops = nil
	img := image565.New(dev.rect)
	copy(img.Pix, frame)
	if err := dev.Draw(dev.rect, img, image.Point{}); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if len(p.ops) != 0 {
		t.Errorf("redraw of written frame sent %d transactions, want 0", len(p.ops))
	}
}
