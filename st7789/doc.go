// Package st7789 controls an ST7789 TFT panel via SPI.
//
// The ST7789 drives 240x320 RGB glass in 16-bit RGB565 mode. This driver
// implements the display.Drawer interface from periph.io, so it can be used
// with any periph.io tool or library expecting a display.Drawer.
//
// # Display Characteristics
//
// - 16-bit RGB565 color (65536 colors)
// - 240x320 controller RAM, visible window selected by offset
// - Rotation in 90 degree steps through MADCTL
// - Display inversion (IPS glass ships inverted, so INVON is the rest state)
//
// # Hardware Connection
//
// The Pimoroni Pico Display family wires the panel as follows:
//
//	Panel Pin → Pico Pin
//	CS        → GP17 (SPI0 CSn)
//	SCLK      → GP18 (SPI0 SCK)
//	MOSI      → GP19 (SPI0 TX)
//	DC        → GP16
//	BL        → GP20 (backlight)
//
// # Basic Usage
//
//	spiBus, _ := spireg.Open("")
//	dc := gpioreg.ByName("GPIO16")
//
//	dev, _ := st7789.NewSPI(spiBus, dc, &st7789.Opts{
//		W:        240,
//		H:        135,
//		XOffset:  40,
//		YOffset:  53,
//		Rotation: st7789.Rotation90,
//	})
//	defer dev.Halt()
//
//	img := image565.New(dev.Bounds())
//	img.Fill(image565.FromRGB(255, 255, 255))
//	dev.Draw(dev.Bounds(), img, image.Point{})
//
// # Drawing Modes
//
// Write sends a raw RGB565 frame directly. Draw keeps a copy of the last
// frame and transfers only the bounding box of pixels that changed, which
// keeps small updates (a scrollbar moving, one new log line) cheap.
package st7789
