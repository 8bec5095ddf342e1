// Package image565 provides a 16-bit RGB565 image format for ST7789 panels.
//
// The ST7789 controller in 16-bit interface mode (COLMOD 0x55) expects every
// pixel as two bytes, most significant byte first:
//
//	Bits:   15 ... 11 | 10 ... 5 | 4 ... 0
//	        red (5)   | green (6)| blue (5)
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0       1
//	Colors: red     blue
//	Bytes:  0xF8 0x00 0x00 0x1F
//
// This package provides:
//
// - RGB565: A color type holding one packed pixel
// - Model: A color model for converting standard Go colors to RGB565
// - Image: An image.Image / draw.Image whose Pix slice can be sent to the
// panel as-is
//
// Example usage:
//
//	// Create a 240x135 image
//	img := image565.New(image.Rect(0, 0, 240, 135))
//
//	// Fill it white and set one pixel red
//	img.Fill(image565.FromRGB(255, 255, 255))
//	img.SetRGB565(10, 20, image565.FromRGB(255, 0, 0))
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
package image565
