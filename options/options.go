// Package options holds the device settings read at startup.
package options

import (
	"errors"
	"fmt"
	"strings"

	"github.com/picoportal/picoportal/st7789"
)

// ErrUnknownVariant is returned for a display variant this build does not
// know how to drive.
var ErrUnknownVariant = errors.New("options: unknown display variant")

// Variant selects the attached display board.
type Variant string

const (
	PicoDisplay  Variant = "DISPLAY_PICO_DISPLAY"
	PicoDisplay2 Variant = "DISPLAY_PICO_DISPLAY_2"
)

// Variants lists the supported display boards.
var Variants = []Variant{PicoDisplay, PicoDisplay2}

// ParseVariant accepts a variant name case-insensitively, with or without
// the DISPLAY_ prefix.
func ParseVariant(s string) (Variant, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "DISPLAY_") {
		name = "DISPLAY_" + name
	}
	v := Variant(name)
	if err := v.Validate(); err != nil {
		return "", fmt.Errorf("%w %q", ErrUnknownVariant, s)
	}
	return v, nil
}

// Validate reports whether v is a supported board.
func (v Variant) Validate() error {
	for _, known := range Variants {
		if v == known {
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownVariant, string(v))
}

// Panel returns the driver configuration for the board.
func (v Variant) Panel() (st7789.Opts, error) {
	switch v {
	case PicoDisplay:
		// 1.14" 240x135 glass, landscape.
		return st7789.Opts{W: 240, H: 135, XOffset: 40, YOffset: 53, Rotation: st7789.Rotation90}, nil
	case PicoDisplay2:
		// 2.0" 320x240 glass, turned to portrait.
		return st7789.Opts{W: 240, H: 320, Rotation: st7789.Rotation0}, nil
	}
	return st7789.Opts{}, v.Validate()
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// Options are the settings the console is built from.
type Options struct {
	Display          Variant
	EnableTimestamps bool
}

// Default returns the factory settings.
func Default() Options {
	return Options{Display: PicoDisplay}
}

// Validate checks every setting.
func (o Options) Validate() error {
	return o.Display.Validate()
}
