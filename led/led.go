// Package led drives the status LEDs: the Pico's onboard LED, flashed as a
// heartbeat, and the RGB LED on the display board.
package led

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DefaultInterval is the heartbeat toggle period.
const DefaultInterval = 3 * time.Second

// DefaultFrequency is the PWM frequency used for the RGB LED.
const DefaultFrequency = physic.KiloHertz

var (
	// ErrUnknownColor is returned by SetColor for a name not in Colors.
	ErrUnknownColor = errors.New("led: unknown color")
	// ErrBrightness is returned for a brightness outside [0, 1].
	ErrBrightness = errors.New("led: brightness must be between 0 and 1")
)

// Flasher toggles a pin forever. It is a sign of life when no display is
// attached.
type Flasher struct {
	Pin      gpio.PinOut
	Interval time.Duration
	Logger   *slog.Logger
}

// Run toggles the pin immediately and then every Interval until ctx is done.
// The pin is left low on return.
func (f *Flasher) Run(ctx context.Context) error {
	interval := f.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := f.Logger
	if log == nil {
		log = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	level := gpio.Low
	for {
		level = !level
		if err := f.Pin.Out(level); err != nil {
			return fmt.Errorf("led: %s: %w", f.Pin, err)
		}
		log.Debug("led: heartbeat", "pin", f.Pin.String(), "level", level)

		select {
		case <-ctx.Done():
			if err := f.Pin.Out(gpio.Low); err != nil {
				log.Warn("led: failed to switch off", "err", err)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Colors are the named colors accepted by SetColor.
var Colors = map[string]Color{
	"RED":     {255, 0, 0},
	"GREEN":   {0, 255, 0},
	"BLUE":    {0, 0, 255},
	"YELLOW":  {255, 255, 0},
	"CYAN":    {0, 255, 255},
	"MAGENTA": {255, 0, 255},
	"WHITE":   {255, 255, 255},
	"OFF":     {0, 0, 0},
}

// ColorNames returns the keys of Colors in sorted order.
func ColorNames() []string {
	names := make([]string, 0, len(Colors))
	for n := range Colors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RGB is a three-channel LED driven by PWM, one pin per channel. The Pico
// Display wires it to GP6, GP7 and GP8 with common anode, so ActiveLow is
// set by NewRGB.
type RGB struct {
	R, G, B   gpio.PinOut
	ActiveLow bool
	Frequency physic.Frequency

	brightness float64
	color      Color
}

// NewRGB returns an active-low RGB LED at full brightness, switched off.
func NewRGB(r, g, b gpio.PinOut) *RGB {
	return &RGB{R: r, G: g, B: b, ActiveLow: true, Frequency: DefaultFrequency, brightness: 1}
}

// SetColor switches to one of the named Colors.
func (l *RGB) SetColor(name string) error {
	c, ok := Colors[strings.ToUpper(name)]
	if !ok {
		return fmt.Errorf("%w %q, available colors are %s", ErrUnknownColor, name, strings.Join(ColorNames(), ", "))
	}
	return l.Set(c)
}

// SetBrightness scales the current color by b.
func (l *RGB) SetBrightness(b float64) error {
	if b < 0 || b > 1 {
		return fmt.Errorf("%w, got %v", ErrBrightness, b)
	}
	l.brightness = b
	return l.apply()
}

// Brightness returns the current scale factor.
func (l *RGB) Brightness() float64 {
	return l.brightness
}

// Color returns the current color, before brightness scaling.
func (l *RGB) Color() Color {
	return l.color
}

// Set switches to c at the current brightness.
func (l *RGB) Set(c Color) error {
	l.color = c
	return l.apply()
}

func (l *RGB) apply() error {
	f := l.Frequency
	if f == 0 {
		f = DefaultFrequency
	}
	channels := []struct {
		pin gpio.PinOut
		v   uint8
	}{{l.R, l.color.R}, {l.G, l.color.G}, {l.B, l.color.B}}
	for _, ch := range channels {
		if err := ch.pin.PWM(l.duty(ch.v), f); err != nil {
			return fmt.Errorf("led: %s: %w", ch.pin, err)
		}
	}
	return nil
}

// duty converts a channel value to the PWM duty the pin needs.
func (l *RGB) duty(v uint8) gpio.Duty {
	scaled := int64(float64(v) * l.brightness)
	d := gpio.Duty(scaled * int64(gpio.DutyMax) / 255)
	if l.ActiveLow {
		d = gpio.DutyMax - d
	}
	return d
}
