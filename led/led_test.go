package led

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

// pwmPin records the last PWM call and every Out level.
type pwmPin struct {
	*gpiotest.Pin
	mu     sync.Mutex
	duty   gpio.Duty
	freq   physic.Frequency
	levels []gpio.Level
	err    error
}

func newPin(name string) *pwmPin {
	return &pwmPin{Pin: &gpiotest.Pin{N: name}}
}

func (p *pwmPin) PWM(d gpio.Duty, f physic.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.duty, p.freq = d, f
	return nil
}

func (p *pwmPin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.levels = append(p.levels, l)
	return nil
}

func (p *pwmPin) outs() []gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gpio.Level(nil), p.levels...)
}

func TestFlasherToggles(t *testing.T) {
	pin := newPin("LED")
	f := &Flasher{Pin: pin, Interval: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return len(pin.outs()) >= 4 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	levels := pin.outs()
	assert.Equal(t, gpio.High, levels[0])
	assert.Equal(t, gpio.Low, levels[1])
	assert.Equal(t, gpio.High, levels[2])
	assert.Equal(t, gpio.Low, levels[len(levels)-1])
}

func TestFlasherPinError(t *testing.T) {
	pin := newPin("LED")
	pin.err = errors.New("busy")
	f := &Flasher{Pin: pin}
	assert.ErrorIs(t, f.Run(context.Background()), pin.err)
}

func TestRGBSetColor(t *testing.T) {
	r, g, b := newPin("GPIO6"), newPin("GPIO7"), newPin("GPIO8")
	l := NewRGB(r, g, b)

	require.NoError(t, l.SetColor("YELLOW"))
	assert.Equal(t, Color{255, 255, 0}, l.Color())
	// Active-low: full color is zero duty.
	assert.Equal(t, gpio.Duty(0), r.duty)
	assert.Equal(t, gpio.Duty(0), g.duty)
	assert.Equal(t, gpio.DutyMax, b.duty)
	assert.Equal(t, DefaultFrequency, r.freq)

	require.NoError(t, l.SetColor("off"))
	assert.Equal(t, gpio.DutyMax, r.duty)
}

func TestRGBUnknownColor(t *testing.T) {
	l := NewRGB(newPin("R"), newPin("G"), newPin("B"))
	require.NoError(t, l.SetColor("GREEN"))

	err := l.SetColor("ORANGE")
	assert.ErrorIs(t, err, ErrUnknownColor)
	assert.Contains(t, err.Error(), "BLUE, CYAN, GREEN")
	assert.Equal(t, Color{0, 255, 0}, l.Color())
}

func TestRGBBrightness(t *testing.T) {
	r, g, b := newPin("R"), newPin("G"), newPin("B")
	l := &RGB{R: r, G: g, B: b, brightness: 1}

	require.NoError(t, l.Set(Color{255, 0, 0}))
	assert.Equal(t, gpio.DutyMax, r.duty)

	require.NoError(t, l.SetBrightness(0.5))
	// int(255 * 0.5) = 127
	assert.Equal(t, gpio.Duty(127*int64(gpio.DutyMax)/255), r.duty)
	assert.Equal(t, gpio.Duty(0), g.duty)

	assert.ErrorIs(t, l.SetBrightness(1.5), ErrBrightness)
	assert.ErrorIs(t, l.SetBrightness(-0.1), ErrBrightness)
	assert.Equal(t, 0.5, l.Brightness())
}

func TestRGBPinError(t *testing.T) {
	r := newPin("R")
	r.err = errors.New("no pwm")
	l := NewRGB(r, newPin("G"), newPin("B"))
	assert.ErrorIs(t, l.SetColor("RED"), r.err)
}

func TestColorNames(t *testing.T) {
	assert.Equal(t, []string{"BLUE", "CYAN", "GREEN", "MAGENTA", "OFF", "RED", "WHITE", "YELLOW"}, ColorNames())
}
