// Package input turns the four display buttons into scroll commands.
//
// A and X scroll one line up and down and repeat while held. B and Y jump
// to the top and bottom once per press. All four buttons are sampled on
// every tick, so holding a repeating button never delays the others.
package input

import (
	"context"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Default timings.
const (
	DefaultDebounce = 100 * time.Millisecond
	DefaultRepeat   = 200 * time.Millisecond
)

// Scroller receives the commands produced by the buttons.
type Scroller interface {
	ScrollUp()
	ScrollDown()
	ScrollTop()
	ScrollBottom()
}

// Buttons are the four input pins. On the Pico Display these are GP12 (A),
// GP13 (B), GP14 (X) and GP15 (Y), wired active-low.
type Buttons struct {
	A, B, X, Y gpio.PinIn
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the poll interval used by Run.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debounce = d
	}
}

// WithRepeat sets the interval between repeats of a held scroll button.
func WithRepeat(d time.Duration) Option {
	return func(c *Controller) {
		c.repeat = d
	}
}

// WithActiveHigh treats a high pin level as pressed. Buttons are active-low
// by default.
func WithActiveHigh() Option {
	return func(c *Controller) {
		c.pressed = gpio.High
	}
}

// WithLogger sets the logger used for button transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller polls the buttons and drives a Scroller.
type Controller struct {
	buttons  Buttons
	scroller Scroller
	log      *slog.Logger
	pressed  gpio.Level
	debounce time.Duration
	repeat   time.Duration

	up, down repeater
	edge     edgeState
}

// New creates a Controller. Call Init before the first Tick when the pins
// still need configuring.
func New(b Buttons, s Scroller, opts ...Option) *Controller {
	c := &Controller{
		buttons:  b,
		scroller: s,
		log:      slog.Default(),
		pressed:  gpio.Low,
		debounce: DefaultDebounce,
		repeat:   DefaultRepeat,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init configures the pins as inputs, pulled away from the pressed level.
func (c *Controller) Init() error {
	pull := gpio.PullUp
	if c.pressed == gpio.High {
		pull = gpio.PullDown
	}
	for _, p := range []gpio.PinIn{c.buttons.A, c.buttons.B, c.buttons.X, c.buttons.Y} {
		if err := p.In(pull, gpio.NoEdge); err != nil {
			return err
		}
	}
	return nil
}

// Run polls the buttons every debounce interval until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	c.log.Info("input: polling buttons", "debounce", c.debounce, "repeat", c.repeat)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.Tick(now)
		}
	}
}

// Tick samples every button once and fires whatever actions the samples
// call for.
func (c *Controller) Tick(now time.Time) {
	a := c.isPressed(c.buttons.A)
	b := c.isPressed(c.buttons.B)
	x := c.isPressed(c.buttons.X)
	y := c.isPressed(c.buttons.Y)

	if c.up.step(a, now, c.repeat) {
		c.scroller.ScrollUp()
	}
	if c.down.step(x, now, c.repeat) {
		c.scroller.ScrollDown()
	}
	if c.edge.top.step(b) {
		c.log.Debug("input: jump to top")
		c.scroller.ScrollTop()
	}
	if c.edge.bottom.step(y) {
		c.log.Debug("input: jump to bottom")
		c.scroller.ScrollBottom()
	}
}

func (c *Controller) isPressed(p gpio.PinIn) bool {
	return p.Read() == c.pressed
}

// repeater fires when a button goes down and then once per interval while
// it stays down.
type repeater struct {
	held bool
	last time.Time
}

func (r *repeater) step(pressed bool, now time.Time, interval time.Duration) bool {
	if !pressed {
		r.held = false
		return false
	}
	if !r.held {
		r.held = true
		r.last = now
		return true
	}
	if now.Sub(r.last) < interval {
		return false
	}
	r.last = r.last.Add(interval)
	if now.Sub(r.last) >= interval {
		// Late tick; resynchronise instead of bursting.
		r.last = now
	}
	return true
}

// edgeState holds one latch per jump button.
type edgeState struct {
	top, bottom latch
}

// latch fires once on press and re-arms on release.
type latch bool

func (l *latch) step(pressed bool) bool {
	if !pressed {
		*l = false
		return false
	}
	if *l {
		return false
	}
	*l = true
	return true
}
