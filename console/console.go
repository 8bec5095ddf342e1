// Package console is the on-screen message log: it owns the entries and the
// scroll position, redraws the display after every change and mirrors logged
// messages to a text stream and a durable sink.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/picoportal/picoportal/gfx"
	"github.com/picoportal/picoportal/msglog"
	"github.com/picoportal/picoportal/options"
	"github.com/picoportal/picoportal/render"
	"github.com/picoportal/picoportal/scroll"
)

// Font is the surface font the console lays text out in.
const Font = "bitmap8"

// DefaultThrottle is the pause after each Display call.
const DefaultThrottle = time.Second

// Clock returns the current time.
type Clock func() time.Time

// Sink durably stores logged messages, one line each.
type Sink interface {
	WriteLine(line string) error
}

// Pens are the colors callers may pass to WithPen.
type Pens struct {
	Gray, Green, Red gfx.Pen
}

// Option configures a Console.
type Option func(*Console)

// WithClock sets the time source for timestamps.
func WithClock(c Clock) Option {
	return func(con *Console) {
		con.clock = c
	}
}

// WithSink sets where logged messages are persisted.
func WithSink(s Sink) Option {
	return func(con *Console) {
		con.sink = s
	}
}

// WithWriter sets the text stream logged messages are echoed to.
func WithWriter(w io.Writer) Option {
	return func(con *Console) {
		con.out = w
	}
}

// WithThrottle sets the pause after each Display call. Zero disables it.
func WithThrottle(d time.Duration) Option {
	return func(con *Console) {
		con.throttle = d
	}
}

// WithLogger sets the logger for sink and render failures.
func WithLogger(l *slog.Logger) Option {
	return func(con *Console) {
		con.logger = l
	}
}

// Console is safe for concurrent use. Display and the scroll operations are
// serialised by one mutex that also covers rendering.
type Console struct {
	mu       sync.Mutex
	log      msglog.Log
	scroll   scroll.State
	renderer *render.Renderer

	pens       Pens
	timestamps bool
	clock      Clock
	sink       Sink
	out        io.Writer
	throttle   time.Duration
	logger     *slog.Logger
}

// New sets up s for the console and returns a Console drawing onto it.
func New(s gfx.Surface, cfg options.Options, opts ...Option) (*Console, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	w, h := s.Bounds()
	m, err := render.NewMetrics(w, h)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	if err := s.SetFont(Font); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	white := s.CreatePen(255, 255, 255)
	black := s.CreatePen(0, 0, 0)
	c := &Console{
		pens: Pens{
			Gray:  s.CreatePen(150, 150, 150),
			Green: s.CreatePen(0, 200, 0),
			Red:   s.CreatePen(255, 0, 0),
		},
		renderer:   render.New(s, m, render.Palette{Background: white, Neutral: black, Scrollbar: black}),
		timestamps: cfg.EnableTimestamps,
		clock:      time.Now,
		throttle:   DefaultThrottle,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Pens returns the message colors.
func (c *Console) Pens() Pens {
	return c.pens
}

// DisplayOption configures one Display call.
type DisplayOption func(*displayOpts)

type displayOpts struct {
	pen    gfx.Pen
	hasPen bool
	log    bool
}

// WithPen draws the message in p instead of gray.
func WithPen(p gfx.Pen) DisplayOption {
	return func(o *displayOpts) {
		o.pen = p
		o.hasPen = true
	}
}

// WithoutLog shows the message on screen only.
func WithoutLog() DisplayOption {
	return func(o *displayOpts) {
		o.log = false
	}
}

// Display appends text to the log, scrolls so it is visible and redraws.
// Unless WithoutLog is given the message is also echoed and persisted.
// It then pauses for the throttle interval or until ctx is done, returning
// ctx.Err() in the latter case.
func (c *Console) Display(ctx context.Context, text string, opts ...DisplayOption) error {
	o := displayOpts{log: true}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasPen {
		o.pen = c.pens.Gray
	}

	c.mu.Lock()
	var ts string
	if c.timestamps {
		ts = c.clock().Format(msglog.TimeLayout)
	}
	c.log.Append(text, o.pen, ts)
	c.scroll.FollowLatest(c.totalLocked(), c.renderer.Metrics.Capacity())
	err := c.renderLocked()
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}

	if o.log {
		line := text
		if ts != "" {
			line = "[" + ts + "] " + text
		}
		c.record(line)
	}
	return c.wait(ctx)
}

func (c *Console) record(line string) {
	if c.out != nil {
		if _, err := fmt.Fprintln(c.out, line); err != nil {
			c.logger.Warn("console: echo failed", "err", err)
		}
	}
	if c.sink != nil {
		if err := c.sink.WriteLine(line); err != nil {
			c.logger.Warn("console: failed to log message", "err", err)
		}
	}
}

func (c *Console) wait(ctx context.Context) error {
	if c.throttle <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.throttle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ScrollUp moves the view one line towards older messages.
func (c *Console) ScrollUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scroll.Up() {
		c.redrawLocked()
	}
}

// ScrollDown moves the view one line towards newer messages.
func (c *Console) ScrollDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scroll.Down(c.totalLocked(), c.renderer.Metrics.Capacity()) {
		c.redrawLocked()
	}
}

// ScrollTop shows the oldest message. It always redraws.
func (c *Console) ScrollTop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scroll.Top()
	c.redrawLocked()
}

// ScrollBottom shows the newest message.
func (c *Console) ScrollBottom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scroll.Bottom(c.totalLocked(), c.renderer.Metrics.Capacity()) {
		c.redrawLocked()
	}
}

// Position returns the index of the first visible wrapped line.
func (c *Console) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scroll.Position()
}

// Len returns the number of messages shown so far.
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Len()
}

// TotalLines returns the wrapped line count of the whole log.
func (c *Console) TotalLines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Console) totalLocked() int {
	return c.log.TotalLines(c.renderer.Engine)
}

func (c *Console) renderLocked() error {
	return c.renderer.Render(&c.log, c.scroll.Position())
}

// redrawLocked renders for scroll commands, which have no caller to report
// to.
func (c *Console) redrawLocked() {
	if err := c.renderLocked(); err != nil {
		c.logger.Error("console: redraw failed", "err", err)
	}
}
