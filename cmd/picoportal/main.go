// Command picoportal runs the Pico Portal message console on an ST7789
// display board.
//
// Hardware Setup:
//
// Pimoroni Pico Display (or Display 2.0) pins, by Pico GPIO:
//
//	Function   GPIO
//	Button A   12
//	Button B   13
//	Button X   14
//	Button Y   15
//	LCD DC     16
//	LCD CS     17 (SPI0 CE)
//	LCD SCLK   18 (SPI0 SCK)
//	LCD MOSI   19 (SPI0 TX)
//	Backlight  20
//	RGB LED    6, 7, 8
//
// Button A and X scroll one line up and down while held; B and Y jump to the
// oldest and newest message.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/picoportal/picoportal/console"
	"github.com/picoportal/picoportal/input"
	"github.com/picoportal/picoportal/led"
	"github.com/picoportal/picoportal/options"
	"github.com/picoportal/picoportal/st7789"
	"github.com/picoportal/picoportal/surface"
)

const version = "1.0.0"

type config struct {
	Display    string
	Timestamps bool
	Verbose    bool

	SPI     string
	SPIMHz  int
	DC      string
	RST     string
	Light   string
	Buttons [4]string // A, B, X, Y
	LED     string
	RGB     [3]string
	Bright  float64

	LogFile  string
	Throttle time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config

	cmd := &cobra.Command{
		Use:     "picoportal",
		Short:   "Scrollable message console for Pico Display boards",
		Version: version,
		Example: `  # Pico Display with timestamps
  picoportal --timestamps

  # Pico Display 2.0 on the second SPI bus
  picoportal --display DISPLAY_PICO_DISPLAY_2 --spi SPI1.0`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Display, "display", string(options.PicoDisplay), "Display board: DISPLAY_PICO_DISPLAY or DISPLAY_PICO_DISPLAY_2")
	f.BoolVar(&cfg.Timestamps, "timestamps", false, "Prefix every message with the current date and time")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging")

	f.StringVar(&cfg.SPI, "spi", "", "SPI port name (empty for default)")
	f.IntVar(&cfg.SPIMHz, "spi-mhz", 32, "SPI clock in MHz")
	f.StringVar(&cfg.DC, "dc", "GPIO16", "Data/Command pin name")
	f.StringVar(&cfg.RST, "rst", "", "Reset pin name (empty if not wired)")
	f.StringVar(&cfg.Light, "backlight", "GPIO20", "Backlight pin name (empty if not wired)")
	f.StringVar(&cfg.Buttons[0], "button-a", "GPIO12", "Button A pin name (scroll up)")
	f.StringVar(&cfg.Buttons[1], "button-b", "GPIO13", "Button B pin name (jump to top)")
	f.StringVar(&cfg.Buttons[2], "button-x", "GPIO14", "Button X pin name (scroll down)")
	f.StringVar(&cfg.Buttons[3], "button-y", "GPIO15", "Button Y pin name (jump to bottom)")
	f.StringVar(&cfg.LED, "led", "", "Heartbeat LED pin name (empty to disable)")
	f.StringVar(&cfg.RGB[0], "rgb-r", "GPIO6", "RGB LED red pin name (empty to disable the RGB LED)")
	f.StringVar(&cfg.RGB[1], "rgb-g", "GPIO7", "RGB LED green pin name")
	f.StringVar(&cfg.RGB[2], "rgb-b", "GPIO8", "RGB LED blue pin name")
	f.Float64Var(&cfg.Bright, "led-brightness", 1, "RGB LED brightness between 0 and 1")

	f.StringVar(&cfg.LogFile, "log-file", console.DefaultLogFile, "File every logged message is appended to")
	f.DurationVar(&cfg.Throttle, "throttle", console.DefaultThrottle, "Pause after each message")

	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

func run(ctx context.Context, cfg config) error {
	logger := newLogger(cfg.Verbose)
	slog.SetDefault(logger)

	variant, err := options.ParseVariant(cfg.Display)
	if err != nil {
		return err
	}
	opts := options.Options{Display: variant, EnableTimestamps: cfg.Timestamps}
	panel, err := variant.Panel()
	if err != nil {
		return err
	}
	if cfg.Bright < 0 || cfg.Bright > 1 {
		return led.ErrBrightness
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph.io: %w", err)
	}

	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return fmt.Errorf("failed to open SPI port: %w", err)
	}
	defer port.Close()

	dc, err := pinByName(cfg.DC)
	if err != nil {
		return err
	}
	if panel.RST, err = optionalPin(cfg.RST); err != nil {
		return err
	}
	bl, err := optionalPin(cfg.Light)
	if err != nil {
		return err
	}
	if bl != nil {
		panel.Backlight = bl
	}
	panel.Frequency = physic.Frequency(cfg.SPIMHz) * physic.MegaHertz

	dev, err := st7789.NewSPI(port, dc, &panel)
	if err != nil {
		return fmt.Errorf("failed to create display: %w", err)
	}
	defer func() {
		if err := dev.Halt(); err != nil {
			logger.Warn("failed to halt display", "err", err)
		}
	}()
	logger.Info("display initialized", "dev", dev.String(), "variant", variant)

	con, err := console.New(surface.New(dev), opts,
		console.WithWriter(os.Stdout),
		console.WithSink(console.FileSink{Path: cfg.LogFile}),
		console.WithThrottle(cfg.Throttle),
		console.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	buttons, err := buttonPins(cfg.Buttons)
	if err != nil {
		return err
	}
	ctrl := input.New(buttons, con, input.WithLogger(logger))
	if err := ctrl.Init(); err != nil {
		return fmt.Errorf("failed to configure buttons: %w", err)
	}

	if err := con.Display(ctx, "Starting Pico Portal v"+version); err != nil {
		return ignoreCanceled(err)
	}

	rgb, err := rgbLED(cfg.RGB)
	if err != nil {
		return err
	}
	if rgb != nil {
		if err := rgb.SetBrightness(cfg.Bright); err != nil {
			return err
		}
		if err := rgb.SetColor("OFF"); err != nil {
			logger.Warn("failed to switch off RGB LED", "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.LED != "" {
		pin, err := pinByName(cfg.LED)
		if err != nil {
			return err
		}
		flasher := &led.Flasher{Pin: pin, Interval: led.DefaultInterval, Logger: logger}
		g.Go(func() error { return flasher.Run(gctx) })
	}
	g.Go(func() error { return ctrl.Run(gctx) })

	return ignoreCanceled(g.Wait())
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
