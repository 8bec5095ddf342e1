package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/picoportal/picoportal/input"
	"github.com/picoportal/picoportal/led"
)

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("GPIO pin %q not found", name)
	}
	return p, nil
}

// optionalPin returns nil for an empty name.
func optionalPin(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	return pinByName(name)
}

func buttonPins(names [4]string) (input.Buttons, error) {
	var pins [4]gpio.PinIO
	for i, n := range names {
		p, err := pinByName(n)
		if err != nil {
			return input.Buttons{}, err
		}
		pins[i] = p
	}
	return input.Buttons{A: pins[0], B: pins[1], X: pins[2], Y: pins[3]}, nil
}

// rgbLED returns nil when the red pin is not configured.
func rgbLED(names [3]string) (*led.RGB, error) {
	if names[0] == "" {
		return nil, nil
	}
	var pins [3]gpio.PinIO
	for i, n := range names {
		p, err := pinByName(n)
		if err != nil {
			return nil, err
		}
		pins[i] = p
	}
	return led.NewRGB(pins[0], pins[1], pins[2]), nil
}
