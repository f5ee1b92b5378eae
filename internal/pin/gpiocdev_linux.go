//go:build linux

package pin

import (
	"context"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOCdev is the real-hardware Pin implementation, backed by a Linux
// gpiochip character device line via go-gpiocdev. It is the "hands out
// one output pin and one EXTI input pin" half of spec.md §3's Hardware
// lifecycle; board bring-up and clock configuration stay out of scope.
type GPIOCdev struct {
	line   *gpiocdev.Line
	events chan gpiocdev.LineEvent
}

// NewGPIOOutput requests offset on chip as an output line, initially low.
func NewGPIOOutput(chip string, offset int) (*GPIOCdev, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("pin: request output line %s:%d: %w", chip, offset, err)
	}
	return &GPIOCdev{line: line}, nil
}

// NewGPIOInput requests offset on chip as an edge-triggered input line.
func NewGPIOInput(chip string, offset int) (*GPIOCdev, error) {
	g := &GPIOCdev{events: make(chan gpiocdev.LineEvent, 16)}
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			select {
			case g.events <- evt:
			default:
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pin: request input line %s:%d: %w", chip, offset, err)
	}
	g.line = line
	return g, nil
}

func (g *GPIOCdev) Close() error { return g.line.Close() }

func (g *GPIOCdev) IsHigh() bool {
	v, err := g.line.Value()
	if err != nil {
		return false
	}
	return v != 0
}

func (g *GPIOCdev) SetHigh() { _ = g.line.SetValue(1) }
func (g *GPIOCdev) SetLow()  { _ = g.line.SetValue(0) }

func (g *GPIOCdev) WaitForRisingEdge(ctx context.Context) error {
	return g.waitForEdge(ctx, gpiocdev.LineEventRisingEdge)
}

func (g *GPIOCdev) WaitForFallingEdge(ctx context.Context) error {
	return g.waitForEdge(ctx, gpiocdev.LineEventFallingEdge)
}

func (g *GPIOCdev) waitForEdge(ctx context.Context, want gpiocdev.LineEventType) error {
	for {
		select {
		case evt := <-g.events:
			if evt.Type == want {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
