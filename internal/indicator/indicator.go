// Package indicator drives the status LEDs and the ~5 Hz operator
// console line, per spec.md §4.8 and §9.
package indicator

import (
	"context"
	"fmt"
	"time"

	"github.com/flightcore/quadfc/internal/drivers"
	"github.com/flightcore/quadfc/internal/flightcore"
)

const ledPeriod = 500 * time.Millisecond // toggle every half second

// LED flashes red while disarmed and holds solid green while armed.
//
// The teacher repo's led.go carries a comment noting the toggle variable
// has inverted boolean logic inside its branch (sets the LED low when
// toggle is truthy, but also sets toggle=1 — so it never actually
// alternates the way the comment above it describes). tick does not copy
// that logic: while disarmed it flips the red LED on every ledPeriod
// tick, a 1 Hz flash.
type LED struct {
	leds     drivers.LEDButton
	setpoint *flightcore.Setpoint
	toggle   bool
}

func NewLED(leds drivers.LEDButton, setpoint *flightcore.Setpoint) *LED {
	return &LED{leds: leds, setpoint: setpoint}
}

func (l *LED) Run(ctx context.Context) {
	ticker := time.NewTicker(ledPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *LED) tick() {
	if l.setpoint.Mode() == flightcore.Disarmed {
		if l.toggle {
			l.leds.SetRed(false)
			l.toggle = false
		} else {
			l.leds.SetRed(true)
			l.toggle = true
		}
		return
	}
	l.toggle = false
	l.leds.SetGreen(true)
	l.leds.SetRed(false)
}

const printerPeriod = 200 * time.Millisecond // ~5 Hz

// Printer writes a human-readable status line to stdout.
type Printer struct {
	state *flightcore.State
}

func NewPrinter(state *flightcore.State) *Printer {
	return &Printer{state: state}
}

func (p *Printer) Run(ctx context.Context) {
	ticker := time.NewTicker(printerPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Printer) tick() {
	s := p.state.Snapshot()
	fmt.Printf("\rroll %0.2f pitch %0.2f yaw %0.2f  u: %0.2f %0.2f %0.2f %0.2f",
		s.Roll, s.Pitch, s.Yaw, s.U[0], s.U[1], s.U[2], s.U[3])
}
