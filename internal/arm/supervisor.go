// Package arm implements the blocking gesture recognizer that must run
// to completion before the flight core is rearmed, per spec.md §4.5.
package arm

import (
	"context"
	"log"
	"time"

	"github.com/flightcore/quadfc/internal/config"
	"github.com/flightcore/quadfc/internal/drivers"
	"github.com/flightcore/quadfc/internal/flightcore"
	"github.com/flightcore/quadfc/internal/link"
)

const (
	tipThreshold = 0.2           // ARM_TIP_THRESHOLD (rad)
	pollPeriod   = 100 * time.Millisecond // 10 Hz polling
	wakePulses   = 10
	wakePeriod   = 5 * time.Millisecond // 200 Hz spacing
)

// Reloader reloads config and rebuilds PID filters — satisfied by
// *flightcore.Core.
type Reloader interface {
	ReloadConfig(cfg config.Config)
}

// Supervisor owns the arm-gesture state machine.
type Supervisor struct {
	ui       *link.UserInterface
	state    *flightcore.State
	setpoint *flightcore.Setpoint
	actuator drivers.Actuator
	store    *config.Store
	core     Reloader
}

func NewSupervisor(ui *link.UserInterface, state *flightcore.State, setpoint *flightcore.Setpoint, actuator drivers.Actuator, store *config.Store, core Reloader) *Supervisor {
	return &Supervisor{ui: ui, state: state, setpoint: setpoint, actuator: actuator, store: store, core: core}
}

// Wait blocks until the full arm sequence (spec.md §4.5) completes or ctx
// is cancelled (EXITING). Matches the stack.Arm signature.
func (s *Supervisor) Wait(ctx context.Context) {
	for {
		if !s.waitLevel(ctx) {
			return
		}
		if !s.waitCondition(ctx, func() bool { return !s.ui.Get().KillSwitch }) {
			return
		}
		if !s.waitCondition(ctx, func() bool { return s.ui.Get().ThrottleStick < -0.9 }) {
			return
		}
		if !s.waitCondition(ctx, func() bool { return s.ui.Get().ThrottleStick > 0.9 }) {
			return
		}
		if !s.waitCondition(ctx, func() bool { return s.ui.Get().ThrottleStick < -0.9 }) {
			return
		}

		snap := s.state.Snapshot()
		if absf(snap.Roll) > tipThreshold || absf(snap.Pitch) > tipThreshold {
			log.Println("restart arming sequence with level aircraft")
			continue
		}

		s.wakeESCs()

		var cfg config.Config
		if err := s.store.Load(ctx, &cfg); err != nil {
			log.Printf("no config found, writing defaults: %v", err)
			if err := s.store.CreateDefault(ctx, &cfg); err != nil {
				log.Printf("could not write default config: %v", err)
			}
		}
		s.core.ReloadConfig(cfg)

		s.setpoint.Rearm(flightcore.Attitude)
		log.Println("ARMED")
		return
	}
}

// waitLevel polls at 10 Hz until roll and pitch are both within
// tipThreshold of level.
func (s *Supervisor) waitLevel(ctx context.Context) bool {
	return s.waitCondition(ctx, func() bool {
		snap := s.state.Snapshot()
		return absf(snap.Roll) < tipThreshold && absf(snap.Pitch) < tipThreshold
	})
}

// waitCondition polls cond at 10 Hz, returning true once it holds, or
// false if ctx is cancelled first (EXITING).
func (s *Supervisor) waitCondition(ctx context.Context, cond func() bool) bool {
	if cond() {
		return true
	}
	ticker := time.NewTicker(pollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if cond() {
				return true
			}
		}
	}
}

// wakeESCs emits the minimum pulse on all four channels at 200 Hz
// spacing to wake ESCs out of calibration mode (spec.md §4.5 step 7).
func (s *Supervisor) wakeESCs() {
	for i := 0; i < wakePulses; i++ {
		for ch := 1; ch <= 4; ch++ {
			s.actuator.SendPulseNormalized(ch, 0)
		}
		time.Sleep(wakePeriod)
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
