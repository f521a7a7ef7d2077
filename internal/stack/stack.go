// Package stack implements the ~100 Hz cooperative flight stack that
// maps pilot intent (link.UserInterface) and flight mode into the
// flight core's setpoint, per spec.md §4.4.
package stack

import (
	"context"
	"log"
	"time"

	"github.com/flightcore/quadfc/internal/config"
	"github.com/flightcore/quadfc/internal/flightcore"
	"github.com/flightcore/quadfc/internal/link"
)

const (
	period             = 10 * time.Millisecond // ~100 Hz
	emergencyLandThr   = 0.15
)

// Arm is called whenever the core is found DISARMED; it should block
// until the arming gesture completes or ctx is cancelled (arm.Supervisor
// satisfies this signature).
type Arm func(ctx context.Context)

// Stack runs the flight-mode-to-setpoint translation loop.
type Stack struct {
	setpoint *flightcore.Setpoint
	ui       *link.UserInterface
	cfg      config.Config
	arm      Arm

	previousMode link.FlightMode
}

func New(setpoint *flightcore.Setpoint, ui *link.UserInterface, cfg config.Config, arm Arm) *Stack {
	return &Stack{setpoint: setpoint, ui: ui, cfg: cfg, arm: arm, previousMode: -1}
}

// Run loops at ~100 Hz until ctx is done.
func (s *Stack) Run(ctx context.Context) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Stack) tick(ctx context.Context) {
	cur := s.ui.Get()

	if cur.FlightMode != s.previousMode {
		log.Printf("flight_mode: %s", cur.FlightMode)
	}

	if cur.FlightMode == link.EmergencyKill || cur.KillSwitch {
		s.setpoint.Disarm()
	}

	if s.setpoint.Mode() == flightcore.Disarmed {
		s.arm(ctx)
	} else {
		switch cur.FlightMode {
		case link.UserAttitude:
			s.setpoint.SetAttitude(
				(cur.ThrottleStick+1)/2,
				cur.RollStick*s.cfg.MaxRollSetpoint,
				cur.PitchStick*s.cfg.MaxPitchSetpoint,
				cur.YawStick*s.cfg.MaxYawRate,
			)
		case link.EmergencyLand:
			s.setpoint.SetAttitude(emergencyLandThr, 0, 0, 0)
		default:
			// USER_LOITER / USER_POSITION_* / TARGET_HOLD: placeholders
			// per spec.md Non-goals, no-op.
		}
	}

	s.previousMode = cur.FlightMode
}
