// Package safety implements the tipover supervisor: spec.md §4.6.
package safety

import (
	"context"
	"log"
	"time"

	"github.com/flightcore/quadfc/internal/flightcore"
)

const (
	tipThreshold = 1.5 // TIP_THRESHOLD rad
	period       = 50 * time.Millisecond // ~20 Hz
)

// Supervisor disarms the core the moment roll or pitch exceeds
// tipThreshold while armed.
type Supervisor struct {
	setpoint *flightcore.Setpoint
	state    *flightcore.State
}

func NewSupervisor(setpoint *flightcore.Setpoint, state *flightcore.State) *Supervisor {
	return &Supervisor{setpoint: setpoint, state: state}
}

func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *Supervisor) check() {
	if s.setpoint.Mode() == flightcore.Disarmed {
		return
	}
	snap := s.state.Snapshot()
	if absf(snap.Roll) > tipThreshold || absf(snap.Pitch) > tipThreshold {
		log.Println("TIP DETECTED")
		s.setpoint.Disarm()
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
