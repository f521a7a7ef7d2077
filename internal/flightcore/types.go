// Package flightcore implements the 200 Hz interrupt-driven attitude
// control loop: estimator -> PID cascade -> mixer -> actuator writeout,
// per spec.md §4.3. The Core type owns CoreSetpoint and CoreState and is
// driven once per IMU sample by Tick; it never blocks.
package flightcore

import (
	"sync"
	"sync/atomic"

	"github.com/flightcore/quadfc/internal/config"
	"github.com/flightcore/quadfc/internal/estimator"
	"github.com/flightcore/quadfc/internal/pidfilter"
)

// Mode is core_mode_t from spec.md §3.
type Mode int32

const (
	Disarmed Mode = iota
	Attitude
	Position // reserved, unimplemented per spec.md Non-goals
)

func (m Mode) String() string {
	switch m {
	case Disarmed:
		return "DISARMED"
	case Attitude:
		return "ATTITUDE"
	case Position:
		return "POSITION"
	default:
		return "UNKNOWN"
	}
}

const (
	yawCutoffTh     = 0.1  // YAW_CUTOFF_TH
	intCutoffTh     = 0.3  // INT_CUTOFF_TH
	landSaturation  = 0.05 // LAND_SATURATION
	maxThrust       = 0.8  // MAX_THRUST_COMPONENT
	maxRollComp     = 0.2
	maxPitchComp    = 0.2
	maxYawComp      = 0.21
	armTipThreshold = 0.2
)

// Setpoint is single-writer (flight stack) except Mode, which any
// goroutine may push to Disarmed; the core treats Disarmed as sticky
// until the arming supervisor clears it via Rearm.
type Setpoint struct {
	mu   sync.Mutex
	mode atomic.Int32

	throttle float64
	roll     float64
	pitch    float64
	yawRate  float64
	yaw      float64 // accumulated yaw setpoint, core-internal

	// Reserved position fields (spec.md §3); never read while Non-goals
	// keep POSITION mode a placeholder.
	altitude, positionX, positionY float64
}

func NewSetpoint() *Setpoint {
	sp := &Setpoint{}
	sp.mode.Store(int32(Disarmed))
	return sp
}

func (s *Setpoint) Mode() Mode { return Mode(s.mode.Load()) }

// Disarm is the sticky one-way latch any goroutine may assert.
func (s *Setpoint) Disarm() { s.mode.Store(int32(Disarmed)) }

// Rearm clears the latch — only the arming supervisor may call this.
func (s *Setpoint) Rearm(mode Mode) { s.mode.Store(int32(mode)) }

// SetAttitude is the single-writer update from the flight stack.
func (s *Setpoint) SetAttitude(throttle, roll, pitch, yawRate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.throttle, s.roll, s.pitch, s.yawRate = throttle, roll, pitch, yawRate
}

func (s *Setpoint) snapshot() (throttle, roll, pitch, yawRate, yaw float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.throttle, s.roll, s.pitch, s.yawRate, s.yaw
}

func (s *Setpoint) setYaw(yaw float64) {
	s.mu.Lock()
	s.yaw = yaw
	s.mu.Unlock()
}

func (s *Setpoint) Throttle() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.throttle
}

// State is single-writer (the core); readers tolerate torn reads of
// non-critical telemetry fields per spec.md §5.
type State struct {
	mu sync.Mutex

	estimator.State

	ControlLoops uint64
	BatteryV     float64

	dRollErr, dPitchErr, yawErr float64

	rollCtrl  *pidfilter.Filter
	pitchCtrl *pidfilter.Filter
	yawCtrl   *pidfilter.Filter

	U   [4]float64
	Esc [4]float64
}

// NewState builds zeroed PID filters from cfg at sample period dt.
func NewState(cfg config.Config, dt float64) *State {
	s := &State{}
	s.rebuildFilters(cfg, dt)
	return s
}

func (s *State) rebuildFilters(cfg config.Config, dt float64) {
	const tauD = 0.015
	s.rollCtrl = pidfilter.New(cfg.RollRateKp, cfg.RollRateKi, cfg.RollRateKd, tauD, dt)
	s.pitchCtrl = pidfilter.New(cfg.PitchRateKp, cfg.PitchRateKi, cfg.PitchRateKd, tauD, dt)
	s.yawCtrl = pidfilter.New(cfg.YawKp, cfg.YawKi, cfg.YawKd, tauD, dt)
}

// Snapshot returns a value copy of the telemetry-relevant fields for
// readers that tolerate torn reads (spec.md §5).
type Snapshot struct {
	Roll, Pitch, Yaw    float64
	DRoll, DPitch, DYaw float64
	U, Esc              [4]float64
	ControlLoops        uint64
	BatteryV            float64
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Roll: s.Roll, Pitch: s.Pitch, Yaw: s.Yaw,
		DRoll: s.DRoll, DPitch: s.DPitch, DYaw: s.DYaw,
		U: s.U, Esc: s.Esc,
		ControlLoops: s.ControlLoops,
		BatteryV:     s.BatteryV,
	}
}
