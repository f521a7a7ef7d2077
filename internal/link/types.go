// Package link implements the radio intake side of the data flow:
// UserInterface, the link watcher that decodes stick channels and
// enforces loss-of-link timeouts, and the Radio driver default
// implementations (iBus/CRSF) adapted from the teacher repo's
// byte-level state-machine parsers.
package link

import "sync"

// FlightMode is flight_mode_t from spec.md §3/§9. Only USER_ATTITUDE and
// EMERGENCY_LAND/EMERGENCY_KILL are behaviorally implemented; the rest
// are preserved placeholders per spec.md §9 "Design Notes".
type FlightMode int

const (
	EmergencyKill FlightMode = iota
	EmergencyLand
	UserAttitude
	UserLoiter
	UserPositionCartesian
	UserPositionRadial
	TargetHold
)

func (m FlightMode) String() string {
	switch m {
	case EmergencyKill:
		return "EMERGENCY_KILL"
	case EmergencyLand:
		return "EMERGENCY_LAND"
	case UserAttitude:
		return "USER_ATTITUDE"
	case UserLoiter:
		return "USER_LOITER"
	case UserPositionCartesian:
		return "USER_POSITION_CARTESIAN"
	case UserPositionRadial:
		return "USER_POSITION_RADIAL"
	case TargetHold:
		return "TARGET_HOLD"
	default:
		return "unknown"
	}
}

// UserInterface is single-writer (the link watcher), multi-reader, per
// spec.md §3. Readers tolerate values up to one watcher period stale.
type UserInterface struct {
	mu sync.Mutex

	flightMode FlightMode

	throttleStick float64
	rollStick     float64
	pitchStick    float64
	yawStick      float64
	killSwitch    bool
}

func NewUserInterface() *UserInterface {
	return &UserInterface{flightMode: UserAttitude}
}

// Snapshot is a value copy of the whole interface for a single-tick read.
type Snapshot struct {
	FlightMode                                        FlightMode
	ThrottleStick, RollStick, PitchStick, YawStick float64
	KillSwitch                                       bool
}

func (u *UserInterface) Get() Snapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Snapshot{
		FlightMode:    u.flightMode,
		ThrottleStick: u.throttleStick,
		RollStick:     u.rollStick,
		PitchStick:    u.pitchStick,
		YawStick:      u.yawStick,
		KillSwitch:    u.killSwitch,
	}
}

func (u *UserInterface) Set(s Snapshot) {
	u.mu.Lock()
	u.flightMode = s.FlightMode
	u.throttleStick = s.ThrottleStick
	u.rollStick = s.RollStick
	u.pitchStick = s.PitchStick
	u.yawStick = s.YawStick
	u.killSwitch = s.KillSwitch
	u.mu.Unlock()
}

// SetFlightMode is exposed for components that only need to override the
// mode without touching the other fields atomically with a stick update.
// The link watcher does not use it: it forces EMERGENCY_LAND through Set,
// which also resets the sticks.
func (u *UserInterface) SetFlightMode(m FlightMode) {
	u.mu.Lock()
	u.flightMode = m
	u.mu.Unlock()
}
