// Package estimator turns a raw IMU sample (fused Euler angles + raw
// gyro) into the continuous roll/pitch/yaw pose and rates the flight
// core's feedback loops run on, per spec.md §4.2. It holds no hardware
// handle; it is pure math over a Sample and a State.
package estimator

import (
	"math"

	"github.com/flightcore/quadfc/internal/drivers"
)

// FSR is the gyro full-scale range in degrees/second for a 16-bit signed
// raw reading, matching the teacher/reference IMU's configured range.
const FSR = 2000.0

const degToRad = math.Pi / 180

// State is the estimator's running pose — roll/pitch/yaw and their
// rates, plus the yaw-unwrap bookkeeping from spec.md §4.2.
type State struct {
	Roll, Pitch, Yaw             float64
	DRoll, DPitch, DYaw          float64
	lastYaw                      float64
	numYawSpins                  int
	imuYawOnTakeoff               float64
}

// ResetYawOrigin captures the current IMU yaw sample as the origin and
// resets the spin count — called on the first tick after a
// DISARMED→armed transition (spec.md §4.2, §4.3 step 2).
func (s *State) ResetYawOrigin(sample drivers.Sample) {
	s.numYawSpins = 0
	s.imuYawOnTakeoff = sample.Euler[2]
}

// Update applies the spec.md §4.2 transforms for one tick: sign-corrected
// roll/pitch from the fused Euler angles, rate terms from raw gyro, and
// yaw unwrapped across +-pi crossings.
func (s *State) Update(sample drivers.Sample, imuRollErr, imuPitchErr float64) {
	s.Roll = -(sample.Euler[1] - imuRollErr)
	s.Pitch = sample.Euler[0] - imuPitchErr

	s.DRoll = float64(sample.RawGyro[1]) * FSR * degToRad / 32767.0
	s.DPitch = float64(sample.RawGyro[0]) * FSR * degToRad / 32767.0
	s.DYaw = float64(sample.RawGyro[2]) * FSR * degToRad / 32767.0

	newYaw := -(sample.Euler[2] - s.imuYawOnTakeoff) + 2*math.Pi*float64(s.numYawSpins)
	if newYaw-s.lastYaw > 6 {
		s.numYawSpins--
	} else if newYaw-s.lastYaw < -6 {
		s.numYawSpins++
	}

	s.lastYaw = s.Yaw
	s.Yaw = -(sample.Euler[2] - s.imuYawOnTakeoff) + 2*math.Pi*float64(s.numYawSpins)
}
