package flightcore

import (
	"math"

	"github.com/flightcore/quadfc/internal/config"
	"github.com/flightcore/quadfc/internal/drivers"
	"github.com/flightcore/quadfc/internal/flightlog"
)

// Core wires the estimator, PID cascade, mixer, and actuator writeout
// into the single Tick entry point the IMU driver's sample callback
// invokes. It never blocks and never returns an error (spec.md §4.3
// "Failure semantics").
type Core struct {
	Setpoint *Setpoint
	State    *State

	imu      drivers.IMU
	actuator drivers.Actuator
	logQueue *flightlog.Queue

	cfg config.Config
	dt  float64

	previousMode Mode
}

// New wires a Core against the given IMU/actuator drivers, config, and
// log queue. dt must match the IMU's sample rate (spec.md §5, "Timing
// discipline").
func New(imu drivers.IMU, actuator drivers.Actuator, logQueue *flightlog.Queue, cfg config.Config, dt float64) *Core {
	return &Core{
		Setpoint: NewSetpoint(),
		State:    NewState(cfg, dt),
		imu:      imu,
		actuator: actuator,
		logQueue: logQueue,
		cfg:      cfg,
		dt:       dt,
	}
}

// ReloadConfig is called by the arming supervisor once the arm gesture
// has completed and the ESCs have been woken, just before rearming
// (spec.md §4.5 step 8): it rebuilds the PID filters from fresh gains
// without touching estimator state.
func (c *Core) ReloadConfig(cfg config.Config) {
	c.cfg = cfg
	c.State.mu.Lock()
	c.State.rebuildFilters(cfg, c.dt)
	c.State.mu.Unlock()
}

// Tick is the IMU sample callback. It skips the tick entirely if the
// sample read fails (spec.md §4.3 "Trigger" / §7 "Transient sensor
// miss") — no interpolation, no error propagation.
func (c *Core) Tick() {
	if err := c.imu.Read(); err != nil {
		return
	}
	sample := c.imu.Last()

	c.State.mu.Lock()
	defer c.State.mu.Unlock()

	c.State.BatteryV = sample.BatteryV

	mode := c.Setpoint.Mode()

	// First tick after DISARMED -> armed: reset yaw origin.
	if c.previousMode == Disarmed && mode != Disarmed {
		c.State.ResetYawOrigin(sample)
	}
	c.State.Update(sample, c.cfg.ImuRollErr, c.cfg.ImuPitchErr)

	switch mode {
	case Disarmed:
		c.State.rollCtrl.Zero()
		c.State.pitchCtrl.Zero()
		c.State.yawCtrl.Zero()
		c.Setpoint.setYaw(0)
		c.State.Esc = [4]float64{}
		c.State.U = [4]float64{}
		c.previousMode = Disarmed
		return
	case Attitude:
		throttle, _, _, yawRate, yaw := c.Setpoint.snapshot()
		if throttle > yawCutoffTh {
			c.Setpoint.setYaw(yaw + c.dt*yawRate)
		}
	case Position:
		// reserved: position/loiter control is an explicit Non-goal.
	}

	c.runControllers()
	c.mixAndActuate()

	c.logTick()
	c.previousMode = mode
	c.State.ControlLoops++
}

func (c *Core) runControllers() {
	throttle, rollSp, pitchSp, _, yawSp := c.Setpoint.snapshot()

	throttleCompensation := 1 / (math.Cos(c.State.Roll) * math.Cos(c.State.Pitch))
	thr := throttle*(maxThrust-c.cfg.IdleThrottle) + c.cfg.IdleThrottle
	c.State.U[0] = throttleCompensation * thr

	dRollSp := (rollSp - c.State.Roll) * c.cfg.RollRatePerRad
	dPitchSp := (pitchSp - c.State.Pitch) * c.cfg.PitchRatePerRad
	c.State.dRollErr = dRollSp - c.State.DRoll
	c.State.dPitchErr = dPitchSp - c.State.DPitch

	accumulate := c.State.U[0] > intCutoffTh

	c.State.rollCtrl.March(c.State.dRollErr, accumulate)
	c.State.pitchCtrl.March(c.State.dPitchErr, accumulate)

	if throttle < 0.1 {
		c.State.rollCtrl.Saturate(-landSaturation, landSaturation)
		c.State.pitchCtrl.Saturate(-landSaturation, landSaturation)
	} else {
		c.State.rollCtrl.Saturate(-maxRollComp, maxRollComp)
		c.State.pitchCtrl.Saturate(-maxPitchComp, maxPitchComp)
	}
	c.State.U[1] = c.State.rollCtrl.Output()
	c.State.U[2] = c.State.pitchCtrl.Output()

	c.State.yawErr = yawSp - c.State.Yaw
	c.State.yawCtrl.March(c.State.yawErr, accumulate)
	if throttle < 0.1 {
		c.State.yawCtrl.Saturate(-landSaturation, landSaturation)
	} else {
		c.State.yawCtrl.Saturate(-maxYawComp, maxYawComp)
	}
	c.State.U[3] = c.State.yawCtrl.Output()
}

// mixAndActuate runs the X-quadrotor mixer (spec.md §4.3 step 11),
// uniform desaturation (step 12), clamp (step 13), and writes the four
// actuator pulses (step 14).
func (c *Core) mixAndActuate() {
	u := c.State.U
	m := [4]float64{
		u[0] - u[1] + u[2] - u[3],
		u[0] + u[1] - u[2] - u[3],
		u[0] + u[1] + u[2] + u[3],
		u[0] - u[1] - u[2] + u[3],
	}

	largest := m[0]
	for _, v := range m[1:] {
		if v > largest {
			largest = v
		}
	}
	if largest > 1 {
		offset := largest - 1
		for i := range m {
			m[i] -= offset
		}
	}

	if c.previousMode == Disarmed {
		// Wake ESCs with a minimum pulse on first arm instead of the
		// mixed value, so they don't re-enter calibration mode.
		for ch := 1; ch <= 4; ch++ {
			c.actuator.SendPulseNormalized(ch, 0)
		}
		c.State.Esc = [4]float64{}
		return
	}

	for i := range m {
		if m[i] > 1 {
			m[i] = 1
		} else if m[i] < 0 {
			m[i] = 0
		}
		c.actuator.SendPulseNormalized(i+1, m[i])
		c.State.Esc[i] = m[i]
	}
}

func (c *Core) logTick() {
	if c.logQueue == nil {
		return
	}
	c.logQueue.Push(flightlog.Entry{
		NumLoops: c.State.ControlLoops,
		Roll:     c.State.Roll,
		Pitch:    c.State.Pitch,
		Yaw:      c.State.Yaw,
		DRoll:    c.State.DRoll,
		DPitch:   c.State.DPitch,
		DYaw:     c.State.DYaw,
		U:        c.State.U,
		Esc:      c.State.Esc,
		BatteryV: c.State.BatteryV,
	})
}
