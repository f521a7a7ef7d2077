package flightcore

import (
	"testing"

	"github.com/flightcore/quadfc/internal/config"
	"github.com/flightcore/quadfc/internal/drivers"
)

func newTestCore() (*Core, *drivers.SimIMU, *drivers.SimActuator) {
	imu := drivers.NewSimIMU()
	act := drivers.NewSimActuator()
	cfg := config.Default()
	core := New(imu, act, nil, cfg, 0.005)
	imu.SetSampleCallback(core.Tick)
	return core, imu, act
}

func TestTickDisarmedZeroesActuators(t *testing.T) {
	_, imu, act := newTestCore()
	imu.Feed(drivers.Sample{Euler: [3]float64{0.2, 0.1, 0}})

	last := act.Last()
	for i, v := range last {
		if v != 0 {
			t.Fatalf("channel %d pulse = %v while disarmed, want 0", i+1, v)
		}
	}
}

func TestArmResetsYawOriginOnFirstTick(t *testing.T) {
	core, imu, _ := newTestCore()
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 1.0}})
	core.Setpoint.Rearm(Attitude)
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 1.0}})

	snap := core.State.Snapshot()
	if snap.Yaw != 0 {
		t.Fatalf("Yaw after arming at the current heading = %v, want 0 (origin reset)", snap.Yaw)
	}
}

func TestDisarmIdempotent(t *testing.T) {
	core, imu, act := newTestCore()
	core.Setpoint.Rearm(Attitude)
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})
	core.Setpoint.Disarm()
	core.Setpoint.Disarm()
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})

	last := act.Last()
	for i, v := range last {
		if v != 0 {
			t.Fatalf("channel %d pulse = %v after repeated disarm, want 0", i+1, v)
		}
	}
}

func TestMixerDesaturationPreservesDifferentials(t *testing.T) {
	core, imu, act := newTestCore()
	core.Setpoint.Rearm(Attitude)
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}}) // first tick, ESC wake only
	core.Setpoint.SetAttitude(1.0, 0, 0, 0)               // full throttle
	// Roll 0.7 rad: tilt compensation lifts u[0] above 1 and the roll
	// correction splits the channels, so the largest channel exceeds 1 and
	// the desaturation offset is applied.
	imu.Feed(drivers.Sample{Euler: [3]float64{0, -0.7, 0}})

	u := core.State.Snapshot().U
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
	offset := 0.0
	if largest > 1 {
		offset = largest - 1
	}

	last := act.Last()
	for i := range m {
		want := m[i] - offset
		if want > 1 {
			want = 1
		} else if want < 0 {
			want = 0
		}
		if diff := last[i] - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("channel %d pulse = %v, want %v (uniform-offset desaturation)", i+1, last[i], want)
		}
	}
}

func TestIntegratorDoesNotAccumulateBelowThrustCutoff(t *testing.T) {
	core, imu, _ := newTestCore()
	core.Setpoint.Rearm(Attitude)
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})
	core.Setpoint.SetAttitude(0, 0.2, 0, 0) // throttle below intCutoffTh
	for i := 0; i < 50; i++ {
		imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})
	}
	if got := core.State.rollCtrl.Integrator(); got != 0 {
		t.Fatalf("rollCtrl.Integrator() = %v after 50 ticks below cutoff, want 0", got)
	}
}

func TestControlLoopCounterAdvancesOnlyWhileArmed(t *testing.T) {
	core, imu, _ := newTestCore()
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})
	if core.State.Snapshot().ControlLoops != 0 {
		t.Fatalf("ControlLoops advanced while disarmed")
	}
	core.Setpoint.Rearm(Attitude)
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})
	imu.Feed(drivers.Sample{Euler: [3]float64{0, 0, 0}})
	if core.State.Snapshot().ControlLoops != 2 {
		t.Fatalf("ControlLoops = %d after 2 armed ticks, want 2", core.State.Snapshot().ControlLoops)
	}
}
