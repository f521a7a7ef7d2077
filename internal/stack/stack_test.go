package stack

import (
	"context"
	"testing"

	"github.com/flightcore/quadfc/internal/config"
	"github.com/flightcore/quadfc/internal/flightcore"
	"github.com/flightcore/quadfc/internal/link"
)

func TestTickCallsArmWhenDisarmed(t *testing.T) {
	setpoint := flightcore.NewSetpoint()
	ui := link.NewUserInterface()
	called := false
	s := New(setpoint, ui, config.Default(), func(ctx context.Context) { called = true })

	s.tick(context.Background())

	if !called {
		t.Fatalf("tick() did not invoke Arm while Mode() == Disarmed")
	}
}

func TestTickMapsUserAttitudeToSetpoint(t *testing.T) {
	setpoint := flightcore.NewSetpoint()
	setpoint.Rearm(flightcore.Attitude)
	ui := link.NewUserInterface()
	ui.Set(link.Snapshot{
		FlightMode:    link.UserAttitude,
		ThrottleStick: 0.0, // neutral -> (0+1)/2 = 0.5
		RollStick:     1.0,
		PitchStick:    -1.0,
		YawStick:      0.5,
	})
	cfg := config.Default()
	s := New(setpoint, ui, cfg, func(ctx context.Context) {})

	s.tick(context.Background())

	if throttle := setpoint.Throttle(); throttle != 0.5 {
		t.Fatalf("Throttle() = %v, want 0.5", throttle)
	}
}

func TestTickKillSwitchDisarms(t *testing.T) {
	setpoint := flightcore.NewSetpoint()
	setpoint.Rearm(flightcore.Attitude)
	ui := link.NewUserInterface()
	ui.Set(link.Snapshot{FlightMode: link.UserAttitude, KillSwitch: true})
	s := New(setpoint, ui, config.Default(), func(ctx context.Context) {})

	s.tick(context.Background())

	if setpoint.Mode() != flightcore.Disarmed {
		t.Fatalf("Mode() = %v after kill-switch tick, want Disarmed", setpoint.Mode())
	}
}

func TestTickEmergencyLandSetsLowThrottleLevelAttitude(t *testing.T) {
	setpoint := flightcore.NewSetpoint()
	setpoint.Rearm(flightcore.Attitude)
	ui := link.NewUserInterface()
	ui.Set(link.Snapshot{FlightMode: link.EmergencyLand})
	s := New(setpoint, ui, config.Default(), func(ctx context.Context) {})

	s.tick(context.Background())

	if setpoint.Throttle() != emergencyLandThr {
		t.Fatalf("Throttle() = %v, want %v (emergency-land throttle)", setpoint.Throttle(), emergencyLandThr)
	}
}
