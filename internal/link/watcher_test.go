package link

import (
	"testing"
	"time"

	"github.com/flightcore/quadfc/internal/flightcore"
)

// fakeRadio is a deterministic drivers.Radio stand-in for exercising the
// watcher's decode and loss-of-link logic without a byte-level codec.
type fakeRadio struct {
	fresh    bool
	channels [6]float64
}

func (f *fakeRadio) Init() error          { return nil }
func (f *fakeRadio) HasNewFrame() bool    { fresh := f.fresh; f.fresh = false; return fresh }
func (f *fakeRadio) ChannelNormalized(i int) float64 {
	if i < 1 || i > len(f.channels) {
		return 0
	}
	return f.channels[i-1]
}

func TestPollDecodesSticksOnFreshFrame(t *testing.T) {
	radio := &fakeRadio{fresh: true, channels: [6]float64{0.5, 0.2, -0.3, 0.1, 1, 0}}
	ui := NewUserInterface()
	setpoint := flightcore.NewSetpoint()
	w := NewWatcher(radio, ui, setpoint)

	w.poll()

	snap := ui.Get()
	if snap.ThrottleStick != 0.5 {
		t.Fatalf("ThrottleStick = %v, want 0.5", snap.ThrottleStick)
	}
	if snap.RollStick != -0.2 {
		t.Fatalf("RollStick = %v, want -0.2 (channel 2 inverted)", snap.RollStick)
	}
	if snap.KillSwitch {
		t.Fatalf("KillSwitch = true, want false (channel 5 positive)")
	}
}

func TestPollKillSwitchDisarms(t *testing.T) {
	radio := &fakeRadio{fresh: true, channels: [6]float64{0.5, 0, 0, 0, -1, 0}}
	ui := NewUserInterface()
	setpoint := flightcore.NewSetpoint()
	setpoint.Rearm(flightcore.Attitude)
	w := NewWatcher(radio, ui, setpoint)

	w.poll()

	if setpoint.Mode() != flightcore.Disarmed {
		t.Fatalf("Mode() = %v after kill-switch frame, want Disarmed", setpoint.Mode())
	}
	if !ui.Get().KillSwitch {
		t.Fatalf("KillSwitch = false, want true")
	}
}

func TestPollColdStartSuppressesFalseTimeout(t *testing.T) {
	radio := &fakeRadio{fresh: false}
	ui := NewUserInterface()
	setpoint := flightcore.NewSetpoint()
	setpoint.Rearm(flightcore.Attitude)
	w := NewWatcher(radio, ui, setpoint)

	w.poll() // never received a frame yet -> must not escalate

	if setpoint.Mode() == flightcore.Disarmed {
		t.Fatalf("cold-start poll disarmed before any frame was ever received")
	}
	if ui.Get().FlightMode == EmergencyLand {
		t.Fatalf("cold-start poll forced EMERGENCY_LAND before any frame was ever received")
	}
}

func TestPollEscalatesToEmergencyLandThenDisarm(t *testing.T) {
	radio := &fakeRadio{fresh: true, channels: [6]float64{0.5, 0, 0, 0, 1, 0}}
	ui := NewUserInterface()
	setpoint := flightcore.NewSetpoint()
	setpoint.Rearm(flightcore.Attitude)
	w := NewWatcher(radio, ui, setpoint)
	w.poll() // establish a good frame

	radio.fresh = false
	w.lastGoodFrame = time.Now().Add(-400 * time.Millisecond)
	w.poll()
	if ui.Get().FlightMode != EmergencyLand {
		t.Fatalf("FlightMode = %v after 400ms of silence, want EmergencyLand", ui.Get().FlightMode)
	}
	if setpoint.Mode() == flightcore.Disarmed {
		t.Fatalf("disarmed at 400ms of silence, want still armed (disarm threshold is 5s)")
	}

	w.lastGoodFrame = time.Now().Add(-6 * time.Second)
	w.poll()
	if setpoint.Mode() != flightcore.Disarmed {
		t.Fatalf("Mode() = %v after 6s of silence, want Disarmed", setpoint.Mode())
	}
}
