package link

import (
	"context"
	"log"
	"time"

	"github.com/flightcore/quadfc/internal/drivers"
	"github.com/flightcore/quadfc/internal/flightcore"
)

const (
	dsm2LandTimeout   = 300 * time.Millisecond
	dsm2DisarmTimeout = 5 * time.Second
	pollPeriod        = 10 * time.Millisecond // ~100 Hz
)

// Watcher polls the Radio driver, decodes six channels into UserInterface
// stick values, and enforces the loss-of-link escalation in spec.md §4.7.
type Watcher struct {
	radio    drivers.Radio
	ui       *UserInterface
	setpoint *flightcore.Setpoint

	haveFirstFrame bool
	lastGoodFrame  time.Time
}

func NewWatcher(radio drivers.Radio, ui *UserInterface, setpoint *flightcore.Setpoint) *Watcher {
	return &Watcher{radio: radio, ui: ui, setpoint: setpoint}
}

// Run polls at ~100 Hz until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(pollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	if w.radio.HasNewFrame() {
		w.haveFirstFrame = true
		w.lastGoodFrame = time.Now()

		kill := w.radio.ChannelNormalized(5) < 0
		if kill {
			w.ui.Set(Snapshot{FlightMode: EmergencyKill, KillSwitch: true})
			w.setpoint.Disarm()
			return
		}

		mode := UserAttitude // ch6 mode switch: single mode for now (spec.md §9)

		w.ui.Set(Snapshot{
			FlightMode:    mode,
			ThrottleStick: w.radio.ChannelNormalized(1),
			RollStick:     -w.radio.ChannelNormalized(2),
			PitchStick:    -w.radio.ChannelNormalized(3),
			YawStick:      w.radio.ChannelNormalized(4),
			KillSwitch:    false,
		})
		return
	}

	if !w.haveFirstFrame {
		// Cold start: no false loss-of-link before the first good frame.
		return
	}

	elapsed := time.Since(w.lastGoodFrame)
	cur := w.ui.Get()

	if w.setpoint.Mode() != flightcore.Disarmed && elapsed > dsm2DisarmTimeout {
		log.Printf("lost link for %.1fs, disarming", elapsed.Seconds())
		w.setpoint.Disarm()
		return
	}

	if cur.FlightMode != EmergencyLand && elapsed > dsm2LandTimeout {
		log.Printf("lost link for %.1fs, emergency landing", elapsed.Seconds())
		w.ui.Set(Snapshot{
			FlightMode:    EmergencyLand,
			ThrottleStick: -1,
		})
	}
}
