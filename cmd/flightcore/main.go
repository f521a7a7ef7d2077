// Command flightcore runs the quadrotor flight-control core: it wires
// the IMU/actuator/radio/LED drivers, spawns the concurrent fabric
// (flight stack, safety, link watcher, telemetry, indicator, log
// writer), and drives the 200 Hz attitude control loop from the IMU
// sample callback until EXITING (spec.md §5, §6).
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flightcore/quadfc/internal/arm"
	"github.com/flightcore/quadfc/internal/config"
	"github.com/flightcore/quadfc/internal/drivers"
	"github.com/flightcore/quadfc/internal/flightcore"
	"github.com/flightcore/quadfc/internal/flightlog"
	"github.com/flightcore/quadfc/internal/indicator"
	"github.com/flightcore/quadfc/internal/link"
	"github.com/flightcore/quadfc/internal/safety"
	"github.com/flightcore/quadfc/internal/stack"
	"github.com/flightcore/quadfc/internal/supervisor"
	"github.com/flightcore/quadfc/internal/telemetry"
)

const controlHz = 200
const dt = 1.0 / controlHz

// defaultGroundIP is substituted when -m/--mavlink is given with no value
// (spec.md §6: "-m [ip] ... with optional ground-station IP (default if
// absent)").
const defaultGroundIP = "127.0.0.1"

func main() {
	var enableLog, quiet bool
	var mavlink string

	root := &cobra.Command{
		Use:          "flightcore",
		Short:        "Quadrotor attitude flight-control core",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(enableLog, quiet, mavlink)
		},
	}
	root.Flags().BoolVarP(&enableLog, "log", "l", false, "enable flight log file")
	root.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the operator status line")
	root.Flags().StringVarP(&mavlink, "mavlink", "m", "", "enable telemetry to a ground station, with an optional ground-station IP (default "+defaultGroundIP+" if given bare)")
	root.Flags().Lookup("mavlink").NoOptDefVal = defaultGroundIP

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// run drives one program lifetime. mavlink is "" when telemetry is
// disabled (the flag wasn't given) and the ground-station IP otherwise
// (defaultGroundIP when -m was given bare).
func run(enableLog, quiet bool, mavlink string) error {
	sup := supervisor.New()
	ctx := sup.Context()

	// Always start disarmed.
	setpoint := flightcore.NewSetpoint()

	store := config.NewStore(config.DefaultPath())
	var cfg config.Config
	if err := store.Load(ctx, &cfg); err != nil {
		log.Printf("WARNING: no configuration file found: %v", err)
		log.Println("loading default settings")
		if err := store.CreateDefault(ctx, &cfg); err != nil {
			log.Printf("WARNING: can't write default config file: %v", err)
			cfg = config.Default()
		}
	}

	imu := drivers.NewSimIMU()
	actuator := drivers.NewSimActuator()
	leds := drivers.NewSimLEDButton()

	if err := imu.Init(controlHz, [9]int8{1, 0, 0, 0, 1, 0, 0, 0, 1}); err != nil {
		return fmt.Errorf("IMU initialization failed, please reboot: %w", err)
	}

	var logQueue *flightlog.Queue
	var logWriter *flightlog.Writer
	if enableLog {
		logQueue = flightlog.NewQueue(4096)
		w, err := flightlog.Open(fmt.Sprintf("flight-%d.csv", time.Now().Unix()))
		if err != nil {
			log.Printf("WARNING: failed to open flight log: %v", err)
		} else {
			w.AttachQueue(logQueue)
			logWriter = w
			go logWriter.Run(ctx, 20*time.Millisecond)
		}
	}

	core := flightcore.New(imu, actuator, logQueue, cfg, dt)
	core.Setpoint = setpoint
	imu.SetSampleCallback(core.Tick)

	ui := link.NewUserInterface()
	radio := link.NewIBusRadio(nil) // TODO: wire to the real UART once a hardware target is chosen.
	if err := radio.Init(); err != nil {
		log.Printf("WARNING: radio init failed: %v", err)
	}
	watcher := link.NewWatcher(radio, ui, setpoint)

	armSupervisor := arm.NewSupervisor(ui, core.State, setpoint, actuator, store, core)

	flightStack := stack.New(setpoint, ui, cfg, armSupervisor.Wait)

	safetySupervisor := safety.NewSupervisor(setpoint, core.State)

	led := indicator.NewLED(leds, setpoint)

	leds.SetPauseHandler(func() { onPausePress(sup, setpoint, leds) })

	go flightStack.Run(ctx)
	go safetySupervisor.Run(ctx)
	go watcher.Run(ctx)
	go led.Run(ctx)

	if mavlink != "" {
		sender, err := telemetry.Dial(mavlink, core.State)
		if err != nil {
			log.Printf("WARNING: telemetry disabled: %v", err)
		} else {
			go sender.Run(ctx)
			log.Println("sending telemetry heartbeat")
		}
	}

	if !quiet {
		printer := indicator.NewPrinter(core.State)
		go printer.Run(ctx)
	}

	<-ctx.Done()

	// Shutdown: disarm, then give the log writer time to drain, flush and
	// close its file on ctx.Done. The IMU callback is not unregistered and
	// the soft goroutines are not joined; each returns on ctx.Done by
	// itself.
	setpoint.Disarm()
	if logWriter != nil {
		time.Sleep(50 * time.Millisecond) // let the writer drain on ctx.Done
	}
	return nil
}

// onPausePress mirrors spec.md §5: a short press disarms only; a press
// held past ~1s (10 polls at 100ms) transitions to EXITING.
func onPausePress(sup *supervisor.State, setpoint *flightcore.Setpoint, leds drivers.LEDButton) {
	setpoint.Disarm()
	for i := 0; i < 10; i++ {
		time.Sleep(100 * time.Millisecond)
		if !leds.PauseState() {
			return // released before timeout
		}
	}
	sup.Set(supervisor.EXITING)
}
