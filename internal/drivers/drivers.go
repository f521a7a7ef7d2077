// Package drivers defines the narrow external-collaborator contracts the
// flight-control core is built against: the IMU, actuator (ESC/servo),
// radio receiver, LEDs/pause button, and persistence store. Real hardware
// bindings (I2C/UART/PWM chip access) are out of scope per the spec; this
// package carries only the interfaces and the simulated/dev defaults
// needed to exercise the rest of the tree without hardware attached.
package drivers

import "context"

// Sample is the most recent IMU reading: fused Euler angles (rad) and
// raw gyro counts (16-bit signed, full-scale-range dependent), matching
// the {euler[3], rawGyro[3]} contract in the spec.
type Sample struct {
	Euler    [3]float64
	RawGyro  [3]int16
	BatteryV float64
}

// IMU is the inertial measurement unit driver contract. Orientation is a
// row-major 3x3 mounting-correction matrix applied by the driver before
// samples are exposed.
type IMU interface {
	Init(rateHz int, orientation [9]int8) error
	SetSampleCallback(fn func())
	Read() error
	Last() Sample
}

// Actuator is the PWM/servo pulse output driver contract. Channel is
// 1-indexed per spec.md §6 (1..4 for the four motors).
type Actuator interface {
	SendPulseNormalized(channel int, x float64) error
}

// Radio is the RC receiver driver contract: demodulation and channel
// decoding happen outside this package's callers; Radio only hands back
// normalized channel values.
type Radio interface {
	Init() error
	HasNewFrame() bool
	ChannelNormalized(i int) float64
}

// LEDButton is the status-indicator and pause-button driver contract.
type LEDButton interface {
	SetRed(on bool)
	SetGreen(on bool)
	SetPauseHandler(fn func())
	PauseState() bool
}

// Persistence is the config-file store driver contract. out is populated
// in place; CreateDefault materializes and persists defaults.
type Persistence[T any] interface {
	Load(ctx context.Context, out *T) error
	CreateDefault(ctx context.Context, out *T) error
}
