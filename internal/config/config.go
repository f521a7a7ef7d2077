// Package config holds the read-mostly gain/limit record that the
// arming supervisor reloads on every arm, persisted as CBOR.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// Config is the controller-gain and limit record described in spec.md §3.
type Config struct {
	// Roll-rate controller gains.
	RollRateKp float64 `cbor:"roll_rate_kp"`
	RollRateKi float64 `cbor:"roll_rate_ki"`
	RollRateKd float64 `cbor:"roll_rate_kd"`

	// Pitch-rate controller gains.
	PitchRateKp float64 `cbor:"pitch_rate_kp"`
	PitchRateKi float64 `cbor:"pitch_rate_ki"`
	PitchRateKd float64 `cbor:"pitch_rate_kd"`

	// Yaw controller gains.
	YawKp float64 `cbor:"yaw_kp"`
	YawKi float64 `cbor:"yaw_ki"`
	YawKd float64 `cbor:"yaw_kd"`

	IdleThrottle float64 `cbor:"idle_throttle"`

	MaxRollSetpoint  float64 `cbor:"max_roll_setpoint"`  // rad
	MaxPitchSetpoint float64 `cbor:"max_pitch_setpoint"` // rad
	MaxYawRate       float64 `cbor:"max_yaw_rate"`        // rad/s

	RollRatePerRad  float64 `cbor:"roll_rate_per_rad"`
	PitchRatePerRad float64 `cbor:"pitch_rate_per_rad"`

	// Sensor-axis trims applied in the attitude estimator.
	ImuRollErr  float64 `cbor:"imu_roll_err"`
	ImuPitchErr float64 `cbor:"imu_pitch_err"`
}

// Default returns the factory-default gain set, materialized when no
// config file is present (spec.md §7, "Config missing").
func Default() Config {
	return Config{
		RollRateKp:  0.25,
		RollRateKi:  0.05,
		RollRateKd:  0.015,
		PitchRateKp: 0.25,
		PitchRateKi: 0.05,
		PitchRateKd: 0.015,
		YawKp:       0.3,
		YawKi:       0.0,
		YawKd:       0.0,

		IdleThrottle: 0.15,

		MaxRollSetpoint:  0.4,
		MaxPitchSetpoint: 0.4,
		MaxYawRate:       2.5,

		RollRatePerRad:  6.0,
		PitchRatePerRad: 6.0,
	}
}

// DefaultPath returns ~/.flightcore/config.cbor, honoring FLIGHTCORE_HOME
// if set.
func DefaultPath() string {
	if home := os.Getenv("FLIGHTCORE_HOME"); home != "" {
		return filepath.Join(home, "config.cbor")
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".flightcore", "config.cbor")
}

// Store is a CBOR-backed drivers.Persistence[Config] implementation.
type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads and decodes the config file at s.Path into out.
func (s *Store) Load(ctx context.Context, out *Config) error {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return err
	}
	return cbor.Unmarshal(raw, out)
}

// CreateDefault materializes config.Default() into out and writes it to
// s.Path, creating parent directories as needed.
func (s *Store) CreateDefault(ctx context.Context, out *Config) error {
	*out = Default()
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	raw, err := cbor.Marshal(*out)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, raw, 0o644)
}
