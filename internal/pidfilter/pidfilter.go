// Package pidfilter implements the discrete-time PID controller used for
// every axis of the flight core. It is a pure data structure: no I/O,
// not shared outside the owning CoreState.
package pidfilter

// Filter is a second-order-or-lower discrete-time PID controller with a
// low-pass-filtered derivative term, generalizing the teacher repo's
// PIDController (pid.go) with the tau-filtered derivative and
// saturation/anti-windup the original flight-core filter_lib requires
// (generatePID/marchFilter/zeroFilter/saturateFilter in
// original_source/examples/fly/fly.c).
type Filter struct {
	Kp, Ki, Kd float64
	TauD       float64 // derivative low-pass time constant (s)
	Dt         float64 // sample period (s)

	integrator   float64
	prevError    float64
	prevDeriv    float64
	currentOutput float64

	satLo, satHi float64
	saturated    bool
}

// New creates a Filter with the given gains, derivative filter constant,
// and sample period. Output starts at zero and is unbounded until
// Saturate is called.
func New(kp, ki, kd, tauD, dt float64) *Filter {
	return &Filter{
		Kp: kp, Ki: ki, Kd: kd,
		TauD: tauD, Dt: dt,
		satLo: -1, satHi: 1,
	}
}

// March advances the filter one tick given the newest error sample,
// computing and storing the current output. accumulate gates the
// integrator: callers pass false whenever the cascade's accumulation
// condition (e.g. u[0] <= INT_CUTOFF_TH) isn't met, so the integral term
// holds instead of winding up while grounded or at low throttle.
func (f *Filter) March(err float64, accumulate bool) float64 {
	proportional := f.Kp * err

	// Anti-windup: don't accumulate further in the direction that is
	// already driving the output past a saturation bound.
	if accumulate && (!f.saturated || (f.currentOutput <= f.satLo && err > 0) || (f.currentOutput >= f.satHi && err < 0)) {
		f.integrator += err * f.Dt
	}
	integral := f.Ki * f.integrator

	// Low-pass filtered derivative: alpha blends the raw finite
	// difference with the previous filtered derivative.
	raw := (err - f.prevError) / f.Dt
	alpha := f.Dt / (f.TauD + f.Dt)
	deriv := f.prevDeriv + alpha*(raw-f.prevDeriv)
	f.prevDeriv = deriv
	f.prevError = err

	f.currentOutput = proportional + integral + f.Kd*deriv
	f.saturated = false
	return f.currentOutput
}

// Zero clears all internal state and output — used on disarm.
func (f *Filter) Zero() {
	f.integrator = 0
	f.prevError = 0
	f.prevDeriv = 0
	f.currentOutput = 0
	f.saturated = false
}

// Preload initializes history to a steady-state consistent with err, so
// the first March after arming is a smooth continuation rather than a
// step. The integrator is left at zero (only the proportional path is
// preloaded) since zeroing the integrator on arm is required regardless
// of preload policy (spec.md §3 lifecycle).
func (f *Filter) Preload(err float64) {
	f.prevError = err
	f.prevDeriv = 0
	f.currentOutput = f.Kp * err
}

// Saturate clamps the current output to [lo, hi] and records that the
// clamp was active so the next March can suppress windup in that
// direction.
func (f *Filter) Saturate(lo, hi float64) float64 {
	f.satLo, f.satHi = lo, hi
	if f.currentOutput > hi {
		f.currentOutput = hi
		f.saturated = true
	} else if f.currentOutput < lo {
		f.currentOutput = lo
		f.saturated = true
	}
	return f.currentOutput
}

// Output returns the most recently computed/saturated output.
func (f *Filter) Output() float64 {
	return f.currentOutput
}

// Integrator returns the raw accumulated integral term (before Ki is
// applied), mainly so tests can assert on the accumulate gate in March.
func (f *Filter) Integrator() float64 {
	return f.integrator
}
