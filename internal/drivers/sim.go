package drivers

import "sync"

// SimIMU is a deterministic stand-in IMU used by tests and by hosts with
// no sensor attached. Samples are fed in by the caller (e.g. a test) via
// Feed; Read always succeeds.
type SimIMU struct {
	mu       sync.Mutex
	sample   Sample
	callback func()
}

func NewSimIMU() *SimIMU { return &SimIMU{} }

func (s *SimIMU) Init(rateHz int, orientation [9]int8) error { return nil }

func (s *SimIMU) SetSampleCallback(fn func()) {
	s.mu.Lock()
	s.callback = fn
	s.mu.Unlock()
}

func (s *SimIMU) Read() error { return nil }

func (s *SimIMU) Last() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample
}

// Feed pushes a new sample and, if a callback is registered, invokes it —
// mimicking the hardware interrupt firing once the sample is ready.
func (s *SimIMU) Feed(sample Sample) {
	s.mu.Lock()
	s.sample = sample
	cb := s.callback
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SimActuator records the last normalized pulse sent to each channel,
// for assertions in tests in place of a real PWM rail.
type SimActuator struct {
	mu   sync.Mutex
	last [4]float64
}

func NewSimActuator() *SimActuator { return &SimActuator{} }

func (a *SimActuator) SendPulseNormalized(channel int, x float64) error {
	if channel < 1 || channel > 4 {
		return nil
	}
	a.mu.Lock()
	a.last[channel-1] = x
	a.mu.Unlock()
	return nil
}

func (a *SimActuator) Last() [4]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// SimLEDButton is an in-memory LEDButton used by tests and headless runs.
type SimLEDButton struct {
	mu      sync.Mutex
	red     bool
	green   bool
	paused  bool
	handler func()
}

func NewSimLEDButton() *SimLEDButton { return &SimLEDButton{} }

func (l *SimLEDButton) SetRed(on bool) {
	l.mu.Lock()
	l.red = on
	l.mu.Unlock()
}

func (l *SimLEDButton) SetGreen(on bool) {
	l.mu.Lock()
	l.green = on
	l.mu.Unlock()
}

func (l *SimLEDButton) SetPauseHandler(fn func()) {
	l.mu.Lock()
	l.handler = fn
	l.mu.Unlock()
}

func (l *SimLEDButton) PauseState() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// PressPause simulates a button press for test harnesses: it sets the
// paused flag and invokes the registered handler, mirroring an interrupt.
func (l *SimLEDButton) PressPause() {
	l.mu.Lock()
	l.paused = true
	h := l.handler
	l.mu.Unlock()
	if h != nil {
		h()
	}
}

func (l *SimLEDButton) ReleasePause() {
	l.mu.Lock()
	l.paused = false
	l.mu.Unlock()
}

func (l *SimLEDButton) State() (red, green bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.red, l.green
}
