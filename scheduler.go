package easel

import (
	"fmt"
	"math"
)

// TickSource is the host's per-frame callback mechanism. RequestTick asks for
// fn to be invoked once, at the next render opportunity, with a monotonic
// timestamp in milliseconds. The error fn returns belongs to the host: a host
// must surface it rather than drop it. CancelTick withdraws a pending request.
type TickSource interface {
	RequestTick(fn func(now float64) error)
	CancelTick()
}

// Scheduler drives a callback-driven render loop. Simulate runs on every host
// tick; draw runs only when more than one draw interval has elapsed since the
// last draw. The last-draw stamp is anchored to where the interval should have
// landed, so irregular host timing never drags the average draw rate below the
// target.
//
// A Scheduler is not safe for concurrent use. All ticks arrive on the host's
// single thread of control.
type Scheduler struct {
	host     TickSource
	clock    Clock
	simulate func(delta float64) error
	draw     func() error

	drawInterval float64
	lastSimulate float64
	lastDraw     float64

	started bool
	running bool
}

// NewScheduler creates a scheduler that draws at most fps times per second.
// A non-positive or non-finite fps, or a missing collaborator, returns
// ErrInvalidConfiguration.
func NewScheduler(fps float64, host TickSource, clock Clock, simulate func(delta float64) error, draw func() error) (*Scheduler, error) {
	if !finitePositive(fps) {
		return nil, fmt.Errorf("%w: fps must be positive, got %v", ErrInvalidConfiguration, fps)
	}
	if host == nil || clock == nil {
		return nil, fmt.Errorf("%w: scheduler needs a tick source and a clock", ErrInvalidConfiguration)
	}
	if simulate == nil || draw == nil {
		return nil, fmt.Errorf("%w: scheduler needs simulate and draw callbacks", ErrInvalidConfiguration)
	}
	return &Scheduler{
		host:         host,
		clock:        clock,
		simulate:     simulate,
		draw:         draw,
		drawInterval: 1000 / fps,
	}, nil
}

// DrawInterval returns the minimum time between draws in milliseconds.
func (s *Scheduler) DrawInterval() float64 {
	return s.drawInterval
}

// Running reports whether the scheduler is requesting host ticks.
func (s *Scheduler) Running() bool {
	return s.running
}

// Start begins requesting host ticks. The first call anchors both the
// simulate and draw stamps at the current clock time. Calling Start while
// running is a no-op. Starting again after Stop resumes with the retained
// stamps; call ResetTiming first to avoid a large first delta after a pause.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	if !s.started {
		s.ResetTiming(s.clock.Now())
		s.started = true
	}
	s.running = true
	s.host.RequestTick(s.tick)
}

// Stop ceases requesting host ticks. A tick already in progress runs to
// completion. Timing state is retained.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.host.CancelTick()
}

// ResetTiming re-anchors both the simulate and draw stamps at now.
func (s *Scheduler) ResetTiming(now float64) {
	s.lastSimulate = now
	s.lastDraw = now
}

// tick is the callback handed to the host. It re-requests itself after every
// successful invocation until Stop is called. An error stops the loop and is
// returned to the host.
func (s *Scheduler) tick(now float64) error {
	if !s.running {
		return nil
	}
	if err := s.OnTick(now); err != nil {
		s.running = false
		return err
	}
	if s.running {
		s.host.RequestTick(s.tick)
	}
	return nil
}

// OnTick runs one loop iteration at timestamp now: simulate with the time
// since the previous tick, then draw if the draw interval has been exceeded.
// An error from simulate skips the draw. Errors are returned, never absorbed.
func (s *Scheduler) OnTick(now float64) error {
	simDelta := now - s.lastSimulate
	if err := s.simulate(simDelta); err != nil {
		return fmt.Errorf("easel: simulate: %w", err)
	}
	s.lastSimulate = now

	drawDelta := now - s.lastDraw
	if drawDelta <= s.drawInterval {
		return nil
	}
	if err := s.draw(); err != nil {
		return fmt.Errorf("easel: draw: %w", err)
	}
	s.lastDraw = now - math.Mod(drawDelta, s.drawInterval)
	return nil
}
