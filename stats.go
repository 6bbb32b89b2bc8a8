package easel

import (
	"fmt"
	"time"
)

// statsWindow is how much simulated time each rate measurement covers, in
// milliseconds.
const statsWindow = 500.0

// Stats is a snapshot of the engine's timing counters.
type Stats struct {
	// Ticks, Draws and SkippedDraws count since the engine was built.
	Ticks        uint64
	Draws        uint64
	SkippedDraws uint64
	// TPS and FPS are the tick and draw rates measured over the last
	// completed window.
	TPS, FPS float64
	// SimulateTime and DrawTime are the durations of the most recent steps.
	SimulateTime time.Duration
	DrawTime     time.Duration
}

// frameStats accumulates counters between windows. Only the engine's tick
// thread touches it.
type frameStats struct {
	Stats

	window       float64
	windowTicks  int
	windowDraws  int
	drewThisTick bool
	windowClosed bool
}

// recordTick is called at the end of every simulate step.
func (s *frameStats) recordTick(delta float64, took time.Duration) {
	// The previous tick's draw, if any, has happened by now.
	if s.Ticks > 0 && !s.drewThisTick {
		s.SkippedDraws++
	}
	s.drewThisTick = false

	s.Ticks++
	s.SimulateTime = took
	s.window += delta
	s.windowTicks++
	s.windowClosed = false
	if s.window >= statsWindow {
		s.TPS = float64(s.windowTicks) * 1000 / s.window
		s.FPS = float64(s.windowDraws) * 1000 / s.window
		s.window = 0
		s.windowTicks = 0
		s.windowDraws = 0
		s.windowClosed = true
	}
}

// recordDraw is called at the end of every draw step.
func (s *frameStats) recordDraw(took time.Duration) {
	s.Draws++
	s.DrawTime = took
	s.windowDraws++
	s.drewThisTick = true
}

// Stats returns a snapshot of the timing counters.
func (e *Engine) Stats() Stats {
	return e.stats.Stats
}

// debugLog prints the last completed window's rates and step times.
func (e *Engine) debugLog() {
	st := e.stats.Stats
	e.logger.Printf("tps: %.1f | fps: %.1f | simulate: %v | draw: %v",
		st.TPS, st.FPS, st.SimulateTime, st.DrawTime)
	e.logger.Printf("ticks: %d | draws: %d | skipped: %d",
		st.Ticks, st.Draws, st.SkippedDraws)
}

// drawStatsOverlay prints measured rates in the canvas corner when the canvas
// supports debug text.
func (e *Engine) drawStatsOverlay() {
	dt, ok := e.canvas.(debugTexter)
	if !ok {
		return
	}
	st := e.stats.Stats
	dt.DebugText(fmt.Sprintf("FPS: %.1f\nTPS: %.1f", st.FPS, st.TPS), 2, 2)
}
