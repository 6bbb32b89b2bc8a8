package easel

import (
	"fmt"
	"image"
	"math"
)

// frameTolerance is the fraction of a frame's duration that elapsed time may
// fall short by and still count as a full frame, so that a delta spanning
// exactly n frames steps n times despite float rounding.
const frameTolerance = 1e-9

// Frame identifies a sub-rectangle of a sprite sheet.
type Frame struct {
	Rect image.Rectangle
	// Duration overrides the animation's per-frame time in milliseconds.
	// Zero means 1000/fps.
	Duration float64
}

// Animation is an immutable sprite-sheet animation definition. Build one with
// NewAnimation; the zero value is not usable.
type Animation struct {
	name   string
	sheet  Image
	frames []Frame
	fps    float64
	loop   bool
	target Canvas
	// cycle is the length of one pass through every frame.
	cycle float64
}

// AnimationOption configures optional Animation fields.
type AnimationOption func(*animationOptions)

type animationOptions struct {
	fps    float64
	fpsSet bool
	loop   bool
}

// WithFPS sets the animation frame rate. Frames without a Duration override
// last 1000/fps milliseconds. The default is DefaultFPS.
func WithFPS(fps float64) AnimationOption {
	return func(o *animationOptions) {
		o.fps = fps
		o.fpsSet = true
	}
}

// WithLoop sets whether playback wraps to the first frame after the last.
// The default is true.
func WithLoop(loop bool) AnimationOption {
	return func(o *animationOptions) {
		o.loop = loop
	}
}

// NewAnimation validates and builds an animation definition. The name, sheet,
// frames and target are required. Any missing or invalid field returns
// ErrInvalidConfiguration and a nil Animation.
func NewAnimation(name string, sheet Image, frames []Frame, target Canvas, opts ...AnimationOption) (*Animation, error) {
	o := animationOptions{fps: DefaultFPS, loop: true}
	for _, opt := range opts {
		opt(&o)
	}

	if name == "" {
		return nil, fmt.Errorf("%w: animation name is required", ErrInvalidConfiguration)
	}
	if sheet == nil {
		return nil, fmt.Errorf("%w: animation %q: sprite sheet is required", ErrInvalidConfiguration, name)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: animation %q: target canvas is required", ErrInvalidConfiguration, name)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: animation %q: at least one frame is required", ErrInvalidConfiguration, name)
	}
	if o.fpsSet && !finitePositive(o.fps) {
		return nil, fmt.Errorf("%w: animation %q: fps must be positive, got %v", ErrInvalidConfiguration, name, o.fps)
	}

	bounds := sheet.Bounds()
	for i, f := range frames {
		if f.Rect.Empty() {
			return nil, fmt.Errorf("%w: animation %q: frame %d has an empty rectangle", ErrInvalidConfiguration, name, i)
		}
		if !f.Rect.In(bounds) {
			return nil, fmt.Errorf("%w: animation %q: frame %d %v lies outside the sheet %v", ErrInvalidConfiguration, name, i, f.Rect, bounds)
		}
		if f.Duration < 0 || (f.Duration != 0 && !finitePositive(f.Duration)) {
			return nil, fmt.Errorf("%w: animation %q: frame %d duration %v", ErrInvalidConfiguration, name, i, f.Duration)
		}
	}

	a := &Animation{
		name:   name,
		sheet:  sheet,
		frames: append([]Frame(nil), frames...),
		fps:    o.fps,
		loop:   o.loop,
		target: target,
	}
	for i := range a.frames {
		a.cycle += a.frameDuration(i)
	}
	return a, nil
}

// Name returns the animation name.
func (a *Animation) Name() string { return a.name }

// Sheet returns the sprite sheet.
func (a *Animation) Sheet() Image { return a.sheet }

// FPS returns the frame rate used for frames without a duration override.
func (a *Animation) FPS() float64 { return a.fps }

// Loop reports whether playback wraps.
func (a *Animation) Loop() bool { return a.loop }

// Target returns the canvas the animation draws onto.
func (a *Animation) Target() Canvas { return a.target }

// FrameCount returns the number of frames.
func (a *Animation) FrameCount() int { return len(a.frames) }

// Frame returns the i-th frame.
func (a *Animation) Frame(i int) Frame { return a.frames[i] }

// frameDuration returns how long frame i is shown, in milliseconds.
func (a *Animation) frameDuration(i int) float64 {
	if d := a.frames[i].Duration; d > 0 {
		return d
	}
	return 1000 / a.fps
}

// Duration returns the length of one pass through every frame in
// milliseconds.
func (a *Animation) Duration() float64 {
	return a.cycle
}

// AnimationState is the playback state of one running animation. It is owned
// by whichever content started it.
type AnimationState struct {
	Animation *Animation
	// Frame is the index of the frame currently shown.
	Frame int
	// Elapsed is the time spent on the current frame in milliseconds.
	Elapsed float64
	// Finished is set once a non-looping animation has shown its last frame
	// for that frame's full duration. The state then holds the last frame.
	Finished bool
}

// Start returns a fresh playback state for anim at its first frame.
func Start(anim *Animation) *AnimationState {
	return &AnimationState{Animation: anim}
}

// Reset returns the state to the first frame without reallocating.
func (s *AnimationState) Reset() {
	s.Frame = 0
	s.Elapsed = 0
	s.Finished = false
}

// CurrentFrame returns the frame currently shown.
func (s *AnimationState) CurrentFrame() Frame {
	return s.Animation.frames[s.Frame]
}

// Draw draws the current frame onto the animation's target canvas with its
// top-left corner at (x, y).
func (s *AnimationState) Draw(x, y float64) {
	a := s.Animation
	a.target.DrawRegion(a.sheet, a.frames[s.Frame].Rect, x, y)
}

// Advance moves the playback state forward by delta milliseconds. A delta
// that spans several frames steps through each of them, wrapping when the
// animation loops. A non-looping animation stops on its last frame, marks the
// state finished and discards the remaining time. Non-positive and
// non-finite deltas are ignored.
func Advance(s *AnimationState, delta float64) {
	if s.Finished || !finitePositive(delta) {
		return
	}
	a := s.Animation
	last := len(a.frames) - 1

	s.Elapsed += delta
	// Whole passes of a looping animation land back on the same frame, so at
	// most one pass is stepped through.
	if a.loop && s.Elapsed >= a.cycle {
		s.Elapsed = math.Mod(s.Elapsed, a.cycle)
	}
	for {
		d := a.frameDuration(s.Frame)
		if s.Elapsed < d-d*frameTolerance {
			return
		}
		s.Elapsed -= d
		if s.Elapsed < 0 {
			s.Elapsed = 0
		}
		s.Frame++
		if s.Frame > last {
			if a.loop {
				s.Frame = 0
				continue
			}
			s.Frame = last
			s.Finished = true
			s.Elapsed = 0
			return
		}
	}
}

// Animator advances the playback states content asks it to play. Each engine
// owns one; states stay owned by the content that started them.
type Animator struct {
	playing []*AnimationState
	tweens  []*TweenGroup
}

// Start returns a fresh playback state for anim. The state is not advanced
// automatically until passed to Play.
func (m *Animator) Start(anim *Animation) *AnimationState {
	return Start(anim)
}

// Play adds s to the states advanced on every simulate step. Playing a state
// twice has no further effect.
func (m *Animator) Play(s *AnimationState) {
	for _, p := range m.playing {
		if p == s {
			return
		}
	}
	m.playing = append(m.playing, s)
}

// Stop removes s from the advanced states and resets it to the first frame.
func (m *Animator) Stop(s *AnimationState) {
	for i, p := range m.playing {
		if p == s {
			m.playing = append(m.playing[:i], m.playing[i+1:]...)
			break
		}
	}
	s.Reset()
}

// Playing returns the states currently advanced. The returned slice MUST NOT
// be mutated.
func (m *Animator) Playing() []*AnimationState {
	return m.playing
}

// Tween adds g to the tweens updated on every simulate step. Finished tweens
// are dropped.
func (m *Animator) Tween(g *TweenGroup) {
	m.tweens = append(m.tweens, g)
}

// Tweens returns the number of running tweens.
func (m *Animator) Tweens() int {
	return len(m.tweens)
}

// advance moves every playing state and tween forward by delta milliseconds.
func (m *Animator) advance(delta float64) {
	for _, s := range m.playing {
		Advance(s, delta)
	}
	n := 0
	for _, g := range m.tweens {
		g.Update(delta)
		if !g.Done {
			m.tweens[n] = g
			n++
		}
	}
	clear(m.tweens[n:])
	m.tweens = m.tweens[:n]
}
