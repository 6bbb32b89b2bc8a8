// Package easel is a small fixed-resolution 2D canvas engine for
// [Ebitengine].
//
// Easel drives user content through a frame scheduler that simulates on
// every host tick and draws at a capped rate, fits a logical design
// resolution into any window without distortion, and plays sprite-sheet
// animations. Assets, keyboard state, scenes, tweens (via [gween]) and YAML
// configuration round it out.
//
// # Quick start
//
// Implement [Content] and hand it to [New], then [Run] it:
//
//	type game struct{}
//
//	func (game) Init(ctx *easel.Context) error                 { return nil }
//	func (game) Update(ctx *easel.Context, delta float64) error { return nil }
//	func (game) Draw(ctx *easel.Context) error                  { return nil }
//
//	e, err := easel.New(easel.Config{Logical: easel.Size{Width: 320, Height: 180}}, game{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := easel.Run(e, easel.RunConfig{Title: "My Game", Resizable: true}); err != nil {
//		log.Fatal(err)
//	}
//
// All times are milliseconds. Content draws in logical units; the canvas
// scale is set to the viewport scale times the device pixel density before
// every [Content.Draw].
//
// # Scheduling
//
// A [Scheduler] receives one callback per host frame from a [TickSource].
// Simulate runs on every tick with the time since the previous tick. Draw runs
// only when strictly more than 1000/fps milliseconds have passed since the
// last draw, and the last-draw stamp is re-anchored to the interval grid so
// jittery hosts keep the target rate on average. Errors from either step stop
// the loop and surface to the host.
//
// # Viewport
//
// [FitViewport] letterboxes the logical size into a container: the scale is
// the smaller of the two axis ratios, the fitted rectangle is centered, and
// the backing store holds display size times pixel density pixels.
//
// # Animations
//
// An [Animation] is an immutable sprite-sheet definition built with
// [NewAnimation] or from YAML with [BuildAnimations]. Playback state lives in
// an [AnimationState]; [Advance] steps through every frame a large delta
// spans. Hand states to the engine's [Animator] to have them advanced before
// each [Content.Update].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package easel
