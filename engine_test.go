package easel

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		content Content
		want    error
	}{
		{"nil content", Config{Logical: Size{320, 180}}, nil, ErrInvalidConfiguration},
		{"zero logical", Config{}, &testContent{}, ErrInvalidConfiguration},
		{"negative fps", Config{Logical: Size{320, 180}, FPS: -1}, &testContent{}, ErrInvalidConfiguration},
		{"bad container", Config{Logical: Size{320, 180}, Container: Size{-5, 100}}, &testContent{}, ErrInvalidViewport},
		{"bad density", Config{Logical: Size{320, 180}, PixelDensity: -1}, &testContent{}, ErrInvalidViewport},
		{"sub-pixel canvas", Config{Logical: Size{1000, 10}, Container: Size{10, 10}}, &testContent{}, ErrInvalidViewport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _, _, err := newTestEngine(tt.cfg, tt.content)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if e != nil {
				t.Error("got a partially built engine")
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	e, _, _, canvas, err := newTestEngine(Config{Logical: Size{320, 180}}, &testContent{})
	if err != nil {
		t.Fatal(err)
	}
	cfg := e.Config()
	if cfg.FPS != DefaultFPS || cfg.PixelDensity != 1 || cfg.Container != cfg.Logical {
		t.Errorf("defaults = %+v", cfg)
	}
	if w, h := canvas.Size(); w != 320 || h != 180 {
		t.Errorf("canvas = %dx%d, want 320x180", w, h)
	}
	if e.Scheduler().DrawInterval() != 1000.0/60 {
		t.Errorf("DrawInterval = %v", e.Scheduler().DrawInterval())
	}

	ctx := e.Context()
	if ctx.Canvas != e.Canvas() || ctx.Logical != cfg.Logical || ctx.Bounds != e.Transform().Bounds {
		t.Error("context does not mirror the engine")
	}
	if ctx.Assets == nil || ctx.Keys == nil || ctx.Scenes == nil || ctx.Animator == nil {
		t.Error("context is missing a capability")
	}
}

func TestNewRetinaCanvas(t *testing.T) {
	_, _, _, canvas, err := newTestEngine(Config{
		Logical:      Size{320, 180},
		Container:    Size{1280, 800},
		PixelDensity: 2,
	}, &testContent{})
	if err != nil {
		t.Fatal(err)
	}
	// 1280x720 display at density 2.
	if w, h := canvas.Size(); w != 2560 || h != 1440 {
		t.Errorf("canvas = %dx%d, want 2560x1440", w, h)
	}
}

func TestStartInitOnce(t *testing.T) {
	content := &testContent{}
	e, _, ticks, _, err := newTestEngine(Config{Logical: Size{320, 180}}, content)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if !ticks.Pending() {
		t.Error("Start did not request a tick")
	}
	e.Stop()
	if ticks.Pending() {
		t.Error("Stop left a tick pending")
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if content.inits != 1 {
		t.Errorf("Init called %d times, want 1", content.inits)
	}
}

func TestStartInitError(t *testing.T) {
	content := &testContent{initErr: errBoom}
	e, _, ticks, _, err := newTestEngine(Config{Logical: Size{320, 180}}, content)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if ticks.Pending() || e.Scheduler().Running() {
		t.Error("loop started after a failed Init")
	}
}

func TestTickSimulatesAndDraws(t *testing.T) {
	content := &testContent{}
	e, clock, ticks, _, err := newTestEngine(Config{Logical: Size{320, 180}, FPS: 30}, content)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	for _, now := range []float64{10, 20, 30, 40, 50} {
		clock.now = now
		if err := ticks.Fire(now); err != nil {
			t.Fatal(err)
		}
	}
	if content.updates != 5 {
		t.Errorf("updates = %d, want 5", content.updates)
	}
	if content.drawsN != 1 {
		t.Errorf("draws = %d, want 1", content.drawsN)
	}
	st := e.Stats()
	if st.Ticks != 5 || st.Draws != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestTickErrorPropagates(t *testing.T) {
	content := &testContent{updateErr: errBoom}
	e, _, ticks, _, err := newTestEngine(Config{Logical: Size{320, 180}}, content)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if err := ticks.Fire(100); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if content.drawsN != 0 {
		t.Error("drew after a failed update")
	}
	if e.Scheduler().Running() {
		t.Error("loop still running after an error")
	}
}

func TestDrawPipeline(t *testing.T) {
	bg := Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	content := &testContent{}
	e, _, _, canvas, err := newTestEngine(Config{
		Logical:      Size{320, 180},
		Container:    Size{640, 360},
		PixelDensity: 2,
		Background:   bg,
	}, content)
	if err != nil {
		t.Fatal(err)
	}
	content.onDraw = func(ctx *Context) {
		ctx.Canvas.DrawRegion(sheet(8, 8), sheet(8, 8).Bounds(), 1, 1)
	}
	canvas.calls = nil

	if err := e.draw(); err != nil {
		t.Fatal(err)
	}
	want := []string{"scale 1", "clear", "fill", "scale 4", "draw"}
	if !slices.Equal(canvas.calls, want) {
		t.Errorf("calls = %v, want %v", canvas.calls, want)
	}
	if canvas.fills[0] != bg {
		t.Errorf("fill = %v, want %v", canvas.fills[0], bg)
	}
	if canvas.draws[0].scale != 4 {
		t.Errorf("content drew at scale %v, want 4", canvas.draws[0].scale)
	}
}

func TestDrawTransparentBackgroundOnlyClears(t *testing.T) {
	e, _, _, canvas, err := newTestEngine(Config{Logical: Size{320, 180}}, &testContent{})
	if err != nil {
		t.Fatal(err)
	}
	canvas.calls = nil
	if err := e.draw(); err != nil {
		t.Fatal(err)
	}
	if slices.Contains(canvas.calls, "fill") {
		t.Errorf("calls = %v, want no fill", canvas.calls)
	}
}

func TestDrawError(t *testing.T) {
	e, _, _, _, err := newTestEngine(Config{Logical: Size{320, 180}}, &testContent{drawErr: errBoom})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.draw(); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want errBoom", err)
	}
}

func TestResize(t *testing.T) {
	content := &listeningContent{}
	e, _, _, canvas, err := newTestEngine(Config{Logical: Size{320, 180}}, content)
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Context().ResizeCanvas(Size{1000, 360}, 1.5); err != nil {
		t.Fatal(err)
	}
	vt := e.Transform()
	if vt.Scale != 2 || vt.Bounds != (Rect{X: 180, Y: 0, Width: 640, Height: 360}) {
		t.Errorf("transform = %+v", vt)
	}
	if w, h := canvas.Size(); w != 960 || h != 540 {
		t.Errorf("canvas = %dx%d, want 960x540", w, h)
	}
	if e.Context().Transform != vt || e.Context().Bounds != vt.Bounds {
		t.Error("context not updated")
	}
	if e.Container() != (Size{1000, 360}) {
		t.Errorf("Container = %v", e.Container())
	}
	if len(content.resizes) != 1 || content.resizes[0].Transform != vt || content.resizes[0].PixelDensity != 1.5 {
		t.Errorf("resize events = %+v", content.resizes)
	}
}

func TestResizeRejectedKeepsTransform(t *testing.T) {
	var logs bytes.Buffer
	content := &listeningContent{}
	e, err := New(Config{Logical: Size{320, 180}, Debug: true}, content,
		WithClock(&manualClock{}),
		WithTickSource(&FrameTicks{}),
		WithCanvas(func(w, h int) Canvas { return newRecordingCanvas(w, h) }),
		WithLogOutput(&logs),
	)
	if err != nil {
		t.Fatal(err)
	}
	before := e.Transform()

	for _, c := range []Size{{0, 100}, {100, -1}, {1, 1}} {
		if err := e.Resize(c, 1); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("Resize(%v) err = %v, want ErrInvalidViewport", c, err)
		}
	}
	if err := e.Resize(Size{640, 360}, 0); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("zero density err = %v", err)
	}
	if e.Transform() != before {
		t.Error("transform changed after a rejected resize")
	}
	if len(content.resizes) != 0 {
		t.Error("content notified of a rejected resize")
	}
	if !strings.Contains(logs.String(), "resize ignored") {
		t.Errorf("log = %q", logs.String())
	}
}

func TestKeyDispatch(t *testing.T) {
	content := &listeningContent{}
	e, _, _, _, err := newTestEngine(Config{Logical: Size{320, 180}}, content)
	if err != nil {
		t.Fatal(err)
	}
	var pressedDuringUpdate bool
	content.onUpdate = func(ctx *Context, delta float64) {
		pressedDuringUpdate = ctx.Keys.Pressed(ebiten.KeyEnter)
	}

	e.keys.InjectKeyDown(ebiten.KeyEnter, ModShift)
	if err := e.simulate(16); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(content.keys, []string{"down Enter"}) {
		t.Errorf("keys = %v", content.keys)
	}
	if !pressedDuringUpdate {
		t.Error("key not pressed during Update")
	}
}

func TestSimulateAdvancesAnimatorBeforeUpdate(t *testing.T) {
	content := &testContent{}
	e, _, _, canvas, err := newTestEngine(Config{Logical: Size{320, 180}}, content)
	if err != nil {
		t.Fatal(err)
	}
	anim, err := NewAnimation("spin", sheet(64, 16), stripFrames(4, 16, 16), canvas, WithFPS(10))
	if err != nil {
		t.Fatal(err)
	}
	ctx := e.Context()
	state := ctx.Animator.Start(anim)
	ctx.Animator.Play(state)

	var seen int
	content.onUpdate = func(ctx *Context, delta float64) { seen = state.Frame }
	if err := e.simulate(250); err != nil {
		t.Fatal(err)
	}
	if state.Frame != 2 || seen != 2 {
		t.Errorf("frame = %d, seen in Update = %d, want 2", state.Frame, seen)
	}
}

func TestSimulateRunsTweens(t *testing.T) {
	e, _, _, _, err := newTestEngine(Config{Logical: Size{320, 180}}, &testContent{})
	if err != nil {
		t.Fatal(err)
	}
	x := 0.0
	e.Context().Animator.Tween(TweenValue(&x, 100, 200, ease.Linear))
	for range 4 {
		if err := e.simulate(50); err != nil {
			t.Fatal(err)
		}
	}
	if x != 100 {
		t.Errorf("x = %v, want 100", x)
	}
	if n := e.Context().Animator.Tweens(); n != 0 {
		t.Errorf("Tweens = %d after finishing, want 0", n)
	}
}

func TestStatsSkippedDraws(t *testing.T) {
	e, clock, ticks, _, err := newTestEngine(Config{Logical: Size{320, 180}, FPS: 20}, &testContent{})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	// 50ms interval, 10ms ticks: one draw per five ticks at most.
	for i := 1; i <= 100; i++ {
		clock.now = float64(i * 10)
		if err := ticks.Fire(clock.now); err != nil {
			t.Fatal(err)
		}
	}
	st := e.Stats()
	if st.Ticks != 100 {
		t.Errorf("Ticks = %d, want 100", st.Ticks)
	}
	if st.Draws < 15 || st.Draws > 20 {
		t.Errorf("Draws = %d, want about 1000/50", st.Draws)
	}
	if st.SkippedDraws+st.Draws < 99 {
		t.Errorf("SkippedDraws = %d, Draws = %d: every tick should be counted", st.SkippedDraws, st.Draws)
	}
	if st.TPS < 99 || st.TPS > 101 {
		t.Errorf("TPS = %v, want 100", st.TPS)
	}
}

func TestShowFPSOverlayRequiresDebugText(t *testing.T) {
	// The recording canvas cannot print text; the overlay is skipped silently.
	e, _, _, canvas, err := newTestEngine(Config{Logical: Size{320, 180}, ShowFPS: true}, &testContent{})
	if err != nil {
		t.Fatal(err)
	}
	canvas.calls = nil
	if err := e.draw(); err != nil {
		t.Fatal(err)
	}
	if len(canvas.calls) != 3 {
		t.Errorf("calls = %v", canvas.calls)
	}
}

func TestDebugLogsStats(t *testing.T) {
	var logs bytes.Buffer
	clock := &manualClock{}
	ticks := &FrameTicks{}
	e, err := New(Config{Logical: Size{320, 180}, Debug: true}, &testContent{},
		WithClock(clock),
		WithTickSource(ticks),
		WithCanvas(func(w, h int) Canvas { return newRecordingCanvas(w, h) }),
		WithLogOutput(&logs),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 40; i++ {
		clock.now = float64(i * 16)
		if err := ticks.Fire(clock.now); err != nil {
			t.Fatal(err)
		}
	}
	if !strings.Contains(logs.String(), "[easel] tps:") {
		t.Errorf("log = %q", logs.String())
	}
}

func BenchmarkEngineTick(b *testing.B) {
	clock := &manualClock{}
	ticks := &FrameTicks{}
	e, err := New(Config{Logical: Size{320, 180}}, &testContent{},
		WithClock(clock),
		WithTickSource(ticks),
		WithCanvas(func(w, h int) Canvas { return newRecordingCanvas(w, h) }),
		WithLogOutput(discard{}),
	)
	if err != nil {
		b.Fatal(err)
	}
	if err := e.Start(); err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		clock.now += 1000.0 / 144
		if err := ticks.Fire(clock.now); err != nil {
			b.Fatal(err)
		}
	}
}
