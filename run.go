package easel

import (
	"errors"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// FrameTicks is a TickSource driven by an explicit Fire call, once per host
// frame. The Ebitengine host fires it from Update; custom loops and tests
// fire it directly.
type FrameTicks struct {
	pending func(now float64) error
}

// RequestTick stores fn to be run by the next Fire.
func (t *FrameTicks) RequestTick(fn func(now float64) error) {
	t.pending = fn
}

// CancelTick drops the pending request.
func (t *FrameTicks) CancelTick() {
	t.pending = nil
}

// Pending reports whether a tick has been requested.
func (t *FrameTicks) Pending() bool {
	return t.pending != nil
}

// Fire runs the pending tick, if any, at timestamp now and returns its error.
func (t *FrameTicks) Fire(now float64) error {
	fn := t.pending
	if fn == nil {
		return nil
	}
	t.pending = nil
	return fn(now)
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the initial window size. Zero means the engine's
	// container size.
	Width, Height int
	// Resizable allows the user to resize the window.
	Resizable bool
	// Letterbox fills the screen around the fitted canvas. The zero value is
	// black.
	Letterbox Color
}

// Run opens a window and drives e with Ebitengine until the window closes or
// a tick returns an error. Content may return ebiten.Termination from Update
// to exit cleanly.
func Run(e *Engine, cfg RunConfig) error {
	g, err := NewGame(e, cfg)
	if err != nil {
		return err
	}
	w, h := cfg.Width, cfg.Height
	if w == 0 || h == 0 {
		w, h = int(e.container.Width), int(e.container.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	// One Update per displayed frame, like a browser animation-frame callback.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	if err := e.Start(); err != nil {
		return err
	}
	defer e.Stop()

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Game adapts an Engine to ebiten.Game for callers that run their own
// Ebitengine loop. The engine must use the default FrameTicks tick source and
// ImageCanvas backing store.
type Game struct {
	engine    *Engine
	ticks     *FrameTicks
	canvas    *ImageCanvas
	letterbox Color

	outside Size
	density float64
}

// NewGame returns an ebiten.Game that fires e's ticks from Update, reports
// window size changes as resizes from Layout and presents the backing store
// from Draw.
func NewGame(e *Engine, cfg RunConfig) (*Game, error) {
	ticks, ok := e.host.(*FrameTicks)
	if !ok {
		return nil, fmt.Errorf("%w: engine tick source %T is not *FrameTicks", ErrInvalidConfiguration, e.host)
	}
	canvas, ok := e.canvas.(*ImageCanvas)
	if !ok {
		return nil, fmt.Errorf("%w: engine canvas %T is not *ImageCanvas", ErrInvalidConfiguration, e.canvas)
	}
	letterbox := cfg.Letterbox
	if letterbox == (Color{}) {
		letterbox = ColorBlack
	}
	return &Game{
		engine:    e,
		ticks:     ticks,
		canvas:    canvas,
		letterbox: letterbox,
		outside:   e.container,
		density:   e.transform.PixelDensity,
	}, nil
}

// Update polls the keyboard and fires the pending engine tick.
func (g *Game) Update() error {
	g.engine.keys.poll()
	return g.ticks.Fire(g.engine.clock.Now())
}

// Draw presents the backing store at the fitted bounds.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.letterbox.toRGBA())

	t := g.engine.transform
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(math.Round(t.Bounds.X*t.PixelDensity), math.Round(t.Bounds.Y*t.PixelDensity))
	screen.DrawImage(g.canvas.Image(), &op)
}

// Layout reports window size changes to the engine and asks Ebitengine for a
// screen at device resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	density := ebiten.Monitor().DeviceScaleFactor()
	if density <= 0 {
		density = 1
	}
	outside := Size{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	if outside != g.outside || density != g.density {
		// A rejected size (a minimized window) keeps the previous transform.
		_ = g.engine.Resize(outside, density)
		g.outside = outside
		g.density = density
	}
	return max(1, int(math.Ceil(outside.Width*density))), max(1, int(math.Ceil(outside.Height*density)))
}
