package easel

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Config holds the in-process engine configuration.
type Config struct {
	// Logical is the design resolution content is authored against.
	// Required; immutable after New.
	Logical Size
	// Container is the initial size of the space the canvas is fitted into.
	// Zero means the logical size.
	Container Size
	// PixelDensity is the initial device pixel density. Zero means 1.
	PixelDensity float64
	// FPS is the target draw rate. Zero means DefaultFPS.
	FPS float64
	// Background fills the canvas before every draw. The zero value is
	// transparent, which only clears.
	Background Color
	// ShowFPS prints measured draw and tick rates over the canvas.
	ShowFPS bool
	// Debug logs per-second timing stats and rejected resizes.
	Debug bool
	// ScreenshotDir is where Screenshot writes PNGs. Zero means "screenshots".
	ScreenshotDir string
}

// Content is the user-supplied game content driven by the engine.
type Content interface {
	// Init runs once from Start, after the canvas is set up and before the
	// first tick.
	Init(ctx *Context) error
	// Update runs on every host tick with the time since the previous tick in
	// milliseconds.
	Update(ctx *Context, delta float64) error
	// Draw runs when the scheduler decides a frame is due. The canvas is
	// cleared and scaled to logical units.
	Draw(ctx *Context) error
}

// Resizer is implemented by content that wants resize notifications.
type Resizer interface {
	Resize(ctx *Context, ev ResizeEvent)
}

// KeyListener is implemented by content that wants key transitions. code is
// the key name, e.g. "Space" or "ArrowLeft".
type KeyListener interface {
	KeyDown(ctx *Context, code string, ev KeyEvent)
	KeyUp(ctx *Context, code string, ev KeyEvent)
}

// ResizeEvent describes an accepted container resize.
type ResizeEvent struct {
	Container    Size
	PixelDensity float64
	Transform    ViewportTransform
}

// Context is the capability set handed to content on every lifecycle hook.
type Context struct {
	Canvas  Canvas
	Logical Size
	// Transform and Bounds are replaced together on every accepted resize.
	Transform ViewportTransform
	Bounds    Rect

	Assets   *AssetLoader
	Keys     *KeyManager
	Scenes   *SceneManager
	Animator *Animator

	engine *Engine
}

// ResizeCanvas refits the canvas into a new container. It returns
// ErrInvalidViewport and keeps the current transform when the size cannot be
// fitted.
func (c *Context) ResizeCanvas(container Size, pixelDensity float64) error {
	return c.engine.Resize(container, pixelDensity)
}

// Screenshot queues a labelled capture of the next drawn frame.
func (c *Context) Screenshot(label string) {
	c.engine.Screenshot(label)
}

// Stats returns the engine's current timing stats.
func (c *Context) Stats() Stats {
	return c.engine.Stats()
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithTickSource replaces the default FrameTicks host tick source.
func WithTickSource(host TickSource) Option {
	return func(e *Engine) { e.host = host }
}

// WithCanvas replaces the Ebitengine backing store factory.
func WithCanvas(newCanvas func(w, h int) Canvas) Option {
	return func(e *Engine) { e.newCanvas = newCanvas }
}

// WithAssets sets the asset loader exposed to content.
func WithAssets(assets *AssetLoader) Option {
	return func(e *Engine) { e.assets = assets }
}

// WithScenes sets the scene manager exposed to content.
func WithScenes(scenes *SceneManager) Option {
	return func(e *Engine) { e.scenes = scenes }
}

// WithKeys sets the key manager exposed to content.
func WithKeys(keys *KeyManager) Option {
	return func(e *Engine) { e.keys = keys }
}

// WithLogOutput redirects debug logging, stderr by default.
func WithLogOutput(w io.Writer) Option {
	return func(e *Engine) { e.logger = log.New(w, "[easel] ", 0) }
}

// Engine wires the scheduler, viewport fitting and animation playback to
// user content. It owns exactly one Scheduler and one current
// ViewportTransform.
type Engine struct {
	cfg     Config
	content Content

	clock     Clock
	host      TickSource
	newCanvas func(w, h int) Canvas
	logger    *log.Logger

	scheduler *Scheduler
	transform ViewportTransform
	container Size
	canvas    Canvas
	ctx       *Context

	animator Animator
	assets   *AssetLoader
	keys     *KeyManager
	scenes   *SceneManager

	stats           frameStats
	screenshotQueue []string
	testRunner      *TestRunner
	initialized     bool
}

// New validates cfg, fits the canvas into the initial container and builds
// an engine around content. Any invalid field returns an error and no engine.
func New(cfg Config, content Content, opts ...Option) (*Engine, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidConfiguration)
	}
	if !cfg.Logical.positive() {
		return nil, fmt.Errorf("%w: logical size %vx%v", ErrInvalidConfiguration, cfg.Logical.Width, cfg.Logical.Height)
	}
	if cfg.FPS == 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.PixelDensity == 0 {
		cfg.PixelDensity = 1
	}
	if cfg.Container == (Size{}) {
		cfg.Container = cfg.Logical
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}

	e := &Engine{
		cfg:       cfg,
		content:   content,
		clock:     SystemClock(),
		host:      &FrameTicks{},
		newCanvas: func(w, h int) Canvas { return NewImageCanvas(w, h) },
		logger:    log.New(os.Stderr, "[easel] ", 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.assets == nil {
		e.assets = NewAssetLoader(os.DirFS("."))
	}
	if e.keys == nil {
		e.keys = NewKeyManager()
	}
	if e.scenes == nil {
		e.scenes = NewSceneManager()
	}

	sched, err := NewScheduler(cfg.FPS, e.host, e.clock, e.simulate, e.draw)
	if err != nil {
		return nil, err
	}
	e.scheduler = sched

	t, err := fitCanvas(cfg.Logical, cfg.Container, cfg.PixelDensity)
	if err != nil {
		return nil, err
	}
	e.transform = t
	e.container = cfg.Container
	e.canvas = e.newCanvas(t.CanvasPixelWidth, t.CanvasPixelHeight)
	if e.canvas == nil {
		return nil, fmt.Errorf("%w: canvas factory returned nil", ErrInvalidConfiguration)
	}

	e.ctx = &Context{
		Canvas:    e.canvas,
		Logical:   cfg.Logical,
		Transform: t,
		Bounds:    t.Bounds,
		Assets:    e.assets,
		Keys:      e.keys,
		Scenes:    e.scenes,
		Animator:  &e.animator,
		engine:    e,
	}
	return e, nil
}

// fitCanvas fits the viewport and rejects transforms whose backing store
// would be smaller than one pixel.
func fitCanvas(logical, container Size, density float64) (ViewportTransform, error) {
	t, err := FitViewport(logical, container, density)
	if err != nil {
		return ViewportTransform{}, err
	}
	if t.CanvasPixelWidth < 1 || t.CanvasPixelHeight < 1 {
		return ViewportTransform{}, fmt.Errorf("%w: container %vx%v fits a %dx%d canvas",
			ErrInvalidViewport, container.Width, container.Height, t.CanvasPixelWidth, t.CanvasPixelHeight)
	}
	return t, nil
}

// Config returns the effective configuration, defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// Context returns the capability set handed to content.
func (e *Engine) Context() *Context { return e.ctx }

// Canvas returns the backing store.
func (e *Engine) Canvas() Canvas { return e.canvas }

// Scheduler returns the engine's frame scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// Transform returns the current viewport transform.
func (e *Engine) Transform() ViewportTransform { return e.transform }

// Container returns the container size of the current transform.
func (e *Engine) Container() Size { return e.container }

// Start initializes content on its first call and begins the render loop.
// Calling Start while running is a no-op. An Init error is returned and the
// loop is not started.
func (e *Engine) Start() error {
	if !e.initialized {
		if err := e.content.Init(e.ctx); err != nil {
			return fmt.Errorf("easel: init content: %w", err)
		}
		e.initialized = true
	}
	e.scheduler.Start()
	return nil
}

// Stop halts the render loop. Timing state is retained; call
// Scheduler().ResetTiming before Start to resume without a catch-up delta.
func (e *Engine) Stop() {
	e.scheduler.Stop()
}

// Resize refits the canvas into a new container. An unfittable size returns
// ErrInvalidViewport and leaves the current transform in place. Otherwise the
// backing store is resized and content is notified before the next draw.
func (e *Engine) Resize(container Size, pixelDensity float64) error {
	t, err := fitCanvas(e.cfg.Logical, container, pixelDensity)
	if err != nil {
		if e.cfg.Debug {
			e.logger.Printf("resize ignored: %v", err)
		}
		return err
	}

	e.transform = t
	e.container = container
	e.canvas.Resize(t.CanvasPixelWidth, t.CanvasPixelHeight)
	e.ctx.Transform = t
	e.ctx.Bounds = t.Bounds

	if r, ok := e.content.(Resizer); ok {
		r.Resize(e.ctx, ResizeEvent{Container: container, PixelDensity: pixelDensity, Transform: t})
	}
	return nil
}

// simulate is the scheduler's per-tick step.
func (e *Engine) simulate(delta float64) error {
	t0 := time.Now()

	if e.testRunner != nil {
		e.testRunner.step(e)
	}
	e.keys.drain(e.dispatchKey)
	e.animator.advance(delta)
	if err := e.content.Update(e.ctx, delta); err != nil {
		return err
	}

	e.stats.recordTick(delta, time.Since(t0))
	if e.stats.windowClosed && e.cfg.Debug {
		e.debugLog()
	}
	return nil
}

// draw is the scheduler's draw step.
func (e *Engine) draw() error {
	t0 := time.Now()

	c := e.canvas
	c.SetScale(1)
	c.Clear()
	if !e.cfg.Background.Transparent() {
		c.Fill(e.cfg.Background)
	}
	c.SetScale(e.transform.RenderScale())

	if err := e.content.Draw(e.ctx); err != nil {
		return err
	}
	if e.cfg.ShowFPS {
		e.drawStatsOverlay()
	}
	e.flushScreenshots()

	e.stats.recordDraw(time.Since(t0))
	return nil
}

func (e *Engine) dispatchKey(ev KeyEvent) {
	l, ok := e.content.(KeyListener)
	if !ok {
		return
	}
	if ev.Down {
		l.KeyDown(e.ctx, ev.Code, ev)
	} else {
		l.KeyUp(e.ctx, ev.Code, ev)
	}
}
