package easel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML document describing an engine and its animations.
//
//	engine:
//	  width: 320
//	  height: 180
//	  fps: 30
//	  background: "#1a1a26"
//	animations:
//	  - name: hero_run
//	    sheet: sprites/hero.png
//	    fps: 12
//	    grid: {width: 32, height: 32, frames: [0, 1, 2, 3]}
type FileConfig struct {
	Engine     EngineSpec      `yaml:"engine"`
	Animations []AnimationSpec `yaml:"animations"`
}

// EngineSpec is the YAML form of Config. An omitted fps takes the engine
// default; an explicit one must be positive.
type EngineSpec struct {
	Width         float64  `yaml:"width"`
	Height        float64  `yaml:"height"`
	FPS           *float64 `yaml:"fps"`
	PixelDensity  float64  `yaml:"pixel_density"`
	Background    string   `yaml:"background"`
	ShowFPS       bool     `yaml:"show_fps"`
	Debug         bool     `yaml:"debug"`
	ScreenshotDir string   `yaml:"screenshot_dir"`
}

// AnimationSpec is the YAML form of an animation definition. Frames come
// either from a uniform grid over the sheet or from explicit rectangles.
type AnimationSpec struct {
	Name  string      `yaml:"name"`
	Sheet string      `yaml:"sheet"`
	FPS   *float64    `yaml:"fps"`
	Loop  *bool       `yaml:"loop"`
	Grid  *GridSpec   `yaml:"grid"`
	Rects []FrameSpec `yaml:"rects"`
}

// GridSpec slices a sheet into equal cells numbered left to right, top to
// bottom. An empty Frames list takes every cell in order.
type GridSpec struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Frames []int `yaml:"frames"`
	// Duration is a per-frame override in milliseconds applied to every cell.
	Duration float64 `yaml:"duration"`
}

// FrameSpec is one explicit frame rectangle.
type FrameSpec struct {
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	W        int     `yaml:"w"`
	H        int     `yaml:"h"`
	Duration float64 `yaml:"duration"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("easel: load %s: %w", path, err)
	}
	fc, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("easel: load %s: %w", path, err)
	}
	return fc, nil
}

// ParseConfig parses a YAML config document. Unknown fields, duplicate
// animation names and missing required fields return
// ErrInvalidConfiguration.
func ParseConfig(data []byte) (*FileConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fc FileConfig
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	seen := make(map[string]bool, len(fc.Animations))
	for i, a := range fc.Animations {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: animation %d: name is required", ErrInvalidConfiguration, i)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("%w: duplicate animation name %q", ErrInvalidConfiguration, a.Name)
		}
		seen[a.Name] = true
		if a.Sheet == "" {
			return nil, fmt.Errorf("%w: animation %q: sheet is required", ErrInvalidConfiguration, a.Name)
		}
		if (a.Grid == nil) == (len(a.Rects) == 0) {
			return nil, fmt.Errorf("%w: animation %q: exactly one of grid or rects is required", ErrInvalidConfiguration, a.Name)
		}
	}
	return &fc, nil
}

// Config converts s into an engine Config.
func (s EngineSpec) Config() (Config, error) {
	var fps float64
	if s.FPS != nil {
		if !finitePositive(*s.FPS) {
			return Config{}, fmt.Errorf("%w: fps must be positive, got %v", ErrInvalidConfiguration, *s.FPS)
		}
		fps = *s.FPS
	}
	bg, err := ParseColor(s.Background)
	if err != nil {
		return Config{}, fmt.Errorf("%w: background: %v", ErrInvalidConfiguration, err)
	}
	return Config{
		Logical:       Size{Width: s.Width, Height: s.Height},
		FPS:           fps,
		PixelDensity:  s.PixelDensity,
		Background:    bg,
		ShowFPS:       s.ShowFPS,
		Debug:         s.Debug,
		ScreenshotDir: s.ScreenshotDir,
	}, nil
}

// Build resolves the frames of s against sheet and constructs the
// animation.
func (s AnimationSpec) Build(sheet Image, target Canvas) (*Animation, error) {
	var frames []Frame
	if s.Grid != nil {
		if sheet == nil {
			return nil, fmt.Errorf("%w: animation %q: sprite sheet is required", ErrInvalidConfiguration, s.Name)
		}
		var err error
		frames, err = s.Grid.frames(sheet.Bounds())
		if err != nil {
			return nil, fmt.Errorf("%w: animation %q: %v", ErrInvalidConfiguration, s.Name, err)
		}
	} else {
		frames = make([]Frame, len(s.Rects))
		for i, r := range s.Rects {
			frames[i] = Frame{Rect: image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H), Duration: r.Duration}
		}
	}

	var opts []AnimationOption
	if s.FPS != nil {
		opts = append(opts, WithFPS(*s.FPS))
	}
	if s.Loop != nil {
		opts = append(opts, WithLoop(*s.Loop))
	}
	return NewAnimation(s.Name, sheet, frames, target, opts...)
}

func (g *GridSpec) frames(bounds image.Rectangle) ([]Frame, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("grid cell %dx%d", g.Width, g.Height)
	}
	cols := bounds.Dx() / g.Width
	rows := bounds.Dy() / g.Height
	cells := cols * rows
	if cells == 0 {
		return nil, fmt.Errorf("grid cell %dx%d does not fit sheet %v", g.Width, g.Height, bounds)
	}

	indices := g.Frames
	if len(indices) == 0 {
		indices = make([]int, cells)
		for i := range indices {
			indices[i] = i
		}
	}
	frames := make([]Frame, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= cells {
			return nil, fmt.Errorf("grid frame %d out of range [0, %d)", idx, cells)
		}
		x := bounds.Min.X + (idx%cols)*g.Width
		y := bounds.Min.Y + (idx/cols)*g.Height
		frames[i] = Frame{Rect: image.Rect(x, y, x+g.Width, y+g.Height), Duration: g.Duration}
	}
	return frames, nil
}

// AnimationSet holds animations by name.
type AnimationSet map[string]*Animation

// BuildAnimations constructs every animation in specs. sheet resolves a
// sheet path to an image, typically AssetLoader.Image.
func BuildAnimations(specs []AnimationSpec, sheet func(path string) (Image, bool), target Canvas) (AnimationSet, error) {
	set := make(AnimationSet, len(specs))
	for _, s := range specs {
		if _, dup := set[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate animation name %q", ErrInvalidConfiguration, s.Name)
		}
		img, ok := sheet(s.Sheet)
		if !ok {
			return nil, fmt.Errorf("%w: animation %q: sheet %s is not loaded", ErrInvalidConfiguration, s.Name, s.Sheet)
		}
		a, err := s.Build(img, target)
		if err != nil {
			return nil, err
		}
		set[s.Name] = a
	}
	return set, nil
}

// Sheets returns the distinct sheet paths referenced by specs, in order of
// first use.
func Sheets(specs []AnimationSpec) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, s := range specs {
		if !seen[s.Sheet] {
			seen[s.Sheet] = true
			paths = append(paths, s.Sheet)
		}
	}
	return paths
}

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or an SVG color name such
// as "cornflowerblue". The empty string and "transparent" are the zero Color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "transparent" {
		return Color{}, nil
	}
	if !strings.HasPrefix(s, "#") {
		c, ok := colornames.Map[s]
		if !ok {
			return Color{}, fmt.Errorf("unknown color %q", s)
		}
		return Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255, A: float64(c.A) / 255}, nil
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("malformed color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("malformed color %q", s)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
