package easel

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	Key     string  `json:"key,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Density float64 `json:"density,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected key events, resizes and screenshots across
// ticks for automated checks. Attach to an Engine via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to an Engine via SetTestRunner. Key names are those accepted
// by ebiten.Key.UnmarshalText, e.g. "Space" or "ArrowLeft".
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "key", "keydown", "keyup":
			if _, err := parseKey(st.Key); err != nil {
				return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
			}
		case "resize", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the engine. The runner steps once at
// the start of every simulate.
func (e *Engine) SetTestRunner(runner *TestRunner) {
	e.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Errors returns the errors from steps that failed, such as rejected resizes.
func (r *TestRunner) Errors() []error {
	return r.errs
}

// step advances the test runner by one tick. Called from Engine.simulate.
func (r *TestRunner) step(e *Engine) {
	if r.done {
		return
	}
	// Wait for queued key events to be delivered before advancing.
	if e.keys.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		e.Screenshot(st.Label)
	case "key":
		key, _ := parseKey(st.Key)
		e.keys.InjectKeyPress(key)
	case "keydown":
		key, _ := parseKey(st.Key)
		e.keys.InjectKeyDown(key, 0)
	case "keyup":
		key, _ := parseKey(st.Key)
		e.keys.InjectKeyUp(key, 0)
	case "resize":
		density := st.Density
		if density == 0 {
			density = e.transform.PixelDensity
		}
		if err := e.Resize(Size{Width: st.Width, Height: st.Height}, density); err != nil {
			r.errs = append(r.errs, fmt.Errorf("step %d: %w", r.cursor-1, err))
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && e.keys.Pending() == 0 {
		r.done = true
	}
}

func parseKey(name string) (ebiten.Key, error) {
	var key ebiten.Key
	if err := key.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}
