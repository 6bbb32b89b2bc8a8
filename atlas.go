package easel

import (
	"encoding/json"
	"fmt"
	"image"
	"slices"
	"strings"
)

// AtlasRegion describes a named sub-rectangle within an atlas page.
type AtlasRegion struct {
	Page    int             // atlas page index
	Rect    image.Rectangle // sub-image rect within the page
	Rotated bool            // true if the region is stored 90 degrees clockwise
}

// Atlas is a set of page images plus the named regions packed into them.
type Atlas struct {
	// Pages is indexed by the page number stored in each region.
	Pages   []Image
	regions map[string]AtlasRegion
}

// Region returns the region for the given name.
func (a *Atlas) Region(name string) (AtlasRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Names returns every region name in lexical order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.regions))
	for name := range a.regions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Frames returns the animation frames for every region named by prefix, in
// lexical name order, together with the page image they share. A prefix
// without a trailing separator only matches where the name continues with a
// separator or a digit, so "run" picks up "run_00" and "run01" but not
// "runner_00". Zero-padded frame numbers ("run_00", "run_01", ...) sort
// correctly. Rotated regions and prefixes spanning several pages are
// rejected.
func (a *Atlas) Frames(prefix string) (Image, []Frame, error) {
	var names []string
	for _, name := range a.Names() {
		if hasFramePrefix(name, prefix) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("easel: atlas has no regions with prefix %q", prefix)
	}

	page := -1
	frames := make([]Frame, 0, len(names))
	for _, name := range names {
		r := a.regions[name]
		if r.Rotated {
			return nil, nil, fmt.Errorf("easel: atlas region %q is rotated", name)
		}
		if page >= 0 && r.Page != page {
			return nil, nil, fmt.Errorf("easel: atlas regions with prefix %q span pages %d and %d", prefix, page, r.Page)
		}
		page = r.Page
		frames = append(frames, Frame{Rect: r.Rect})
	}
	if page >= len(a.Pages) || a.Pages[page] == nil {
		return nil, nil, fmt.Errorf("easel: atlas page %d is not loaded", page)
	}
	return a.Pages[page], frames, nil
}

// hasFramePrefix reports whether name is a frame of the sequence prefix.
func hasFramePrefix(name, prefix string) bool {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return false
	}
	if prefix != "" && isFrameSeparator(prefix[len(prefix)-1]) {
		return true
	}
	c := rest[0]
	return isFrameSeparator(c) || c >= '0' && c <= '9'
}

func isFrameSeparator(c byte) bool {
	switch c {
	case '_', '-', '.', '/', ' ':
		return true
	}
	return false
}

// LoadAtlas reads TexturePacker JSON and binds its regions to pages. Both the
// single-page hash layout (a top-level "frames" object) and the multi-page
// layout (a "textures" list, one entry per page) are accepted.
func LoadAtlas(jsonData []byte, pages []Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("easel: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]AtlasRegion),
	}

	if probe.Textures != nil {
		if err := parsePages(probe.Textures, atlas); err != nil {
			return nil, err
		}
	} else if probe.Frames != nil {
		if err := parseRegions(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("easel: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame   jsonRect `json:"frame"`
	Rotated bool     `json:"rotated"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseRegions adds every entry of a name-to-frame object on the given page.
func parseRegions(raw json.RawMessage, page int, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("easel: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.regions[name] = frameToRegion(f, page)
	}
	return nil
}

// parsePages reads the "textures" list; entry i is page i.
func parsePages(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("easel: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.regions[name] = frameToRegion(f, i)
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page int) AtlasRegion {
	w, h := f.Frame.W, f.Frame.H
	if f.Rotated {
		w, h = h, w
	}
	return AtlasRegion{
		Page:    page,
		Rect:    image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+w, f.Frame.Y+h),
		Rotated: f.Rotated,
	}
}
