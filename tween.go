package easel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup eases up to 4 float64 fields toward target values at once.
// Create one via the convenience constructors (TweenValue, TweenPosition,
// TweenColor) and either call Update each tick yourself or hand it to
// Animator.Tween.
//
// Durations and deltas are in milliseconds, like every other engine time.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	Done   bool
}

// Update advances all tweens by delta milliseconds and writes the eased values
// to the target fields.
func (g *TweenGroup) Update(delta float64) {
	if g.Done {
		return
	}
	allDone := true
	for i := range g.count {
		val, finished := g.tweens[i].Update(float32(delta))
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// Reset rewinds every tween to its start value.
func (g *TweenGroup) Reset() {
	for i := range g.count {
		g.tweens[i].Reset()
		val, _ := g.tweens[i].Set(0)
		*g.fields[i] = float64(val)
	}
	g.Done = false
}

// TweenValue eases *v to `to` over duration milliseconds.
func TweenValue(v *float64, to, duration float64, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1}
	g.tweens[0] = gween.New(float32(*v), float32(to), float32(duration), fn)
	g.fields[0] = v
	return g
}

// TweenPosition eases *x and *y to (toX, toY) over duration milliseconds.
func TweenPosition(x, y *float64, toX, toY, duration float64, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2}
	g.tweens[0] = gween.New(float32(*x), float32(toX), float32(duration), fn)
	g.tweens[1] = gween.New(float32(*y), float32(toY), float32(duration), fn)
	g.fields[0] = x
	g.fields[1] = y
	return g
}

// TweenColor eases all four components of *c to `to` over duration
// milliseconds.
func TweenColor(c *Color, to Color, duration float64, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4}
	g.tweens[0] = gween.New(float32(c.R), float32(to.R), float32(duration), fn)
	g.tweens[1] = gween.New(float32(c.G), float32(to.G), float32(duration), fn)
	g.tweens[2] = gween.New(float32(c.B), float32(to.B), float32(duration), fn)
	g.tweens[3] = gween.New(float32(c.A), float32(to.A), float32(duration), fn)
	g.fields[0] = &c.R
	g.fields[1] = &c.G
	g.fields[2] = &c.B
	g.fields[3] = &c.A
	return g
}
