package easel

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyEvent is a single key transition delivered to content.
type KeyEvent struct {
	Key ebiten.Key
	// Code is the key name as reported by ebiten.Key.String, e.g. "ArrowUp".
	Code      string
	Down      bool
	Modifiers KeyModifiers
}

// KeyManager tracks keyboard state and queues key transitions until the next
// simulate step. The host polls real input into it; tests and scripts inject
// synthetic transitions through the same queue.
type KeyManager struct {
	pressed map[ebiten.Key]bool
	queue   []KeyEvent
	keyBuf  []ebiten.Key
}

// NewKeyManager creates an empty key manager.
func NewKeyManager() *KeyManager {
	return &KeyManager{pressed: make(map[ebiten.Key]bool)}
}

// Pressed reports whether key is held as of the last delivered event.
func (k *KeyManager) Pressed(key ebiten.Key) bool {
	return k.pressed[key]
}

// AnyPressed reports whether any of the given keys is held.
func (k *KeyManager) AnyPressed(keys ...ebiten.Key) bool {
	for _, key := range keys {
		if k.pressed[key] {
			return true
		}
	}
	return false
}

// InjectKeyDown queues a synthetic key press. It is delivered on the next
// simulate step.
func (k *KeyManager) InjectKeyDown(key ebiten.Key, mods KeyModifiers) {
	k.queue = append(k.queue, KeyEvent{Key: key, Code: key.String(), Down: true, Modifiers: mods})
}

// InjectKeyUp queues a synthetic key release.
func (k *KeyManager) InjectKeyUp(key ebiten.Key, mods KeyModifiers) {
	k.queue = append(k.queue, KeyEvent{Key: key, Code: key.String(), Down: false, Modifiers: mods})
}

// InjectKeyPress queues a press followed by a release of key.
func (k *KeyManager) InjectKeyPress(key ebiten.Key) {
	k.InjectKeyDown(key, 0)
	k.InjectKeyUp(key, 0)
}

// Pending returns the number of queued, undelivered events.
func (k *KeyManager) Pending() int {
	return len(k.queue)
}

// poll reads this frame's key transitions from Ebitengine.
func (k *KeyManager) poll() {
	mods := readModifiers()
	k.keyBuf = inpututil.AppendJustPressedKeys(k.keyBuf[:0])
	for _, key := range k.keyBuf {
		k.InjectKeyDown(key, mods)
	}
	k.keyBuf = inpututil.AppendJustReleasedKeys(k.keyBuf[:0])
	for _, key := range k.keyBuf {
		k.InjectKeyUp(key, mods)
	}
}

// drain applies every queued event to the pressed state and hands it to fn
// in arrival order.
func (k *KeyManager) drain(fn func(KeyEvent)) {
	// Events queued by fn are kept for the next step.
	events := k.queue
	k.queue = nil
	for _, ev := range events {
		if ev.Down {
			k.pressed[ev.Key] = true
		} else {
			delete(k.pressed, ev.Key)
		}
		if fn != nil {
			fn(ev)
		}
	}
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}
