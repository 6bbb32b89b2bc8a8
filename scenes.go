package easel

import "fmt"

// Scene is one screen of content: a title screen, a level, a pause overlay.
// Enter runs when the scene becomes active, Exit when it stops being active.
type Scene interface {
	Enter(ctx *Context) error
	Update(ctx *Context, delta float64) error
	Draw(ctx *Context) error
	Exit(ctx *Context)
}

// SceneManager keeps named scenes and a stack of active ones. Only the top of
// the stack is updated; the whole stack is drawn bottom to top so overlays can
// sit on a paused scene.
type SceneManager struct {
	scenes map[string]Scene
	stack  []string
}

// NewSceneManager creates an empty scene manager.
func NewSceneManager() *SceneManager {
	return &SceneManager{scenes: make(map[string]Scene)}
}

// Register adds a scene under name, replacing any scene of the same name.
func (m *SceneManager) Register(name string, scene Scene) {
	m.scenes[name] = scene
}

// Current returns the name of the top scene, or "" when the stack is empty.
func (m *SceneManager) Current() string {
	if len(m.stack) == 0 {
		return ""
	}
	return m.stack[len(m.stack)-1]
}

// Depth returns the number of stacked scenes.
func (m *SceneManager) Depth() int {
	return len(m.stack)
}

// Switch exits every stacked scene and enters name as the only active one.
func (m *SceneManager) Switch(ctx *Context, name string) error {
	scene, ok := m.scenes[name]
	if !ok {
		return fmt.Errorf("easel: unknown scene %q", name)
	}
	for len(m.stack) > 0 {
		m.pop(ctx)
	}
	if err := scene.Enter(ctx); err != nil {
		return fmt.Errorf("easel: enter scene %q: %w", name, err)
	}
	m.stack = append(m.stack, name)
	return nil
}

// Push enters name on top of the current scene, which stays drawn but is no
// longer updated.
func (m *SceneManager) Push(ctx *Context, name string) error {
	scene, ok := m.scenes[name]
	if !ok {
		return fmt.Errorf("easel: unknown scene %q", name)
	}
	if err := scene.Enter(ctx); err != nil {
		return fmt.Errorf("easel: enter scene %q: %w", name, err)
	}
	m.stack = append(m.stack, name)
	return nil
}

// Pop exits the top scene. Popping an empty stack is a no-op.
func (m *SceneManager) Pop(ctx *Context) {
	if len(m.stack) == 0 {
		return
	}
	m.pop(ctx)
}

func (m *SceneManager) pop(ctx *Context) {
	name := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.scenes[name].Exit(ctx)
}

// Update advances the top scene.
func (m *SceneManager) Update(ctx *Context, delta float64) error {
	name := m.Current()
	if name == "" {
		return nil
	}
	if err := m.scenes[name].Update(ctx, delta); err != nil {
		return fmt.Errorf("easel: update scene %q: %w", name, err)
	}
	return nil
}

// Draw draws every stacked scene from the bottom up.
func (m *SceneManager) Draw(ctx *Context) error {
	for _, name := range m.stack {
		if err := m.scenes[name].Draw(ctx); err != nil {
			return fmt.Errorf("easel: draw scene %q: %w", name, err)
		}
	}
	return nil
}
