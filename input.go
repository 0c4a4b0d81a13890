package oitview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Axis names a world axis for movement impulses.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Command is an input event decoupled from the windowing API.
type Command interface {
	command()
}

// MoveImpulse sets the velocity along Axis to Sign times the move speed.
type MoveImpulse struct {
	Axis Axis
	Sign float32
}

// LookDelta is a raw relative mouse motion in pixels.
type LookDelta struct {
	DX, DY float32
}

// ZoomDelta is a scroll wheel step; positive zooms in.
type ZoomDelta struct {
	DY float32
}

type Quit struct{}

// Resized carries the new framebuffer size in pixels.
type Resized struct {
	Width, Height int
}

type ToggleCapture struct{}

type CycleRenderMode struct{}

func (MoveImpulse) command()     {}
func (LookDelta) command()       {}
func (ZoomDelta) command()       {}
func (Quit) command()            {}
func (Resized) command()         {}
func (ToggleCapture) command()   {}
func (CycleRenderMode) command() {}

var ErrUnknownKey = errors.New("unknown key name")

// KeyBindings maps a pressed key to the command it produces.
type KeyBindings map[glfw.Key]Command

func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		glfw.KeyW:         MoveImpulse{Axis: AxisZ, Sign: -1},
		glfw.KeyS:         MoveImpulse{Axis: AxisZ, Sign: 1},
		glfw.KeyA:         MoveImpulse{Axis: AxisX, Sign: -1},
		glfw.KeyD:         MoveImpulse{Axis: AxisX, Sign: 1},
		glfw.KeySpace:     MoveImpulse{Axis: AxisY, Sign: 1},
		glfw.KeyLeftShift: MoveImpulse{Axis: AxisY, Sign: -1},
		glfw.KeyEscape:    Quit{},
		glfw.KeyTab:       ToggleCapture{},
		glfw.KeyM:         CycleRenderMode{},
	}
}

// Lookup returns the command bound to key, if any.
func (b KeyBindings) Lookup(key glfw.Key) (Command, bool) {
	cmd, ok := b[key]
	return cmd, ok
}

// Bind rebinds the named key, e.g. "w", "space", "left_shift".
func (b KeyBindings) Bind(name string, cmd Command) error {
	key, ok := keyNames[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	b[key] = cmd
	return nil
}

var keyNames = map[string]glfw.Key{
	"a":          glfw.KeyA,
	"b":          glfw.KeyB,
	"c":          glfw.KeyC,
	"d":          glfw.KeyD,
	"e":          glfw.KeyE,
	"f":          glfw.KeyF,
	"g":          glfw.KeyG,
	"h":          glfw.KeyH,
	"i":          glfw.KeyI,
	"j":          glfw.KeyJ,
	"k":          glfw.KeyK,
	"l":          glfw.KeyL,
	"m":          glfw.KeyM,
	"n":          glfw.KeyN,
	"o":          glfw.KeyO,
	"p":          glfw.KeyP,
	"q":          glfw.KeyQ,
	"r":          glfw.KeyR,
	"s":          glfw.KeyS,
	"t":          glfw.KeyT,
	"u":          glfw.KeyU,
	"v":          glfw.KeyV,
	"w":          glfw.KeyW,
	"x":          glfw.KeyX,
	"y":          glfw.KeyY,
	"z":          glfw.KeyZ,
	"space":      glfw.KeySpace,
	"enter":      glfw.KeyEnter,
	"escape":     glfw.KeyEscape,
	"tab":        glfw.KeyTab,
	"up":         glfw.KeyUp,
	"down":       glfw.KeyDown,
	"left":       glfw.KeyLeft,
	"right":      glfw.KeyRight,
	"left_shift": glfw.KeyLeftShift,
	"left_ctrl":  glfw.KeyLeftControl,
	"left_alt":   glfw.KeyLeftAlt,
	"page_up":    glfw.KeyPageUp,
	"page_down":  glfw.KeyPageDown,
}

var actions = map[string]Command{
	"forward": MoveImpulse{Axis: AxisZ, Sign: -1},
	"back":    MoveImpulse{Axis: AxisZ, Sign: 1},
	"left":    MoveImpulse{Axis: AxisX, Sign: -1},
	"right":   MoveImpulse{Axis: AxisX, Sign: 1},
	"up":      MoveImpulse{Axis: AxisY, Sign: 1},
	"down":    MoveImpulse{Axis: AxisY, Sign: -1},
	"quit":    Quit{},
	"capture": ToggleCapture{},
	"mode":    CycleRenderMode{},
}

// ParseAction resolves a config action name to its command.
func ParseAction(name string) (Command, error) {
	cmd, ok := actions[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	return cmd, nil
}

// Apply rebinds keys from a key name -> action name table.
func (b KeyBindings) Apply(table map[string]string) error {
	for key, action := range table {
		cmd, err := ParseAction(action)
		if err != nil {
			return err
		}
		if err := b.Bind(key, cmd); err != nil {
			return err
		}
	}
	return nil
}
