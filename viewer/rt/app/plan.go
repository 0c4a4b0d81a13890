package app

import (
	"fmt"
	"strings"
)

type RenderMode int

const (
	// ModeOIT renders transparency with weighted blended order independent
	// transparency.
	ModeOIT RenderMode = iota
	// ModeOpaque draws every model straight into the back buffer with depth
	// testing and ordinary alpha blending.
	ModeOpaque
)

func (m RenderMode) String() string {
	switch m {
	case ModeOIT:
		return "oit"
	case ModeOpaque:
		return "opaque"
	}
	return fmt.Sprintf("RenderMode(%d)", int(m))
}

// Next cycles to the following mode.
func (m RenderMode) Next() RenderMode {
	if m == ModeOIT {
		return ModeOpaque
	}
	return ModeOIT
}

func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(s) {
	case "oit", "":
		return ModeOIT, nil
	case "opaque":
		return ModeOpaque, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

type StepKind int

const (
	StepClear StepKind = iota
	StepAccumulate
	StepComposite
	StepOpaque
)

func (k StepKind) String() string {
	switch k {
	case StepClear:
		return "clear"
	case StepAccumulate:
		return "accumulate"
	case StepComposite:
		return "composite"
	case StepOpaque:
		return "opaque"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one render pass of a frame. Models lists the model indices drawn
// in the pass, in draw order.
type Step struct {
	Kind   StepKind
	Models []int
}

// PlanFrame lays out the passes of one frame. In OIT mode every model gets
// its own accumulation pass between the clear and the composite.
func PlanFrame(mode RenderMode, order []int) []Step {
	if mode == ModeOpaque {
		return []Step{{Kind: StepOpaque, Models: append([]int(nil), order...)}}
	}

	steps := make([]Step, 0, len(order)+2)
	steps = append(steps, Step{Kind: StepClear})
	for _, m := range order {
		steps = append(steps, Step{Kind: StepAccumulate, Models: []int{m}})
	}
	steps = append(steps, Step{Kind: StepComposite})
	return steps
}
