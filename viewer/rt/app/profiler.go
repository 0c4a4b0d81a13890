package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler records CPU time per named scope of the last frame.
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	now func() time.Time
}

func NewProfiler() *Profiler {
	return NewProfilerWithClock(time.Now)
}

func NewProfilerWithClock(now func() time.Time) *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
		now:        now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	for _, n := range p.Order {
		if n == name {
			return
		}
	}
	p.Order = append(p.Order, name)
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = p.now().Sub(start)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Reset clears timings but keeps the scope order.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}

	return sb.String()
}

// FrameCounts is one reporting window of loop activity.
type FrameCounts struct {
	Updates int
	Frames  int
	// Delta is the frame delta observed last in the window.
	Delta time.Duration
}

// FrameStats accumulates update and frame counts over wall-clock windows.
type FrameStats struct {
	Window  time.Duration
	elapsed time.Duration
	current FrameCounts
}

func NewFrameStats(window time.Duration) *FrameStats {
	if window <= 0 {
		window = time.Second
	}
	return &FrameStats{Window: window}
}

// Observe records one displayed frame that ran updates simulation steps.
// Once a full window has elapsed it returns the window's counts and starts a
// new one.
func (s *FrameStats) Observe(delta time.Duration, updates int) (FrameCounts, bool) {
	s.elapsed += delta
	s.current.Updates += updates
	s.current.Frames++
	s.current.Delta = delta

	if s.elapsed < s.Window {
		return FrameCounts{}, false
	}
	out := s.current
	s.current = FrameCounts{}
	s.elapsed %= s.Window
	return out, true
}
