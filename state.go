package lsystem

import (
	"fmt"
	"sort"
	"strings"
)

// Frame holds the interpretation properties of one branch level, such as
// the turtle position and heading.
type Frame map[string]interface{}

// Clone returns a shallow copy of the frame
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Number returns the numeric value of name, or def when it is missing or
// not a number.
func (f Frame) Number(name string, def float64) float64 {
	switch v := f[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Bool returns the boolean value of name, or def when it is missing
func (f Frame) Bool(name string, def bool) bool {
	switch v := f[name].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return def
	}
}

// String returns a string representation for debugging
func (f Frame) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, f[k])
	}
	return "Frame(" + strings.Join(parts, ", ") + ")"
}

// FrameStack manages the frames of a rendering. The top frame is the
// current state; entering a branch pushes a copy of it so nothing done
// inside the branch leaks out.
type FrameStack struct {
	frames []Frame
}

// NewFrameStack creates a stack holding a copy of initial
func NewFrameStack(initial Frame) *FrameStack {
	return &FrameStack{frames: []Frame{initial.Clone()}}
}

// Top returns the current frame
func (s *FrameStack) Top() Frame {
	return s.frames[len(s.frames)-1]
}

// Push saves the current frame by pushing a copy of it
func (s *FrameStack) Push() {
	s.frames = append(s.frames, s.Top().Clone())
}

// Pop restores the frame saved by the matching Push
func (s *FrameStack) Pop() error {
	if len(s.frames) <= 1 {
		return fmt.Errorf("cannot exit the outermost frame")
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Depth returns the number of open branches
func (s *FrameStack) Depth() int {
	return len(s.frames) - 1
}

// Snapshot returns a copy of the current frame
func (s *FrameStack) Snapshot() Frame {
	return s.Top().Clone()
}
