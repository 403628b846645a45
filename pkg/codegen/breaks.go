package codegen

import "fmt"

// Breaks holds one frame of unpatched JP indices per enclosing while or switch.
type Breaks struct {
	frames [][]int
}

func (b *Breaks) Push() { b.frames = append(b.frames, nil) }

func (b *Breaks) Depth() int { return len(b.frames) }

// Add records a break jump in the innermost frame.
func (b *Breaks) Add(idx int) error {
	n := len(b.frames)
	if n == 0 {
		return fmt.Errorf("%w: break jump %d outside any loop or switch", ErrInternal, idx)
	}
	b.frames[n-1] = append(b.frames[n-1], idx)
	return nil
}

// Pop removes the innermost frame and returns its jumps in the order they were added.
func (b *Breaks) Pop() ([]int, error) {
	n := len(b.frames)
	if n == 0 {
		return nil, fmt.Errorf("%w: no break frame to close", ErrInternal)
	}
	frame := b.frames[n-1]
	b.frames = b.frames[:n-1]
	return frame, nil
}
