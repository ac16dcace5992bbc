package termdraw

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/apex/log"
)

// DefaultFrameDelay is the pause between animation frames
const DefaultFrameDelay = 100 * time.Millisecond

// AnimationState is the state of an Animator run
type AnimationState int

const (
	// Idle means Animate has not started
	Idle AnimationState = iota
	// Playing means frames are being rendered
	Playing
	// Cancelled means the context ended the run
	Cancelled
)

func (s AnimationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("AnimationState(%d)", int(s))
	}
}

// Animator plays a FrameSource in a loop until its context is cancelled
type Animator struct {
	// Out receives rendered frames; os.Stdout when nil
	Out io.Writer
	// Size is the target cell grid; nil renders frames at native size
	Size *Size
	// Delay between frames; DefaultFrameDelay when zero
	Delay time.Duration
	// Rewind moves the cursor up over the previous frame so frames overwrite
	// each other instead of scrolling
	Rewind bool

	state atomic.Int32
}

// State returns the current state of the animator. It is safe to call while
// Animate runs on another goroutine.
func (a *Animator) State() AnimationState {
	return AnimationState(a.state.Load())
}

func (a *Animator) setState(s AnimationState) {
	a.state.Store(int32(s))
}

// Animate renders frames 0..n-1 in order, pausing Delay after each, and
// starts over at frame 0 forever. Cancellation is only observed while
// pausing: a frame being rendered is always completed. Animate returns
// ctx.Err() once cancelled, or the first render/decode error.
func (a *Animator) Animate(ctx context.Context, frames FrameSource) error {
	if frames == nil || frames.Len() == 0 {
		return fmt.Errorf("%w: no frames to animate", ErrDecode)
	}
	if a.Size != nil {
		if err := a.Size.Validate(); err != nil {
			return err
		}
	}

	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	delay := a.Delay
	if delay <= 0 {
		delay = DefaultFrameDelay
	}

	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	a.setState(Playing)
	lines := 0
	for index := 0; ; index = (index + 1) % frames.Len() {
		grid, err := frames.Frame(index)
		if err != nil {
			return fmt.Errorf("failed to extract frame %d: %w", index, err)
		}

		if a.Rewind && lines > 0 {
			if _, err := fmt.Fprintf(out, "\x1b[%dA", lines); err != nil {
				return fmt.Errorf("failed to rewind cursor: %w", err)
			}
		}

		log.WithFields(log.Fields{
			"frame":  index,
			"frames": frames.Len(),
		}).Debug("rendering frame")

		counter := &lineCounter{w: out}
		if err := Render(counter, grid, a.Size); err != nil {
			return fmt.Errorf("failed to render frame %d: %w", index, err)
		}
		lines = counter.lines

		if !pause(ctx, timer, delay) {
			a.setState(Cancelled)
			return ctx.Err()
		}
	}
}

// pause waits for delay and reports false if ctx is done first. A
// cancellation racing the timer wins.
func pause(ctx context.Context, timer *time.Timer, delay time.Duration) bool {
	timer.Reset(delay)
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return ctx.Err() == nil
	}
}

// lineCounter counts the rows written through it
type lineCounter struct {
	w     io.Writer
	lines int
}

func (lc *lineCounter) Write(p []byte) (int, error) {
	n, err := lc.w.Write(p)
	for _, b := range p[:n] {
		if b == '\n' {
			lc.lines++
		}
	}
	return n, err
}
