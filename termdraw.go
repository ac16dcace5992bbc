package termdraw

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"time"
)

// Image represents a terminal image with a fluent API for configuration
type Image struct {
	source image.Image
	reader io.Reader
	path   string
	frames FrameSource

	// Configuration
	size   *Size
	fit    *Size
	delay  time.Duration
	rewind bool
	out    io.Writer

	// First configuration error, reported on render
	err error
}

// New creates a new Image from an image.Image
func New(img image.Image) *Image {
	if img == nil {
		return nil
	}
	return &Image{source: img}
}

// Open creates a new Image from a file path
func Open(path string) (*Image, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	return &Image{path: path}, nil
}

// From creates a new Image from an io.Reader
func From(r io.Reader) *Image {
	if r == nil {
		return nil
	}
	return &Image{reader: r}
}

// FromFrames creates a new Image from an already decoded FrameSource
func FromFrames(frames FrameSource) *Image {
	if frames == nil {
		return nil
	}
	return &Image{frames: frames}
}

// Size sets the output grid in character cells. Both values must be
// positive.
func (i *Image) Size(columns, rows int) *Image {
	s := Size{Columns: columns, Rows: rows}
	if err := s.Validate(); err != nil && i.err == nil {
		i.err = err
	}
	i.size = &s
	i.fit = nil
	return i
}

// Fit sizes the output to the largest grid within columns x rows that keeps
// the image's aspect ratio
func (i *Image) Fit(columns, rows int) *Image {
	s := Size{Columns: columns, Rows: rows}
	if err := s.Validate(); err != nil && i.err == nil {
		i.err = err
	}
	i.fit = &s
	i.size = nil
	return i
}

// Delay sets the pause between animation frames
func (i *Image) Delay(d time.Duration) *Image {
	i.delay = d
	return i
}

// Rewind makes animations redraw in place
func (i *Image) Rewind(r bool) *Image {
	i.rewind = r
	return i
}

// Output sets the writer that receives rendered text; os.Stdout by default
func (i *Image) Output(w io.Writer) *Image {
	i.out = w
	return i
}

// Frames decodes the image source on first use and returns its frames
func (i *Image) Frames() (FrameSource, error) {
	if i.frames != nil {
		return i.frames, nil
	}

	switch {
	case i.source != nil:
		i.frames = Still(i.source)
	case i.path != "":
		frames, err := LoadFile(i.path)
		if err != nil {
			return nil, err
		}
		i.frames = frames
	case i.reader != nil:
		frames, err := Load(i.reader)
		if err != nil {
			return nil, err
		}
		i.frames = frames
	default:
		return nil, fmt.Errorf("no image source configured")
	}
	return i.frames, nil
}

// IsAnimated reports whether the source has more than one frame
func (i *Image) IsAnimated() (bool, error) {
	if i.err != nil {
		return false, i.err
	}
	frames, err := i.Frames()
	if err != nil {
		return false, err
	}
	return frames.Len() > 1, nil
}

// Render renders the first frame to a string
func (i *Image) Render() (string, error) {
	var sb strings.Builder
	if err := i.renderFirst(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Print writes the first frame to the output
func (i *Image) Print() error {
	return i.renderFirst(i.writer())
}

// Play animates multi-frame images until ctx is cancelled and prints still
// images once
func (i *Image) Play(ctx context.Context) error {
	animated, err := i.IsAnimated()
	if err != nil {
		return err
	}
	if !animated {
		return i.Print()
	}

	first, err := i.frames.Frame(0)
	if err != nil {
		return err
	}
	a := &Animator{
		Out:    i.writer(),
		Size:   i.targetSize(first.Bounds()),
		Delay:  i.delay,
		Rewind: i.rewind,
	}
	return a.Animate(ctx, i.frames)
}

func (i *Image) renderFirst(w io.Writer) error {
	if i.err != nil {
		return i.err
	}
	frames, err := i.Frames()
	if err != nil {
		return err
	}
	grid, err := frames.Frame(0)
	if err != nil {
		return err
	}
	// Keyed by content: a file rewritten in place must not hit a stale entry
	key := fmt.Sprintf("%016x", grid.Digest())
	return renderCached(w, grid, i.targetSize(grid.Bounds()), key)
}

func (i *Image) targetSize(bounds image.Rectangle) *Size {
	switch {
	case i.size != nil:
		return i.size
	case i.fit != nil:
		s := FitSize(bounds, i.fit.Columns, i.fit.Rows)
		return &s
	default:
		return nil
	}
}

func (i *Image) writer() io.Writer {
	if i.out != nil {
		return i.out
	}
	return os.Stdout
}

// Convenience functions for quick rendering

// Print prints an image at native size to stdout
func Print(img image.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}
	return New(img).Print()
}

// RenderFile renders an image file at native size
func RenderFile(path string) (string, error) {
	img, err := Open(path)
	if err != nil {
		return "", err
	}
	return img.Render()
}

// PrintFile prints an image file at native size
func PrintFile(path string) error {
	img, err := Open(path)
	if err != nil {
		return err
	}
	return img.Print()
}
