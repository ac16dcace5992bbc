package termdraw

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FrameSource yields the frames of a decoded image on demand. A still image
// is a source with a single frame.
type FrameSource interface {
	// Len returns the number of frames
	Len() int
	// Frame returns the full picture shown at frame index i
	Frame(i int) (*Grid, error)
}

// Decode decodes a single still image and normalizes it to RGB
func Decode(r io.Reader) (*Grid, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return NewGrid(img), nil
}

// Load decodes r into a FrameSource. GIFs keep every frame; other formats
// decode to a single frame.
func Load(r io.Reader) (FrameSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if len(g.Image) == 0 {
			return nil, fmt.Errorf("%w: gif has no frames", ErrDecode)
		}
		return newGIFFrames(g), nil
	}

	grid, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return Still(grid), nil
}

// LoadFile opens and decodes the image at path
func LoadFile(path string) (FrameSource, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Still wraps a single image as a one-frame source
func Still(img image.Image) FrameSource {
	return stillFrame{grid: NewGrid(img)}
}

type stillFrame struct {
	grid *Grid
}

func (s stillFrame) Len() int { return 1 }

func (s stillFrame) Frame(i int) (*Grid, error) {
	if i != 0 {
		return nil, fmt.Errorf("frame index %d out of range [0,1)", i)
	}
	return s.grid, nil
}

// Frames wraps already decoded pictures as a FrameSource
type Frames []image.Image

func (f Frames) Len() int { return len(f) }

func (f Frames) Frame(i int) (*Grid, error) {
	if i < 0 || i >= len(f) {
		return nil, fmt.Errorf("frame index %d out of range [0,%d)", i, len(f))
	}
	if f[i] == nil {
		return nil, fmt.Errorf("%w: frame %d is empty", ErrDecode, i)
	}
	return NewGrid(f[i]), nil
}

// gifFrames composites GIF frames onto the logical screen so every frame is
// a complete picture. Frames are expected in order; a jump replays from 0.
type gifFrames struct {
	g        *gif.GIF
	canvas   *image.RGBA
	previous *image.RGBA // canvas saved for DisposalPrevious
	next     int
}

func newGIFFrames(g *gif.GIF) *gifFrames {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
		for _, frame := range g.Image[1:] {
			bounds = bounds.Union(frame.Bounds())
		}
	}
	return &gifFrames{
		g:      g,
		canvas: image.NewRGBA(bounds),
	}
}

func (gf *gifFrames) Len() int { return len(gf.g.Image) }

func (gf *gifFrames) Frame(i int) (*Grid, error) {
	if i < 0 || i >= gf.Len() {
		return nil, fmt.Errorf("frame index %d out of range [0,%d)", i, gf.Len())
	}
	if i < gf.next {
		gf.reset()
	}
	for gf.next <= i {
		gf.step()
	}
	return NewGrid(gf.canvas), nil
}

func (gf *gifFrames) reset() {
	draw.Draw(gf.canvas, gf.canvas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	gf.previous = nil
	gf.next = 0
}

func (gf *gifFrames) disposal(i int) byte {
	if i < len(gf.g.Disposal) {
		return gf.g.Disposal[i]
	}
	return 0
}

// step disposes of the last drawn frame and draws the next one
func (gf *gifFrames) step() {
	if gf.next > 0 {
		last := gf.g.Image[gf.next-1]
		switch gf.disposal(gf.next - 1) {
		case gif.DisposalBackground:
			draw.Draw(gf.canvas, last.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if gf.previous != nil {
				draw.Draw(gf.canvas, gf.canvas.Bounds(), gf.previous, gf.canvas.Bounds().Min, draw.Src)
			}
		}
	}

	frame := gf.g.Image[gf.next]
	if gf.disposal(gf.next) == gif.DisposalPrevious {
		if gf.previous == nil {
			gf.previous = image.NewRGBA(gf.canvas.Bounds())
		}
		draw.Draw(gf.previous, gf.previous.Bounds(), gf.canvas, gf.canvas.Bounds().Min, draw.Src)
	}
	draw.Draw(gf.canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
	gf.next++
}
