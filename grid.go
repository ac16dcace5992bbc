package termdraw

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"image/color"
	"sync"
)

// ColorSample is a single RGB pixel. Alpha is dropped on decode.
type ColorSample struct {
	R, G, B uint8
}

// RGBA implements color.Color. Samples are always opaque.
func (s ColorSample) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: s.R, G: s.G, B: s.B, A: 0xff}.RGBA()
}

// SampleModel converts any color to an opaque ColorSample
var SampleModel = color.ModelFunc(func(c color.Color) color.Color {
	return sampleOf(c)
})

// Grid is an immutable RGB raster produced by decoding. It implements
// image.Image so it can be resampled and rendered directly.
type Grid struct {
	width  int
	height int
	pix    []ColorSample

	digestOnce sync.Once
	digest     uint64
}

// NewGrid copies img into a Grid, discarding the alpha channel. Channel values
// are taken unpremultiplied, so a transparent pixel keeps its stored color.
func NewGrid(img image.Image) *Grid {
	if g, ok := img.(*Grid); ok {
		return g
	}

	bounds := img.Bounds()
	g := &Grid{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		pix:    make([]ColorSample, bounds.Dx()*bounds.Dy()),
	}
	for y := range g.height {
		for x := range g.width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			if c == nil {
				continue
			}
			g.pix[y*g.width+x] = sampleOf(c)
		}
	}
	return g
}

// sampleOf converts any color to an RGB sample without alpha compositing
func sampleOf(c color.Color) ColorSample {
	switch v := c.(type) {
	case ColorSample:
		return v
	case color.NRGBA:
		return ColorSample{v.R, v.G, v.B}
	case color.NRGBA64:
		return ColorSample{uint8(v.R >> 8), uint8(v.G >> 8), uint8(v.B >> 8)}
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return ColorSample{uint8(n.R >> 8), uint8(n.G >> 8), uint8(n.B >> 8)}
}

// Width returns the grid width in pixels
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in pixels
func (g *Grid) Height() int { return g.height }

// Sample returns the pixel at (x, y) relative to the grid origin
func (g *Grid) Sample(x, y int) ColorSample {
	return g.pix[y*g.width+x]
}

// Digest returns an FNV-1a hash of the grid's dimensions and pixels. Grids
// with different content have different digests.
func (g *Grid) Digest() uint64 {
	g.digestOnce.Do(func() {
		h := fnv.New64a()
		var dims [16]byte
		binary.LittleEndian.PutUint64(dims[:8], uint64(g.width))
		binary.LittleEndian.PutUint64(dims[8:], uint64(g.height))
		h.Write(dims[:])

		buf := make([]byte, 0, len(g.pix)*3)
		for _, s := range g.pix {
			buf = append(buf, s.R, s.G, s.B)
		}
		h.Write(buf)
		g.digest = h.Sum64()
	})
	return g.digest
}

func (g *Grid) ColorModel() color.Model { return SampleModel }

func (g *Grid) Bounds() image.Rectangle { return image.Rect(0, 0, g.width, g.height) }

func (g *Grid) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(g.Bounds())) {
		return ColorSample{}
	}
	return g.Sample(x, y)
}
