package termdraw

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
)

// Size is a target output grid in character cells. Each cell covers one
// pixel column and two pixel rows of the resampled image.
type Size struct {
	Columns int
	Rows    int
}

// Validate reports ErrInvalidSize unless both dimensions are positive
func (s Size) Validate() error {
	if s.Columns <= 0 || s.Rows <= 0 {
		return fmt.Errorf("%w: %dx%d (columns and rows must be positive)", ErrInvalidSize, s.Columns, s.Rows)
	}
	return nil
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Columns, s.Rows)
}

// pixels returns the resample target for s: one pixel column per cell and
// two pixel rows per text row
func (s Size) pixels() (uint, uint) {
	return uint(s.Columns), uint(s.Rows * 2)
}

// FitSize returns the largest Size within maxCols x maxRows that keeps the
// aspect ratio of bounds
func FitSize(bounds image.Rectangle, maxCols, maxRows int) Size {
	srcW, srcH := float64(bounds.Dx()), float64(bounds.Dy())
	if srcW == 0 || srcH == 0 || maxCols <= 0 || maxRows <= 0 {
		return Size{Columns: max(maxCols, 1), Rows: max(maxRows, 1)}
	}

	// Each character cell is 1 pixel wide and 2 pixels tall
	effectiveHeight := float64(maxRows) * 2.0

	ratioW := float64(maxCols) / srcW
	ratioH := effectiveHeight / srcH
	ratio := min(ratioW, ratioH)

	return Size{
		Columns: max(int(srcW*ratio), 1),
		Rows:    max(int(srcH*ratio/2.0), 1),
	}
}

// Render writes img to w as half-block text, one line per output row. When
// size is nil the image is drawn at its native resolution, two pixel rows per
// line, and an odd final pixel row becomes a line of its own.
func Render(w io.Writer, img image.Image, size *Size) error {
	return renderCached(w, img, size, "")
}

// RenderString renders img into a string
func RenderString(img image.Image, size *Size) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, img, size); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderCached(w io.Writer, img image.Image, size *Size, cacheKey string) error {
	if img == nil {
		return fmt.Errorf("%w: image cannot be nil", ErrDecode)
	}
	if size != nil {
		if err := size.Validate(); err != nil {
			return err
		}
		width, height := size.pixels()
		img = ResizeImage(img, width, height, cacheKey)
	}

	bounds := img.Bounds()
	var line strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		line.Reset()
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Only the upper pixel of each pair colors the cell; the lower
			// pixel row is not drawn.
			top := img.At(x, y)
			if top == nil {
				continue
			}
			line.WriteString(formatPixel(top))
		}
		line.WriteByte('\n')
		if _, err := io.WriteString(w, line.String()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

func formatPixel(c color.Color) string {
	s := sampleOf(c)
	return FormatCell(s.R, s.G, s.B, Glyph)
}
