package termdraw

import (
	"github.com/fatih/color"
)

// Glyph is the lower half block used for every rendered cell
const Glyph = '▄'

// FormatCell returns the escape sequence that prints glyph in the 24-bit
// foreground color (r, g, b) followed by a reset.
func FormatCell(r, g, b uint8, glyph rune) string {
	c := color.RGB(int(r), int(g), int(b))
	// fatih/color disables itself when stdout is not a tty; output here is
	// always truecolor.
	c.EnableColor()
	return c.Sprint(string(glyph))
}
