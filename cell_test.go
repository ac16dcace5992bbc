package termdraw

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fgSequence  = regexp.MustCompile(`\x1b\[38;2;(\d+);(\d+);(\d+)m`)
	anySequence = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// parseCell recovers the glyph text and foreground color from a formatted cell
func parseCell(t *testing.T, cell string) (string, ColorSample) {
	t.Helper()

	m := fgSequence.FindStringSubmatch(cell)
	require.NotNil(t, m, "cell %q has no truecolor foreground sequence", cell)

	channel := func(s string) uint8 {
		v, err := strconv.Atoi(s)
		require.NoError(t, err)
		return uint8(v)
	}
	return anySequence.ReplaceAllString(cell, ""), ColorSample{channel(m[1]), channel(m[2]), channel(m[3])}
}

func TestFormatCellRoundTrip(t *testing.T) {
	text, sample := parseCell(t, FormatCell(128, 64, 32, 'X'))
	assert.Equal(t, "X", text)
	assert.Equal(t, ColorSample{128, 64, 32}, sample)
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		glyph   rune
	}{
		{name: "black", r: 0, g: 0, b: 0, glyph: Glyph},
		{name: "white", r: 255, g: 255, b: 255, glyph: Glyph},
		{name: "off-palette", r: 17, g: 201, b: 99, glyph: Glyph},
		{name: "ascii glyph", r: 1, g: 2, b: 3, glyph: '#'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := FormatCell(tt.r, tt.g, tt.b, tt.glyph)

			assert.Regexp(t, `^\x1b\[38;2;`, cell, "cell should start with the foreground sequence")
			assert.Regexp(t, `\x1b\[[0-9;]*m$`, cell, "cell should end with a reset")

			text, sample := parseCell(t, cell)
			assert.Equal(t, string(tt.glyph), text)
			assert.Equal(t, ColorSample{tt.r, tt.g, tt.b}, sample)
		})
	}
}

func TestFormatCellDeterministic(t *testing.T) {
	assert.Equal(t, FormatCell(10, 20, 30, Glyph), FormatCell(10, 20, 30, Glyph))
	assert.NotEqual(t, FormatCell(10, 20, 30, Glyph), FormatCell(10, 20, 31, Glyph))
}
