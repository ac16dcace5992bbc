package termdraw

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestImageRender(t *testing.T) {
	img := createTestImage(20, 10)

	out, err := New(img).Render()
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "\n"))

	out, err = New(img).Size(8, 3).Render()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Len(t, splitCells(t, lines[0]), 8)
}

func TestImageFit(t *testing.T) {
	out, err := New(createTestImage(100, 50)).Fit(40, 40).Render()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 10)
	assert.Len(t, splitCells(t, lines[0]), 40)
}

func TestImageInvalidSize(t *testing.T) {
	var buf bytes.Buffer
	err := New(createTestImage(4, 4)).Size(0, 4).Output(&buf).Print()
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Zero(t, buf.Len())

	_, err = New(createTestImage(4, 4)).Fit(4, -1).Render()
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestImageSources(t *testing.T) {
	data := encodePNG(t, createTestImage(4, 4))
	path := writeFile(t, "test.png", data)

	t.Run("Open", func(t *testing.T) {
		img, err := Open(path)
		require.NoError(t, err)
		out, err := img.Render()
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "\n"))
	})

	t.Run("From", func(t *testing.T) {
		out, err := From(bytes.NewReader(data)).Render()
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "\n"))
	})

	t.Run("RenderFile", func(t *testing.T) {
		out, err := RenderFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := RenderFile(filepath.Join(t.TempDir(), "missing.png"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := Open("")
		assert.Error(t, err)
	})

	t.Run("nil sources", func(t *testing.T) {
		assert.Nil(t, New(nil))
		assert.Nil(t, From(nil))
		assert.Nil(t, FromFrames(nil))
	})
}

func TestImageRenderUsesResizeCache(t *testing.T) {
	ClearResizeCache()
	defer ClearResizeCache()

	path := writeFile(t, "cached.png", encodePNG(t, createTestImage(30, 30)))
	img, err := Open(path)
	require.NoError(t, err)
	img.Size(10, 5)

	first, err := img.Render()
	require.NoError(t, err)
	second, err := img.Render()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, globalResizeCache.Len())
}

func TestImageRenderAfterFileRewrite(t *testing.T) {
	ClearResizeCache()
	defer ClearResizeCache()

	path := writeFile(t, "photo.png", encodePNG(t, solidImage(8, 8, red)))

	render := func() []ColorSample {
		img, err := Open(path)
		require.NoError(t, err)
		out, err := img.Size(2, 1).Render()
		require.NoError(t, err)
		return splitCells(t, strings.TrimSuffix(out, "\n"))
	}

	assert.Equal(t, []ColorSample{{255, 0, 0}, {255, 0, 0}}, render())

	// Same path, same dimensions, different pixels
	require.NoError(t, os.WriteFile(path, encodePNG(t, solidImage(8, 8, blue)), 0o644))
	assert.Equal(t, []ColorSample{{0, 0, 255}, {0, 0, 255}}, render())
	assert.Equal(t, 2, globalResizeCache.Len())
}

func TestImagePlayStill(t *testing.T) {
	var buf bytes.Buffer
	err := New(createTestImage(4, 4)).Output(&buf).Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestImagePlayAnimated(t *testing.T) {
	path := writeFile(t, "anim.gif", encodeGIF(t, nil))
	img, err := Open(path)
	require.NoError(t, err)

	animated, err := img.IsAnimated()
	require.NoError(t, err)
	assert.True(t, animated)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4x4 frames at native size are two rows each; stop after two loops
	rec := &frameRecorder{limit: 12, cancel: cancel}
	err = img.Output(rec).Delay(time.Millisecond).Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, rec.rows, 12)

	// First row of frame 1 shows the green patch over the red background
	assert.Equal(t, []ColorSample{{0, 255, 0}, {0, 255, 0}, {255, 0, 0}, {255, 0, 0}}, splitCells(t, rec.rows[2]))
	// The loop restarts at frame 0
	assert.Equal(t, rec.rows[0], rec.rows[6])
}

func TestPrint(t *testing.T) {
	assert.Error(t, Print(nil))
	assert.Error(t, PrintFile(""))
}
