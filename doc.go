/*
Package termdraw renders images as truecolor text in a terminal.

Each output character is a lower half block (▄) colored with one pixel, and
every text row covers two pixel rows of the source, so a picture keeps its
rough proportions inside a text console. Local files and remote URLs are
supported, and animated GIFs play in a loop until cancelled.

Supported formats are those registered with Go's image package: PNG, JPEG,
GIF, BMP, TIFF and WebP.

Basic Usage:

	// Simple one-liner at native resolution
	termdraw.PrintFile("image.png")

	// Render into a 40x20 cell grid
	img, err := termdraw.Open("image.png")
	if err != nil {
	    log.Fatal(err)
	}
	if err := img.Size(40, 20).Print(); err != nil {
	    log.Fatal(err)
	}

Remote Images:

	dir, _ := termdraw.DefaultCacheDir()
	path, err := termdraw.NewResolver(dir).Resolve(ctx, url, termdraw.Remote)

Animation:

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, _ := termdraw.Open("spinner.gif")
	err := img.Fit(60, 30).Delay(100 * time.Millisecond).Play(ctx)
	if errors.Is(err, context.Canceled) {
	    // interrupted
	}

Low-level API:

	grid, _ := termdraw.Decode(r)
	termdraw.Render(os.Stdout, grid, &termdraw.Size{Columns: 10, Rows: 5})
	fmt.Print(termdraw.FormatCell(128, 64, 32, termdraw.Glyph))
*/
package termdraw
