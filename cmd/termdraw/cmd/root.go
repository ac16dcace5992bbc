/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/blacktop/termdraw"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// CacheDirEnv overrides the default download cache directory
const CacheDirEnv = "TERMDRAW_CACHE_DIR"

type options struct {
	verbose  bool
	width    int
	height   int
	fit      bool
	delay    time.Duration
	rewind   bool
	cacheDir string
}

func init() {
	log.SetHandler(clihander.Default)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "termdraw <FILE|URL>",
		Short: "Draw images in your terminal with colored half blocks",
		Long: `Draw images in your terminal with colored half blocks.

Animated GIFs loop until interrupted. Remote images are downloaded into
~/.terminal_image (or $` + CacheDirEnv + `) before drawing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				log.SetLevel(log.DebugLevel)
			}
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "V", false, "Enable verbose logging")
	cmd.Flags().IntVarP(&opts.width, "width", "W", 0, "Output width in character cells")
	cmd.Flags().IntVarP(&opts.height, "height", "H", 0, "Output height in character cells")
	cmd.Flags().BoolVarP(&opts.fit, "fit", "f", false, "Fit the image to the terminal keeping its aspect ratio")
	cmd.Flags().DurationVarP(&opts.delay, "delay", "d", termdraw.DefaultFrameDelay, "Delay between animation frames")
	cmd.Flags().BoolVarP(&opts.rewind, "rewind", "r", false, "Redraw animation frames in place")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Directory for downloaded images (default ~/"+termdraw.CacheDirName+")")
	cmd.MarkFlagsMutuallyExclusive("fit", "width")
	cmd.MarkFlagsMutuallyExclusive("fit", "height")

	return cmd
}

func run(cmd *cobra.Command, source string, opts *options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate everything before touching the network or decoding
	size, err := requestedSize(cmd, opts)
	if err != nil {
		return err
	}
	if opts.delay <= 0 {
		return fmt.Errorf("delay must be positive, got %s", opts.delay)
	}

	kind := termdraw.DetectKind(source)
	dir, err := cacheDirectory(opts.cacheDir, kind)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"source": source,
		"kind":   kind,
	}).Debug("resolving image")

	path, err := termdraw.NewResolver(dir).Resolve(ctx, source, kind)
	if err != nil {
		return err
	}

	img, err := termdraw.Open(path)
	if err != nil {
		return err
	}
	img.Output(cmd.OutOrStdout()).Delay(opts.delay).Rewind(opts.rewind)

	switch {
	case size != nil:
		img.Size(size.Columns, size.Rows)
	case opts.fit:
		cols, rows := terminalSize()
		log.Debugf("Fitting image to %dx%d terminal", cols, rows)
		img.Fit(cols, max(rows-1, 1))
	}

	if err := img.Play(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("Animation interrupted")
			return nil
		}
		return err
	}
	return nil
}

// requestedSize returns the explicit -W/-H size, or nil when neither was set
func requestedSize(cmd *cobra.Command, opts *options) (*termdraw.Size, error) {
	widthSet := cmd.Flags().Changed("width")
	heightSet := cmd.Flags().Changed("height")
	if !widthSet && !heightSet {
		return nil, nil
	}
	if widthSet != heightSet {
		return nil, fmt.Errorf("%w: --width and --height must be given together", termdraw.ErrInvalidSize)
	}
	size := &termdraw.Size{Columns: opts.width, Rows: opts.height}
	if err := size.Validate(); err != nil {
		return nil, err
	}
	return size, nil
}

// cacheDirectory picks the download directory: flag, then environment, then
// the default under the home directory. Local sources do not need one.
func cacheDirectory(flag string, kind termdraw.SourceKind) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(CacheDirEnv); env != "" {
		return env, nil
	}
	if kind == termdraw.Local {
		return "", nil
	}
	return termdraw.DefaultCacheDir()
}

// terminalSize returns the terminal size in cells, falling back to 80x24
func terminalSize() (cols, rows int) {
	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 && height > 0 {
		return width, height
	}
	return 80, 24
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		stop()
		os.Exit(1)
	}
}
