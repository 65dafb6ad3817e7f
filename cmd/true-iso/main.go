package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/true-iso/internal/detection"
	"github.com/ironsheep/true-iso/internal/geometry"
	"github.com/ironsheep/true-iso/internal/imaging"
	"github.com/ironsheep/true-iso/internal/pipeline"
	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type flags struct {
	output    string
	ratio     string
	size      int
	margin    int
	verbose   bool
	edgesPath string
	overlay   string
	leftHex   string
	rightHex  string
	lab       bool
	alpha     uint8
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
	log.SetPrefix("true-iso: ")

	if err := newRootCmd().Execute(); err != nil {
		log.Print(describe(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	opts := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "true-iso INPUT",
		Short: "Correct isometric tile sprites to exact projection angles",
		Long: `true-iso measures the projection angles of an isometric sprite from its
silhouette, and when they deviate from the target ratio by more than 2°
shears the sprite onto the exact angles. The result is cropped to its
content and scaled so its longest side equals --size.`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], f, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output path (default: INPUT with _corrected appended)")
	fl.StringVarP(&f.ratio, "ratio", "r", geometry.DefaultRatio.String(), "target isometric ratio as H:V")
	fl.IntVarP(&f.size, "size", "s", opts.Size, "longest side of the output in pixels")
	fl.BoolVar(&f.verbose, "verbose", false, "print detected angles and every pipeline step")
	fl.StringVar(&f.edgesPath, "edges", "", "also write the detected edge map as PNG to this path")
	fl.StringVar(&f.overlay, "overlay", "", "also write the detected line segments drawn over the sprite to this path")
	fl.StringVar(&f.leftHex, "left-color", "#FF4040", "overlay colour of left-axis segments")
	fl.StringVar(&f.rightHex, "right-color", "#4080FF", "overlay colour of right-axis segments")

	fl.IntVar(&f.margin, "margin", opts.Margin, "transparent border in pixels inside --size")
	fl.Uint8Var(&f.alpha, "alpha-threshold", opts.AlphaThreshold, "minimum alpha (0-255) of a content pixel")
	fl.Float64Var(&opts.Edge.ThresholdLow, "canny-low", opts.Edge.ThresholdLow, "low edge hysteresis threshold (0-255)")
	fl.Float64Var(&opts.Edge.ThresholdHigh, "canny-high", opts.Edge.ThresholdHigh, "high edge hysteresis threshold (0-255)")
	fl.Float64Var(&opts.Edge.Background, "edge-background", opts.Edge.Background, "intensity (0-1) transparent pixels blend to before edge detection")
	fl.BoolVar(&f.lab, "lab", false, "use CIE L* lightness instead of BT.601 luma for edges")
	fl.IntVar(&opts.Lines.VoteThreshold, "hough-votes", opts.Lines.VoteThreshold, "minimum Hough votes for a line")
	fl.Float64Var(&opts.Lines.MinLength, "min-length", opts.Lines.MinLength, "minimum edge pixels supporting a line")
	fl.BoolVar(&opts.Warp.Despeckle, "despeckle", opts.Warp.Despeckle, "clear faint isolated pixels after warping")

	return cmd
}

func run(input string, f flags, opts pipeline.Options, stdout, stderr io.Writer) error {
	ratio, err := geometry.ParseRatio(f.ratio)
	if err != nil {
		return err
	}
	opts.Ratio = ratio
	opts.Size = f.size
	opts.Margin = f.margin
	opts.AlphaThreshold = f.alpha
	if f.lab {
		opts.Edge.Luminance = imaging.LightnessLab
	}
	if f.verbose {
		opts.Logger = log.New(stderr, "", 0)
	}

	output := f.output
	if output == "" {
		output = imaging.DefaultOutputPath(input)
	}

	img, err := imaging.Load(input)
	if err != nil {
		return err
	}
	if opts.Logger != nil {
		opts.Logger.Printf("Loaded image: %s (%dx%d)", input, img.Bounds().Dx(), img.Bounds().Dy())
		opts.Logger.Printf("Target ratio: %v (±%.3f°)", ratio, ratio.TargetAngle())
	}

	corrector, err := pipeline.New(opts)
	if err != nil {
		return err
	}
	res, runErr := corrector.Run(img)
	if err := writeDiagnostics(res, f); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	if err := imaging.Save(res.Image, output); err != nil {
		return err
	}

	d := res.Decision
	if d.Apply {
		fmt.Fprintf(stdout, "Detected angles: left=%.2f°, right=%.2f°\n", d.DetectedLeft, d.DetectedRight)
		fmt.Fprintf(stdout, "Target angles: left=%.3f°, right=%+.3f°\n", d.TargetLeft, d.TargetRight)
		fmt.Fprintf(stdout, "Saved corrected image: %s\n", output)
	} else {
		fmt.Fprintf(stdout, "Image already has correct isometric proportions (within %.1f° tolerance)\n", d.Tolerance)
		fmt.Fprintf(stdout, "Saved (angles unchanged, cropped & resized): %s\n", output)
	}
	fmt.Fprintf(stdout, "Dimensions: %dx%d -> %dx%d\n",
		img.Bounds().Dx(), img.Bounds().Dy(), res.Image.Bounds().Dx(), res.Image.Bounds().Dy())
	return nil
}

// writeDiagnostics saves the optional edge map and overlay. It also runs
// after a failed detection, when they are most useful.
func writeDiagnostics(res *pipeline.Result, f flags) error {
	if res == nil || res.EdgeMap == nil {
		return nil
	}
	if f.edgesPath != "" {
		if err := imaging.Save(res.EdgeMap.Image(), f.edgesPath); err != nil {
			return err
		}
	}
	if f.overlay != "" {
		colors := pipeline.DefaultOverlayColors
		var err error
		if colors.Left, err = imaging.ParseHexColor(f.leftHex); err != nil {
			return fmt.Errorf("--left-color: %w", err)
		}
		if colors.Right, err = imaging.ParseHexColor(f.rightHex); err != nil {
			return fmt.Errorf("--right-color: %w", err)
		}
		if err := imaging.Save(res.Overlay(colors), f.overlay); err != nil {
			return err
		}
	}
	return nil
}

// describe turns pipeline errors into a message with a hint for the user.
func describe(err error) string {
	var (
		empty      *imaging.EmptyImageError
		edges      *detection.InsufficientEdgesError
		degenerate *geometry.DegenerateBasisError
	)
	switch {
	case errors.As(err, &empty):
		return fmt.Sprintf("%v (is the background transparent?)", err)
	case errors.As(err, &edges):
		return fmt.Sprintf("%v (try lowering --canny-low/--canny-high or --hough-votes; "+
			"for a dark sprite try --edge-background 1)", err)
	case errors.As(err, &degenerate):
		return fmt.Sprintf("%v (angle detection failed; inspect the edge map with --edges)", err)
	default:
		return err.Error()
	}
}
