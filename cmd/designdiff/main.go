// Command designdiff compares a reference design artifact against an
// implementation and writes a scored diff report.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"strings"

	"designdiff/internal/capture"
	"designdiff/internal/config"
	"designdiff/internal/imaging"
	"designdiff/internal/metrics"
	"designdiff/internal/report"
	"designdiff/internal/version"
	"designdiff/internal/view"
	"designdiff/pkg/colorutil"
	"designdiff/pkg/geometry"
)

func main() {
	ref := flag.String("ref", "", "Reference artifact: image path, URL, or figma://<file>/<node>")
	impl := flag.String("impl", "", "Implementation artifact: image path, URL, or figma://<file>/<node>")
	metricNames := flag.String("m", "", "Comma-separated metrics to run (pixel,layout,typography,color,content); empty = all")
	configPath := flag.String("c", "", "Path to YAML config file")
	outPath := flag.String("o", "report.json", "Report output path")
	overlayPath := flag.String("overlay", "", "Write a diff overlay image to this path")
	threshold := flag.Float64("t", 0, "Pass threshold override (0 = config/default)")
	useOCR := flag.Bool("ocr", false, "Run OCR on image artifacts to enable content comparison")
	workDir := flag.String("workdir", "", "Directory for captured screenshots (default: temp dir)")
	debug := flag.Bool("debug", false, "Print metric diagnostics")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *ref == "" || *impl == "" {
		fmt.Println("Usage: designdiff -ref <artifact> -impl <artifact> [-m pixel,layout] [-c config.yaml] [-o report.json]")
		os.Exit(1)
	}

	runner := metrics.NewRunner()
	params := report.DefaultParams()
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg.ApplyRunner(runner)
		params = cfg.ReportParams()
	}
	if *threshold > 0 {
		params.Threshold = *threshold
	}
	if *debug {
		runner.Pixel.Debug = true
		runner.Pixel.Align.Debug = true
		runner.Layout.Debug = true
		runner.Typography.Debug = true
		runner.Color.Debug = true
		runner.Content.Debug = true
	}

	var kinds []metrics.Kind
	if *metricNames != "" {
		var err error
		kinds, err = metrics.ParseKinds(strings.Split(*metricNames, ","))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	dir := *workDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "designdiff")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	res := newResolver(dir, *useOCR)
	defer res.close()

	fmt.Printf("=== Capturing reference: %s ===\n", *ref)
	refView, err := res.resolve(ctx, *ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to capture reference: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Capturing implementation: %s ===\n", *impl)
	implView, err := res.resolve(ctx, *impl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to capture implementation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Running metrics ===\n")
	scores, err := runner.Run(refView, implView, kinds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Comparison failed: %v\n", err)
		os.Exit(1)
	}

	rep := report.New(*ref, *impl, scores, params)
	if *overlayPath != "" {
		if err := writeOverlay(*overlayPath, refView.ScreenshotPath, implView.ScreenshotPath, scores); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write overlay: %v\n", err)
			os.Exit(1)
		}
		rep.OverlayPath = *overlayPath
	}
	if err := rep.Save(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save report: %v\n", err)
		os.Exit(1)
	}

	printSummary(rep)
	if rep.Verdict != report.VerdictPass {
		os.Exit(2)
	}
}

// resolver lazily constructs the capture collaborators a source needs.
type resolver struct {
	dir     string
	useOCR  bool
	browser *capture.Browser
	ocr     *capture.OCREngine
	figma   *capture.FigmaClient
}

func newResolver(dir string, useOCR bool) *resolver {
	return &resolver{dir: dir, useOCR: useOCR}
}

func (r *resolver) resolve(ctx context.Context, source string) (*view.NormalizedView, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		if r.browser == nil {
			b, err := capture.NewBrowser(capture.BrowserOptions{})
			if err != nil {
				return nil, err
			}
			r.browser = b
		}
		return r.browser.CaptureURL(ctx, source, r.dir)

	case strings.HasPrefix(source, "figma://"):
		fileKey, nodeID, ok := strings.Cut(strings.TrimPrefix(source, "figma://"), "/")
		if !ok {
			return nil, fmt.Errorf("figma source must be figma://<file>/<node>, got %s", source)
		}
		if r.figma == nil {
			token := os.Getenv("FIGMA_TOKEN")
			if token == "" {
				return nil, fmt.Errorf("FIGMA_TOKEN environment variable is required for figma sources")
			}
			r.figma = capture.NewFigmaClient(token)
		}
		return r.figma.CaptureNode(ctx, fileKey, nodeID, r.dir)

	default:
		opts := capture.RasterOptions{}
		if r.useOCR {
			if r.ocr == nil {
				engine, err := capture.NewOCREngine()
				if err != nil {
					return nil, err
				}
				r.ocr = engine
			}
			opts.OCR = r.ocr
		}
		return capture.CaptureImage(source, opts)
	}
}

func (r *resolver) close() {
	if r.browser != nil {
		r.browser.Close()
	}
	if r.ocr != nil {
		r.ocr.Close()
	}
}

// writeOverlay renders a difference blend of both screenshots with severity
// colored outlines around every pixel diff region.
func writeOverlay(path, refPath, implPath string, scores *metrics.Scores) error {
	refImg, err := imaging.Load(refPath)
	if err != nil {
		return err
	}
	implImg, err := imaging.Load(implPath)
	if err != nil {
		return err
	}

	ref := imaging.ToRGBA(refImg)
	impl := imaging.ToRGBA(implImg)
	if impl.Bounds() != ref.Bounds() {
		impl = imaging.Resample(impl, ref.Bounds().Dx(), ref.Bounds().Dy())
	}

	out := imaging.Blend(ref, impl, imaging.BlendDifference, 1.0)
	if scores.Pixel != nil {
		bySeverity := map[metrics.Severity][]geometry.Rect{}
		for _, region := range scores.Pixel.DiffRegions {
			bySeverity[region.Severity] = append(bySeverity[region.Severity], region.Bounds)
		}
		out = imaging.DrawRegionOutlines(out, bySeverity[metrics.SeverityMinor], colorutil.Yellow, 2)
		out = imaging.DrawRegionOutlines(out, bySeverity[metrics.SeverityModerate], colorutil.Orange, 2)
		out = imaging.DrawRegionOutlines(out, bySeverity[metrics.SeverityMajor], colorutil.Red, 2)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, out)
}

func printSummary(rep *report.Report) {
	fmt.Printf("\n=== Result ===\n")
	fmt.Printf("Combined score: %.4f (threshold %.2f)\n", rep.CombinedScore, rep.Threshold)
	fmt.Printf("Verdict: %s\n", rep.Verdict)

	if rep.Metrics.Pixel != nil {
		fmt.Printf("  pixel:      %.4f (%d diff regions)\n",
			rep.Metrics.Pixel.Score, len(rep.Metrics.Pixel.DiffRegions))
	}
	if rep.Metrics.Layout != nil {
		fmt.Printf("  layout:     %.4f (match rate %.2f, avg IoU %.2f)\n",
			rep.Metrics.Layout.Score, rep.Metrics.Layout.MatchRate, rep.Metrics.Layout.AvgIoU)
	}
	if rep.Metrics.Typography != nil {
		fmt.Printf("  typography: %.4f (%d diffs)\n",
			rep.Metrics.Typography.Score, len(rep.Metrics.Typography.Diffs))
	}
	if rep.Metrics.Color != nil {
		fmt.Printf("  color:      %.4f (%d diffs)\n",
			rep.Metrics.Color.Score, len(rep.Metrics.Color.Diffs))
	}
	if rep.Metrics.Content != nil {
		fmt.Printf("  content:    %.4f (%d missing, %d extra)\n",
			rep.Metrics.Content.Score, len(rep.Metrics.Content.MissingText), len(rep.Metrics.Content.ExtraText))
	}

	if len(rep.TopIssues) > 0 {
		fmt.Printf("\nTop issues:\n")
		for i, issue := range rep.TopIssues {
			fmt.Printf("  %d. %s\n", i+1, issue)
		}
	}

	fmt.Printf("\nReport saved.\n")
}
