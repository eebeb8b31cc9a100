// Command diffview displays a designdiff report: both screenshots, the
// difference overlay, and the ranked issue list.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"designdiff/internal/imaging"
	"designdiff/internal/metrics"
	"designdiff/internal/report"
	"designdiff/pkg/colorutil"
	"designdiff/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

func main() {
	reportPath := flag.String("r", "report.json", "Path to report JSON")
	refPath := flag.String("ref", "", "Reference screenshot (defaults to report source)")
	implPath := flag.String("impl", "", "Implementation screenshot (defaults to report source)")
	flag.Parse()

	rep, err := report.Load(*reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load report: %v\n", err)
		os.Exit(1)
	}
	if *refPath == "" {
		*refPath = rep.ReferenceSource
	}
	if *implPath == "" {
		*implPath = rep.ImplementationSource
	}

	refImg, err := imaging.Load(*refPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reference image: %v\n", err)
		os.Exit(1)
	}
	implImg, err := imaging.Load(*implPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load implementation image: %v\n", err)
		os.Exit(1)
	}

	fyneApp := app.New()
	win := fyneApp.NewWindow("Design Diff Viewer")

	header := widget.NewLabel(fmt.Sprintf("Combined score: %.4f  |  Verdict: %s",
		rep.CombinedScore, rep.Verdict))
	header.TextStyle = fyne.TextStyle{Bold: true}

	tabs := container.NewAppTabs(
		container.NewTabItem("Reference", imageView(refImg)),
		container.NewTabItem("Implementation", imageView(implImg)),
		container.NewTabItem("Overlay", imageView(buildOverlay(refImg, implImg, rep))),
	)

	issues := widget.NewList(
		func() int { return len(rep.TopIssues) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(fmt.Sprintf("%d. %s", i+1, rep.TopIssues[i]))
		},
	)

	split := container.NewVSplit(tabs, issues)
	split.SetOffset(0.75)

	win.SetContent(container.NewBorder(header, nil, nil, nil, split))
	win.Resize(fyne.NewSize(1100, 800))
	win.ShowAndRun()
}

func imageView(img image.Image) fyne.CanvasObject {
	v := canvas.NewImageFromImage(img)
	v.FillMode = canvas.ImageFillContain
	return v
}

// buildOverlay recreates the difference blend with severity outlines from the
// report's pixel regions.
func buildOverlay(refImg, implImg image.Image, rep *report.Report) image.Image {
	ref := imaging.ToRGBA(refImg)
	impl := imaging.ToRGBA(implImg)
	if impl.Bounds() != ref.Bounds() {
		impl = imaging.Resample(impl, ref.Bounds().Dx(), ref.Bounds().Dy())
	}

	out := imaging.Blend(ref, impl, imaging.BlendDifference, 1.0)
	if rep.Metrics.Pixel == nil {
		return out
	}

	bySeverity := map[metrics.Severity][]geometry.Rect{}
	for _, region := range rep.Metrics.Pixel.DiffRegions {
		bySeverity[region.Severity] = append(bySeverity[region.Severity], region.Bounds)
	}
	out = imaging.DrawRegionOutlines(out, bySeverity[metrics.SeverityMinor], colorutil.Yellow, 2)
	out = imaging.DrawRegionOutlines(out, bySeverity[metrics.SeverityModerate], colorutil.Orange, 2)
	out = imaging.DrawRegionOutlines(out, bySeverity[metrics.SeverityMajor], colorutil.Red, 2)
	return out
}
