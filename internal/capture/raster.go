// Package capture turns artifact sources (raster files, live URLs, design-tool
// nodes) into normalized views.
package capture

import (
	"fmt"
	"os"

	"designdiff/internal/imaging"
	"designdiff/internal/view"
)

// RasterOptions configures raster-file capture.
type RasterOptions struct {
	// OCR, when non-nil, is used to extract text blocks so that content
	// comparison works on plain images.
	OCR *OCREngine
}

// CaptureImage loads a local raster file into a normalized view. The file
// itself becomes the view's screenshot; no copy is made.
func CaptureImage(path string, opts RasterOptions) (*view.NormalizedView, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("capture image: %w", err)
	}
	if !imaging.IsSupportedFormat(path) {
		return nil, fmt.Errorf("capture image %s: unsupported format (supported: %v)",
			path, imaging.SupportedFormats())
	}

	img, err := imaging.Load(path)
	if err != nil {
		return nil, fmt.Errorf("capture image %s: %w", path, err)
	}
	bounds := img.Bounds()

	v := &view.NormalizedView{
		Kind:           view.KindImage,
		Source:         path,
		ScreenshotPath: path,
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
	}

	if opts.OCR != nil {
		blocks, err := opts.OCR.DetectBlocks(path)
		if err != nil {
			return nil, fmt.Errorf("capture image %s: ocr: %w", path, err)
		}
		v.OCRBlocks = blocks
	}

	return v, nil
}
