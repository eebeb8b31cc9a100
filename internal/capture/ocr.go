package capture

import (
	"fmt"
	"image"
	"strings"

	"designdiff/internal/view"
	"designdiff/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// OCREngine extracts text blocks from screenshots using Tesseract.
type OCREngine struct {
	client        *gosseract.Client
	minConfidence float64
}

// NewOCREngine creates an OCR engine configured for UI text.
func NewOCREngine() (*OCREngine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	return &OCREngine{
		client:        client,
		minConfidence: 40,
	}, nil
}

// SetMinConfidence sets the word confidence below which detections are dropped.
func (e *OCREngine) SetMinConfidence(c float64) {
	e.minConfidence = c
}

// Close releases OCR resources.
func (e *OCREngine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// DetectBlocks finds text lines in a screenshot and returns them as OCR
// blocks with normalized bounding boxes.
func (e *OCREngine) DetectBlocks(path string) ([]view.OcrBlock, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("failed to read image %s", path)
	}
	defer img.Close()

	imgW := img.Cols()
	imgH := img.Rows()

	processed := preprocessScreenshot(img)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// Line-level boxes keep short UI labels ("OK", "Cancel") as single
	// blocks instead of scattering per-word fragments.
	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("failed to get boxes: %w", err)
	}

	var blocks []view.OcrBlock
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" || box.Confidence < e.minConfidence {
			continue
		}
		px := geometry.RectInt{
			X:      box.Box.Min.X,
			Y:      box.Box.Min.Y,
			Width:  box.Box.Dx(),
			Height: box.Box.Dy(),
		}
		blocks = append(blocks, view.OcrBlock{
			Text:        text,
			BoundingBox: px.Normalized(imgW, imgH),
			Confidence:  box.Confidence,
		})
	}

	return blocks, nil
}

// preprocessScreenshot prepares a UI screenshot for OCR: grayscale, contrast
// enhancement, and Otsu binarization with dark-theme inversion.
func preprocessScreenshot(img gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	// Tesseract expects dark text on a light background; dark-theme
	// screenshots come out mostly black after thresholding.
	whiteCount := gocv.CountNonZero(binary)
	totalPixels := binary.Rows() * binary.Cols()
	if totalPixels > 0 && float64(whiteCount)/float64(totalPixels) < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()

	return result
}
