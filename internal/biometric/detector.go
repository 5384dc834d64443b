package biometric

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Cascade detection tuning. ShiftFactor/ScaleFactor trade scan density for
// speed; minQuality filters low-confidence detections so reflections and
// background clutter do not count as extra faces.
const (
	minFaceSize       = 60
	maxFaceSize       = 1200
	shiftFactor       = 0.1
	scaleFactor       = 1.1
	clusterOverlap    = 0.2
	minQuality        = 5.0
	detectionAngleRad = 0.0
)

// PigoDetector locates faces with a pigo cascade classifier. Pure Go, no
// cgo: the classifier is unpacked once from the cascade file at startup and
// is safe for concurrent use.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector loads and unpacks the binary cascade at path.
func NewPigoDetector(path string) (*PigoDetector, error) {
	cascade, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cascade %s: %w", path, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}

	return &PigoDetector{classifier: classifier}, nil
}

// DetectFaces runs the cascade over the image and returns the bounding box
// of every clustered detection above the quality cutoff.
func (d *PigoDetector) DetectFaces(img image.Image) ([]image.Rectangle, error) {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty image %dx%d", cols, rows)
	}

	pixels := pigo.RgbToGrayscale(img)

	params := pigo.CascadeParams{
		MinSize:     minFaceSize,
		MaxSize:     maxFaceSize,
		ShiftFactor: shiftFactor,
		ScaleFactor: scaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	detections := d.classifier.RunCascade(params, detectionAngleRad)
	detections = d.classifier.ClusterDetections(detections, clusterOverlap)

	var faces []image.Rectangle
	for _, det := range detections {
		if det.Q < minQuality {
			continue
		}
		half := det.Scale / 2
		rect := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)
		faces = append(faces, rect.Intersect(bounds))
	}
	return faces, nil
}
