package biometric

import (
	"fmt"
	"image"
	"math"
)

// Descriptor layout: the face region is divided into gridRows x gridCols
// cells and each cell contributes its mean luminance, giving a 128-value
// descriptor matching the dimensionality the template format was calibrated
// against.
const (
	gridRows      = 16
	gridCols      = 8
	DescriptorDim = gridRows * gridCols
)

// GridEncoder is the baseline face encoder: a mean-centered, unit-normalized
// grid-luminance embedding. It is deterministic for identical input bytes.
// Because descriptors are unit vectors, Euclidean distance lies in [0,2] and
// the engine's 1-distance confidence mapping stays within [0,1] after
// clamping. A learned encoder can replace it behind the Encoder interface
// without touching matching policy, but the acceptance threshold must then
// be recalibrated.
type GridEncoder struct{}

func NewGridEncoder() *GridEncoder {
	return &GridEncoder{}
}

// Encode computes the descriptor for the given face region.
func (GridEncoder) Encode(img image.Image, face image.Rectangle) ([]float64, error) {
	face = face.Intersect(img.Bounds())
	if face.Dx() < gridCols || face.Dy() < gridRows {
		return nil, fmt.Errorf("face region %v too small to encode", face)
	}

	descriptor := make([]float64, DescriptorDim)
	cellW := float64(face.Dx()) / gridCols
	cellH := float64(face.Dy()) / gridRows

	for row := 0; row < gridRows; row++ {
		for col := 0; col < gridCols; col++ {
			x0 := face.Min.X + int(float64(col)*cellW)
			y0 := face.Min.Y + int(float64(row)*cellH)
			x1 := face.Min.X + int(float64(col+1)*cellW)
			y1 := face.Min.Y + int(float64(row+1)*cellH)
			descriptor[row*gridCols+col] = meanLuminance(img, x0, y0, x1, y1)
		}
	}

	normalize(descriptor)
	return descriptor, nil
}

func meanLuminance(img image.Image, x0, y0, x1, y1 int) float64 {
	var sum float64
	var n int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma weights on 16-bit channels.
			sum += 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) / 0xffff
}

// normalize mean-centers the descriptor and scales it to unit length, making
// the embedding invariant to global brightness and contrast.
func normalize(descriptor []float64) {
	var mean float64
	for _, v := range descriptor {
		mean += v
	}
	mean /= float64(len(descriptor))

	var norm float64
	for i := range descriptor {
		descriptor[i] -= mean
		norm += descriptor[i] * descriptor[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range descriptor {
		descriptor[i] /= norm
	}
}
