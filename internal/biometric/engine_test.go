package biometric

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"

	"github.com/facegate/auth-system/internal/core/domain"
)

type stubDetector struct {
	faces []image.Rectangle
	err   error
}

func (d *stubDetector) DetectFaces(img image.Image) ([]image.Rectangle, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.faces, nil
}

// fullFrameDetector treats the whole image as one face, letting engine tests
// exercise the real encoder without a cascade file.
type fullFrameDetector struct{}

func (fullFrameDetector) DetectFaces(img image.Image) ([]image.Rectangle, error) {
	return []image.Rectangle{img.Bounds()}, nil
}

func newEngine(d Detector) *Engine {
	return NewEngine(d, NewGridEncoder(), zerolog.Nop())
}

// testImage renders a deterministic synthetic portrait: a vertical gradient
// with a bright oval, offset shifts the pattern to simulate a different
// subject.
func testImage(t *testing.T, offset uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			v := uint8(y) + offset
			dx, dy := x-64, y-64
			if dx*dx+dy*dy < 40*40 {
				v += 80
			}
			// Deterministic texture keeps the PNG above the minimum
			// payload size the engine accepts.
			v += uint8((x*7 + y*13) % 16)
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestEngine_Extract_RejectsTinyPayload(t *testing.T) {
	engine := newEngine(&stubDetector{})
	if _, err := engine.Extract(context.Background(), []byte("tiny")); !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestEngine_Extract_RejectsUndecodable(t *testing.T) {
	engine := newEngine(&stubDetector{})
	garbage := bytes.Repeat([]byte{0xde, 0xad}, 1024)
	if _, err := engine.Extract(context.Background(), garbage); !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestEngine_Extract_FaceCount(t *testing.T) {
	img := testImage(t, 0)
	rect := image.Rect(0, 0, 128, 128)

	engine := newEngine(&stubDetector{faces: nil})
	if _, err := engine.Extract(context.Background(), img); !errors.Is(err, domain.ErrNoFaceDetected) {
		t.Fatalf("zero faces: expected ErrNoFaceDetected, got %v", err)
	}

	engine = newEngine(&stubDetector{faces: []image.Rectangle{rect, rect}})
	if _, err := engine.Extract(context.Background(), img); !errors.Is(err, domain.ErrMultipleFacesDetected) {
		t.Fatalf("two faces: expected ErrMultipleFacesDetected, got %v", err)
	}

	engine = newEngine(&stubDetector{faces: []image.Rectangle{rect}})
	if _, err := engine.Extract(context.Background(), img); err != nil {
		t.Fatalf("one face: unexpected error %v", err)
	}
}

func TestEngine_Extract_DetectorFailureIsInvalidImage(t *testing.T) {
	engine := newEngine(&stubDetector{err: errors.New("cascade exploded")})
	if _, err := engine.Extract(context.Background(), testImage(t, 0)); !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestEngine_Extract_Deterministic(t *testing.T) {
	engine := newEngine(fullFrameDetector{})
	img := testImage(t, 0)

	first, err := engine.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	second, err := engine.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}

	if got := engine.Compare(first, second); got != 1.0 {
		t.Fatalf("same bytes must yield identical descriptors, confidence=%v", got)
	}
}

func TestEngine_Compare_SameSubjectAboveThreshold(t *testing.T) {
	engine := newEngine(fullFrameDetector{})

	enrolled, err := engine.Extract(context.Background(), testImage(t, 0))
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	// A second capture of the same subject under slightly different
	// lighting: the normalized embedding cancels the global shift.
	probe, err := engine.Extract(context.Background(), testImage(t, 3))
	if err != nil {
		t.Fatalf("probe: %v", err)
	}

	if got := engine.Compare(enrolled, probe); got < 0.6 {
		t.Fatalf("same subject should clear the threshold, confidence=%v", got)
	}
}

func TestEngine_Compare_FailsClosed(t *testing.T) {
	engine := newEngine(fullFrameDetector{})
	valid, err := engine.Extract(context.Background(), testImage(t, 0))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if got := engine.Compare(domain.Template{0xba, 0xad}, valid); got != 0 {
		t.Fatalf("corrupt enrolled template must score 0, got %v", got)
	}
	if got := engine.Compare(valid, nil); got != 0 {
		t.Fatalf("nil probe must score 0, got %v", got)
	}

	// Dimensionality mismatch from an older encoder: no error, no match.
	short := domain.NewTemplate([]float64{0.5, 0.5})
	if got := engine.Compare(short, valid); got != 0 {
		t.Fatalf("mismatched dimensions must score 0, got %v", got)
	}
}

func TestGridEncoder_UnitNorm(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 4)})
		}
	}

	descriptor, err := NewGridEncoder().Encode(img, img.Bounds())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(descriptor) != DescriptorDim {
		t.Fatalf("expected %d dims, got %d", DescriptorDim, len(descriptor))
	}

	var norm float64
	for _, v := range descriptor {
		norm += v * v
	}
	if norm < 0.999 || norm > 1.001 {
		t.Fatalf("descriptor should be unit length, norm²=%v", norm)
	}
}

func TestGridEncoder_RegionTooSmall(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	if _, err := NewGridEncoder().Encode(img, image.Rect(0, 0, 4, 4)); err == nil {
		t.Fatal("expected error for undersized face region")
	}
}
