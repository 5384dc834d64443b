package domain

import (
	"encoding/binary"
	"errors"
	"math"
)

// Template is an opaque serialized face descriptor. It is stored and moved
// around as a blob; only this package knows the layout, so the descriptor
// dimensionality and encoding can change without touching the store schema.
//
// Layout (big-endian): magic 0x46 't', format version, uint16 dimension,
// then dimension float64 values.
type Template []byte

const (
	templateMagic   = 0x46
	templateVersion = 1
	templateHeader  = 4
)

// ErrCorruptTemplate is returned by Decode for blobs that do not parse.
// Comparison paths must treat it as confidence zero, never propagate it.
var ErrCorruptTemplate = errors.New("corrupt face template")

// NewTemplate serializes a descriptor into an opaque template blob.
func NewTemplate(descriptor []float64) Template {
	buf := make([]byte, templateHeader+8*len(descriptor))
	buf[0] = templateMagic
	buf[1] = templateVersion
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(descriptor)))
	for i, v := range descriptor {
		binary.BigEndian.PutUint64(buf[templateHeader+8*i:], math.Float64bits(v))
	}
	return Template(buf)
}

// Decode parses the blob back into its descriptor. It validates the magic,
// version, and declared dimension against the payload length.
func (t Template) Decode() ([]float64, error) {
	if len(t) < templateHeader || t[0] != templateMagic || t[1] != templateVersion {
		return nil, ErrCorruptTemplate
	}
	dim := int(binary.BigEndian.Uint16(t[2:4]))
	if len(t) != templateHeader+8*dim || dim == 0 {
		return nil, ErrCorruptTemplate
	}
	descriptor := make([]float64, dim)
	for i := range descriptor {
		descriptor[i] = math.Float64frombits(binary.BigEndian.Uint64(t[templateHeader+8*i:]))
	}
	return descriptor, nil
}

// Similarity maps descriptor distance to a confidence in [0,1], higher
// meaning more similar: confidence = 1 - distance, clamped. The distance is
// Euclidean; identical descriptors score exactly 1. Mismatched dimensions
// score 0 so a dimensionality change in the engine degrades to no-match
// instead of erroring inside a gallery scan.
func Similarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	confidence := 1 - math.Sqrt(sum)
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
