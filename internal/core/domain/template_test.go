package domain

import (
	"math"
	"testing"
)

func TestTemplate_RoundTrip(t *testing.T) {
	descriptor := []float64{0.25, -0.5, 1.0, 0, 3.14159}
	tpl := NewTemplate(descriptor)

	decoded, err := tpl.Decode()
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(decoded) != len(descriptor) {
		t.Fatalf("expected %d values, got %d", len(descriptor), len(decoded))
	}
	for i := range descriptor {
		if decoded[i] != descriptor[i] {
			t.Fatalf("value %d: expected %v, got %v", i, descriptor[i], decoded[i])
		}
	}
}

func TestTemplate_DecodeCorrupt(t *testing.T) {
	cases := map[string]Template{
		"empty":           {},
		"short":           {0x46, 1},
		"bad magic":       NewTemplate([]float64{1, 2})[1:],
		"truncated body":  NewTemplate([]float64{1, 2, 3})[:10],
		"zero dimension":  {0x46, 1, 0, 0},
		"unknown version": {0x46, 9, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0},
		"length mismatch": append(NewTemplate([]float64{1}), 0xff),
	}

	for name, tpl := range cases {
		if _, err := tpl.Decode(); err == nil {
			t.Errorf("%s: expected decode error, got none", name)
		}
	}
}

func TestSimilarity_Identical(t *testing.T) {
	d := []float64{0.1, 0.2, 0.3}
	if got := Similarity(d, d); got != 1.0 {
		t.Fatalf("identical descriptors: expected 1.0, got %v", got)
	}
}

func TestSimilarity_MismatchedDimensions(t *testing.T) {
	if got := Similarity([]float64{1, 2}, []float64{1, 2, 3}); got != 0 {
		t.Fatalf("mismatched dimensions: expected 0, got %v", got)
	}
	if got := Similarity(nil, nil); got != 0 {
		t.Fatalf("empty descriptors: expected 0, got %v", got)
	}
}

func TestSimilarity_Clamped(t *testing.T) {
	// Distance 2 between opposing unit vectors maps below zero before the
	// clamp.
	a := []float64{1, 0}
	b := []float64{-1, 0}
	if got := Similarity(a, b); got != 0 {
		t.Fatalf("opposing vectors: expected 0, got %v", got)
	}
}

func TestSimilarity_MonotonicInDistance(t *testing.T) {
	base := []float64{1, 0, 0}
	near := []float64{0.9, math.Sqrt(1 - 0.81), 0}
	far := []float64{0, 1, 0}

	if Similarity(base, near) <= Similarity(base, far) {
		t.Fatalf("closer descriptor should score higher: near=%v far=%v",
			Similarity(base, near), Similarity(base, far))
	}
}
