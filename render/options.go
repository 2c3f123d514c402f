// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "github.com/gogpu/gputypes"

// Algorithm selects the compositing engine for a renderer.
type Algorithm int

const (
	// AlgorithmAuto picks per frame: Goldfeather when any primitive is
	// concave, SCS otherwise. This is the default.
	AlgorithmAuto Algorithm = iota

	// AlgorithmSCS forces the three-pass sequenced convex subtraction
	// engine. Feeding it concave primitives produces wrong pixels, not
	// an error.
	AlgorithmSCS

	// AlgorithmGoldfeather forces the stencil-counting engine.
	AlgorithmGoldfeather
)

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmAuto:
		return "Auto"
	case AlgorithmSCS:
		return "SCS"
	case AlgorithmGoldfeather:
		return "Goldfeather"
	default:
		return "Unknown"
	}
}

// Option configures a Renderer at construction.
type Option func(*rendererOptions)

// rendererOptions holds optional renderer configuration.
type rendererOptions struct {
	algorithm   Algorithm
	sampleCount uint32
	clearColor  gputypes.Color
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		algorithm:   AlgorithmAuto,
		sampleCount: 1,
		clearColor:  gputypes.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
	}
}

// WithAlgorithm pins the compositing engine instead of per-frame
// automatic selection.
func WithAlgorithm(a Algorithm) Option {
	return func(o *rendererOptions) {
		o.algorithm = a
	}
}

// WithSampleCount sets the MSAA sample count for the attachments.
// Counts below 1 are treated as 1.
func WithSampleCount(n uint32) Option {
	return func(o *rendererOptions) {
		if n < 1 {
			n = 1
		}
		o.sampleCount = n
	}
}

// WithClearColor sets the background color frames are cleared to,
// components in [0,1].
func WithClearColor(r, g, b, a float64) Option {
	return func(o *rendererOptions) {
		o.clearColor = gputypes.Color{R: r, G: g, B: b, A: a}
	}
}
