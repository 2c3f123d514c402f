// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import "errors"

// Sentinel errors for GPU resource and frame lifecycle failures.
// Callers classify with errors.Is; the wrapped message carries the
// failing object and backend detail.
var (
	// ErrResourceCreation is returned when a device object (texture,
	// buffer, pipeline, layout, bind group) cannot be created. Creation
	// failures during renderer construction are fatal; the renderer is
	// unusable.
	ErrResourceCreation = errors.New("gpu: resource creation failed")

	// ErrShaderNotFound is returned when an embedded WGSL source is
	// missing or empty. This indicates a corrupted build and is fatal.
	ErrShaderNotFound = errors.New("gpu: shader source not found")

	// ErrEncoding is returned when command encoding or submission fails.
	// The frame is dropped; the renderer remains usable for the next one.
	ErrEncoding = errors.New("gpu: command encoding failed")
)
