// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"

	"github.com/gogpu/csg/internal/gpu"
)

// Public aliases of the GPU-layer sentinels, so callers classify
// failures with errors.Is without importing internal packages.
var (
	// ErrResourceCreation reports a failed device allocation (pipeline,
	// buffer, texture, bind group). Fatal to the renderer instance.
	ErrResourceCreation = gpu.ErrResourceCreation

	// ErrShaderNotFound reports a missing embedded shader source: a
	// build-time configuration error, surfaced at construction.
	ErrShaderNotFound = gpu.ErrShaderNotFound

	// ErrEncoding reports a failed command encoding or submission. The
	// frame is dropped and logged; the renderer stays usable, so
	// RenderFrame never returns this error itself.
	ErrEncoding = gpu.ErrEncoding
)

// Renderer-boundary errors.
var (
	// ErrStrideMismatch is returned by SetPrimitives when a primitive's
	// vertex data does not form whole position+normal vertices or an
	// index points past the last vertex.
	ErrStrideMismatch = errors.New("render: primitive vertex data mismatches the fixed layout")

	// ErrNilDevice is returned when a renderer is constructed without a
	// usable device or queue.
	ErrNilDevice = errors.New("render: nil device or queue")

	// ErrNoHALDevice is returned by NewRendererFromHandle when the
	// device handle does not expose the wgpu HAL device and queue.
	ErrNoHALDevice = errors.New("render: device handle does not expose a HAL device")
)
