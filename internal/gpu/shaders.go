// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	_ "embed"
	"fmt"
)

// Embedded WGSL shader sources, compiled into the binary at build time.

//go:embed shaders/depth.wgsl
var depthShaderSource string

//go:embed shaders/shade.wgsl
var shadeShaderSource string

//go:embed shaders/fullscreen.wgsl
var fullscreenShaderSource string

// validateShaderSources checks that every embedded shader is present.
// An empty source indicates a corrupted build.
func validateShaderSources() error {
	if depthShaderSource == "" {
		return fmt.Errorf("%w: depth shader", ErrShaderNotFound)
	}
	if shadeShaderSource == "" {
		return fmt.Errorf("%w: shade shader", ErrShaderNotFound)
	}
	if fullscreenShaderSource == "" {
		return fmt.Errorf("%w: fullscreen shader", ErrShaderNotFound)
	}
	return nil
}
