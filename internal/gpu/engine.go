// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg"
)

// Algorithm identifies which compositing engine renders a frame.
type Algorithm uint8

const (
	// AlgorithmSCS is the three-pass sequenced convex subtraction engine.
	// Valid only when every primitive is convex.
	AlgorithmSCS Algorithm = iota

	// AlgorithmGoldfeather is the stencil-counting layer-sweep engine.
	// Handles concave primitives at higher per-frame cost.
	AlgorithmGoldfeather
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmSCS:
		return "SCS"
	case AlgorithmGoldfeather:
		return "Goldfeather"
	default:
		return "Unknown"
	}
}

// DrawStats counts the draw calls recorded for one frame. Tests assert
// pass structure through these counters.
type DrawStats struct {
	// DepthDraws counts primitive draws into the depth buffer (SCS
	// sub-steps, Goldfeather init and advance).
	DepthDraws int

	// StencilDraws counts primitive draws that only update the stencil
	// counter (Goldfeather containment pass-pairs).
	StencilDraws int

	// FullscreenDraws counts full-screen stencil arithmetic draws.
	FullscreenDraws int

	// ShadingDraws counts color-producing primitive draws.
	ShadingDraws int

	// Rounds counts Goldfeather sweep rounds (zero for SCS).
	Rounds int
}

// drawPrimitive records one indexed draw of a primitive's position-only
// stream under the given pipeline.
func drawPrimitive(rp hal.RenderPassEncoder, pipeline hal.RenderPipeline, bindGroup hal.BindGroup, p *primitiveBuffers) {
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, p.posBuf, 0)
	rp.SetIndexBuffer(p.idxBuf, gputypes.IndexFormatUint32, 0)
	rp.DrawIndexed(p.indexCount, 1, 0, 0, 0)
}

// drawPrimitiveShaded records one indexed draw of a primitive's full
// position+normal stream under the given pipeline.
func drawPrimitiveShaded(rp hal.RenderPassEncoder, pipeline hal.RenderPipeline, bindGroup hal.BindGroup, p *primitiveBuffers) {
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertBuf, 0)
	rp.SetIndexBuffer(p.idxBuf, gputypes.IndexFormatUint32, 0)
	rp.DrawIndexed(p.indexCount, 1, 0, 0, 0)
}

// drawFullscreen records instances of the shared full-screen triangle
// under the given pipeline. Each instance applies the pipeline's stencil
// operation exactly once per pixel.
func drawFullscreen(rp hal.RenderPassEncoder, pipeline hal.RenderPipeline, bindGroup hal.BindGroup, fsBuf hal.Buffer, instances uint32) {
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, fsBuf, 0)
	rp.Draw(3, instances, 0, 0)
}

// candidateCull returns the cull mode that keeps a primitive's candidate
// faces: front faces for intersection primitives, back faces for
// subtraction primitives.
func candidateCull(op csg.Operation) gputypes.CullMode {
	if op == csg.Intersection {
		return gputypes.CullModeBack
	}
	return gputypes.CullModeFront
}
