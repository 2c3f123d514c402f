// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg"
)

// SCSRenderer composites convex primitives with the sequenced convex
// subtraction passes:
//
//  1. Front faces of every intersection primitive, less-than depth test,
//     depth write on. The depth buffer converges to the nearest entry
//     into the intersection volume.
//  2. Back faces of every subtraction primitive, greater-than depth test,
//     depth write on. Pixels inside a subtracted volume are pushed back
//     to its exit surface.
//  3. Shading: every primitive again with an equal-depth test and no
//     depth write, lighting whichever surface survived.
//
// Primitives draw in submission order within each tag group. The engine
// requires every primitive to be convex; callers guarantee this through
// algorithm selection, it is not re-checked here.
type SCSRenderer struct {
	pipelines *PipelineCache
}

// NewSCSRenderer creates an SCS engine drawing pipelines from the given
// cache.
func NewSCSRenderer(pipelines *PipelineCache) *SCSRenderer {
	return &SCSRenderer{pipelines: pipelines}
}

// scsPipelineSet holds the four pipelines one SCS frame switches between.
type scsPipelineSet struct {
	depthIntersect hal.RenderPipeline
	depthSubtract  hal.RenderPipeline
	shadeIntersect hal.RenderPipeline
	shadeSubtract  hal.RenderPipeline
}

// Prepare resolves the frame's pipelines from the cache. Pipeline
// creation happens here so recording itself cannot fail.
func (r *SCSRenderer) Prepare(pk PipelineKey) (scsPipelineSet, error) {
	var set scsPipelineSet
	var err error

	depthWrite := func(compare gputypes.CompareFunction) DepthStencilKey {
		return DepthStencilKey{
			DepthCompare:      compare,
			DepthWriteEnabled: true,
			Stencil:           StencilDisabled(),
		}
	}
	shadeKey := DepthStencilKey{
		DepthCompare:      gputypes.CompareFunctionEqual,
		DepthWriteEnabled: false,
		Stencil:           StencilDisabled(),
	}

	set.depthIntersect, err = r.pipelines.DepthPipeline(pk, depthWrite(gputypes.CompareFunctionLess), candidateCull(csg.Intersection))
	if err != nil {
		return set, err
	}
	set.depthSubtract, err = r.pipelines.DepthPipeline(pk, depthWrite(gputypes.CompareFunctionGreater), candidateCull(csg.Subtraction))
	if err != nil {
		return set, err
	}
	set.shadeIntersect, err = r.pipelines.ShadingPipeline(pk, shadeKey, candidateCull(csg.Intersection))
	if err != nil {
		return set, err
	}
	set.shadeSubtract, err = r.pipelines.ShadingPipeline(pk, shadeKey, candidateCull(csg.Subtraction))
	if err != nil {
		return set, err
	}
	return set, nil
}

// RecordDraws records the three SCS passes into an open render pass. The
// depth attachment must be cleared to 1.0 before the pass begins.
func (r *SCSRenderer) RecordDraws(rp hal.RenderPassEncoder, set scsPipelineSet, prims []primitiveBuffers, bindGroup hal.BindGroup, stats *DrawStats) {
	for i := range prims {
		if prims[i].op != csg.Intersection {
			continue
		}
		drawPrimitive(rp, set.depthIntersect, bindGroup, &prims[i])
		stats.DepthDraws++
	}

	for i := range prims {
		if prims[i].op != csg.Subtraction {
			continue
		}
		drawPrimitive(rp, set.depthSubtract, bindGroup, &prims[i])
		stats.DepthDraws++
	}

	for i := range prims {
		pipeline := set.shadeIntersect
		if prims[i].op == csg.Subtraction {
			pipeline = set.shadeSubtract
		}
		drawPrimitiveShaded(rp, pipeline, bindGroup, &prims[i])
		stats.ShadingDraws++
	}
}
