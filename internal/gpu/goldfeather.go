// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"sort"

	"cogentcore.org/core/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg"
)

// GoldfeatherRenderer composites arbitrary-convexity primitives with
// per-pixel stencil counting. Every stencil comparison runs against the
// hardware-default reference value 0, so boolean classification is
// phrased as counter arithmetic that lands on zero exactly for visible
// surface candidates:
//
//	init      depth cleared to 0.0, all candidate faces drawn with a
//	          greater-than test: the buffer holds the farthest candidate.
//	round     one primitive visit each. A visit advances the candidate
//	          to that primitive's next nearer face (less-than test),
//	          re-runs the containment count, and shades pixels whose
//	          counter is zero. Visits run far to near, so plain
//	          premultiplied over-blending leaves the nearest valid
//	          candidate on screen.
//
// The containment count per round: zero the stencil; per intersection
// primitive add front faces at or before the candidate and subtract back
// faces (clamped, fronts first, so the counter equals the winding sum);
// subtract the intersection primitive count with a wrapping full-screen
// draw, leaving zero exactly for pixels inside every intersection
// volume; invert the survivors' complement out of additive range; then
// add each subtraction primitive's winding, pushing carved pixels off
// zero. Shading draws test depth-equal and stencil-equal-zero.
//
// Known approximations, all producing wrong pixels rather than errors:
// candidates interleaved against the global far-to-near primitive order,
// winding sums above 1 from self-overlapping solids, visits beyond a
// primitive's declared layer count, and cameras inside a solid (the
// classic image-space crossing-count limitation).
type GoldfeatherRenderer struct {
	pipelines *PipelineCache
}

// NewGoldfeatherRenderer creates a Goldfeather engine drawing pipelines
// from the given cache.
func NewGoldfeatherRenderer(pipelines *PipelineCache) *GoldfeatherRenderer {
	return &GoldfeatherRenderer{pipelines: pipelines}
}

// goldfeatherPipelineSet holds the eleven pipelines one Goldfeather frame
// switches between.
type goldfeatherPipelineSet struct {
	initIntersect    hal.RenderPipeline
	initSubtract     hal.RenderPipeline
	advanceIntersect hal.RenderPipeline
	advanceSubtract  hal.RenderPipeline

	countFront hal.RenderPipeline
	countBack  hal.RenderPipeline

	stencilZero   hal.RenderPipeline
	subtractCount hal.RenderPipeline
	normalize     hal.RenderPipeline

	shadeIntersect hal.RenderPipeline
	shadeSubtract  hal.RenderPipeline
}

// Prepare resolves the frame's pipelines from the cache.
func (g *GoldfeatherRenderer) Prepare(pk PipelineKey) (goldfeatherPipelineSet, error) { //nolint:funlen // one flat fetch per pipeline variant
	var set goldfeatherPipelineSet
	var err error

	depthWrite := func(compare gputypes.CompareFunction) DepthStencilKey {
		return DepthStencilKey{
			DepthCompare:      compare,
			DepthWriteEnabled: true,
			Stencil:           StencilDisabled(),
		}
	}
	countKey := func(pass hal.StencilOperation) DepthStencilKey {
		return DepthStencilKey{
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			DepthWriteEnabled: false,
			Stencil: StencilParams{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      pass,
				ReadMask:    0xFF,
				WriteMask:   0xFF,
			},
		}
	}
	fullscreenKey := func(compare gputypes.CompareFunction, fail, pass hal.StencilOperation) DepthStencilKey {
		return DepthStencilKey{
			DepthCompare:      gputypes.CompareFunctionAlways,
			DepthWriteEnabled: false,
			Stencil: StencilParams{
				Compare:     compare,
				FailOp:      fail,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      pass,
				ReadMask:    0xFF,
				WriteMask:   0xFF,
			},
		}
	}
	shadeKey := DepthStencilKey{
		DepthCompare:      gputypes.CompareFunctionEqual,
		DepthWriteEnabled: false,
		Stencil: StencilParams{
			Compare:     gputypes.CompareFunctionEqual,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
			ReadMask:    0xFF,
			WriteMask:   0x00,
		},
	}

	set.initIntersect, err = g.pipelines.DepthPipeline(pk, depthWrite(gputypes.CompareFunctionGreater), candidateCull(csg.Intersection))
	if err != nil {
		return set, err
	}
	set.initSubtract, err = g.pipelines.DepthPipeline(pk, depthWrite(gputypes.CompareFunctionGreater), candidateCull(csg.Subtraction))
	if err != nil {
		return set, err
	}
	set.advanceIntersect, err = g.pipelines.DepthPipeline(pk, depthWrite(gputypes.CompareFunctionLess), candidateCull(csg.Intersection))
	if err != nil {
		return set, err
	}
	set.advanceSubtract, err = g.pipelines.DepthPipeline(pk, depthWrite(gputypes.CompareFunctionLess), candidateCull(csg.Subtraction))
	if err != nil {
		return set, err
	}
	set.countFront, err = g.pipelines.DepthPipeline(pk, countKey(hal.StencilOperationIncrementClamp), gputypes.CullModeBack)
	if err != nil {
		return set, err
	}
	set.countBack, err = g.pipelines.DepthPipeline(pk, countKey(hal.StencilOperationDecrementClamp), gputypes.CullModeFront)
	if err != nil {
		return set, err
	}
	set.stencilZero, err = g.pipelines.FullscreenPipeline(pk,
		fullscreenKey(gputypes.CompareFunctionAlways, hal.StencilOperationKeep, hal.StencilOperationZero))
	if err != nil {
		return set, err
	}
	set.subtractCount, err = g.pipelines.FullscreenPipeline(pk,
		fullscreenKey(gputypes.CompareFunctionAlways, hal.StencilOperationKeep, hal.StencilOperationDecrementWrap))
	if err != nil {
		return set, err
	}
	set.normalize, err = g.pipelines.FullscreenPipeline(pk,
		fullscreenKey(gputypes.CompareFunctionEqual, hal.StencilOperationInvert, hal.StencilOperationKeep))
	if err != nil {
		return set, err
	}
	set.shadeIntersect, err = g.pipelines.ShadingPipeline(pk, shadeKey, candidateCull(csg.Intersection))
	if err != nil {
		return set, err
	}
	set.shadeSubtract, err = g.pipelines.ShadingPipeline(pk, shadeKey, candidateCull(csg.Subtraction))
	if err != nil {
		return set, err
	}
	return set, nil
}

// visitSchedule orders primitive visits far to near by view-space bounds
// center, stable on submission order, with each primitive visited once
// per declared depth layer.
func visitSchedule(prims []primitiveBuffers, mv *math32.Matrix4) []int {
	order := make([]int, len(prims))
	depth := make([]float32, len(prims))
	for i := range prims {
		order[i] = i
		vb := prims[i].bounds.MulMatrix4(mv)
		depth[i] = (vb.Min.Z + vb.Max.Z) / 2
	}
	// The camera looks down negative Z in view space; more negative is
	// farther away.
	sort.SliceStable(order, func(a, b int) bool {
		return depth[order[a]] < depth[order[b]]
	})

	schedule := make([]int, 0, len(prims))
	for _, pi := range order {
		for v := 0; v < prims[pi].convexity.Layers(); v++ {
			schedule = append(schedule, pi)
		}
	}
	return schedule
}

// RecordDraws records the full Goldfeather frame into an open render
// pass. The depth attachment must be cleared to 0.0 and the stencil to 0
// before the pass begins. A frame with no intersection primitives is an
// empty composite and records nothing.
func (g *GoldfeatherRenderer) RecordDraws(
	rp hal.RenderPassEncoder,
	set goldfeatherPipelineSet,
	prims []primitiveBuffers,
	schedule []int,
	bindGroup hal.BindGroup,
	fsBuf hal.Buffer,
	stats *DrawStats,
) {
	intersectCount := 0
	for i := range prims {
		if prims[i].op == csg.Intersection {
			intersectCount++
		}
	}
	if intersectCount == 0 {
		return
	}

	// Init: converge the depth buffer to the farthest candidate.
	for i := range prims {
		pipeline := set.initIntersect
		if prims[i].op == csg.Subtraction {
			pipeline = set.initSubtract
		}
		drawPrimitive(rp, pipeline, bindGroup, &prims[i])
		stats.DepthDraws++
	}

	for visit, pi := range schedule {
		p := &prims[pi]

		// Advance to the visited primitive's next nearer candidate.
		// The first visit keeps the init result.
		if visit > 0 {
			pipeline := set.advanceIntersect
			if p.op == csg.Subtraction {
				pipeline = set.advanceSubtract
			}
			drawPrimitive(rp, pipeline, bindGroup, p)
			stats.DepthDraws++
		}

		drawFullscreen(rp, set.stencilZero, bindGroup, fsBuf, 1)
		stats.FullscreenDraws++

		// Winding count of every intersection primitive at the candidate
		// depth. Fronts before backs keeps the clamped counter exact.
		for i := range prims {
			if prims[i].op != csg.Intersection {
				continue
			}
			drawPrimitive(rp, set.countFront, bindGroup, &prims[i])
			drawPrimitive(rp, set.countBack, bindGroup, &prims[i])
			stats.StencilDraws += 2
		}

		// Counter - intersectCount mod 256: zero iff inside all of them.
		drawFullscreen(rp, set.subtractCount, bindGroup, fsBuf, uint32(intersectCount)) //nolint:gosec // primitive counts fit uint32
		stats.FullscreenDraws++

		// Send failing pixels beyond the reach of subtraction additions.
		drawFullscreen(rp, set.normalize, bindGroup, fsBuf, 1)
		stats.FullscreenDraws++

		// Any containing subtraction primitive pushes the counter off 0.
		for i := range prims {
			if prims[i].op != csg.Subtraction {
				continue
			}
			drawPrimitive(rp, set.countFront, bindGroup, &prims[i])
			drawPrimitive(rp, set.countBack, bindGroup, &prims[i])
			stats.StencilDraws += 2
		}

		// Shade surviving candidates.
		for i := range prims {
			pipeline := set.shadeIntersect
			if prims[i].op == csg.Subtraction {
				pipeline = set.shadeSubtract
			}
			drawPrimitiveShaded(rp, pipeline, bindGroup, &prims[i])
			stats.ShadingDraws++
		}
		stats.Rounds++
	}
}
