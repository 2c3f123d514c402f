// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg"
	"github.com/gogpu/csg/cache"
	"github.com/gogpu/csg/internal/gpu"
)

// FrameStats describes the pass structure of the last rendered frame.
type FrameStats struct {
	// DepthDraws counts depth-buffer primitive draws.
	DepthDraws int

	// StencilDraws counts stencil-counting primitive draws.
	StencilDraws int

	// FullscreenDraws counts full-screen stencil arithmetic draws.
	FullscreenDraws int

	// ShadingDraws counts color-producing primitive draws.
	ShadingDraws int

	// Rounds counts Goldfeather sweep rounds, zero under SCS.
	Rounds int
}

// Renderer composites a primitive list into frames. It owns the
// per-instance pipeline caches, the uploaded geometry, and the
// per-frame uniform, material, and light state.
//
// Renderer is not safe for concurrent use.
type Renderer struct {
	session *gpu.FrameSession
	opts    rendererOptions

	model      math32.Matrix4
	view       math32.Matrix4
	projection math32.Matrix4
	material   csg.Material
	light      csg.Light

	hasConcave bool
	lastUsed   Algorithm
	lastStats  FrameStats
}

// NewRenderer builds a renderer on the given device and queue. Shader
// compilation or layout creation failures wrap ErrShaderNotFound or
// ErrResourceCreation; both are fatal and nothing is retained.
func NewRenderer(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	session, err := gpu.NewFrameSession(device, queue)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		session:    session,
		opts:       o,
		model:      identity4(),
		view:       identity4(),
		projection: identity4(),
		material:   csg.DefaultMaterial(),
		light:      csg.DefaultLight(),
	}, nil
}

// NewRendererFromHandle builds a renderer on a device lent by a host
// application. The handle must expose the wgpu HAL device and queue;
// otherwise ErrNoHALDevice is returned.
func NewRendererFromHandle(h DeviceHandle, opts ...Option) (*Renderer, error) {
	if h == nil {
		return nil, ErrNilDevice
	}
	device, queue, ok := halFromHandle(h)
	if !ok {
		return nil, ErrNoHALDevice
	}
	return NewRenderer(device, queue, opts...)
}

// SetPrimitives replaces the renderer's primitive list and uploads its
// geometry. Every primitive is validated against the fixed vertex
// layout first: the interleaved data must form whole position+normal
// vertices and every index must reference one of them. A violation
// returns ErrStrideMismatch and leaves the previous list in place.
//
// Primitives are referenced, not copied: they may be shared across
// renderers and frames. Primitives with no triangles are skipped.
func (r *Renderer) SetPrimitives(prims []*csg.Primitive) error {
	hasConcave := false
	for i, p := range prims {
		if err := validateLayout(p.VertexData(), p.IndexData()); err != nil {
			return fmt.Errorf("primitive %d: %w", i, err)
		}
		if p.Convexity().IsConcave() {
			hasConcave = true
		}
	}
	if err := r.session.Store().SetPrimitives(prims); err != nil {
		return err
	}
	r.hasConcave = hasConcave
	return nil
}

// validateLayout checks interleaved vertex data against the fixed
// position+normal layout: whole vertices only, every index in range.
func validateLayout(verts []float32, indices []uint32) error {
	if len(verts)%csg.VertexFloats != 0 {
		return fmt.Errorf("%w: %d floats is not a whole number of vertices",
			ErrStrideMismatch, len(verts))
	}
	vertexCount := uint32(len(verts) / csg.VertexFloats) //nolint:gosec // vertex counts fit uint32
	for _, idx := range indices {
		if idx >= vertexCount {
			return fmt.Errorf("%w: index %d outside %d vertices",
				ErrStrideMismatch, idx, vertexCount)
		}
	}
	return nil
}

// SetTransforms sets the model, view, and projection matrices used by
// the next frame. The derived model-view, MVP, and normal matrices are
// recomputed at RenderFrame time.
func (r *Renderer) SetTransforms(model, view, projection math32.Matrix4) {
	r.model = model
	r.view = view
	r.projection = projection
}

// SetMaterial sets the surface material for subsequent frames.
func (r *Renderer) SetMaterial(m csg.Material) {
	r.material = m
}

// SetLight sets the directional light for subsequent frames.
func (r *Renderer) SetLight(l csg.Light) {
	r.light = l
}

// selectAlgorithm resolves which engine the next frame runs: the pinned
// one, or in automatic mode Goldfeather exactly when the current list
// contains a concave primitive.
func (r *Renderer) selectAlgorithm() Algorithm {
	if r.opts.algorithm != AlgorithmAuto {
		return r.opts.algorithm
	}
	if r.hasConcave {
		return AlgorithmGoldfeather
	}
	return AlgorithmSCS
}

// Algorithm reports the engine the last RenderFrame call used.
func (r *Renderer) Algorithm() Algorithm { return r.lastUsed }

// LastFrameStats reports the pass structure of the last rendered frame.
func (r *Renderer) LastFrameStats() FrameStats { return r.lastStats }

// RenderFrame composites the current primitive list into target.
//
// The call recomputes the MVP and normal matrices, uploads the frame's
// uniform blocks, encodes the selected algorithm's passes into one
// command buffer in program order, and submits. An empty primitive list
// clears the target and issues no draws.
//
// A nil or zero-sized target drops the frame: frames are independent,
// nothing is queued, and nil is returned. Encoding and submission
// failures also drop the frame with a log entry and a nil return; only
// resource-creation failures are returned, and those leave the renderer
// unusable.
//
// Submission does not block past the queue hand-off, except against a
// target with CPU pixels, where the call waits on a fence and copies
// the finished frame out before returning.
func (r *Renderer) RenderFrame(target Target) error {
	if target == nil || target.Width() <= 0 || target.Height() <= 0 {
		csg.Logger().Debug("csg: frame dropped, no usable target")
		return nil
	}

	algo := r.selectAlgorithm()

	var mv, mvp math32.Matrix4
	mv.MulMatrices(&r.view, &r.model)
	mvp.MulMatrices(&r.projection, &mv)

	frame := gpu.Frame{
		Width:      uint32(target.Width()),  //nolint:gosec // checked positive
		Height:     uint32(target.Height()), //nolint:gosec // checked positive
		Samples:    r.opts.sampleCount,
		ClearColor: r.opts.clearColor,
		Format:     target.Format(),
		Algorithm:  engineFor(algo),
		MVP:        mvp,
		MV:         mv,
		Normal:     normalMatrix(&mv),
		Material:   r.material,
		Light:      r.light,
		TargetView: target.TextureView(),
		Readback:   target.Pixels(),
	}

	stats, err := r.session.RenderFrame(&frame)
	if err != nil {
		if errors.Is(err, gpu.ErrEncoding) {
			csg.Logger().Warn("csg: frame dropped", "err", err)
			return nil
		}
		return err
	}

	r.lastUsed = algo
	r.lastStats = FrameStats(stats)
	csg.Logger().Debug("csg: frame rendered",
		"algorithm", algo.String(),
		"depthDraws", stats.DepthDraws,
		"shadingDraws", stats.ShadingDraws,
		"rounds", stats.Rounds)
	return nil
}

// engineFor maps the public algorithm (with Auto already resolved) to
// the engine identifier.
func engineFor(a Algorithm) gpu.Algorithm {
	if a == AlgorithmGoldfeather {
		return gpu.AlgorithmGoldfeather
	}
	return gpu.AlgorithmSCS
}

// CacheStats aggregates hit/miss statistics across the renderer's
// pipeline and state caches.
type CacheStats struct {
	Depth        cache.Stats
	Shading      cache.Stats
	Fullscreen   cache.Stats
	DepthStencil cache.Stats
}

// CacheStats returns the pipeline cache statistics for this renderer
// instance.
func (r *Renderer) CacheStats() CacheStats {
	return CacheStats(r.session.Pipelines().Stats())
}

// Destroy releases every GPU resource the renderer owns. The device
// and queue stay with the caller. Safe to call twice.
func (r *Renderer) Destroy() {
	r.session.Destroy()
}
