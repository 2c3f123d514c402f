// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg"
	"github.com/gogpu/csg/cache"
)

// Vertex strides for the two fixed vertex layouts. Depth and stencil
// passes read positions only; the shading pass reads the full
// interleaved position+normal stream from the same primitives.
const (
	depthVertexStride = 4 * csg.PositionFloats
	shadeVertexStride = 4 * csg.VertexFloats
	coverVertexStride = 2 * 4 // clip-space vec2 per full-screen vertex
)

// PipelineCache compiles and retains every render pipeline and
// depth/stencil state the compositing passes need. Entries are created on
// first use and never evicted; pipelines for equal keys are the identical
// object. The cache is scoped to one device and safe for concurrent use.
type PipelineCache struct {
	device hal.Device

	depthShader      hal.ShaderModule
	shadeShader      hal.ShaderModule
	fullscreenShader hal.ShaderModule

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout

	depth      *cache.Sharded[variantKey, hal.RenderPipeline]
	shading    *cache.Sharded[variantKey, hal.RenderPipeline]
	fullscreen *cache.Sharded[variantKey, hal.RenderPipeline]
	dsStates   *cache.Sharded[dsKey, *hal.DepthStencilState]
}

// NewPipelineCache compiles the shader modules and creates the shared bind
// group and pipeline layouts. Any failure here is fatal for the renderer
// being constructed.
func NewPipelineCache(device hal.Device) (*PipelineCache, error) {
	if err := validateShaderSources(); err != nil {
		return nil, err
	}

	c := &PipelineCache{
		device:     device,
		depth:      cache.NewSharded[variantKey, hal.RenderPipeline](hashVariantKey),
		shading:    cache.NewSharded[variantKey, hal.RenderPipeline](hashVariantKey),
		fullscreen: cache.NewSharded[variantKey, hal.RenderPipeline](hashVariantKey),
		dsStates:   cache.NewSharded[dsKey, *hal.DepthStencilState](hashDSKey),
	}

	var err error
	c.depthShader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "csg_depth_shader",
		Source: hal.ShaderSource{WGSL: depthShaderSource},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: compile depth shader: %v", ErrResourceCreation, err)
	}
	c.shadeShader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "csg_shade_shader",
		Source: hal.ShaderSource{WGSL: shadeShaderSource},
	})
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("%w: compile shade shader: %v", ErrResourceCreation, err)
	}
	c.fullscreenShader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "csg_fullscreen_shader",
		Source: hal.ShaderSource{WGSL: fullscreenShaderSource},
	})
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("%w: compile fullscreen shader: %v", ErrResourceCreation, err)
	}

	// One layout serves every pipeline: transforms are read by both
	// stages, material and light by the shading fragment stage. Pipelines
	// whose shaders reference a subset of the bindings still share it.
	c.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "csg_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("%w: create bind group layout: %v", ErrResourceCreation, err)
	}

	c.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "csg_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("%w: create pipeline layout: %v", ErrResourceCreation, err)
	}

	return c, nil
}

// BindLayout returns the shared bind group layout for frame uniforms.
func (c *PipelineCache) BindLayout() hal.BindGroupLayout {
	return c.bindLayout
}

// DepthStencilState returns the cached depth/stencil state template for the
// given attachment format and key. Equal keys yield the identical object.
func (c *PipelineCache) DepthStencilState(format gputypes.TextureFormat, dk DepthStencilKey) *hal.DepthStencilState {
	return c.dsStates.GetOrCreate(dsKey{ds: dk, format: format}, func() *hal.DepthStencilState {
		face := hal.StencilFaceState{
			Compare:     dk.Stencil.Compare,
			FailOp:      dk.Stencil.FailOp,
			DepthFailOp: dk.Stencil.DepthFailOp,
			PassOp:      dk.Stencil.PassOp,
		}
		return &hal.DepthStencilState{
			Format:            format,
			DepthWriteEnabled: dk.DepthWriteEnabled,
			DepthCompare:      dk.DepthCompare,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   dk.Stencil.ReadMask,
			StencilWriteMask:  dk.Stencil.WriteMask,
		}
	})
}

// DepthPipeline returns the depth/stencil pass pipeline for the given
// configuration. Depth pipelines use the position-only vertex layout and
// mask off all color writes.
func (c *PipelineCache) DepthPipeline(pk PipelineKey, dk DepthStencilKey, cull gputypes.CullMode) (hal.RenderPipeline, error) {
	key := variantKey{pipe: pk, ds: dk, cull: cull}
	return c.depth.GetOrCreateErr(key, func() (hal.RenderPipeline, error) {
		return c.createPipeline("csg_depth_pipeline", c.depthShader,
			depthVertexLayout(), pk, dk, cull, gputypes.ColorWriteMaskNone, nil)
	})
}

// ShadingPipeline returns the shading pass pipeline for the given
// configuration. Shading pipelines use the full position+normal layout and
// blend with premultiplied alpha.
func (c *PipelineCache) ShadingPipeline(pk PipelineKey, dk DepthStencilKey, cull gputypes.CullMode) (hal.RenderPipeline, error) {
	key := variantKey{pipe: pk, ds: dk, cull: cull}
	return c.shading.GetOrCreateErr(key, func() (hal.RenderPipeline, error) {
		blend := gputypes.BlendStatePremultiplied()
		return c.createPipeline("csg_shading_pipeline", c.shadeShader,
			shadeVertexLayout(), pk, dk, cull, gputypes.ColorWriteMaskAll, &blend)
	})
}

// FullscreenPipeline returns a stencil-arithmetic pipeline that draws one
// full-screen triangle with the given depth/stencil behavior and no color
// or depth writes.
func (c *PipelineCache) FullscreenPipeline(pk PipelineKey, dk DepthStencilKey) (hal.RenderPipeline, error) {
	key := variantKey{pipe: pk, ds: dk, cull: gputypes.CullModeNone}
	return c.fullscreen.GetOrCreateErr(key, func() (hal.RenderPipeline, error) {
		return c.createPipeline("csg_fullscreen_pipeline", c.fullscreenShader,
			fullscreenVertexLayout(), pk, dk, gputypes.CullModeNone, gputypes.ColorWriteMaskNone, nil)
	})
}

// createPipeline assembles one render pipeline descriptor. All pipelines
// share the uniform layout and triangle-list topology; they differ in
// shader module, vertex layout, color masking, blending, culling, and the
// cached depth/stencil state.
func (c *PipelineCache) createPipeline( //nolint:funlen // GPU pipeline descriptors are inherently verbose
	label string,
	shader hal.ShaderModule,
	buffers []gputypes.VertexBufferLayout,
	pk PipelineKey,
	dk DepthStencilKey,
	cull gputypes.CullMode,
	writeMask gputypes.ColorWriteMask,
	blend *gputypes.BlendState,
) (hal.RenderPipeline, error) {
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    pk.ColorFormat,
					Blend:     blend,
					WriteMask: writeMask,
				},
			},
		},
		DepthStencil: c.DepthStencilState(pk.DepthStencilFormat, dk),
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: cull,
		},
		Multisample: gputypes.MultisampleState{
			Count: pk.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrResourceCreation, label, err)
	}
	return pipeline, nil
}

// CacheStats aggregates hit/miss statistics across the pipeline and state
// caches.
type CacheStats struct {
	Depth        cache.Stats
	Shading      cache.Stats
	Fullscreen   cache.Stats
	DepthStencil cache.Stats
}

// Stats returns a snapshot of cache statistics.
func (c *PipelineCache) Stats() CacheStats {
	return CacheStats{
		Depth:        c.depth.Stats(),
		Shading:      c.shading.Stats(),
		Fullscreen:   c.fullscreen.Stats(),
		DepthStencil: c.dsStates.Stats(),
	}
}

// Destroy releases every cached pipeline and the shared layouts and
// shaders, in reverse creation order. Safe to call on a partially
// constructed cache and safe to call twice.
func (c *PipelineCache) Destroy() {
	if c.device == nil {
		return
	}
	destroyAll := func(s *cache.Sharded[variantKey, hal.RenderPipeline]) {
		s.Range(func(_ variantKey, p hal.RenderPipeline) bool {
			c.device.DestroyRenderPipeline(p)
			return true
		})
		s.Clear()
	}
	destroyAll(c.fullscreen)
	destroyAll(c.shading)
	destroyAll(c.depth)
	c.dsStates.Clear()

	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.fullscreenShader != nil {
		c.device.DestroyShaderModule(c.fullscreenShader)
		c.fullscreenShader = nil
	}
	if c.shadeShader != nil {
		c.device.DestroyShaderModule(c.shadeShader)
		c.shadeShader = nil
	}
	if c.depthShader != nil {
		c.device.DestroyShaderModule(c.depthShader)
		c.depthShader = nil
	}
}

// depthVertexLayout is the position-only layout used by depth and stencil
// passes.
func depthVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: depthVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}, // position
			},
		},
	}
}

// shadeVertexLayout is the full interleaved layout used by the shading
// pass.
func shadeVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: shadeVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},                    // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: csg.NormalByteOffset, ShaderLocation: 1}, // normal
			},
		},
	}
}

// fullscreenVertexLayout is the clip-space vec2 layout for the shared
// full-screen triangle.
func fullscreenVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: coverVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}
