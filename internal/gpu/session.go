// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"time"

	"cogentcore.org/core/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg"
)

// gpuWaitTimeout bounds the fence wait on the readback path.
const gpuWaitTimeout = 5 * time.Second

// Frame carries everything one RenderFrame call needs:
// attachment dimensions, the composition algorithm, per-frame uniform
// state, and the output destination.
type Frame struct {
	// Width and Height are the attachment dimensions in pixels.
	Width  uint32
	Height uint32

	// Samples is the MSAA sample count, at least 1.
	Samples uint32

	// ClearColor fills the color attachment before any draws.
	ClearColor gputypes.Color

	// Format is the color attachment format the frame renders in. The
	// zero value (TextureFormatUndefined) selects BGRA8Unorm. A frame
	// with a TargetView must name that view's format here so the
	// pipelines' color target state matches the attachment.
	Format gputypes.TextureFormat

	// Algorithm selects the compositing engine.
	Algorithm Algorithm

	// MVP, MV and Normal are the frame's transform uniforms. Normal
	// carries the inverse-transpose of MV in its upper-left 3x3.
	MVP    math32.Matrix4
	MV     math32.Matrix4
	Normal math32.Matrix4

	// Material and Light shade the composed surface.
	Material csg.Material
	Light    csg.Light

	// TargetView, when non-nil, receives the frame directly: it becomes
	// the color attachment at Samples == 1 and the resolve target
	// otherwise. When nil the session renders into its own textures.
	TargetView hal.TextureView

	// Readback, when non-nil, receives the finished frame as tightly
	// packed RGBA rows. It must hold Width*Height*4 bytes. The session
	// fences and blocks until the copy completes; without Readback,
	// RenderFrame returns right after submission.
	Readback []byte
}

// FrameSession owns the GPU-side state of one renderer instance: the
// pipeline cache, the uploaded primitive list, the two compositing
// engines, the offscreen attachments, and the shared full-screen
// triangle. Frames are encoded one at a time into a single command
// buffer in program order.
type FrameSession struct {
	device hal.Device
	queue  hal.Queue

	pipelines   *PipelineCache
	store       *PrimitiveStore
	scs         *SCSRenderer
	goldfeather *GoldfeatherRenderer

	textures textureSet
	fsBuf    hal.Buffer
}

// fullscreenTriangle is one clip-space triangle covering every pixel
// exactly once. Winding is irrelevant: full-screen pipelines cull
// nothing.
var fullscreenTriangle = []float32{
	-1, -1,
	3, -1,
	-1, 3,
}

// NewFrameSession builds the pipeline cache and engines for the given
// device. Shader compilation or layout creation failure is fatal to the
// renderer under construction.
func NewFrameSession(device hal.Device, queue hal.Queue) (*FrameSession, error) {
	pipelines, err := NewPipelineCache(device)
	if err != nil {
		return nil, err
	}

	s := &FrameSession{
		device:    device,
		queue:     queue,
		pipelines: pipelines,
		store:     NewPrimitiveStore(device, queue),
	}
	s.scs = NewSCSRenderer(pipelines)
	s.goldfeather = NewGoldfeatherRenderer(pipelines)

	s.fsBuf, err = s.createAndUploadBuffer("csg_fullscreen_tri",
		floatBytes(fullscreenTriangle),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		pipelines.Destroy()
		return nil, err
	}
	return s, nil
}

// Store returns the session's primitive store.
func (s *FrameSession) Store() *PrimitiveStore { return s.store }

// Pipelines returns the session's pipeline cache.
func (s *FrameSession) Pipelines() *PipelineCache { return s.pipelines }

// frameResources holds the uniform buffers and bind group created for
// one frame and destroyed when its encoding is done.
type frameResources struct {
	uniformBuf  hal.Buffer
	materialBuf hal.Buffer
	lightBuf    hal.Buffer
	bindGroup   hal.BindGroup
}

func (r *frameResources) destroy(device hal.Device) {
	if r.bindGroup != nil {
		device.DestroyBindGroup(r.bindGroup)
	}
	if r.lightBuf != nil {
		device.DestroyBuffer(r.lightBuf)
	}
	if r.materialBuf != nil {
		device.DestroyBuffer(r.materialBuf)
	}
	if r.uniformBuf != nil {
		device.DestroyBuffer(r.uniformBuf)
	}
}

// buildFrameResources uploads the frame's uniform, material and light
// blocks and binds them at group 0, bindings 0..2.
func (s *FrameSession) buildFrameResources(f *Frame) (*frameResources, error) {
	r := &frameResources{}

	var err error
	r.uniformBuf, err = s.createAndUploadBuffer("csg_frame_uniforms",
		packUniforms(&f.MVP, &f.MV, &f.Normal),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	r.materialBuf, err = s.createAndUploadBuffer("csg_frame_material",
		packMaterial(f.Material),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		r.destroy(s.device)
		return nil, err
	}
	r.lightBuf, err = s.createAndUploadBuffer("csg_frame_light",
		packLight(f.Light),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		r.destroy(s.device)
		return nil, err
	}

	r.bindGroup, err = s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "csg_frame_bind",
		Layout: s.pipelines.BindLayout(),
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: r.uniformBuf.NativeHandle(), Offset: 0, Size: uniformsSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: r.materialBuf.NativeHandle(), Offset: 0, Size: materialSize,
			}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: r.lightBuf.NativeHandle(), Offset: 0, Size: lightSize,
			}},
		},
	})
	if err != nil {
		r.destroy(s.device)
		return nil, fmt.Errorf("%w: create frame bind group: %v", ErrResourceCreation, err)
	}
	return r, nil
}

// RenderFrame encodes and submits one frame. Pipeline and resource
// creation failures wrap ErrResourceCreation and are fatal; encoder and
// submission failures wrap ErrEncoding, which callers treat as a
// dropped frame. The returned DrawStats describe the recorded pass
// structure.
func (s *FrameSession) RenderFrame(f *Frame) (DrawStats, error) {
	var stats DrawStats
	if f.Samples == 0 {
		f.Samples = 1
	}

	if f.Format == gputypes.TextureFormatUndefined {
		f.Format = gputypes.TextureFormatBGRA8Unorm
	}

	if err := s.textures.ensure(s.device, f.Width, f.Height, f.Samples, f.Format); err != nil {
		return stats, err
	}

	pk := PipelineKey{
		ColorFormat:        f.Format,
		DepthStencilFormat: gputypes.TextureFormatDepth24PlusStencil8,
		SampleCount:        f.Samples,
	}

	// Resolve every pipeline the frame will switch between before any
	// encoding starts, so recording itself cannot fail.
	prims := s.store.Primitives()
	var scsSet scsPipelineSet
	var gfSet goldfeatherPipelineSet
	var schedule []int
	depthClear := float32(1.0)
	var err error
	if len(prims) > 0 {
		switch f.Algorithm {
		case AlgorithmGoldfeather:
			gfSet, err = s.goldfeather.Prepare(pk)
			schedule = visitSchedule(prims, &f.MV)
			depthClear = 0.0
		default:
			scsSet, err = s.scs.Prepare(pk)
		}
		if err != nil {
			return stats, err
		}
	}

	res, err := s.buildFrameResources(f)
	if err != nil {
		return stats, err
	}
	defer res.destroy(s.device)

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "csg_frame_encoder",
	})
	if err != nil {
		return stats, fmt.Errorf("%w: create encoder: %v", ErrEncoding, err)
	}
	if err := encoder.BeginEncoding("csg_frame"); err != nil {
		return stats, fmt.Errorf("%w: begin encoding: %v", ErrEncoding, err)
	}

	colorView := s.textures.colorView
	resolveView := s.textures.resolveView
	if f.TargetView != nil {
		if f.Samples == 1 {
			colorView = f.TargetView
			resolveView = nil
		} else {
			resolveView = f.TargetView
		}
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "csg_composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          colorView,
			ResolveTarget: resolveView,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    f.ClearColor,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              s.textures.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   depthClear,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})

	if len(prims) > 0 {
		switch f.Algorithm {
		case AlgorithmGoldfeather:
			s.goldfeather.RecordDraws(rp, gfSet, prims, schedule, res.bindGroup, s.fsBuf, &stats)
		default:
			s.scs.RecordDraws(rp, scsSet, prims, res.bindGroup, &stats)
		}
	}

	rp.End()

	if f.Readback == nil {
		return stats, s.submit(encoder, nil, 0, nil)
	}
	return stats, s.submitReadback(encoder, f)
}

// submit finishes encoding and hands the command buffer to the queue.
// Without a staging buffer the call returns as soon as the work is
// submitted; presentation and execution proceed asynchronously.
func (s *FrameSession) submit(encoder hal.CommandEncoder, staging hal.Buffer, stagingSize uint64, out []byte) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("%w: end encoding: %v", ErrEncoding, err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("%w: create fence: %v", ErrEncoding, err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrEncoding, err)
	}
	if staging == nil {
		return nil
	}

	fenceOK, err := s.device.Wait(fence, 1, gpuWaitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("%w: wait for GPU: ok=%v err=%v", ErrEncoding, fenceOK, err)
	}
	readback := make([]byte, stagingSize)
	if err := s.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("%w: readback: %v", ErrEncoding, err)
	}
	copy(out, readback)
	return nil
}

// submitReadback copies the finished frame into a staging buffer,
// submits, waits on the fence, and converts the padded BGRA rows into
// the frame's tightly packed RGBA output.
func (s *FrameSession) submitReadback(encoder hal.CommandEncoder, f *Frame) error {
	readTex := s.textures.readbackTexture()

	// Resolve leaves the texture in attachment layout; the copy needs
	// transfer-source. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: readTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// Copy pitch must align to 256 bytes.
	bytesPerRow := f.Width * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(f.Height)

	staging, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "csg_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("%w: create staging buffer: %v", ErrResourceCreation, err)
	}
	defer s.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(readTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: f.Height},
		TextureBase:  hal.ImageCopyTexture{Texture: readTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: f.Width, Height: f.Height, DepthOrArrayLayers: 1},
	}})

	// Return the texture to attachment layout so the next frame's pass
	// begins from the state it expects.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: readTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	padded := make([]byte, stagingSize)
	if err := s.submit(encoder, staging, stagingSize, padded); err != nil {
		return err
	}

	tight := padded
	if alignedBytesPerRow != bytesPerRow {
		tight = make([]byte, uint64(bytesPerRow)*uint64(f.Height))
		for row := uint32(0); row < f.Height; row++ {
			srcOff := uint64(row) * uint64(alignedBytesPerRow)
			dstOff := uint64(row) * uint64(bytesPerRow)
			copy(tight[dstOff:dstOff+uint64(bytesPerRow)], padded[srcOff:srcOff+uint64(bytesPerRow)])
		}
	}
	// RGBA output: BGRA frames swizzle, RGBA frames copy through.
	if f.Format == gputypes.TextureFormatBGRA8Unorm {
		bgraToRGBA(tight, f.Readback)
	} else {
		copy(f.Readback, tight)
	}
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data through
// the queue.
func (s *FrameSession) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrResourceCreation, label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// bgraToRGBA swizzles BGRA bytes into RGBA, stopping at the shorter of
// the two slices.
func bgraToRGBA(src, dst []byte) {
	n := min(len(src), len(dst)) / 4
	for i := 0; i < n; i++ {
		dst[i*4] = src[i*4+2]
		dst[i*4+1] = src[i*4+1]
		dst[i*4+2] = src[i*4]
		dst[i*4+3] = src[i*4+3]
	}
}

// Destroy releases every GPU resource the session owns: the full-screen
// buffer, the primitive store, the attachments, and the pipeline cache.
// Safe to call twice.
func (s *FrameSession) Destroy() {
	if s.fsBuf != nil {
		s.device.DestroyBuffer(s.fsBuf)
		s.fsBuf = nil
	}
	s.store.Destroy()
	s.textures.destroy(s.device)
	s.pipelines.Destroy()
}
