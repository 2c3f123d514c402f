// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// textureSet holds the color and depth/stencil attachments for offscreen
// compositing, plus a single-sample resolve target when multisampling is
// enabled.
//
//   - samples == 1: one color texture, RenderAttachment | CopySrc, read
//     back directly.
//   - samples > 1: multisampled color resolved into a 1x CopySrc target;
//     the depth/stencil texture matches the color sample count.
type textureSet struct {
	colorTex    hal.Texture
	colorView   hal.TextureView
	depthTex    hal.Texture
	depthView   hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView
	width       uint32
	height      uint32
	samples     uint32
	format      gputypes.TextureFormat
}

// ensure creates or recreates the attachment textures if the requested
// dimensions, sample count, or color format differ from the current
// ones. A matching, existing set is a no-op.
func (ts *textureSet) ensure(device hal.Device, w, h, samples uint32, format gputypes.TextureFormat) error {
	if ts.width == w && ts.height == h && ts.samples == samples && ts.format == format && ts.colorTex != nil {
		return nil
	}
	ts.destroy(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	colorUsage := gputypes.TextureUsageRenderAttachment
	if samples == 1 {
		colorUsage |= gputypes.TextureUsageCopySrc
	}
	colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "csg_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         colorUsage,
	})
	if err != nil {
		return fmt.Errorf("%w: create color texture: %v", ErrResourceCreation, err)
	}
	ts.colorTex = colorTex

	colorView, err := device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "csg_color_view",
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("%w: create color view: %v", ErrResourceCreation, err)
	}
	ts.colorView = colorView

	depthTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "csg_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("%w: create depth/stencil texture: %v", ErrResourceCreation, err)
	}
	ts.depthTex = depthTex

	depthView, err := device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: "csg_depth_stencil_view",
	})
	if err != nil {
		ts.destroy(device)
		return fmt.Errorf("%w: create depth/stencil view: %v", ErrResourceCreation, err)
	}
	ts.depthView = depthView

	if samples > 1 {
		resolveTex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         "csg_resolve",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			ts.destroy(device)
			return fmt.Errorf("%w: create resolve texture: %v", ErrResourceCreation, err)
		}
		ts.resolveTex = resolveTex

		resolveView, err := device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
			Label: "csg_resolve_view",
		})
		if err != nil {
			ts.destroy(device)
			return fmt.Errorf("%w: create resolve view: %v", ErrResourceCreation, err)
		}
		ts.resolveView = resolveView
	}

	ts.width = w
	ts.height = h
	ts.samples = samples
	ts.format = format
	return nil
}

// readbackTexture returns the single-sample texture holding the final
// frame: the resolve target under MSAA, the color texture otherwise.
func (ts *textureSet) readbackTexture() hal.Texture {
	if ts.samples > 1 {
		return ts.resolveTex
	}
	return ts.colorTex
}

// destroy releases all attachment resources and resets dimensions.
func (ts *textureSet) destroy(device hal.Device) {
	if ts.resolveView != nil {
		device.DestroyTextureView(ts.resolveView)
		ts.resolveView = nil
	}
	if ts.resolveTex != nil {
		device.DestroyTexture(ts.resolveTex)
		ts.resolveTex = nil
	}
	if ts.depthView != nil {
		device.DestroyTextureView(ts.depthView)
		ts.depthView = nil
	}
	if ts.depthTex != nil {
		device.DestroyTexture(ts.depthTex)
		ts.depthTex = nil
	}
	if ts.colorView != nil {
		device.DestroyTextureView(ts.colorView)
		ts.colorView = nil
	}
	if ts.colorTex != nil {
		device.DestroyTexture(ts.colorTex)
		ts.colorTex = nil
	}
	ts.width = 0
	ts.height = 0
	ts.samples = 0
	ts.format = gputypes.TextureFormatUndefined
}
