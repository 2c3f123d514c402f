// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Target is where a finished frame goes.
//
// A target may support CPU delivery (Pixels), GPU delivery
// (TextureView), or neither. RenderFrame picks the delivery mode from
// whichever accessor returns a value: a non-nil TextureView makes the
// frame render straight into the caller's texture, a non-nil Pixels
// slice adds a fenced readback into it, and a target with neither is
// rendered into renderer-owned attachments and discarded.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the target's color format. It keys the frame's
	// pipelines and attachments, so for texture targets it must match
	// the wrapped view's texture format.
	Format() gputypes.TextureFormat

	// TextureView returns the texture view to render into, or nil for
	// CPU and null targets.
	TextureView() hal.TextureView

	// Pixels returns the CPU destination for readback as tightly packed
	// rows, or nil for GPU and null targets.
	Pixels() []byte

	// Stride returns the byte length of one pixel row in Pixels, or 0
	// when Pixels is nil.
	Stride() int
}

// PixmapTarget delivers frames into a CPU-side image.RGBA. RenderFrame
// calls against it block on a fence until the readback completes.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a pixmap target of the given size.
// Non-positive dimensions yield a zero-sized target, which drops every
// frame rendered at it.
func NewPixmapTarget(width, height int) *PixmapTarget {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixmapTarget{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the image width in pixels.
func (t *PixmapTarget) Width() int { return t.img.Rect.Dx() }

// Height returns the image height in pixels.
func (t *PixmapTarget) Height() int { return t.img.Rect.Dy() }

// Format returns RGBA8Unorm, matching the backing image.RGBA.
func (t *PixmapTarget) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// TextureView returns nil; pixmap targets are CPU-only.
func (t *PixmapTarget) TextureView() hal.TextureView { return nil }

// Pixels returns the backing RGBA byte slice.
func (t *PixmapTarget) Pixels() []byte { return t.img.Pix }

// Stride returns the byte length of one image row.
func (t *PixmapTarget) Stride() int { return t.img.Stride }

// Image returns the backing image. Valid after a RenderFrame call
// against this target returns.
func (t *PixmapTarget) Image() *image.RGBA { return t.img }

// TextureTarget delivers frames into a caller-owned texture view,
// submit-only: presentation and synchronization stay with the caller.
// The renderer never destroys the view.
type TextureTarget struct {
	view   hal.TextureView
	format gputypes.TextureFormat
	width  int
	height int
}

// NewTextureTarget wraps a caller-owned texture view. format must be
// the view's texture format, and the view must stay valid for every
// RenderFrame call against the target.
func NewTextureTarget(view hal.TextureView, format gputypes.TextureFormat, width, height int) *TextureTarget {
	return &TextureTarget{view: view, format: format, width: width, height: height}
}

// Width returns the texture width in pixels.
func (t *TextureTarget) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *TextureTarget) Height() int { return t.height }

// Format returns the texture format.
func (t *TextureTarget) Format() gputypes.TextureFormat { return t.format }

// TextureView returns the caller's view.
func (t *TextureTarget) TextureView() hal.TextureView { return t.view }

// Pixels returns nil; texture targets are GPU-only.
func (t *TextureTarget) Pixels() []byte { return nil }

// Stride returns 0.
func (t *TextureTarget) Stride() int { return 0 }

// NullTarget renders into renderer-owned attachments and delivers
// nothing. Tests and benchmarks use it to exercise the full encoding
// path without readback.
type NullTarget struct {
	width  int
	height int
}

// NewNullTarget creates a null target of the given size.
func NewNullTarget(width, height int) *NullTarget {
	return &NullTarget{width: width, height: height}
}

// Width returns the attachment width in pixels.
func (t *NullTarget) Width() int { return t.width }

// Height returns the attachment height in pixels.
func (t *NullTarget) Height() int { return t.height }

// Format returns the internal attachment format.
func (t *NullTarget) Format() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

// TextureView returns nil.
func (t *NullTarget) TextureView() hal.TextureView { return nil }

// Pixels returns nil.
func (t *NullTarget) Pixels() []byte { return nil }

// Stride returns 0.
func (t *NullTarget) Stride() int { return 0 }
