// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/csg"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestSession(t *testing.T) (*FrameSession, func()) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	s, err := NewFrameSession(device, queue)
	if err != nil {
		cleanup()
		t.Fatalf("NewFrameSession failed: %v", err)
	}
	return s, func() {
		s.Destroy()
		cleanup()
	}
}

func identityFrame(w, h uint32) *Frame {
	id := math32.Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	return &Frame{
		Width:    w,
		Height:   h,
		Samples:  1,
		MVP:      id,
		MV:       id,
		Normal:   id,
		Material: csg.DefaultMaterial(),
		Light:    csg.DefaultLight(),
	}
}

func TestFrameSessionEmptyFrame(t *testing.T) {
	s, cleanup := newTestSession(t)
	defer cleanup()

	stats, err := s.RenderFrame(identityFrame(64, 64))
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if stats != (DrawStats{}) {
		t.Errorf("empty frame recorded draws: %+v", stats)
	}
}

func TestFrameSessionSCSFrame(t *testing.T) {
	s, cleanup := newTestSession(t)
	defer cleanup()

	prims := []*csg.Primitive{
		csg.Box(math32.Vec3(1.5, 1.5, 1.5), csg.Intersection),
		csg.Sphere(0.9, 8, csg.Subtraction),
	}
	if err := s.Store().SetPrimitives(prims); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}

	stats, err := s.RenderFrame(identityFrame(64, 64))
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if stats.DepthDraws != 2 || stats.ShadingDraws != 2 {
		t.Errorf("SCS stats = %+v, want 2 depth and 2 shading draws", stats)
	}
}

func TestFrameSessionGoldfeatherFrame(t *testing.T) {
	s, cleanup := newTestSession(t)
	defer cleanup()

	prims := []*csg.Primitive{
		csg.Box(math32.Vec3(1, 1, 1), csg.Intersection),
		csg.Box(math32.Vec3(0.5, 0.5, 2), csg.Subtraction),
	}
	if err := s.Store().SetPrimitives(prims); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}

	f := identityFrame(64, 64)
	f.Algorithm = AlgorithmGoldfeather
	stats, err := s.RenderFrame(f)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if stats.Rounds != 2 {
		t.Errorf("Rounds = %d, want 2 (one visit per convex primitive)", stats.Rounds)
	}
	// init: 2 draws; advance: rounds-1 = 1 draw.
	if stats.DepthDraws != 3 {
		t.Errorf("DepthDraws = %d, want 3", stats.DepthDraws)
	}
	// Per round: stencil zero + count subtract + normalize.
	if stats.FullscreenDraws != 3*2 {
		t.Errorf("FullscreenDraws = %d, want 6", stats.FullscreenDraws)
	}
}

func TestFrameSessionReadback(t *testing.T) {
	s, cleanup := newTestSession(t)
	defer cleanup()

	if err := s.Store().SetPrimitives([]*csg.Primitive{
		csg.Box(math32.Vec3(1, 1, 1), csg.Intersection),
	}); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}

	f := identityFrame(30, 20) // 30*4 = 120 bytes/row, forces 256-byte pitch padding
	f.Readback = make([]byte, 30*20*4)
	if _, err := s.RenderFrame(f); err != nil {
		t.Fatalf("RenderFrame with readback: %v", err)
	}
}

func TestFrameSessionResizesAttachments(t *testing.T) {
	s, cleanup := newTestSession(t)
	defer cleanup()

	if _, err := s.RenderFrame(identityFrame(64, 64)); err != nil {
		t.Fatalf("first size: %v", err)
	}
	if s.textures.width != 64 || s.textures.height != 64 {
		t.Fatalf("attachments = %dx%d, want 64x64", s.textures.width, s.textures.height)
	}
	if _, err := s.RenderFrame(identityFrame(128, 32)); err != nil {
		t.Fatalf("second size: %v", err)
	}
	if s.textures.width != 128 || s.textures.height != 32 {
		t.Fatalf("attachments = %dx%d, want 128x32", s.textures.width, s.textures.height)
	}
}

func TestFrameSessionColorFormatKeysPipelines(t *testing.T) {
	s, cleanup := newTestSession(t)
	defer cleanup()

	if err := s.Store().SetPrimitives([]*csg.Primitive{
		csg.Box(math32.Vec3(1, 1, 1), csg.Intersection),
	}); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}

	if _, err := s.RenderFrame(identityFrame(64, 64)); err != nil {
		t.Fatalf("default format frame: %v", err)
	}
	if s.textures.format != gputypes.TextureFormatBGRA8Unorm {
		t.Fatalf("default attachment format = %v, want BGRA8Unorm", s.textures.format)
	}
	warm := s.Pipelines().Stats()

	f := identityFrame(64, 64)
	f.Format = gputypes.TextureFormatRGBA8Unorm
	if _, err := s.RenderFrame(f); err != nil {
		t.Fatalf("RGBA8 frame: %v", err)
	}
	if s.textures.format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("attachment format = %v, want RGBA8Unorm", s.textures.format)
	}
	// A new color format is a new pipeline key, never a reused pipeline.
	after := s.Pipelines().Stats()
	if after.Depth.Misses <= warm.Depth.Misses {
		t.Errorf("depth pipeline misses = %d after format change, want > %d",
			after.Depth.Misses, warm.Depth.Misses)
	}
	if after.Shading.Misses <= warm.Shading.Misses {
		t.Errorf("shading pipeline misses = %d after format change, want > %d",
			after.Shading.Misses, warm.Shading.Misses)
	}
}

func TestFrameSessionDestroyTwice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	s, err := NewFrameSession(device, queue)
	if err != nil {
		t.Fatalf("NewFrameSession: %v", err)
	}
	s.Destroy()
	s.Destroy()
}

func TestBGRAToRGBA(t *testing.T) {
	src := []byte{
		0x10, 0x20, 0x30, 0xFF,
		0xAA, 0xBB, 0xCC, 0xDD,
	}
	dst := make([]byte, 8)
	bgraToRGBA(src, dst)

	want := []byte{0x30, 0x20, 0x10, 0xFF, 0xCC, 0xBB, 0xAA, 0xDD}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("byte %d = %02X, want %02X", i, dst[i], want[i])
		}
	}
}
