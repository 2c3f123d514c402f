// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/csg"
)

// newTestDevice opens a noop device and queue, so every renderer test
// runs without GPU hardware.
func newTestDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
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

func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, func()) {
	t.Helper()
	device, queue, cleanup := newTestDevice(t)
	r, err := NewRenderer(device, queue, opts...)
	if err != nil {
		cleanup()
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return r, func() {
		r.Destroy()
		cleanup()
	}
}

// boxMinusSphere is the canonical preview scene: a 1.5-unit cube with
// an overlapping 0.9-radius sphere carved out.
func boxMinusSphere() []*csg.Primitive {
	return []*csg.Primitive{
		csg.Box(math32.Vec3(1.5, 1.5, 1.5), csg.Intersection),
		csg.Sphere(0.9, 16, csg.Subtraction),
	}
}

func frontalTransforms(r *Renderer) {
	r.SetTransforms(
		identity4(),
		LookAt(math32.Vec3(0, 0, 4), math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0)),
		Perspective(45, 4.0/3.0, 0.1, 100),
	)
}

func TestNewRendererNilDevice(t *testing.T) {
	if _, err := NewRenderer(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Fatalf("NewRenderer(nil, nil) err = %v, want ErrNilDevice", err)
	}
}

func TestNewRendererFromHandleRejectsNonHAL(t *testing.T) {
	if _, err := NewRendererFromHandle(nil); !errors.Is(err, ErrNilDevice) {
		t.Fatalf("nil handle err = %v, want ErrNilDevice", err)
	}
}

func TestValidateLayout(t *testing.T) {
	vertex := []float32{0, 0, 0, 0, 0, 1}
	tests := []struct {
		name    string
		verts   []float32
		indices []uint32
		wantErr bool
	}{
		{"whole vertices", append(append([]float32{}, vertex...), vertex...), []uint32{0, 1, 0}, false},
		{"ragged stride", vertex[:5], nil, true},
		{"index out of range", vertex, []uint32{0, 1, 0}, true},
		{"empty", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLayout(tt.verts, tt.indices)
			if tt.wantErr && !errors.Is(err, ErrStrideMismatch) {
				t.Errorf("err = %v, want ErrStrideMismatch", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected err: %v", err)
			}
		})
	}
}

func TestSetPrimitivesAcceptsFactoryMeshes(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	good := csg.Box(math32.Vec3(1, 1, 1), csg.Intersection)
	if err := r.SetPrimitives([]*csg.Primitive{good}); err != nil {
		t.Fatalf("valid primitive rejected: %v", err)
	}
}

func TestSelectAlgorithmAutomatic(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	convex := boxMinusSphere()
	if err := r.SetPrimitives(convex); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if got := r.selectAlgorithm(); got != AlgorithmSCS {
		t.Errorf("all-convex selectAlgorithm() = %v, want SCS", got)
	}

	torus, err := csg.NewMesh(
		[]float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		[]float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		[]uint32{0, 1, 2},
		csg.Intersection, csg.Concave(2))
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	if err := r.SetPrimitives(append(convex, torus)); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if got := r.selectAlgorithm(); got != AlgorithmGoldfeather {
		t.Errorf("concave selectAlgorithm() = %v, want Goldfeather", got)
	}

	// Back to all-convex: the flag must not stick.
	if err := r.SetPrimitives(convex); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if got := r.selectAlgorithm(); got != AlgorithmSCS {
		t.Errorf("reverted selectAlgorithm() = %v, want SCS", got)
	}
}

func TestSelectAlgorithmPinned(t *testing.T) {
	r, cleanup := newTestRenderer(t, WithAlgorithm(AlgorithmGoldfeather))
	defer cleanup()

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if got := r.selectAlgorithm(); got != AlgorithmGoldfeather {
		t.Errorf("pinned selectAlgorithm() = %v, want Goldfeather", got)
	}
}

func TestRenderFrameEmptyList(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()
	frontalTransforms(r)

	if err := r.RenderFrame(NewNullTarget(64, 64)); err != nil {
		t.Fatalf("empty-list RenderFrame: %v", err)
	}
	stats := r.LastFrameStats()
	if stats.DepthDraws != 0 || stats.ShadingDraws != 0 || stats.StencilDraws != 0 || stats.FullscreenDraws != 0 {
		t.Errorf("empty list recorded draws: %+v", stats)
	}
}

func TestRenderFrameNilTargetDropped(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	if err := r.RenderFrame(nil); err != nil {
		t.Fatalf("nil target must drop the frame, got %v", err)
	}
	if err := r.RenderFrame(NewNullTarget(0, 0)); err != nil {
		t.Fatalf("zero-sized target must drop the frame, got %v", err)
	}
}

func TestRenderFrameSCSPassStructure(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()
	frontalTransforms(r)

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if err := r.RenderFrame(NewNullTarget(128, 128)); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if r.Algorithm() != AlgorithmSCS {
		t.Fatalf("Algorithm() = %v, want SCS", r.Algorithm())
	}

	// Two primitives: one depth draw each plus one shading draw each.
	stats := r.LastFrameStats()
	if stats.DepthDraws != 2 {
		t.Errorf("DepthDraws = %d, want 2", stats.DepthDraws)
	}
	if stats.ShadingDraws != 2 {
		t.Errorf("ShadingDraws = %d, want 2", stats.ShadingDraws)
	}
	if stats.Rounds != 0 || stats.StencilDraws != 0 {
		t.Errorf("SCS frame recorded stencil work: %+v", stats)
	}
}

func TestRenderFrameSkipsEmptyPrimitives(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()
	frontalTransforms(r)

	prims := append(boxMinusSphere(),
		csg.Sphere(1, 0, csg.Intersection)) // zero segments: no triangles
	if err := r.SetPrimitives(prims); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if err := r.RenderFrame(NewNullTarget(64, 64)); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := r.LastFrameStats().ShadingDraws; got != 2 {
		t.Errorf("ShadingDraws = %d, want 2 (empty primitive must be skipped)", got)
	}
}

func TestRenderFrameGoldfeatherPassStructure(t *testing.T) {
	r, cleanup := newTestRenderer(t, WithAlgorithm(AlgorithmGoldfeather))
	defer cleanup()
	frontalTransforms(r)

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if err := r.RenderFrame(NewNullTarget(64, 64)); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	// Both primitives are convex: one round per primitive visit.
	stats := r.LastFrameStats()
	if stats.Rounds != 2 {
		t.Errorf("Rounds = %d, want 2", stats.Rounds)
	}
	// Per round: one pass-pair per primitive.
	if stats.StencilDraws != 2*2*2 {
		t.Errorf("StencilDraws = %d, want 8", stats.StencilDraws)
	}
	if stats.ShadingDraws != 2*2 {
		t.Errorf("ShadingDraws = %d, want 4", stats.ShadingDraws)
	}
}

func TestRenderFrameIdempotent(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()
	frontalTransforms(r)

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}

	target := NewPixmapTarget(96, 64)
	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("first RenderFrame: %v", err)
	}
	first := append([]byte(nil), target.Pixels()...)
	firstStats := r.LastFrameStats()

	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("second RenderFrame: %v", err)
	}
	if r.LastFrameStats() != firstStats {
		t.Errorf("stats drifted across identical frames: %+v vs %+v", firstStats, r.LastFrameStats())
	}
	for i, b := range target.Pixels() {
		if b != first[i] {
			t.Fatalf("pixel byte %d drifted across identical frames: %d vs %d", i, first[i], b)
		}
	}
}

func TestRenderFramePixmapReadback(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()
	frontalTransforms(r)

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	target := NewPixmapTarget(33, 17) // odd width forces row-padding strip
	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := len(target.Pixels()); got != 33*17*4 {
		t.Errorf("Pixels() length = %d, want %d", got, 33*17*4)
	}
}

func TestRenderFrameMultisampled(t *testing.T) {
	r, cleanup := newTestRenderer(t, WithSampleCount(4))
	defer cleanup()
	frontalTransforms(r)

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	if err := r.RenderFrame(NewPixmapTarget(64, 64)); err != nil {
		t.Fatalf("multisampled RenderFrame: %v", err)
	}
}

func TestCacheStatsWarm(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()
	frontalTransforms(r)

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	target := NewNullTarget(64, 64)
	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("cold RenderFrame: %v", err)
	}
	cold := r.CacheStats()
	if cold.Depth.Misses == 0 || cold.Shading.Misses == 0 {
		t.Fatalf("cold frame must miss the pipeline caches: %+v", cold)
	}

	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("warm RenderFrame: %v", err)
	}
	warm := r.CacheStats()
	if warm.Depth.Misses != cold.Depth.Misses {
		t.Errorf("warm frame rebuilt depth pipelines: %d -> %d", cold.Depth.Misses, warm.Depth.Misses)
	}
	if warm.Shading.Misses != cold.Shading.Misses {
		t.Errorf("warm frame rebuilt shading pipelines: %d -> %d", cold.Shading.Misses, warm.Shading.Misses)
	}
}

func TestRenderFrameUsesTargetFormat(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()
	frontalTransforms(r)

	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	// Null targets render BGRA8, pixmap targets RGBA8; the second frame
	// must build fresh pipelines for the new color format.
	if err := r.RenderFrame(NewNullTarget(64, 64)); err != nil {
		t.Fatalf("null-target RenderFrame: %v", err)
	}
	bgra := r.CacheStats()
	if err := r.RenderFrame(NewPixmapTarget(64, 64)); err != nil {
		t.Fatalf("pixmap RenderFrame: %v", err)
	}
	rgba := r.CacheStats()
	if rgba.Depth.Misses <= bgra.Depth.Misses {
		t.Errorf("depth pipeline misses = %d after format change, want > %d",
			rgba.Depth.Misses, bgra.Depth.Misses)
	}
	if rgba.Shading.Misses <= bgra.Shading.Misses {
		t.Errorf("shading pipeline misses = %d after format change, want > %d",
			rgba.Shading.Misses, bgra.Shading.Misses)
	}
}

// flakyDevice passes through to a real device but fails command encoder
// creation while tripped.
type flakyDevice struct {
	hal.Device
	trip bool
}

func (d *flakyDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	if d.trip {
		return nil, errors.New("encoder exhausted")
	}
	return d.Device.CreateCommandEncoder(desc)
}

func TestRenderFrameEncodingFailureDropsFrame(t *testing.T) {
	device, queue, cleanup := newTestDevice(t)
	defer cleanup()
	flaky := &flakyDevice{Device: device}

	r, err := NewRenderer(flaky, queue)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer r.Destroy()
	frontalTransforms(r)
	if err := r.SetPrimitives(boxMinusSphere()); err != nil {
		t.Fatalf("SetPrimitives: %v", err)
	}
	target := NewNullTarget(64, 64)

	// The failed frame is dropped, not surfaced.
	flaky.trip = true
	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("encoding failure must drop the frame, got %v", err)
	}
	if got := r.LastFrameStats(); got != (FrameStats{}) {
		t.Errorf("dropped frame recorded stats: %+v", got)
	}

	// The renderer stays usable once encoding recovers.
	flaky.trip = false
	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("RenderFrame after recovery: %v", err)
	}
	if got := r.LastFrameStats(); got.ShadingDraws != 2 {
		t.Errorf("recovered frame stats = %+v, want 2 shading draws", got)
	}
}
