// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"cogentcore.org/core/math32"

	"github.com/gogpu/csg"
)

func f32At(t *testing.T, data []byte, off int) float32 {
	t.Helper()
	return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
}

func TestPackUniformsLayout(t *testing.T) {
	var mvp, mv, normal math32.Matrix4
	for i := 0; i < 16; i++ {
		mvp[i] = float32(i)
		mv[i] = float32(100 + i)
		normal[i] = float32(200 + i)
	}

	data := packUniforms(&mvp, &mv, &normal)
	if len(data) != 192 {
		t.Fatalf("packUniforms length = %d, want 192", len(data))
	}
	// Column-major mat4 blocks at offsets 0, 64, 128.
	if got := f32At(t, data, 0); got != 0 {
		t.Errorf("mvp[0] = %v, want 0", got)
	}
	if got := f32At(t, data, 15*4); got != 15 {
		t.Errorf("mvp[15] = %v, want 15", got)
	}
	if got := f32At(t, data, 64); got != 100 {
		t.Errorf("mv[0] = %v, want 100", got)
	}
	if got := f32At(t, data, 128+7*4); got != 207 {
		t.Errorf("normal[7] = %v, want 207", got)
	}
}

func TestPackMaterialLayout(t *testing.T) {
	m := csg.Material{
		BaseColor: math32.Vec4(0.1, 0.2, 0.3, 0.4),
		Roughness: 0.5,
		Metallic:  0.25,
	}
	data := packMaterial(m)
	if len(data) != 32 {
		t.Fatalf("packMaterial length = %d, want 32", len(data))
	}
	if got := f32At(t, data, 0); got != 0.1 {
		t.Errorf("base color r = %v, want 0.1", got)
	}
	if got := f32At(t, data, 12); got != 0.4 {
		t.Errorf("base color a = %v, want 0.4", got)
	}
	if got := f32At(t, data, 16); got != 0.5 {
		t.Errorf("roughness = %v, want 0.5", got)
	}
	if got := f32At(t, data, 20); got != 0.25 {
		t.Errorf("metallic = %v, want 0.25", got)
	}
	// Trailing padding stays zero.
	for off := 24; off < 32; off++ {
		if data[off] != 0 {
			t.Fatalf("padding byte %d = %#x, want 0", off, data[off])
		}
	}
}

func TestPackLightLayout(t *testing.T) {
	l := csg.Light{
		Direction: math32.Vec3(0, -1, 0),
		Intensity: 1.5,
		Color:     math32.Vec4(1, 0.9, 0.8, 1),
	}
	data := packLight(l)
	if len(data) != 32 {
		t.Fatalf("packLight length = %d, want 32", len(data))
	}
	if got := f32At(t, data, 4); got != -1 {
		t.Errorf("direction y = %v, want -1", got)
	}
	// Intensity rides in the direction vec3's tail slot.
	if got := f32At(t, data, 12); got != 1.5 {
		t.Errorf("intensity = %v, want 1.5", got)
	}
	if got := f32At(t, data, 20); got != 0.9 {
		t.Errorf("color g = %v, want 0.9", got)
	}
	if got := f32At(t, data, 28); got != 1 {
		t.Errorf("color a = %v, want 1", got)
	}
}
