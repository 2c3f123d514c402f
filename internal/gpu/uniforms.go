// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"math"

	"cogentcore.org/core/math32"

	"github.com/gogpu/csg"
)

// Byte sizes of the uniform blocks. The WGSL struct declarations in
// shaders/ must match these layouts exactly.
const (
	// uniformsSize covers three mat4x4<f32>: mvp, mv, normal matrix.
	uniformsSize = 3 * 16 * 4

	// materialSize covers vec4 base color, two f32 factors, 8 bytes padding.
	materialSize = 32

	// lightSize covers vec3 direction, f32 intensity, vec4 color.
	lightSize = 32
)

func putFloat32(dst []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
}

// putMatrix4 writes m column-major at off, matching WGSL mat4x4<f32>.
func putMatrix4(dst []byte, off int, m *math32.Matrix4) {
	for i := 0; i < 16; i++ {
		putFloat32(dst, off+i*4, m[i])
	}
}

// packUniforms serializes the per-frame transform block. The normal matrix
// is carried as a full mat4x4 with the inverse-transpose of the model-view
// in its upper-left 3x3.
func packUniforms(mvp, mv, normal *math32.Matrix4) []byte {
	data := make([]byte, uniformsSize)
	putMatrix4(data, 0, mvp)
	putMatrix4(data, 64, mv)
	putMatrix4(data, 128, normal)
	return data
}

// packMaterial serializes a material to the 32-byte layout shared with
// shade.wgsl. The trailing 8 bytes are alignment padding.
func packMaterial(m csg.Material) []byte {
	data := make([]byte, materialSize)
	putFloat32(data, 0, m.BaseColor.X)
	putFloat32(data, 4, m.BaseColor.Y)
	putFloat32(data, 8, m.BaseColor.Z)
	putFloat32(data, 12, m.BaseColor.W)
	putFloat32(data, 16, m.Roughness)
	putFloat32(data, 20, m.Metallic)
	return data
}

// packLight serializes a directional light to the 32-byte layout shared
// with shade.wgsl. Intensity packs into the vec3 direction's tail slot.
func packLight(l csg.Light) []byte {
	data := make([]byte, lightSize)
	putFloat32(data, 0, l.Direction.X)
	putFloat32(data, 4, l.Direction.Y)
	putFloat32(data, 8, l.Direction.Z)
	putFloat32(data, 12, l.Intensity)
	putFloat32(data, 16, l.Color.X)
	putFloat32(data, 20, l.Color.Y)
	putFloat32(data, 24, l.Color.Z)
	putFloat32(data, 28, l.Color.W)
	return data
}
