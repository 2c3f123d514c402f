// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "cogentcore.org/core/math32"

// LookAt returns the view matrix for a camera at pos facing target with
// the given up vector: the inverse of the camera's world transform.
func LookAt(pos, target, up math32.Vector3) math32.Matrix4 {
	var lookq math32.Quat
	lookq.SetFromRotationMatrix(math32.NewLookAt(pos, target, up))
	var cam math32.Matrix4
	cam.SetTransform(pos, lookq, math32.Vec3(1, 1, 1))
	view, err := cam.Inverse()
	if err != nil {
		return identity4()
	}
	return *view
}

// Perspective returns a perspective projection matrix. fov is the
// vertical field of view in degrees; near and far bound the depth
// range.
func Perspective(fov, aspect, near, far float32) math32.Matrix4 {
	var p math32.Matrix4
	p.SetPerspective(fov, aspect, near, far)
	return p
}

func identity4() math32.Matrix4 {
	return math32.Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// transpose4 returns the transpose of m.
func transpose4(m *math32.Matrix4) math32.Matrix4 {
	var t math32.Matrix4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[c*4+r] = m[r*4+c]
		}
	}
	return t
}

// normalMatrix returns the inverse-transpose of mv, which transforms
// normals under non-uniform scaling. A singular model-view falls back
// to identity rather than poisoning the frame with NaNs.
func normalMatrix(mv *math32.Matrix4) math32.Matrix4 {
	inv, err := mv.Inverse()
	if err != nil {
		return identity4()
	}
	return transpose4(inv)
}
