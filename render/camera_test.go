// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"cogentcore.org/core/math32"
)

const matTol = 1e-5

func mulPoint(m *math32.Matrix4, p math32.Vector3) math32.Vector3 {
	v := math32.Vector4{X: p.X, Y: p.Y, Z: p.Z, W: 1}.MulMatrix4(m)
	return math32.Vec3(v.X, v.Y, v.Z)
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := math32.Vec3(1, 2, 5)
	view := LookAt(eye, math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0))

	got := mulPoint(&view, eye)
	if got.Length() > matTol {
		t.Errorf("view transform of the eye = %v, want origin", got)
	}

	// The target lies straight ahead, on the negative view-space Z axis.
	target := mulPoint(&view, math32.Vec3(0, 0, 0))
	if target.Z >= 0 {
		t.Errorf("target view Z = %v, want negative (ahead of the camera)", target.Z)
	}
	if math32.Abs(target.X) > matTol || math32.Abs(target.Y) > matTol {
		t.Errorf("target off the view axis: %v", target)
	}
}

func TestPerspectiveDepthOrdering(t *testing.T) {
	proj := Perspective(45, 1, 0.1, 100)

	near := math32.Vector4{X: 0, Y: 0, Z: -1, W: 1}.MulMatrix4(&proj).PerspDiv()
	far := math32.Vector4{X: 0, Y: 0, Z: -50, W: 1}.MulMatrix4(&proj).PerspDiv()
	if near.Z >= far.Z {
		t.Errorf("projected depth must grow with distance: near %v, far %v", near.Z, far.Z)
	}
}

func TestNormalMatrixIdentity(t *testing.T) {
	id := identity4()
	got := normalMatrix(&id)
	for i := range got {
		if math32.Abs(got[i]-id[i]) > matTol {
			t.Fatalf("normalMatrix(identity)[%d] = %v, want %v", i, got[i], id[i])
		}
	}
}

func TestNormalMatrixUniformScale(t *testing.T) {
	// For a rotation the normal matrix equals the rotation itself.
	var rot math32.Matrix4
	rot.SetRotationY(0.7)
	got := normalMatrix(&rot)
	for i := range got {
		if math32.Abs(got[i]-rot[i]) > matTol {
			t.Fatalf("normalMatrix(rotation)[%d] = %v, want %v", i, got[i], rot[i])
		}
	}
}

func TestTranspose4(t *testing.T) {
	var m math32.Matrix4
	for i := range m {
		m[i] = float32(i)
	}
	tr := transpose4(&m)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if tr[c*4+r] != m[r*4+c] {
				t.Fatalf("transpose mismatch at (%d,%d)", r, c)
			}
		}
	}
}
