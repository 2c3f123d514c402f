package csg

import (
	"cogentcore.org/core/math32"
)

// Material controls how the composed surface is shaded. One material
// applies to the whole solid per frame; per-primitive materials are out
// of scope for a CAD preview.
type Material struct {
	// BaseColor is the albedo with alpha, blended over the clear color.
	BaseColor math32.Vector4

	// Roughness in [0,1] widens the specular highlight.
	Roughness float32

	// Metallic in [0,1] tints the highlight toward the base color.
	Metallic float32
}

// DefaultMaterial returns the neutral preview material: matte yellow in
// the OpenSCAD tradition.
func DefaultMaterial() Material {
	return Material{
		BaseColor: math32.Vector4{X: 0.96, Y: 0.82, Z: 0.18, W: 1},
		Roughness: 0.6,
		Metallic:  0.05,
	}
}

// Light is a single directional light.
type Light struct {
	// Direction the light travels, in view space. Normalized on upload.
	Direction math32.Vector3

	// Intensity scales the diffuse and specular terms.
	Intensity float32

	// Color of the light; alpha is unused.
	Color math32.Vector4
}

// DefaultLight returns a headlight slightly above and to the right of
// the camera.
func DefaultLight() Light {
	return Light{
		Direction: math32.Vec3(-0.4, -0.6, -1).Normal(),
		Intensity: 1,
		Color:     math32.Vector4{X: 1, Y: 1, Z: 1, W: 1},
	}
}
