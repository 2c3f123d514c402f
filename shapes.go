package csg

import (
	"cogentcore.org/core/math32"
)

// triBuilder accumulates an expanded triangle list: every triangle gets
// its own three vertices and the index list is sequential. No vertices
// are shared between triangles, so per-face normals never bleed across
// edges and the position stream can be packed independently.
type triBuilder struct {
	verts   []float32
	indices []uint32
}

func (b *triBuilder) addTri(p0, p1, p2, n0, n1, n2 math32.Vector3) {
	base := uint32(len(b.verts) / VertexFloats) //nolint:gosec // vertex counts are small
	b.verts = append(b.verts,
		p0.X, p0.Y, p0.Z, n0.X, n0.Y, n0.Z,
		p1.X, p1.Y, p1.Z, n1.X, n1.Y, n1.Z,
		p2.X, p2.Y, p2.Z, n2.X, n2.Y, n2.Z,
	)
	b.indices = append(b.indices, base, base+1, base+2)
}

func (b *triBuilder) build(op Operation, conv Convexity) *Primitive {
	return newPrimitive(op, conv, b.verts, b.indices)
}

// Box returns a convex axis-aligned box centered at the origin with the
// given edge lengths, one quad per face, outward face normals.
func Box(size math32.Vector3, op Operation) *Primitive {
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	var b triBuilder

	// Quad corners run origin, origin+e1, origin+e1+e2, origin+e2;
	// with e1 x e2 outward both triangles wind counter-clockwise as
	// seen from outside.
	face := func(origin, e1, e2 math32.Vector3) {
		n := e1.Cross(e2).Normal()
		corner := origin.Add(e1).Add(e2)
		b.addTri(origin, origin.Add(e1), corner, n, n, n)
		b.addTri(origin, corner, origin.Add(e2), n, n, n)
	}

	face(math32.Vec3(-hx, -hy, hz), math32.Vec3(size.X, 0, 0), math32.Vec3(0, size.Y, 0))  // +Z
	face(math32.Vec3(hx, -hy, -hz), math32.Vec3(-size.X, 0, 0), math32.Vec3(0, size.Y, 0)) // -Z
	face(math32.Vec3(hx, -hy, hz), math32.Vec3(0, 0, -size.Z), math32.Vec3(0, size.Y, 0))  // +X
	face(math32.Vec3(-hx, -hy, -hz), math32.Vec3(0, 0, size.Z), math32.Vec3(0, size.Y, 0)) // -X
	face(math32.Vec3(-hx, hy, hz), math32.Vec3(size.X, 0, 0), math32.Vec3(0, 0, -size.Z))  // +Y
	face(math32.Vec3(-hx, -hy, -hz), math32.Vec3(size.X, 0, 0), math32.Vec3(0, 0, size.Z)) // -Y

	return b.build(op, Convex)
}

// spherePoint maps an azimuth/elevation grid corner to a point on the
// sphere. Elevation runs 0 (top pole, +Y) to pi (bottom pole).
func spherePoint(radius, ang, elev float32) math32.Vector3 {
	return math32.Vec3(
		-radius*math32.Cos(ang)*math32.Sin(elev),
		radius*math32.Cos(elev),
		radius*math32.Sin(ang)*math32.Sin(elev),
	)
}

// Sphere returns a convex sphere centered at the origin, tessellated on
// a segments x segments azimuth/elevation grid with radial normals.
// segments <= 0 yields a primitive with zero triangles.
func Sphere(radius float32, segments int, op Operation) *Primitive {
	var b triBuilder
	if segments <= 0 {
		return b.build(op, Convex)
	}
	segs := float32(segments)
	for v := 0; v < segments; v++ {
		elev0 := float32(v) / segs * math32.Pi
		elev1 := float32(v+1) / segs * math32.Pi
		for u := 0; u < segments; u++ {
			ang0 := float32(u) / segs * 2 * math32.Pi
			ang1 := float32(u+1) / segs * 2 * math32.Pi

			// Screen layout from outside: a top-left, bb top-right,
			// c bottom-right, d bottom-left.
			a := spherePoint(radius, ang0, elev0)
			bb := spherePoint(radius, ang1, elev0)
			c := spherePoint(radius, ang1, elev1)
			d := spherePoint(radius, ang0, elev1)

			// Radial normals; each pole row keeps only the triangle that
			// does not collapse onto the pole.
			if v+1 < segments {
				b.addTri(a, d, c, a.Normal(), d.Normal(), c.Normal())
			}
			if v > 0 {
				b.addTri(a, c, bb, a.Normal(), c.Normal(), bb.Normal())
			}
		}
	}
	return b.build(op, Convex)
}

// cylinderRim maps an azimuth grid corner to a point on the cylinder
// wall at the given height.
func cylinderRim(radius, y, ang float32) math32.Vector3 {
	return math32.Vec3(-radius*math32.Cos(ang), y, radius*math32.Sin(ang))
}

// Cylinder returns a convex cylinder centered at the origin with its
// axis along Y: a segmented wall with radial normals plus two cap fans
// with flat normals. segments <= 0 yields zero triangles.
func Cylinder(radius, height float32, segments int, op Operation) *Primitive {
	var b triBuilder
	if segments <= 0 {
		return b.build(op, Convex)
	}
	hy := height / 2
	segs := float32(segments)
	up := math32.Vec3(0, 1, 0)
	down := math32.Vec3(0, -1, 0)
	topCenter := math32.Vec3(0, hy, 0)
	botCenter := math32.Vec3(0, -hy, 0)

	for u := 0; u < segments; u++ {
		ang0 := float32(u) / segs * 2 * math32.Pi
		ang1 := float32(u+1) / segs * 2 * math32.Pi

		n0 := math32.Vec3(-math32.Cos(ang0), 0, math32.Sin(ang0))
		n1 := math32.Vec3(-math32.Cos(ang1), 0, math32.Sin(ang1))

		a := cylinderRim(radius, hy, ang0)
		bb := cylinderRim(radius, hy, ang1)
		c := cylinderRim(radius, -hy, ang1)
		d := cylinderRim(radius, -hy, ang0)

		// Wall quad, counter-clockwise from outside.
		b.addTri(a, d, c, n0, n0, n1)
		b.addTri(a, c, bb, n0, n1, n1)

		b.addTri(topCenter, a, bb, up, up, up)
		b.addTri(botCenter, c, d, down, down, down)
	}
	return b.build(op, Convex)
}
