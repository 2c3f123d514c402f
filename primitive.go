package csg

import (
	"cogentcore.org/core/math32"
)

// Vertex layout shared by every primitive. Depth-only passes bind a
// packed position stream; the shading pass binds the full interleaved
// stream. Both layouts are fixed: position float32x3, normal float32x3.
const (
	// PositionFloats is the float count of the packed position layout.
	PositionFloats = 3

	// VertexFloats is the float count of one interleaved vertex
	// (position + normal).
	VertexFloats = 6

	// NormalByteOffset is the byte offset of the normal attribute within
	// an interleaved vertex.
	NormalByteOffset = 12
)

// Primitive is one solid participating in the composition: a closed
// triangle mesh tagged with an operation and a convexity bound.
//
// A Primitive is immutable once built and is referenced, not owned, by
// the per-frame render list — the same primitive may appear in many
// frames and many renderers. Callers must not modify the slices returned
// by VertexData and IndexData.
type Primitive struct {
	op        Operation
	convexity Convexity
	bounds    math32.Box3
	verts     []float32 // interleaved position+normal, VertexFloats per vertex
	indices   []uint32
}

// NewMesh builds a primitive from a kernel-shaped triangle mesh: flat
// position and normal arrays (3 floats per vertex) and a flat triangle
// index list (3 indices per triangle).
//
// normals may be nil, in which case averaged vertex normals are computed
// from the triangle faces, weighted by face area; vertices referenced by
// no triangle (or only by degenerate ones) get the +Z normal.
func NewMesh(positions, normals []float32, indices []uint32, op Operation, conv Convexity) (*Primitive, error) {
	if len(positions)%PositionFloats != 0 {
		return nil, ErrMeshPositions
	}
	if normals != nil && len(normals) != len(positions) {
		return nil, ErrMeshNormals
	}
	if len(indices)%3 != 0 {
		return nil, ErrMeshIndices
	}
	vertexCount := len(positions) / PositionFloats
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return nil, ErrMeshIndexRange
		}
	}

	if normals == nil {
		normals = averageNormals(positions, indices)
	}

	verts := make([]float32, 0, vertexCount*VertexFloats)
	var bounds math32.Box3
	bounds.SetEmpty()
	for v := 0; v < vertexCount; v++ {
		px, py, pz := positions[v*3], positions[v*3+1], positions[v*3+2]
		bounds.ExpandByPoint(math32.Vec3(px, py, pz))
		verts = append(verts, px, py, pz, normals[v*3], normals[v*3+1], normals[v*3+2])
	}

	idx := make([]uint32, len(indices))
	copy(idx, indices)

	return &Primitive{
		op:        op,
		convexity: conv,
		bounds:    bounds,
		verts:     verts,
		indices:   idx,
	}, nil
}

// averageNormals computes per-vertex normals as the normalized sum of
// adjacent face normals. The cross product of the face edges weights
// each contribution by twice the face area, so large faces dominate.
func averageNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))
	vec := func(i uint32) math32.Vector3 {
		return math32.Vec3(positions[i*3], positions[i*3+1], positions[i*3+2])
	}
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		face := vec(b).Sub(vec(a)).Cross(vec(c).Sub(vec(a)))
		for _, i := range [3]uint32{a, b, c} {
			normals[i*3] += face.X
			normals[i*3+1] += face.Y
			normals[i*3+2] += face.Z
		}
	}
	for v := 0; v*3+2 < len(normals); v++ {
		n := math32.Vec3(normals[v*3], normals[v*3+1], normals[v*3+2])
		if n.Length() == 0 {
			n = math32.Vec3(0, 0, 1)
		} else {
			n = n.Normal()
		}
		normals[v*3], normals[v*3+1], normals[v*3+2] = n.X, n.Y, n.Z
	}
	return normals
}

// newPrimitive wraps already-interleaved vertex data produced by the
// shape constructors. The data is trusted: indices are sequential and
// in range by construction.
func newPrimitive(op Operation, conv Convexity, verts []float32, indices []uint32) *Primitive {
	var bounds math32.Box3
	bounds.SetEmpty()
	for v := 0; v+VertexFloats <= len(verts); v += VertexFloats {
		bounds.ExpandByPoint(math32.Vec3(verts[v], verts[v+1], verts[v+2]))
	}
	return &Primitive{op: op, convexity: conv, bounds: bounds, verts: verts, indices: indices}
}

// Operation returns the primitive's role in the composed solid.
func (p *Primitive) Operation() Operation { return p.op }

// Convexity returns the primitive's depth-layer bound.
func (p *Primitive) Convexity() Convexity { return p.convexity }

// Bounds returns the axis-aligned bounding box of the mesh in local
// coordinates. Empty for a zero-triangle primitive.
func (p *Primitive) Bounds() math32.Box3 { return p.bounds }

// VertexData returns the interleaved position+normal stream,
// VertexFloats float32 values per vertex. Callers must not modify it.
func (p *Primitive) VertexData() []float32 { return p.verts }

// IndexData returns the flat triangle index list. Callers must not
// modify it.
func (p *Primitive) IndexData() []uint32 { return p.indices }

// IndexCount returns the number of indices (three per triangle).
func (p *Primitive) IndexCount() int { return len(p.indices) }

// VertexCount returns the number of interleaved vertices.
func (p *Primitive) VertexCount() int { return len(p.verts) / VertexFloats }
