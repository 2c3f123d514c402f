package csg

import "errors"

// Mesh construction errors.
var (
	// ErrMeshPositions is returned when the position array is not a
	// whole number of 3-float vertices.
	ErrMeshPositions = errors.New("csg: positions length must be a multiple of 3")

	// ErrMeshNormals is returned when a normal array is present but does
	// not match the position array length.
	ErrMeshNormals = errors.New("csg: normals length must match positions")

	// ErrMeshIndices is returned when the index array is not a whole
	// number of triangles.
	ErrMeshIndices = errors.New("csg: indices length must be a multiple of 3")

	// ErrMeshIndexRange is returned when an index references a vertex
	// past the end of the position array.
	ErrMeshIndexRange = errors.New("csg: index out of range")
)
