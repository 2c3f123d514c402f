// Package csg provides image-space constructive solid geometry rendering
// for the GoGPU ecosystem.
//
// # Overview
//
// csg renders the boundary surface of solids built from set operations
// (intersection, subtraction) on primitive shapes directly on the GPU,
// without ever computing a combined boolean mesh on the CPU. It exists to
// give fast interactive previews of parametric CAD models where an exact
// boolean-mesh kernel is too slow to re-run every frame.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/csg"
//	    "github.com/gogpu/csg/render"
//	)
//
//	// Describe the solid: a cube with a sphere carved out of it.
//	prims := []*csg.Primitive{
//	    csg.Box(math32.Vec3(1.5, 1.5, 1.5), csg.Intersection),
//	    csg.Sphere(0.9, 32, csg.Subtraction),
//	}
//
//	r, err := render.NewRenderer(device, queue)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Destroy()
//
//	r.SetPrimitives(prims)
//	r.SetTransforms(model, view, projection)
//	r.RenderFrame(target)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Primitive, Operation, Convexity, Material, Light and the
//     Box/Sphere/Cylinder/NewMesh constructors (this package)
//   - render: the Renderer frame driver, render targets, camera helpers
//   - cache: generic get-or-insert caches backing the pipeline caches
//   - internal/gpu: pipeline caches, GPU buffers, the SCS and Goldfeather
//     composition engines over gogpu/wgpu/hal
//
// # Algorithms
//
// Two image-space composition algorithms are provided. SCS (Sequenced
// Convex Subtraction) composes convex primitives with two depth-only
// passes and one shading pass. Goldfeather handles concave primitives
// with stencil winding counting and a bounded depth-layer sweep. The
// renderer picks automatically: Goldfeather whenever any primitive
// reports convexity above one, SCS otherwise.
//
// # Input Model
//
// Primitives arrive as triangle meshes tagged with an operation and a
// convexity bound, in the format an exact geometry kernel delivers: flat
// position/normal arrays plus a uint32 triangle index list. The built-in
// shape constructors generate the same representation for tests and
// demos.
package csg

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
