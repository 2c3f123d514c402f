// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render provides the public renderer for image-space CSG
// compositing.
//
// # Overview
//
// A Renderer owns the per-frame GPU state for one preview surface: the
// pipeline caches, the uploaded primitive list, and the uniform,
// material, and light buffers. Each RenderFrame call encodes one
// command buffer with the compositing passes of the selected algorithm
// and submits it.
//
//	dev, err := render.OpenDevice()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	r, err := render.NewRenderer(dev.Device, dev.Queue)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Destroy()
//
//	box := csg.Box(math32.Vec3(1.5, 1.5, 1.5), csg.Intersection)
//	hole := csg.Sphere(0.9, 32, csg.Subtraction)
//	if err := r.SetPrimitives([]*csg.Primitive{box, hole}); err != nil {
//	    log.Fatal(err)
//	}
//
//	r.SetTransforms(model, render.LookAt(eye, center, up),
//	    render.Perspective(45, aspect, 0.1, 100))
//
//	target := render.NewPixmapTarget(800, 600)
//	if err := r.RenderFrame(target); err != nil {
//	    log.Fatal(err)
//	}
//	// target.Image() now holds the shaded composite.
//
// # Targets
//
// Three render targets cover the delivery modes:
//
//   - PixmapTarget: CPU-backed image.RGBA; RenderFrame fences and reads
//     the finished frame back.
//   - TextureTarget: caller-owned texture view, submit-only; the host
//     windowing stack presents it.
//   - NullTarget: attachments only, no delivery; used by tests and
//     benchmarks.
//
// # Algorithm selection
//
// In automatic mode a frame uses the Goldfeather stencil engine when
// any primitive in the list is concave, and the cheaper SCS depth
// engine otherwise. WithAlgorithm pins one engine regardless of the
// list.
//
// Renderers are not safe for concurrent use. Create one Renderer per
// goroutine or serialize access externally.
package render
