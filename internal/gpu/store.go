// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"cogentcore.org/core/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg"
)

// primitiveBuffers holds the GPU-resident geometry for one primitive.
// posBuf carries the position-only stream for depth and stencil passes;
// vertBuf carries the full interleaved position+normal stream for the
// shading pass. Both index into the same expanded triangle list.
type primitiveBuffers struct {
	op        csg.Operation
	convexity csg.Convexity
	bounds    math32.Box3

	posBuf     hal.Buffer
	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	indexCount uint32
}

// PrimitiveStore owns the uploaded geometry for the current primitive
// list. Buffers persist across frames until the list is replaced or the
// store is destroyed. The mutex makes a SetPrimitives call from an
// upload goroutine visible to the next frame on the render goroutine.
type PrimitiveStore struct {
	device hal.Device
	queue  hal.Queue

	mu    sync.Mutex
	prims []primitiveBuffers
}

// NewPrimitiveStore creates an empty store bound to the given device and
// queue.
func NewPrimitiveStore(device hal.Device, queue hal.Queue) *PrimitiveStore {
	return &PrimitiveStore{device: device, queue: queue}
}

// SetPrimitives replaces the stored geometry with uploads for prims.
// Primitives with no triangles are skipped entirely; they never reach a
// draw call. Submission order of the remaining primitives is preserved.
func (s *PrimitiveStore) SetPrimitives(prims []*csg.Primitive) error {
	uploaded := make([]primitiveBuffers, 0, len(prims))
	for i, p := range prims {
		if p.IndexCount() == 0 {
			continue
		}
		pb, err := s.upload(i, p)
		if err != nil {
			for j := range uploaded {
				uploaded[j].destroy(s.device)
			}
			return err
		}
		uploaded = append(uploaded, pb)
	}

	s.mu.Lock()
	old := s.prims
	s.prims = uploaded
	s.mu.Unlock()
	for i := range old {
		old[i].destroy(s.device)
	}
	return nil
}

// Primitives returns the uploaded primitives in submission order. The
// slice is owned by the store and valid until the next SetPrimitives or
// Destroy call.
func (s *PrimitiveStore) Primitives() []primitiveBuffers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prims
}

// Len returns the number of uploaded (non-empty) primitives.
func (s *PrimitiveStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prims)
}

// Destroy releases all uploaded buffers. Safe to call twice.
func (s *PrimitiveStore) Destroy() {
	s.mu.Lock()
	old := s.prims
	s.prims = nil
	s.mu.Unlock()
	for i := range old {
		old[i].destroy(s.device)
	}
}

func (s *PrimitiveStore) upload(index int, p *csg.Primitive) (primitiveBuffers, error) {
	verts := p.VertexData()
	positions := make([]float32, 0, p.VertexCount()*csg.PositionFloats)
	for v := 0; v < len(verts); v += csg.VertexFloats {
		positions = append(positions, verts[v], verts[v+1], verts[v+2])
	}

	posBuf, err := s.createAndUploadBuffer(
		fmt.Sprintf("csg_prim%d_pos", index), floatBytes(positions),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return primitiveBuffers{}, err
	}
	vertBuf, err := s.createAndUploadBuffer(
		fmt.Sprintf("csg_prim%d_verts", index), floatBytes(verts),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		s.device.DestroyBuffer(posBuf)
		return primitiveBuffers{}, err
	}
	idxBuf, err := s.createAndUploadBuffer(
		fmt.Sprintf("csg_prim%d_idx", index), indexBytes(p.IndexData()),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		s.device.DestroyBuffer(vertBuf)
		s.device.DestroyBuffer(posBuf)
		return primitiveBuffers{}, err
	}

	return primitiveBuffers{
		op:         p.Operation(),
		convexity:  p.Convexity(),
		bounds:     p.Bounds(),
		posBuf:     posBuf,
		vertBuf:    vertBuf,
		idxBuf:     idxBuf,
		indexCount: uint32(p.IndexCount()), //nolint:gosec // index counts fit uint32
	}, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (s *PrimitiveStore) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrResourceCreation, label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (pb *primitiveBuffers) destroy(device hal.Device) {
	if pb.idxBuf != nil {
		device.DestroyBuffer(pb.idxBuf)
		pb.idxBuf = nil
	}
	if pb.vertBuf != nil {
		device.DestroyBuffer(pb.vertBuf)
		pb.vertBuf = nil
	}
	if pb.posBuf != nil {
		device.DestroyBuffer(pb.posBuf)
		pb.posBuf = nil
	}
}

// floatBytes serializes float32 values little-endian.
func floatBytes(values []float32) []byte {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// indexBytes serializes uint32 indices little-endian.
func indexBytes(indices []uint32) []byte {
	data := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(data[i*4:], v)
	}
	return data
}
