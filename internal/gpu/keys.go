// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PipelineKey identifies the attachment configuration a render pipeline is
// compiled against. Pipelines built for equal keys are interchangeable and
// the cache returns the identical object for repeated lookups.
type PipelineKey struct {
	// ColorFormat is the color attachment format.
	ColorFormat gputypes.TextureFormat

	// DepthStencilFormat is the combined depth/stencil attachment format.
	DepthStencilFormat gputypes.TextureFormat

	// SampleCount is the MSAA sample count (1 = no multisampling).
	SampleCount uint32
}

// StencilParams describes the stencil configuration applied identically to
// both faces of a pipeline. Face selection happens through the pipeline's
// cull mode, so a single parameter set per pipeline suffices.
type StencilParams struct {
	Compare     gputypes.CompareFunction
	FailOp      hal.StencilOperation
	DepthFailOp hal.StencilOperation
	PassOp      hal.StencilOperation
	ReadMask    uint32
	WriteMask   uint32
}

// DepthStencilKey identifies a depth/stencil state template. Equal keys map
// to the identical cached hal.DepthStencilState.
type DepthStencilKey struct {
	DepthCompare      gputypes.CompareFunction
	DepthWriteEnabled bool
	Stencil           StencilParams
}

// StencilDisabled returns the stencil configuration that never tests and
// never writes. Used by pipelines that only interact with depth.
func StencilDisabled() StencilParams {
	return StencilParams{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
		ReadMask:    0x00,
		WriteMask:   0x00,
	}
}

// variantKey is the composite cache key for a concrete pipeline: attachment
// configuration, depth/stencil behavior, and face culling.
type variantKey struct {
	pipe PipelineKey
	ds   DepthStencilKey
	cull gputypes.CullMode
}

// dsKey is the cache key for depth/stencil state templates. The attachment
// format is part of the key because the state embeds it.
type dsKey struct {
	ds     DepthStencilKey
	format gputypes.TextureFormat
}

// FNV-1a parameters for key hashing. Hashes only select cache shards, so
// distribution matters more than collision resistance.
const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

func fnvMix(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= v & 0xff
		h *= fnvPrime64
		v >>= 8
	}
	return h
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (k PipelineKey) fold(h uint64) uint64 {
	h = fnvMix(h, uint64(k.ColorFormat))
	h = fnvMix(h, uint64(k.DepthStencilFormat))
	h = fnvMix(h, uint64(k.SampleCount))
	return h
}

func (k DepthStencilKey) fold(h uint64) uint64 {
	h = fnvMix(h, uint64(k.DepthCompare))
	h = fnvMix(h, boolBit(k.DepthWriteEnabled))
	h = fnvMix(h, uint64(k.Stencil.Compare))
	h = fnvMix(h, uint64(k.Stencil.FailOp))
	h = fnvMix(h, uint64(k.Stencil.DepthFailOp))
	h = fnvMix(h, uint64(k.Stencil.PassOp))
	h = fnvMix(h, uint64(k.Stencil.ReadMask))
	h = fnvMix(h, uint64(k.Stencil.WriteMask))
	return h
}

func hashVariantKey(k variantKey) uint64 {
	h := k.pipe.fold(fnvOffset64)
	h = k.ds.fold(h)
	h = fnvMix(h, uint64(k.cull))
	return h
}

func hashDSKey(k dsKey) uint64 {
	h := k.ds.fold(fnvOffset64)
	h = fnvMix(h, uint64(k.format))
	return h
}
