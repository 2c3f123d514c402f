// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/csg/internal/gpu"
)

// DeviceHandle provides GPU device access from a host application.
//
// The host windowing stack (for example a gogpu.App) implements
// DeviceHandle and lends its device to the renderer, so preview
// surfaces and the host share one GPU device instead of each opening
// their own. The renderer receives the device; it never creates one
// through this path and never destroys a lent device.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is the optional extension a handle must implement for
// renderer construction: direct access to the wgpu HAL objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// halFromHandle extracts the HAL device and queue from a device handle.
func halFromHandle(h DeviceHandle) (hal.Device, hal.Queue, bool) {
	hp, ok := h.(halProvider)
	if !ok {
		return nil, nil, false
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, false
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, false
	}
	return device, queue, true
}

// Device bundles a self-opened GPU device with its owning instance.
// Standalone programs (the demo, offline rendering) use it in place of
// a host-provided DeviceHandle.
type Device = gpu.OpenedDevice

// OpenDevice opens the default GPU for standalone use. Prefer
// NewRendererFromHandle when running inside a host application that
// already owns a device.
func OpenDevice() (*Device, error) {
	return gpu.OpenDevice()
}
