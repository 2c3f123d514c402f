// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend driver.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// OpenedDevice bundles a device and queue opened by OpenDevice with the
// instance that owns them.
type OpenedDevice struct {
	Instance hal.Instance
	Device   hal.Device
	Queue    hal.Queue
	Name     string
}

// OpenDevice opens the default GPU: the first discrete or integrated
// adapter on the Vulkan backend, falling back to whatever adapter the
// backend exposes. Call Close to release the device and instance.
func OpenDevice() (*OpenedDevice, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrResourceCreation)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrResourceCreation, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", ErrResourceCreation)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %v", ErrResourceCreation, err)
	}
	slogger().Info("csg: GPU device opened", "adapter", selected.Info.Name)
	return &OpenedDevice{
		Instance: instance,
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Name:     selected.Info.Name,
	}, nil
}

// Close destroys the device and its owning instance.
func (d *OpenedDevice) Close() {
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
		d.Queue = nil
	}
	if d.Instance != nil {
		d.Instance.Destroy()
		d.Instance = nil
	}
}
