//go:build windows

// Package webgpu implements the GPU engine. It JIT-compiles a pipeline's
// stage chain into WGSL compute shaders and drives them through
// go-webgpu (github.com/go-webgpu/webgpu), zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/tessel-ml/tessel/internal/pipeline"
)

// Engine holds the WebGPU device state shared by compiled executables.
type Engine struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	adapterInfo *wgpu.AdapterInfo

	// Shader and pipeline cache, keyed by generated WGSL source.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex
}

// New creates a WebGPU engine.
// Returns an error if WebGPU is not available or initialization fails.
func New() (engine *Engine, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			engine = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Engine{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		adapterInfo: &adapterInfo,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// Name returns the engine name with the adapter description.
func (e *Engine) Name() string {
	if e.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", e.adapterInfo.Name, e.adapterInfo.VendorName)
	}
	return "WebGPU"
}

// Probe implements pipeline.Prober. The go-webgpu bindings do not expose
// the adapter's backend type, so the served feature is inferred from the
// platform the way the candidate list is built: one dependable API per OS.
func (e *Engine) Probe(f pipeline.Feature) (pipeline.AdapterInfo, bool) {
	if e.adapter == nil || f != platformFeature() {
		return pipeline.AdapterInfo{}, false
	}
	name := ""
	if e.adapterInfo != nil {
		name = fmt.Sprintf("%s %s", e.adapterInfo.Name, e.adapterInfo.VendorName)
	}
	return pipeline.AdapterInfo{Name: name, Limits: baseLimits()}, true
}

// platformFeature returns the GPU feature wgpu-native serves on this OS.
func platformFeature() pipeline.Feature {
	switch runtime.GOOS {
	case "darwin":
		return pipeline.FeatureMetal
	case "windows":
		return pipeline.FeatureD3D12
	default:
		return pipeline.FeatureVulkan
	}
}

// baseLimits returns the WebGPU base limits. The bindings do not expose
// adapter limits; the base limits are the portable floor every compliant
// device supports.
func baseLimits() pipeline.Limits {
	return pipeline.Limits{
		MaxInvocationsPerWorkgroup: 256,
		MaxWorkgroupSizeX:          256,
		MaxWorkgroupSizeY:          256,
		MaxWorkgroupSizeZ:          64,
		MaxWorkgroupsPerDimension:  65535,
	}
}

// Release frees all WebGPU resources. Compiled executables must be
// released first.
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.pipelines {
		p.Release()
	}
	e.pipelines = nil

	for _, s := range e.shaders {
		s.Release()
	}
	e.shaders = nil

	if e.queue != nil {
		e.queue.Release()
		e.queue = nil
	}
	if e.device != nil {
		e.device.Release()
		e.device = nil
	}
	if e.adapter != nil {
		e.adapter.Release()
		e.adapter = nil
	}
	if e.instance != nil {
		e.instance.Release()
		e.instance = nil
	}
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// compileShader compiles WGSL source into a ShaderModule, cached by source.
func (e *Engine) compileShader(source string) *wgpu.ShaderModule {
	e.mu.RLock()
	if shader, exists := e.shaders[source]; exists {
		e.mu.RUnlock()
		return shader
	}
	e.mu.RUnlock()

	shader := e.device.CreateShaderModuleWGSL(source)

	e.mu.Lock()
	e.shaders[source] = shader
	e.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates one.
func (e *Engine) getOrCreatePipeline(source string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	e.mu.RLock()
	if p, exists := e.pipelines[source]; exists {
		e.mu.RUnlock()
		return p
	}
	e.mu.RUnlock()

	p := e.device.CreateComputePipelineSimple(nil, shader, "main")

	e.mu.Lock()
	e.pipelines[source] = p
	e.mu.Unlock()

	return p
}

// createStorageBuffer creates a storage buffer, optionally uploading data.
func (e *Engine) createStorageBuffer(data []byte, size uint64) *wgpu.Buffer {
	if data == nil {
		return e.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			Size:  size,
		})
	}

	buffer := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafeByteSlice(mappedPtr, size), data)
	buffer.Unmap()
	return buffer
}

// readBuffer reads data back from a GPU buffer through a staging buffer.
// The MapAsync wait is the host-visible completion barrier for all work
// submitted before the copy.
func (e *Engine) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := e.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmdBuffer := encoder.Finish(nil)
	e.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(e.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}

	mappedPtr := staging.GetMappedRange(0, size)
	result := make([]byte, size)
	copy(result, unsafeByteSlice(mappedPtr, size))
	staging.Unmap()

	return result, nil
}
