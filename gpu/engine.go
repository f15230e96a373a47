// Package gpu owns the WebGPU device, the per-slot upload buffers and
// the forward render pass. Everything above it talks to the hardware
// through the frame package's interfaces.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/castle/core"
)

const DepthFormat = wgpu.TextureFormatDepth32Float

// Engine wraps the device, queue, surface and depth target, and plays
// the execution-engine role for the frame ring: Submit remembers each
// command buffer's submission index, Signal ties the next marker to
// it, and WaitUntilRetired polls just that submission so newer frames
// keep running ahead while the oldest slot is reclaimed.
type Engine struct {
	log      core.Logger
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	signaled       uint64
	retired        uint64
	lastSubmission wgpu.SubmissionIndex
	inFlight       []submission
}

// submission ties a frame marker to the queue submission that carries
// its work.
type submission struct {
	marker uint64
	index  wgpu.SubmissionIndex
}

func NewEngine(window *glfw.Window, log core.Logger) (*Engine, error) {
	e := &Engine{log: log}
	e.instance = wgpu.CreateInstance(nil)
	e.surface = e.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := e.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: e.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	e.adapter = adapter

	e.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	e.queue = e.device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := e.surface.GetCapabilities(adapter)
	e.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	e.surface.Configure(adapter, e.device, e.config)

	if err := e.createDepthTarget(); err != nil {
		return nil, err
	}

	log.Infof("gpu: surface %dx%d format %v", width, height, e.config.Format)
	return e, nil
}

func (e *Engine) Device() *wgpu.Device              { return e.device }
func (e *Engine) Queue() *wgpu.Queue                { return e.queue }
func (e *Engine) SurfaceFormat() wgpu.TextureFormat { return e.config.Format }
func (e *Engine) DepthView() *wgpu.TextureView      { return e.depthView }
func (e *Engine) Width() uint32                     { return e.config.Width }
func (e *Engine) Height() uint32                    { return e.config.Height }

func (e *Engine) createDepthTarget() error {
	if e.depthView != nil {
		e.depthView.Release()
		e.depthTexture.Release()
	}
	tex, err := e.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "DepthTarget",
		Size: wgpu.Extent3D{
			Width:              e.config.Width,
			Height:             e.config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth target: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create depth view: %w", err)
	}
	e.depthTexture = tex
	e.depthView = view
	return nil
}

// Resize reconfigures the surface and rebuilds the depth target. A
// zero dimension (minimized window) is ignored.
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	e.config.Width = uint32(width)
	e.config.Height = uint32(height)
	e.surface.Configure(e.adapter, e.device, e.config)
	return e.createDepthTarget()
}

// AcquireFrame returns the swapchain texture and its view. The caller
// releases both after present.
func (e *Engine) AcquireFrame() (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := e.surface.GetCurrentTexture()
	if err != nil {
		return nil, nil, fmt.Errorf("acquire surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create surface view: %w", err)
	}
	return tex, view, nil
}

func (e *Engine) Present() { e.surface.Present() }

// Submit hands the frame's command buffer to the queue and remembers
// its submission index for the marker Signal will stamp next.
func (e *Engine) Submit(cmd *wgpu.CommandBuffer) {
	e.lastSubmission = e.queue.Submit(cmd)
}

// Completed reports the highest retired marker, promoting lazily: a
// non-blocking poll that finds the queue empty retires everything
// signaled so far.
func (e *Engine) Completed() uint64 {
	if e.retired < e.signaled && e.device.Poll(false, nil) {
		e.retire(e.signaled)
	}
	return e.retired
}

// Signal ties marker to the most recent submission.
func (e *Engine) Signal(marker uint64) error {
	e.signaled = marker
	e.inFlight = append(e.inFlight, submission{marker: marker, index: e.lastSubmission})
	return nil
}

// WaitUntilRetired blocks until the GPU has finished all work up to
// marker. Only the submission carrying the marker is waited on, so
// frames submitted after it stay in flight.
func (e *Engine) WaitUntilRetired(marker uint64) error {
	if e.retired >= marker {
		return nil
	}
	for _, s := range e.inFlight {
		if s.marker != marker {
			continue
		}
		e.device.Poll(true, &wgpu.WrappedSubmissionIndex{
			Queue:           e.queue,
			SubmissionIndex: s.index,
		})
		e.retire(marker)
		return nil
	}
	// Marker was signaled without a tracked submission: drain the
	// whole queue.
	e.device.Poll(true, nil)
	e.retire(e.signaled)
	return nil
}

// retire advances the retired watermark and drops bookkeeping for
// submissions at or below it.
func (e *Engine) retire(marker uint64) {
	if marker > e.retired {
		e.retired = marker
	}
	n := 0
	for _, s := range e.inFlight {
		if s.marker > e.retired {
			e.inFlight[n] = s
			n++
		}
	}
	e.inFlight = e.inFlight[:n]
}

// Flush drains the queue completely. Used at shutdown before releasing
// resources still referenced by in-flight frames.
func (e *Engine) Flush() {
	e.device.Poll(true, nil)
	e.retire(e.signaled)
}
