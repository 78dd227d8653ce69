package voxstream

import (
	"errors"
	"fmt"
	"time"

	"github.com/gekko3d/voxstream/chunkrt/rt/gpu"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/time/rate"
)

// RendererModule opens the GPU on the shared window and draws the streamed
// chunks every frame. Requires PlatformWindowModule.
type RendererModule struct {
	ClearColor wgpu.Color
}

type ChunkRenderer struct {
	pipeline *gpu.ChunkPipeline
	clear    wgpu.Color

	logger   Logger
	skipWarn *rate.Limiter
	skipped  int64
	drawn    int
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	ws := getResource[WindowState](app)
	if ws == nil {
		cmd.Fail(errors.New("renderer: no window, install PlatformWindowModule first"))
		return
	}

	gs, err := createGpuState(ws)
	if err != nil {
		cmd.Fail(fmt.Errorf("renderer: %w", err))
		return
	}

	width, height := gs.Size()
	pipeline, err := gpu.NewChunkPipeline(gs.device, gs.queue, gs.Format(), width, height)
	if err != nil {
		gs.release()
		cmd.Fail(fmt.Errorf("renderer: %w", err))
		return
	}

	clearColor := m.ClearColor
	if clearColor == (wgpu.Color{}) {
		clearColor = wgpu.Color{R: 0.53, G: 0.81, B: 0.92, A: 1.0}
	}
	renderer := &ChunkRenderer{
		pipeline: pipeline,
		clear:    clearColor,
		logger:   app.Logger(),
		skipWarn: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
	cmd.AddResources(gs, renderer)

	app.UseSystem(System(resizeSystem).InStage(PreRender).RunAlways())
	app.UseSystem(System(renderSystem).InStage(Render).RunAlways())
	if app.stateful {
		app.UseSystem(System(rendererShutdownSystem).InStage(Finale).InState(OnExit(app.finalState)))
	}
}

func resizeSystem(ws *WindowState, gs *GpuState, r *ChunkRenderer) {
	width, height := ws.FramebufferSize()
	if !gs.resize(width, height) {
		return
	}
	ws.WindowWidth, ws.WindowHeight = width, height
	if err := r.pipeline.Resize(uint32(width), uint32(height)); err != nil {
		r.logger.Errorf("resize depth target: %v", err)
	}
}

func renderSystem(gs *GpuState, fly *FlyingCamera, chunks *ChunkStreaming, r *ChunkRenderer) {
	if err := r.pipeline.UpdateCamera(fly.Camera.ViewProjection(gs.Aspect())); err != nil {
		r.skip("camera upload", err)
		return
	}

	nextTexture, err := gs.surface.GetCurrentTexture()
	if err != nil {
		r.skip("acquire surface texture", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		r.skip("surface view", err)
		return
	}
	defer view.Release()

	encoder, err := gs.device.CreateCommandEncoder(nil)
	if err != nil {
		r.skip("command encoder", err)
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: r.clear,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.pipeline.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer pass.Release()

	r.drawn = chunks.System.Draw(&gpu.PassSink{Pass: pass, Pipeline: r.pipeline})
	if err := pass.End(); err != nil {
		r.skip("chunk pass", err)
		return
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		r.skip("encoder finish", err)
		return
	}
	defer cmdBuffer.Release()

	gs.queue.Submit(cmdBuffer)
	gs.surface.Present()
}

// skip drops the frame. Warnings are throttled since a lost surface
// usually fails every frame until the window is resized.
func (r *ChunkRenderer) skip(what string, err error) {
	r.skipped++
	if r.skipWarn.Allow() {
		r.logger.Warnf("skipping frame, %s: %v (%d skipped)", what, err, r.skipped)
	}
}

// Drawn is the number of chunk meshes drawn in the last frame.
func (r *ChunkRenderer) Drawn() int {
	return r.drawn
}

func rendererShutdownSystem(gs *GpuState, r *ChunkRenderer) {
	r.pipeline.Release()
	gs.release()
}
