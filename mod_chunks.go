package voxstream

import (
	"fmt"

	"github.com/gekko3d/voxstream/chunkrt/rt/gpu"
	"github.com/gekko3d/voxstream/chunkrt/rt/loader"
	"github.com/gekko3d/voxstream/chunkrt/rt/stream"
)

// ChunkStreamingModule keeps the chunks around the flying camera loaded.
// Install it after RendererModule so uploads reach the GPU; without a
// GpuState meshes are built but never uploaded.
type ChunkStreamingModule struct {
	Config StreamingConfig
}

type ChunkStreaming struct {
	System *stream.System
	Mode   string

	logger Logger
}

func (m ChunkStreamingModule) Install(app *App, cmd *Commands) {
	logger := app.Logger()

	var uploader loader.Uploader
	if gs := getResource[GpuState](app); gs != nil {
		uploader = gpu.NewUploader(gs.device)
	}

	l, err := newLoader(m.Config, uploader, logger)
	if err != nil {
		cmd.Fail(fmt.Errorf("chunk loader: %w", err))
		return
	}

	// a bounded cache smaller than the window gets a smaller radius
	chunks := &ChunkStreaming{
		System: stream.New(l, m.Config.Radius, logger),
		Mode:   m.Config.Mode,
		logger: logger,
	}
	cmd.AddResources(chunks)

	if hasResource[Input](app) {
		app.UseSystem(System(chunkKeysSystem).InStage(Update).RunAlways())
	}
	app.UseSystem(
		System(chunkStreamingSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(System(chunkShutdownSystem).InStage(PostRender).InState(OnExit(app.finalState)))
	}
}

func newLoader(cfg StreamingConfig, uploader loader.Uploader, logger Logger) (loader.Loader, error) {
	switch cfg.Mode {
	case ModeThreaded, "":
		return loader.NewThreaded(loader.Options{
			Workers:      cfg.Workers,
			BatchSize:    cfg.BatchSize,
			ResultBuffer: cfg.ResultBuffer,
			Uploader:     uploader,
			Logger:       logger,
		}), nil
	case ModeBounded:
		return loader.NewBounded(loader.BoundedOptions{
			Capacity: cfg.CacheCapacity,
			Uploader: uploader,
			Logger:   logger,
		})
	}
	return nil, fmt.Errorf("%w: streaming mode %q", ErrInvalidConfig, cfg.Mode)
}

func chunkStreamingSystem(fly *FlyingCamera, chunks *ChunkStreaming) {
	pos := fly.Camera.Position
	chunks.System.UpdatePosition(pos.X(), pos.Z())
	chunks.System.Frame()
}

// chunkKeysSystem: +/- change the radius, F3 toggles debug logging.
func chunkKeysSystem(input *Input, chunks *ChunkStreaming) {
	radius := chunks.System.Radius()
	switch {
	case input.JustPressed[KeyEqual]:
		chunks.System.SetRadius(radius + 1)
	case input.JustPressed[KeyMinus] && radius > 1:
		chunks.System.SetRadius(radius - 1)
	}
	if input.JustPressed[KeyF3] {
		chunks.logger.SetDebug(!chunks.logger.DebugEnabled())
		chunks.logger.Infof("chunk stats: %s", chunks.System.Loader().Stats())
	}
}

func chunkShutdownSystem(chunks *ChunkStreaming) {
	chunks.logger.Infof("closing chunk loader: %s", chunks.System.Loader().Stats())
	chunks.System.Close()
}
