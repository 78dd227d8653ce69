package main

import (
	"log"
	"os"
	"runtime"

	"github.com/gekko3d/voxstream"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli/v2"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	app := &cli.App{
		Name:  "chunkrt",
		Usage: "fly over an endless voxel terrain streamed in chunks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.IntFlag{Name: "radius", Aliases: []string{"r"}, Usage: "chunk loading radius"},
			&cli.StringFlag{Name: "mode", Usage: "loader: threaded or bounded"},
			&cli.IntFlag{Name: "workers", Usage: "generation and meshing workers, 0 for one per core"},
			&cli.IntFlag{Name: "capacity", Usage: "bounded cache capacity in chunks"},
			&cli.Uint64Flag{Name: "frames", Usage: "exit after this many frames"},
			&cli.BoolFlag{Name: "debug", Usage: "debug logging"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := voxstream.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("radius") {
		cfg.Streaming.Radius = int32(c.Int("radius"))
	}
	if c.IsSet("mode") {
		cfg.Streaming.Mode = c.String("mode")
	}
	if c.IsSet("workers") {
		cfg.Streaming.Workers = c.Int("workers")
	}
	if c.IsSet("capacity") {
		cfg.Streaming.CacheCapacity = c.Int("capacity")
	}
	if c.IsSet("debug") {
		cfg.Log.Debug = c.Bool("debug")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return voxstream.NewAppBuilder().
		UseStates(voxstream.StateStreaming, voxstream.StateShutdown).
		MaxFrames(c.Uint64("frames")).
		UseModule(
			voxstream.LoggingModule{Prefix: cfg.Log.Prefix, Debug: cfg.Log.Debug},
			voxstream.TimeModule{TickRate: cfg.Camera.TickRate},
			voxstream.NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
			voxstream.InputModule{},
			voxstream.FlyingCameraModule{
				Position:    mgl32.Vec3(cfg.Camera.Position),
				Speed:       cfg.Camera.Speed,
				Sensitivity: cfg.Camera.Sensitivity,
				Fov:         cfg.Camera.Fov,
				Near:        cfg.Camera.Near,
				Far:         cfg.Camera.Far,
			},
			voxstream.RendererModule{},
			voxstream.ChunkStreamingModule{Config: cfg.Streaming},
		).
		Build().
		Run()
}
