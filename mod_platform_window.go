package voxstream

import "fmt"

// Teardown runs after Finale so GPU objects are released before the window.
var Teardown = Stage{Name: "Teardown"}

// PlatformWindowModule creates the shared GLFW window. Install is
// idempotent: an existing WindowState resource is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "voxstream"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if hasResource[WindowState](app) {
		return
	}

	ws, err := createWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		cmd.Fail(fmt.Errorf("window: %w", err))
		return
	}
	cmd.AddResources(ws)

	app.UseStage(Teardown, AfterStage(Finale))
	app.UseSystem(System(windowCloseSystem).InStage(PreUpdate).RunAlways())
	if app.stateful {
		app.UseSystem(System(windowDestroySystem).InStage(Teardown).InState(OnExit(app.finalState)))
	}
}

func windowCloseSystem(s *WindowState, cmd *Commands) {
	if s.ShouldClose() {
		cmd.Quit()
	}
}

func windowDestroySystem(s *WindowState) {
	s.destroy()
}
