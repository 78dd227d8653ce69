package voxstream

import (
	"github.com/gekko3d/voxstream/chunkrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyingCameraModule adds the viewer camera. Keyboard and mouse control
// is wired when InputModule and TimeModule are installed before it.
type FlyingCameraModule struct {
	Position    mgl32.Vec3
	Speed       float32
	Sensitivity float32 // degrees per pixel of mouse travel
	Fov         float32
	Near        float32
	Far         float32
}

// FlyingCamera is the viewer. Movement collects input between fixed ticks
// and is cleared once the ticks have consumed it.
type FlyingCamera struct {
	Camera      *core.Camera
	Movement    core.MovementDelta
	Sensitivity float32
}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	cam := core.NewCamera(m.Position)
	if m.Speed > 0 {
		cam.Speed = m.Speed
	}
	if m.Fov > 0 {
		cam.FovY = m.Fov
	}
	if m.Near > 0 {
		cam.Near = m.Near
	}
	if m.Far > 0 {
		cam.Far = m.Far
	}
	sensitivity := m.Sensitivity
	if sensitivity == 0 {
		sensitivity = 0.1
	}

	cmd.AddResources(&FlyingCamera{Camera: cam, Sensitivity: sensitivity})
	if hasResource[Input](app) {
		app.UseSystem(
			System(flyingCameraInputSystem).
				InStage(Update).
				RunAlways(),
		)
	}
	if hasResource[Time](app) {
		app.UseSystem(
			System(flyingCameraControlSystem).
				InStage(Update).
				RunAlways(),
		)
	}
}

func flyingCameraInputSystem(input *Input, fly *FlyingCamera, cmd *Commands) {
	if input.JustPressed[KeyEscape] {
		cmd.Quit()
	}
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}
	fly.gather(input)
}

// gather overwrites the directional keys and accumulates mouse look until
// the next tick applies it.
func (fly *FlyingCamera) gather(input *Input) {
	m := &fly.Movement
	m.Forward = axis(input.Pressed[KeyW])
	m.Backward = axis(input.Pressed[KeyS])
	m.Left = axis(input.Pressed[KeyA])
	m.Right = axis(input.Pressed[KeyD])
	m.Up = axis(input.Pressed[KeySpace])
	m.Down = axis(input.Pressed[KeyShift])

	if input.MouseCaptured {
		m.Yaw += mgl32.DegToRad(float32(input.MouseDeltaX) * fly.Sensitivity)
		m.Pitch -= mgl32.DegToRad(float32(input.MouseDeltaY) * fly.Sensitivity)
	}
}

func axis(pressed bool) float32 {
	if pressed {
		return 1
	}
	return 0
}

func flyingCameraControlSystem(t *Time, fly *FlyingCamera) {
	fly.step(t.Steps, t.FixedSeconds())
}

// step runs the due fixed ticks. Look rotation is applied on the first tick
// only, movement on each.
func (fly *FlyingCamera) step(steps int, dt float32) {
	if steps <= 0 {
		return
	}
	m := fly.Movement
	for i := 0; i < steps; i++ {
		fly.Camera.Apply(m, dt)
		m.Yaw, m.Pitch = 0, 0
	}
	fly.Movement.Reset()
}
