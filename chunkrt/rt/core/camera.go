package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MovementDelta is the input gathered for one fixed simulation tick.
// Directional fields are magnitudes in [0,1]; Yaw and Pitch are radians.
type MovementDelta struct {
	Forward  float32
	Backward float32
	Left     float32
	Right    float32
	Up       float32
	Down     float32
	Yaw      float32
	Pitch    float32
}

func (m *MovementDelta) Reset() {
	*m = MovementDelta{}
}

func (m MovementDelta) Idle() bool {
	return m == MovementDelta{}
}

var maxPitch = mgl32.DegToRad(89)

// Camera is a Y-up flying camera.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Speed    float32

	FovY float32 // degrees
	Near float32
	Far  float32
}

func NewCamera(position mgl32.Vec3) *Camera {
	return &Camera{
		Position: position,
		Yaw:      math.Pi / 2,
		Pitch:    0,
		Speed:    50,
		FovY:     60,
		Near:     0.01,
		Far:      1000,
	}
}

// Forward is the horizontal heading used for movement.
func (c *Camera) Forward() mgl32.Vec3 {
	s, co := math.Sincos(float64(c.Yaw))
	return mgl32.Vec3{float32(co), 0, float32(s)}
}

func (c *Camera) Right() mgl32.Vec3 {
	s, co := math.Sincos(float64(c.Yaw))
	return mgl32.Vec3{float32(-s), 0, float32(co)}
}

// LookDir includes pitch.
func (c *Camera) LookDir() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.Yaw))
	sp, cp := math.Sincos(float64(c.Pitch))
	return mgl32.Vec3{float32(cy * cp), float32(sp), float32(sy * cp)}.Normalize()
}

// Apply advances the camera by one tick of input. dt is in seconds.
func (c *Camera) Apply(m MovementDelta, dt float32) {
	c.Yaw += m.Yaw
	c.Pitch = mgl32.Clamp(c.Pitch+m.Pitch, -maxPitch, maxPitch)

	horizontal := c.Forward().Mul(m.Forward - m.Backward).
		Add(c.Right().Mul(m.Right - m.Left))
	if horizontal.Len() > 0 {
		horizontal = horizontal.Normalize()
	}
	move := horizontal.Add(mgl32.Vec3{0, m.Up - m.Down, 0})
	c.Position = c.Position.Add(move.Mul(c.Speed * dt))
}

// ChunkCoord is the chunk column under the camera.
func (c *Camera) ChunkCoord() ChunkCoord {
	return ChunkCoordFromWorld(c.Position.X(), c.Position.Z())
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.LookDir()), mgl32.Vec3{0, 1, 0})
}

// depthCorrection remaps OpenGL clip depth [-1,1] to the [0,1] range webgpu expects.
var depthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return depthCorrection.Mul4(mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far))
}

func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}
