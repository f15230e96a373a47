package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-look camera with a Y-up world. View and projection
// are recomputed on demand from position and orientation.
type Camera struct {
	Position mgl32.Vec3
	yaw      float32
	pitch    float32

	fovY   float32
	aspect float32
	nearZ  float32
	farZ   float32
	proj   mgl32.Mat4
}

func NewCamera() *Camera {
	c := &Camera{Position: mgl32.Vec3{0, 2, -15}}
	c.SetLens(mgl32.DegToRad(45), 1, 1, 1000)
	return c
}

// SetLens rebuilds the projection matrix. Call it once at startup and
// again whenever the surface aspect ratio changes.
func (c *Camera) SetLens(fovY, aspect, nearZ, farZ float32) {
	c.fovY, c.aspect, c.nearZ, c.farZ = fovY, aspect, nearZ, farZ
	c.proj = mgl32.Perspective(fovY, aspect, nearZ, farZ)
}

func (c *Camera) NearZ() float32 { return c.nearZ }
func (c *Camera) FarZ() float32  { return c.farZ }

func (c *Camera) Proj() mgl32.Mat4 { return c.proj }

// Rotate adds yaw and pitch deltas in radians, clamping pitch short of
// the poles so Forward never degenerates against the up vector.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	const limit = math32.Pi/2 - 0.01
	c.yaw += dYaw
	c.pitch = mgl32.Clamp(c.pitch+dPitch, -limit, limit)
}

// Forward is the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	cp := math32.Cos(c.pitch)
	return mgl32.Vec3{
		cp * math32.Sin(c.yaw),
		math32.Sin(c.pitch),
		cp * math32.Cos(c.yaw),
	}
}

// Right is the unit strafe direction on the ground plane.
func (c *Camera) Right() mgl32.Vec3 {
	return mgl32.Vec3{math32.Cos(c.yaw), 0, -math32.Sin(c.yaw)}
}

// Walk moves along the view direction, Strafe along the right vector.
func (c *Camera) Walk(d float32)   { c.Position = c.Position.Add(c.Forward().Mul(d)) }
func (c *Camera) Strafe(d float32) { c.Position = c.Position.Add(c.Right().Mul(d)) }

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}
