package core

import "github.com/go-gl/mathgl/mgl32"

// MaxLights is the size of the light array in the per-pass constant
// block. The shader declares the same fixed-size array.
const MaxLights = 16

// Light matches the shader-side struct layout: three vec3 payloads,
// each padded to 16 bytes by the scalar that follows it. Directional
// lights use Strength and Direction, point lights add Position and the
// falloff range, spot lights use everything.
type Light struct {
	Strength     mgl32.Vec3
	FalloffStart float32
	Direction    mgl32.Vec3
	FalloffEnd   float32
	Position     mgl32.Vec3
	SpotPower    float32
}

// DirectionalLight fills only the fields a directional light reads.
func DirectionalLight(direction, strength mgl32.Vec3) Light {
	return Light{
		Strength:  strength,
		Direction: direction.Normalize(),
	}
}
