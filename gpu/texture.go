package gpu

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/stat/distuv"
)

// Procedural diffuse maps. Deterministic noise keeps the textures
// stable across runs.

func noiseSource(seed uint64) distuv.Uniform {
	return distuv.Uniform{Min: 0, Max: 1, Src: rand64(seed)}
}

// rand64 is a splitmix64 stream satisfying distuv's rand source.
type rand64 uint64

func (r rand64) Uint64() (v uint64) {
	s := uint64(r) + 0x9e3779b97f4a7c15
	s = (s ^ (s >> 30)) * 0xbf58476d1ce4e5b9
	s = (s ^ (s >> 27)) * 0x94d049bb133111eb
	return s ^ (s >> 31)
}

func (r rand64) Seed(seed uint64) {}

// GrassTexture is mottled green noise.
func GrassTexture(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := noiseSource(uint64(y*size+x)).Rand()
			g := uint8(110 + 60*u)
			img.SetRGBA(x, y, color.RGBA{R: g / 3, G: g, B: g / 4, A: 255})
		}
	}
	return img
}

// WaterTexture is a banded blue gradient with low-amplitude noise; the
// water material scrolls it every frame through its transform.
func WaterTexture(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		band := float64(0.5 + 0.5*math32.Sin(float32(y)/float32(size)*8*math32.Pi))
		for x := 0; x < size; x++ {
			u := noiseSource(uint64(x*size+y)).Rand()
			b := uint8(170 + 50*band + 20*u)
			img.SetRGBA(x, y, color.RGBA{R: 30, G: uint8(90 + 30*band), B: b, A: 255})
		}
	}
	return img
}

// StoneTexture is grey noise with darker mortar lines on a brick grid.
func StoneTexture(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	brick := size / 8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := noiseSource(uint64(y)*2654435761 + uint64(x)).Rand()
			v := uint8(130 + 50*u)
			row := y / brick
			xo := x
			if row%2 == 1 {
				xo = x + brick/2
			}
			if y%brick == 0 || xo%(brick*2) == 0 {
				v = v / 2
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// RoofTexture is dark slate with a slight red cast.
func RoofTexture(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := noiseSource(uint64(x)*40503 + uint64(y)).Rand()
			v := uint8(70 + 30*u)
			img.SetRGBA(x, y, color.RGBA{R: v + 25, G: v / 2, B: v / 2, A: 255})
		}
	}
	return img
}
