package waves

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrOutOfRange is returned by Disturb for cells too close to the grid
// boundary. Disturbing such a cell would push the impulse into boundary
// samples, which the finite-difference stencil relies on staying at zero.
var ErrOutOfRange = fmt.Errorf("waves: disturb target out of range")

// HeightField is a discretized 2D scalar height field evolving under a
// damped wave equation. Heights live in two buffers (previous and current
// solution); the explicit three-term recurrence writes the next solution
// over the previous one and swaps. Normals are re-derived from the current
// heights after every step.
//
// The field is single-writer: Update and Disturb mutate it, everything
// else is a read-only snapshot accessor safe to call once Update has
// returned for the tick.
type HeightField struct {
	rows, cols int

	vertexCount   int
	triangleCount int

	timeStep    float32
	spatialStep float32

	// recurrence coefficients, fixed at construction
	k1, k2, k3 float32

	// fixed-step accumulator for Update
	t float32

	prev    []mgl32.Vec3
	curr    []mgl32.Vec3
	normals []mgl32.Vec3
}

// New builds a flat height field of rows x cols samples spaced spatialStep
// apart, stepping the wave recurrence every timeStep seconds. Argument
// order is positional: (rows, cols, spatialStep, timeStep, speed, damping).
//
// The explicit scheme is conditionally stable; parameter sets outside the
// stable regime are rejected rather than left to blow up mid-run.
func New(rows, cols int, spatialStep, timeStep, speed, damping float32) (*HeightField, error) {
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("waves: grid must be at least 3x3, got %dx%d", rows, cols)
	}
	if spatialStep <= 0 || timeStep <= 0 {
		return nil, fmt.Errorf("waves: spatial step and time step must be positive")
	}

	maxSpeed := spatialStep / (2 * timeStep) * math32.Sqrt(damping*timeStep+2)
	if speed <= 0 || speed >= maxSpeed {
		return nil, fmt.Errorf("waves: speed %v outside stable range (0, %v)", speed, maxSpeed)
	}

	d := damping*timeStep + 2
	e := (speed * speed) * (timeStep * timeStep) / (spatialStep * spatialStep)

	hf := &HeightField{
		rows:          rows,
		cols:          cols,
		vertexCount:   rows * cols,
		triangleCount: (rows - 1) * (cols - 1) * 2,
		timeStep:      timeStep,
		spatialStep:   spatialStep,
		k1:            (damping*timeStep - 2) / d,
		k2:            (4 - 8*e) / d,
		k3:            (2 * e) / d,
		prev:          make([]mgl32.Vec3, rows*cols),
		curr:          make([]mgl32.Vec3, rows*cols),
		normals:       make([]mgl32.Vec3, rows*cols),
	}

	halfWidth := 0.5 * float32(cols-1) * spatialStep
	halfDepth := 0.5 * float32(rows-1) * spatialStep
	for i := 0; i < rows; i++ {
		z := halfDepth - float32(i)*spatialStep
		for j := 0; j < cols; j++ {
			x := -halfWidth + float32(j)*spatialStep
			idx := i*cols + j
			hf.prev[idx] = mgl32.Vec3{x, 0, z}
			hf.curr[idx] = mgl32.Vec3{x, 0, z}
			hf.normals[idx] = mgl32.Vec3{0, 1, 0}
		}
	}

	return hf, nil
}

// Disturb raises the height at (row, col) by magnitude and its four
// orthogonal neighbors by a quarter of it, a diamond-shaped impulse
// approximating a droplet impact. The impulse is written into both height
// buffers so the cell starts with zero vertical velocity and decays from
// the next step on.
//
// Cells within one sample of any boundary are rejected with ErrOutOfRange.
func (hf *HeightField) Disturb(row, col int, magnitude float32) error {
	if row <= 1 || row >= hf.rows-2 || col <= 1 || col >= hf.cols-2 {
		return fmt.Errorf("%w: cell (%d,%d) in %dx%d grid", ErrOutOfRange, row, col, hf.rows, hf.cols)
	}

	quarterMag := 0.25 * magnitude
	center := row*hf.cols + col

	hf.raise(center, magnitude)
	hf.raise(center+1, quarterMag)
	hf.raise(center-1, quarterMag)
	hf.raise(center+hf.cols, quarterMag)
	hf.raise(center-hf.cols, quarterMag)
	return nil
}

func (hf *HeightField) raise(idx int, amount float32) {
	hf.curr[idx][1] += amount
	hf.prev[idx][1] += amount
}

// Update accumulates elapsed time and runs one recurrence step per full
// internal time step accumulated, so the simulation rate is independent of
// the caller's frame rate. A call may run several steps, or none.
func (hf *HeightField) Update(dt float32) {
	hf.t += dt
	for hf.t >= hf.timeStep {
		hf.step()
		hf.t -= hf.timeStep
	}
}

func (hf *HeightField) step() {
	// The previous buffer is overwritten with the next solution and the
	// buffers swap, so "previous" data is consumed exactly when it is
	// replaced. Boundary samples are never written and stay at zero.
	for i := 1; i < hf.rows-1; i++ {
		for j := 1; j < hf.cols-1; j++ {
			idx := i*hf.cols + j
			hf.prev[idx][1] = hf.k1*hf.prev[idx][1] +
				hf.k2*hf.curr[idx][1] +
				hf.k3*(hf.curr[idx+hf.cols][1]+
					hf.curr[idx-hf.cols][1]+
					hf.curr[idx+1][1]+
					hf.curr[idx-1][1])
		}
	}
	hf.prev, hf.curr = hf.curr, hf.prev

	hf.updateNormals()
}

// updateNormals re-derives per-vertex normals from the current heights:
// central differences in the interior, one-sided differences at the
// boundary rows and columns.
func (hf *HeightField) updateNormals() {
	for i := 0; i < hf.rows; i++ {
		for j := 0; j < hf.cols; j++ {
			jl, jr := j-1, j+1
			if jl < 0 {
				jl = 0
			}
			if jr > hf.cols-1 {
				jr = hf.cols - 1
			}
			it, ib := i-1, i+1
			if it < 0 {
				it = 0
			}
			if ib > hf.rows-1 {
				ib = hf.rows - 1
			}

			spanX := float32(jr-jl) * hf.spatialStep
			spanZ := float32(ib-it) * hf.spatialStep

			dhdx := (hf.curr[i*hf.cols+jr][1] - hf.curr[i*hf.cols+jl][1]) / spanX
			dhdz := (hf.curr[it*hf.cols+j][1] - hf.curr[ib*hf.cols+j][1]) / spanZ

			nx, ny, nz := -dhdx, float32(1), -dhdz
			inv := 1 / math32.Sqrt(nx*nx+ny*ny+nz*nz)
			hf.normals[i*hf.cols+j] = mgl32.Vec3{nx * inv, ny * inv, nz * inv}
		}
	}
}

func (hf *HeightField) RowCount() int    { return hf.rows }
func (hf *HeightField) ColumnCount() int { return hf.cols }
func (hf *HeightField) VertexCount() int { return hf.vertexCount }

// TriangleCount reports the triangle count of the grid tessellation backing
// the field, two per cell.
func (hf *HeightField) TriangleCount() int { return hf.triangleCount }

// Width is the spatial extent along X, Depth along Z. Both are used by the
// renderer to map positions onto texture coordinates.
func (hf *HeightField) Width() float32 { return float32(hf.cols-1) * hf.spatialStep }
func (hf *HeightField) Depth() float32 { return float32(hf.rows-1) * hf.spatialStep }

// Position returns the current solution sample i (row-major, row i/cols,
// column i%cols).
func (hf *HeightField) Position(i int) mgl32.Vec3 { return hf.curr[i] }

// Normal returns the unit surface normal at sample i.
func (hf *HeightField) Normal(i int) mgl32.Vec3 { return hf.normals[i] }
