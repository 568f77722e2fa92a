// Package geometry builds the tessellated flat meshes drawn by the renderer.
package geometry

import (
	"fmt"

	"paper-anamorph/internal/mathutil"
)

// Geometry holds an indexed triangle mesh in scene units.
type Geometry struct {
	Width     float64
	Height    float64
	Positions []mathutil.Vec3
	UVs       [][2]float64 // v points up: (0,0) bottom-left, (1,1) top-right
	Indices   [][3]int

	released bool
}

// Plane builds a width × height rectangle in the XY plane, centred on the
// origin with normal +Z, split into segX × segY quads.
func Plane(width, height float64, segX, segY int) (*Geometry, error) {
	if !(width > 0) || !(height > 0) {
		return nil, fmt.Errorf("geometry: plane size %gx%g must be positive", width, height)
	}
	if segX < 1 {
		segX = 1
	}
	if segY < 1 {
		segY = 1
	}

	g := &Geometry{
		Width:     width,
		Height:    height,
		Positions: make([]mathutil.Vec3, 0, (segX+1)*(segY+1)),
		UVs:       make([][2]float64, 0, (segX+1)*(segY+1)),
		Indices:   make([][3]int, 0, segX*segY*2),
	}

	// Rows run top to bottom, like the reference plane builders.
	for iy := 0; iy <= segY; iy++ {
		fy := float64(iy) / float64(segY)
		y := height/2 - fy*height
		for ix := 0; ix <= segX; ix++ {
			fx := float64(ix) / float64(segX)
			x := fx*width - width/2
			g.Positions = append(g.Positions, mathutil.Vec3{x, y, 0})
			g.UVs = append(g.UVs, [2]float64{fx, 1 - fy})
		}
	}

	row := segX + 1
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := iy*row + ix
			b := (iy+1)*row + ix
			c := (iy+1)*row + ix + 1
			d := iy*row + ix + 1
			g.Indices = append(g.Indices, [3]int{a, b, d}, [3]int{b, c, d})
		}
	}
	return g, nil
}

// Release drops the vertex buffers. A released geometry draws nothing.
func (g *Geometry) Release() {
	if g == nil {
		return
	}
	g.Positions = nil
	g.UVs = nil
	g.Indices = nil
	g.released = true
}

// Released reports whether Release has been called.
func (g *Geometry) Released() bool {
	return g != nil && g.released
}
