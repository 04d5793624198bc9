// Package physics owns the rigid-body simulation: a Chipmunk2D space bounded by a floor
// and two walls, plus a generation-checked arena of compound bodies built from blocks.
//
// Callers only ever hold Handles. Looking up a handle whose body is gone is a broken
// invariant and panics.
package physics

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/plus3/rigidtris/config"
)

type bodyKind int

const (
	kindBoundary bodyKind = iota
	kindCompound
)

type body struct {
	kind       bodyKind
	cp         *cp.Body
	shapes     []*cp.Shape
	blocks     []Block
	neverSleep bool
}

// World is the physics world of one game session.
type World struct {
	space      *cp.Space
	bodies     arena
	boundaries []Handle
	outline    []Vec
	geometry   BlockGeometry
}

// NewWorld creates a world with gravity and the three static boundaries described by cfg.
func NewWorld(cfg config.Config) *World {
	space := cp.NewSpace()
	space.Iterations = uint(cfg.Physics.Iterations)
	space.SetGravity(Vec{X: 0, Y: -cfg.Physics.Gravity})

	geometry := BlockGeometry{
		HalfSize:       cfg.BlockSize() / 2,
		CornerRadius:   cfg.CornerRadius(),
		EdgesPerCorner: cfg.Blocks.EdgesPerCorner,
	}

	w := &World{
		space:    space,
		geometry: geometry,
		outline:  geometry.Outline(),
	}

	// Boundaries are thick segments pushed outward by their radius so the inner face sits
	// exactly on the arena edge, and long enough to behave like half-planes.
	a := cfg.Arena
	thickness := math.Max(a.Width(), a.Height())
	reach := 10 * thickness
	wall := Material{Restitution: cfg.Physics.WallRestitution, Friction: cfg.Physics.WallFriction}

	w.boundaries = []Handle{
		w.addBoundary(Vec{X: a.Left - reach, Y: a.Bottom - thickness}, Vec{X: a.Right + reach, Y: a.Bottom - thickness}, thickness, wall),
		w.addBoundary(Vec{X: a.Left - thickness, Y: a.Bottom - reach}, Vec{X: a.Left - thickness, Y: a.Top + reach}, thickness, wall),
		w.addBoundary(Vec{X: a.Right + thickness, Y: a.Bottom - reach}, Vec{X: a.Right + thickness, Y: a.Top + reach}, thickness, wall),
	}

	return w
}

func (w *World) addBoundary(from, to Vec, radius float64, m Material) Handle {
	static := cp.NewStaticBody()
	w.space.AddBody(static)

	shape := cp.NewSegment(static, from, to, radius)
	shape.SetElasticity(m.Restitution)
	shape.SetFriction(m.Friction)
	w.space.AddShape(shape)

	return w.bodies.insert(&body{
		kind:   kindBoundary,
		cp:     static,
		shapes: []*cp.Shape{shape},
	})
}

// Geometry returns the block shape used for every compound body.
func (w *World) Geometry() BlockGeometry {
	return w.geometry
}

// Boundaries returns the floor, left wall and right wall handles, in that order.
func (w *World) Boundaries() []Handle {
	return slices.Clone(w.boundaries)
}

// IsBoundary reports whether h names one of the static boundaries.
func (w *World) IsBoundary(h Handle) bool {
	return slices.Contains(w.boundaries, h)
}

// Len returns the number of live bodies, boundaries included.
func (w *World) Len() int {
	return w.bodies.len()
}

// Contains reports whether h names a live body.
func (w *World) Contains(h Handle) bool {
	_, ok := w.bodies.get(h)
	return ok
}

// Bodies iterates the handles of every live compound body.
func (w *World) Bodies() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for h, b := range w.bodies.all() {
			if b.kind != kindCompound {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}

// AddBody registers a dynamic compound body and returns its handle.
func (w *World) AddBody(def BodyDef) Handle {
	if len(def.Blocks) == 0 {
		panic("physics: cannot add a body without blocks")
	}

	// Mass is accumulated from shape densities, so the pose is applied once every shape
	// is attached and the centre of gravity is known.
	rb := cp.NewBody(0, 0)
	w.space.AddBody(rb)

	shapes := make([]*cp.Shape, 0, len(def.Blocks))
	for _, block := range def.Blocks {
		verts := make([]Vec, len(w.outline))
		for i, p := range w.outline {
			verts[i] = block.Local.Apply(p)
		}

		shape := cp.NewPolyShape(rb, len(verts), verts, cp.NewTransformIdentity(), def.Margin)
		shape.SetDensity(def.Material.Density)
		shape.SetElasticity(def.Material.Restitution)
		shape.SetFriction(def.Material.Friction)
		w.space.AddShape(shape)
		shapes = append(shapes, shape)
	}

	rb.SetAngle(def.Pose.Angle)
	rb.SetPosition(def.Pose.Position)
	rb.SetVelocityVector(def.Velocity)
	rb.SetAngularVelocity(def.AngularVelocity)

	return w.bodies.insert(&body{
		kind:       kindCompound,
		cp:         rb,
		shapes:     shapes,
		blocks:     slices.Clone(def.Blocks),
		neverSleep: def.NeverSleep,
	})
}

// RemoveBody takes a compound body out of the simulation.
func (w *World) RemoveBody(h Handle) {
	b := w.mustGet(h)
	if b.kind == kindBoundary {
		panic(fmt.Sprintf("physics: %v is a boundary and cannot be removed", h))
	}

	for _, shape := range b.shapes {
		w.space.RemoveShape(shape)
	}
	w.space.RemoveBody(b.cp)
	w.bodies.remove(h)
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	for _, b := range w.bodies.all() {
		if b.neverSleep {
			b.cp.Activate()
		}
	}
	w.space.Step(dt)
}

// Pose returns the transform of the body's frame origin.
func (w *World) Pose(h Handle) Transform {
	rb := w.mustGet(h).cp
	return Transform{Position: rb.Position(), Angle: rb.Angle()}
}

// Velocity returns the linear velocity of the body's centre of mass.
func (w *World) Velocity(h Handle) Vec {
	return w.mustGet(h).cp.Velocity()
}

// AngularVelocity returns the body's spin in radians per second, counter-clockwise positive.
func (w *World) AngularVelocity(h Handle) float64 {
	return w.mustGet(h).cp.AngularVelocity()
}

// CenterOfMass returns the body's centre of mass in world coordinates.
func (w *World) CenterOfMass(h Handle) Vec {
	rb := w.mustGet(h).cp
	return rb.LocalToWorld(rb.CenterOfGravity())
}

// Mass returns the body's total mass.
func (w *World) Mass(h Handle) float64 {
	return w.mustGet(h).cp.Mass()
}

// Blocks returns a copy of the body's blocks in local coordinates.
func (w *World) Blocks(h Handle) []Block {
	b := w.mustGet(h)
	if b.kind != kindCompound {
		panic(fmt.Sprintf("physics: %v is not a compound of blocks", h))
	}
	return slices.Clone(b.blocks)
}

// BlockCenters returns the world position of every block of the body, in block order.
func (w *World) BlockCenters(h Handle) []Vec {
	b := w.mustGet(h)
	pose := Transform{Position: b.cp.Position(), Angle: b.cp.Angle()}

	centers := make([]Vec, len(b.blocks))
	for i, block := range b.blocks {
		centers[i] = pose.Apply(block.Local.Position)
	}
	return centers
}

// SetVelocity overwrites the linear velocity of the centre of mass and the spin.
func (w *World) SetVelocity(h Handle, v Vec, angular float64) {
	rb := w.mustGet(h).cp
	rb.SetVelocityVector(v)
	rb.SetAngularVelocity(angular)
}

// ApplyImpulse applies a linear impulse through the centre of mass.
func (w *World) ApplyImpulse(h Handle, impulse Vec) {
	rb := w.mustGet(h).cp
	rb.ApplyImpulseAtWorldPoint(impulse, rb.LocalToWorld(rb.CenterOfGravity()))
}

// ApplyAngularImpulse changes the angular momentum by j (counter-clockwise positive).
func (w *World) ApplyAngularImpulse(h Handle, j float64) {
	rb := w.mustGet(h).cp
	rb.SetAngularVelocity(rb.AngularVelocity() + j/rb.Moment())
}

func (w *World) mustGet(h Handle) *body {
	b, ok := w.bodies.get(h)
	if !ok {
		panic(fmt.Sprintf("physics: %v is not a live body", h))
	}
	return b
}
