package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec is the 2D vector type shared with the underlying solver.
type Vec = cp.Vector

// Transform is a rigid placement: rotate by Angle, then translate by Position.
type Transform struct {
	Position Vec
	Angle    float64
}

// Apply maps a point from the transform's local frame into its parent frame.
func (t Transform) Apply(p Vec) Vec {
	return t.Position.Add(p.Rotate(cp.ForAngle(t.Angle)))
}

// Compose returns the transform equivalent to applying local first, then t.
func (t Transform) Compose(local Transform) Transform {
	return Transform{
		Position: t.Apply(local.Position),
		Angle:    t.Angle + local.Angle,
	}
}

// Block is one rounded square of a compound body, fixed in its owner's frame.
type Block struct {
	Local Transform
}

// Material is the per-shape surface and mass description.
type Material struct {
	Density     float64
	Restitution float64
	Friction    float64
}

// BodyDef describes a compound body to be added to a World.
type BodyDef struct {
	Blocks          []Block
	Material        Material
	Pose            Transform
	Velocity        Vec
	AngularVelocity float64
	// NeverSleep keeps the body awake so resting pieces keep colliding exactly where they lie.
	NeverSleep bool
	// Margin is the collision skin around each block shape.
	Margin float64
}

// BlockGeometry is the rounded-square shape shared by every block.
type BlockGeometry struct {
	HalfSize       float64
	CornerRadius   float64
	EdgesPerCorner int
}

// Outline returns the convex outline of a block centred on the origin, counter-clockwise,
// with EdgesPerCorner segments per rounded corner.
func (g BlockGeometry) Outline() []Vec {
	inner := g.HalfSize - g.CornerRadius
	corner := make([]Vec, 0, g.EdgesPerCorner+1)
	for n := 0; n <= g.EdgesPerCorner; n++ {
		angle := float64(n) * math.Pi / 2 / float64(g.EdgesPerCorner)
		corner = append(corner, Vec{
			X: inner + g.CornerRadius*math.Cos(angle),
			Y: inner + g.CornerRadius*math.Sin(angle),
		})
	}

	points := make([]Vec, 0, 4*len(corner))
	points = append(points, corner...)
	for _, p := range corner {
		points = append(points, Vec{X: -p.Y, Y: p.X})
	}
	for _, p := range corner {
		points = append(points, Vec{X: -p.X, Y: -p.Y})
	}
	for _, p := range corner {
		points = append(points, Vec{X: p.Y, Y: -p.X})
	}
	return points
}
