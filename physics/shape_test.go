package physics_test

import (
	"math"
	"testing"

	"github.com/plus3/rigidtris/physics"
	"github.com/stretchr/testify/assert"
)

func TestOutline(t *testing.T) {
	g := physics.BlockGeometry{HalfSize: 0.5, CornerRadius: 0.1, EdgesPerCorner: 3}
	points := g.Outline()

	assert.Len(t, points, 16)
	for _, p := range points {
		assert.LessOrEqual(t, math.Abs(p.X), 0.5+1e-12)
		assert.LessOrEqual(t, math.Abs(p.Y), 0.5+1e-12)
	}

	// First corner starts on the right edge and ends on the top edge.
	assert.InDelta(t, 0.5, points[0].X, 1e-12)
	assert.InDelta(t, 0.4, points[0].Y, 1e-12)
	assert.InDelta(t, 0.4, points[3].X, 1e-12)
	assert.InDelta(t, 0.5, points[3].Y, 1e-12)

	// Counter-clockwise: every consecutive turn is a left turn.
	for i := range points {
		a, b, c := points[i], points[(i+1)%len(points)], points[(i+2)%len(points)]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		assert.GreaterOrEqual(t, cross, -1e-12)
	}
}

func TestTransform(t *testing.T) {
	tr := physics.Transform{Position: physics.Vec{X: 1, Y: 2}, Angle: math.Pi / 2}

	p := tr.Apply(physics.Vec{X: 1, Y: 0})
	assert.InDelta(t, 1, p.X, 1e-12)
	assert.InDelta(t, 3, p.Y, 1e-12)

	local := physics.Transform{Position: physics.Vec{X: 0, Y: 1}, Angle: math.Pi / 4}
	world := tr.Compose(local)
	assert.InDelta(t, 0, world.Position.X, 1e-12)
	assert.InDelta(t, 2, world.Position.Y, 1e-12)
	assert.InDelta(t, 3*math.Pi/4, world.Angle, 1e-12)
}

func TestHandle(t *testing.T) {
	var none physics.Handle
	assert.True(t, none.IsZero())
	assert.Equal(t, "body(none)", none.String())
}
