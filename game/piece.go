package game

import (
	"image/color"

	"github.com/plus3/rigidtris/physics"
)

// Piece is one rigid compound of blocks living in the physics world. The block list is
// kept next to the handle from construction, so callers never need to recover it from
// the body.
type Piece struct {
	Handle physics.Handle
	Blocks []physics.Block
	Color  color.RGBA
}

// BlockHeights returns the world y of every block centre, in block order.
func (p Piece) BlockHeights(w *physics.World) []float64 {
	centers := w.BlockCenters(p.Handle)
	heights := make([]float64, len(centers))
	for i, c := range centers {
		heights[i] = c.Y
	}
	return heights
}

// View is a renderer-facing snapshot of a single piece.
type View struct {
	Handle physics.Handle
	Color  color.RGBA
	Pose   physics.Transform
	// Blocks holds the world transform of each block.
	Blocks []physics.Transform
}

func (p Piece) view(w *physics.World) View {
	pose := w.Pose(p.Handle)
	blocks := make([]physics.Transform, len(p.Blocks))
	for i, b := range p.Blocks {
		blocks[i] = pose.Compose(b.Local)
	}
	return View{
		Handle: p.Handle,
		Color:  p.Color,
		Pose:   pose,
		Blocks: blocks,
	}
}
