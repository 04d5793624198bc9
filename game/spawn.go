package game

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/physics"
	"github.com/plus3/rigidtris/polyomino"
)

// Spawner builds new pieces from a polyomino library.
type Spawner struct {
	Layouts  []polyomino.Layout
	Spacing  float64
	Origin   physics.Vec
	Material physics.Material
	Margin   float64
}

func NewSpawner(cfg config.Config, layouts []polyomino.Layout) Spawner {
	spacing := cfg.BlockSpacing()
	return Spawner{
		Layouts: layouts,
		Spacing: spacing,
		Origin: physics.Vec{
			X: (cfg.Arena.Left + cfg.Arena.Right) / 2,
			Y: cfg.Arena.Top - cfg.Pieces.SpawnDepth*spacing,
		},
		Material: pieceMaterial(cfg),
		Margin:   cfg.Physics.Margin,
	}
}

// Blocks lays out one block per cell, scaled by the spacing and shifted so the mean of
// the block centres, which is the compound's centre of mass, sits on the origin.
func (s Spawner) Blocks(layout polyomino.Layout) []physics.Block {
	var mean physics.Vec
	for _, c := range layout {
		mean.X += float64(c.Col)
		mean.Y += float64(c.Row)
	}
	mean = mean.Mult(1 / float64(len(layout)))

	blocks := make([]physics.Block, len(layout))
	for i, c := range layout {
		blocks[i] = physics.Block{Local: physics.Transform{
			Position: physics.Vec{
				X: (float64(c.Col) - mean.X) * s.Spacing,
				Y: (float64(c.Row) - mean.Y) * s.Spacing,
			},
		}}
	}
	return blocks
}

// Spawn registers a random piece at the spawn point with a random rotation and colour.
// All randomness comes from rng.
func (s Spawner) Spawn(w *physics.World, rng *rand.Rand) Piece {
	if len(s.Layouts) == 0 {
		panic("game: spawner has no layouts")
	}

	layout := s.Layouts[rng.IntN(len(s.Layouts))]
	angle := rng.Float64() * 2 * math.Pi
	blocks := s.Blocks(layout)

	h := w.AddBody(physics.BodyDef{
		Blocks:     blocks,
		Material:   s.Material,
		Pose:       physics.Transform{Position: s.Origin, Angle: angle},
		NeverSleep: true,
		Margin:     s.Margin,
	})

	return Piece{
		Handle: h,
		Blocks: blocks,
		Color:  randomColor(rng),
	}
}

// randomColor avoids the darkest channel values so pieces stay visible on black.
func randomColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(64 + rng.IntN(192)),
		G: uint8(64 + rng.IntN(192)),
		B: uint8(64 + rng.IntN(192)),
		A: 255,
	}
}

func pieceMaterial(cfg config.Config) physics.Material {
	return physics.Material{
		Density:     cfg.Pieces.Density,
		Restitution: cfg.Pieces.Restitution,
		Friction:    cfg.Pieces.Friction,
	}
}
