package game

import "github.com/plus3/rigidtris/physics"

// ControlSystem applies the player's intents to the controlled piece. Without a
// controlled piece both intents fall back to none, so nothing carries over to the
// next spawn.
type ControlSystem struct {
	Force  float64
	Torque float64
}

func (s *ControlSystem) Execute(frame *Frame) {
	g := frame.Game

	p, ok := g.Controlled()
	if !ok {
		g.state.Rotation = RotateNone
		g.state.Translation = MoveNone
		return
	}

	// The world is y-up, so a clockwise turn is a negative angular impulse.
	switch g.state.Rotation {
	case RotateClockwise:
		g.world.ApplyAngularImpulse(p.Handle, -s.Torque)
	case RotateCounterClockwise:
		g.world.ApplyAngularImpulse(p.Handle, s.Torque)
	}

	switch g.state.Translation {
	case MoveLeft:
		g.world.ApplyImpulse(p.Handle, physics.Vec{X: -s.Force})
	case MoveRight:
		g.world.ApplyImpulse(p.Handle, physics.Vec{X: s.Force})
	}
}

// LineClearSystem scores completed lines and fractures the pieces crossing them.
// Bands are handled one after the other, each against the pieces left by the previous.
type LineClearSystem struct {
	Detector     Detector
	Partitioner  Partitioner
	ScorePerLine int
}

func (s *LineClearSystem) Execute(frame *Frame) {
	g := frame.Game

	bands := s.Detector.Scan(g.world, g.pieces)
	if len(bands) == 0 {
		return
	}

	g.state.Score += s.ScorePerLine * len(bands)
	g.state.LinesCleared += len(bands)
	g.state.Controlled = 0
	g.observer.LinesCleared(bands, g.state.Score)

	for _, band := range bands {
		kept := make([]Piece, 0, len(g.pieces))
		var fragments []Piece
		for _, p := range g.pieces {
			if !s.Partitioner.RequiresSplit(g.world, p, band) {
				kept = append(kept, p)
				continue
			}
			parts := s.Partitioner.Split(g.world, p, band)
			g.state.Splits++
			g.observer.PieceSplit(p, parts)
			fragments = append(fragments, parts...)
		}
		g.setPieces(append(kept, fragments...))
	}
}

// StepSystem advances the physics world by the frame's fixed timestep.
type StepSystem struct{}

func (s *StepSystem) Execute(frame *Frame) {
	frame.Game.world.Step(frame.DeltaTime)
}
