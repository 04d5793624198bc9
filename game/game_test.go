package game

import (
	"context"
	"image/color"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type recorder struct {
	spawned  int
	cleared  [][]Band
	scores   []int
	splits   int
	children int
	ticks    []uint64
	resets   int
}

func (r *recorder) PieceSpawned(Piece) { r.spawned++ }

func (r *recorder) LinesCleared(bands []Band, score int) {
	r.cleared = append(r.cleared, bands)
	r.scores = append(r.scores, score)
}

func (r *recorder) PieceSplit(_ Piece, fragments []Piece) {
	r.splits++
	r.children += len(fragments)
}

func (r *recorder) TickCompleted(tick uint64, _ time.Duration) { r.ticks = append(r.ticks, tick) }
func (r *recorder) Reset()                                     { r.resets++ }

func newTestGame(t *testing.T, opts ...Option) (*Game, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]Option{
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(clock.now),
	}, opts...)

	g, err := New(config.Default(), opts...)
	require.NoError(t, err)
	return g, clock
}

// place adds a scripted piece whose block (col, row) sits at pose.Apply(spacing*(col, row)).
func place(g *Game, pose physics.Transform, cells ...[2]int) Piece {
	spacing := g.cfg.BlockSpacing()
	locals := make([]physics.Vec, len(cells))
	for i, c := range cells {
		locals[i] = physics.Vec{X: spacing * float64(c[0]), Y: spacing * float64(c[1])}
	}
	return placeAt(g, pose, locals...)
}

// placeAt adds a scripted piece with blocks at arbitrary local offsets.
func placeAt(g *Game, pose physics.Transform, locals ...physics.Vec) Piece {
	blocks := make([]physics.Block, len(locals))
	for i, l := range locals {
		blocks[i] = physics.Block{Local: physics.Transform{Position: l}}
	}

	h := g.world.AddBody(physics.BodyDef{
		Blocks:   blocks,
		Material: pieceMaterial(g.cfg),
		Pose:     pose,
		Margin:   g.cfg.Physics.Margin,
	})
	p := Piece{Handle: h, Blocks: blocks, Color: color.RGBA{R: 200, G: 100, B: 50, A: 255}}
	g.addPiece(p)
	return p
}

// fillLine places four horizontal triominoes covering one full line at height y, the
// last one carrying an extra block on top.
func fillLine(g *Game, y float64) []Piece {
	spacing := g.cfg.BlockSpacing()
	var pieces []Piece
	for i := 0; i < 4; i++ {
		cells := [][2]int{{0, 0}, {1, 0}, {2, 0}}
		if i == 3 {
			cells = append(cells, [2]int{0, 1})
		}
		pose := physics.Transform{Position: physics.Vec{X: spacing/2 + float64(3*i)*spacing, Y: y}}
		pieces = append(pieces, place(g, pose, cells...))
	}
	return pieces
}

func TestNew(t *testing.T) {
	g, _ := newTestGame(t)

	assert.Equal(t, 3, g.World().Len())
	assert.Empty(t, g.Pieces())
	assert.Equal(t, State{}, g.State())
	_, ok := g.Controlled()
	assert.False(t, ok)

	cfg := config.Default()
	cfg.Lines.BlocksPerLine = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestTrySpawnCooldown(t *testing.T) {
	rec := &recorder{}
	g, clock := newTestGame(t, WithObserver(rec))

	require.True(t, g.TrySpawn())
	assert.Equal(t, 4, g.World().Len())
	require.Len(t, g.Pieces(), 1)

	p, ok := g.Controlled()
	require.True(t, ok)
	assert.Equal(t, g.Pieces()[0].Handle, p.Handle)

	before := g.State()
	clock.advance(749 * time.Millisecond)
	assert.False(t, g.TrySpawn())
	assert.Equal(t, 4, g.World().Len())
	assert.Equal(t, before, g.State())

	clock.advance(time.Millisecond)
	assert.True(t, g.TrySpawn())
	assert.Equal(t, 5, g.World().Len())
	assert.Equal(t, 2, g.State().Spawned)
	assert.Equal(t, 2, rec.spawned)

	last := g.Pieces()[1]
	assert.Equal(t, last.Handle, g.State().Controlled)
}

func TestSpawnDeterministic(t *testing.T) {
	a, _ := newTestGame(t)
	b, _ := newTestGame(t)

	require.True(t, a.TrySpawn())
	require.True(t, b.TrySpawn())

	pa, pb := a.Pieces()[0], b.Pieces()[0]
	assert.Equal(t, pa.Color, pb.Color)
	assert.Equal(t, pa.Blocks, pb.Blocks)
	assert.Equal(t, a.World().Pose(pa.Handle), b.World().Pose(pb.Handle))
}

func TestLineClear(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGame(t, WithObserver(rec))

	pieces := fillLine(g, 1)
	g.state.Controlled = pieces[0].Handle
	require.Equal(t, 7, g.World().Len())

	g.Update()

	assert.Equal(t, 10, g.Score())
	assert.Equal(t, 1, g.State().LinesCleared)
	assert.Equal(t, 4, g.State().Splits)
	assert.True(t, g.State().Controlled.IsZero())

	remaining := g.Pieces()
	require.Len(t, remaining, 1)
	assert.Len(t, remaining[0].Blocks, 1)
	assert.Equal(t, pieces[3].Color, remaining[0].Color)
	assert.Equal(t, 4, g.World().Len())

	for _, p := range pieces {
		assert.False(t, g.World().Contains(p.Handle))
	}

	require.Len(t, rec.cleared, 1)
	require.Len(t, rec.cleared[0], 1)
	assert.InDelta(t, 1.0, rec.cleared[0][0].Center, 1e-9)
	assert.Equal(t, []int{10}, rec.scores)
	assert.Equal(t, 4, rec.splits)
	assert.Equal(t, 1, rec.children)
}

func TestLineClearSlightlyUnevenLine(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGame(t, WithObserver(rec))
	spacing := g.cfg.BlockSpacing()

	// Twelve centres spread over 0.000..0.011, three per piece; the last piece also
	// carries a block well above the line.
	var last Piece
	for p := 0; p < 4; p++ {
		var locals []physics.Vec
		for col := 0; col < 3; col++ {
			i := 3*p + col
			locals = append(locals, physics.Vec{X: float64(col) * spacing, Y: float64(i) * 0.001})
		}
		if p == 3 {
			locals = append(locals, physics.Vec{Y: 1})
		}
		pose := physics.Transform{Position: physics.Vec{X: spacing/2 + float64(3*p)*spacing, Y: 0}}
		last = placeAt(g, pose, locals...)
	}

	g.Update()

	assert.Equal(t, 10, g.Score())
	require.Len(t, rec.cleared, 1)
	require.Len(t, rec.cleared[0], 1)
	assert.InDelta(t, 0.0055, rec.cleared[0][0].Center, 1e-9)
	assert.InDelta(t, 0.0055, rec.cleared[0][0].HalfWidth, 1e-9)

	remaining := g.Pieces()
	require.Len(t, remaining, 1)
	assert.Equal(t, []physics.Block{last.Blocks[3]}, remaining[0].Blocks)
	assert.Equal(t, 4, g.World().Len())
}

func TestLineClearAcrossTwoBands(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGame(t, WithObserver(rec))
	spacing := g.cfg.BlockSpacing()
	x0 := spacing / 2

	// A vertical I fills the first column of two stacked rows.
	tall := place(g, physics.Transform{Position: physics.Vec{X: x0, Y: 1}},
		[2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3})
	row := make([][2]int, 11)
	for i := range row {
		row[i] = [2]int{i, 0}
	}
	place(g, physics.Transform{Position: physics.Vec{X: x0 + spacing, Y: 1}}, row...)
	place(g, physics.Transform{Position: physics.Vec{X: x0 + spacing, Y: 1 + spacing}}, row...)

	g.Update()

	assert.Equal(t, 20, g.Score())
	assert.Equal(t, 2, g.State().LinesCleared)
	assert.Equal(t, 4, g.State().Splits)
	require.Len(t, rec.cleared, 1)
	assert.Len(t, rec.cleared[0], 2)

	remaining := g.Pieces()
	require.Len(t, remaining, 1)
	assert.Equal(t, tall.Blocks[2:], remaining[0].Blocks)
	assert.Equal(t, 4, g.World().Len())
}

func TestLineClearKeepsUnaffectedOrder(t *testing.T) {
	g, _ := newTestGame(t)
	spacing := g.cfg.BlockSpacing()

	high := place(g, physics.Transform{Position: physics.Vec{X: 3, Y: 10}}, [2]int{0, 0})
	fillLine(g, 1)
	higher := place(g, physics.Transform{Position: physics.Vec{X: 6, Y: 10 + 3*spacing}}, [2]int{0, 0})

	g.Update()

	remaining := g.Pieces()
	require.Len(t, remaining, 3)
	assert.Equal(t, high.Handle, remaining[0].Handle)
	assert.Equal(t, higher.Handle, remaining[1].Handle)

	for i, p := range remaining {
		got, ok := g.Piece(p.Handle)
		require.True(t, ok)
		assert.Equal(t, remaining[i], got)
	}
}

func TestReset(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGame(t, WithObserver(rec))

	require.True(t, g.TrySpawn())
	fillLine(g, 1)
	g.Execute(ActionRotateCW)
	g.Execute(ActionMoveLeft)
	g.Update()

	g.Reset()
	assert.Equal(t, 3, g.World().Len())
	assert.Empty(t, g.Pieces())
	assert.Equal(t, State{}, g.State())

	g.Execute(ActionReset)
	assert.Equal(t, 3, g.World().Len())
	assert.Empty(t, g.Pieces())
	assert.Equal(t, State{}, g.State())
	assert.Equal(t, 2, rec.resets)

	assert.True(t, g.TrySpawn(), "cooldown is cleared by reset")
}

func TestExecuteIntents(t *testing.T) {
	g, _ := newTestGame(t)

	g.Execute(ActionRotateCW)
	assert.Equal(t, RotateClockwise, g.State().Rotation)
	g.Execute(ActionRotateCCW)
	assert.Equal(t, RotateCounterClockwise, g.State().Rotation)
	g.Execute(ActionRotateStop)
	assert.Equal(t, RotateNone, g.State().Rotation)

	g.Execute(ActionMoveLeft)
	assert.Equal(t, MoveLeft, g.State().Translation)
	g.Execute(ActionMoveRight)
	assert.Equal(t, MoveRight, g.State().Translation)
	g.Execute(ActionMoveStop)
	assert.Equal(t, MoveNone, g.State().Translation)

	g.Execute(ActionTrySpawn)
	assert.Len(t, g.Pieces(), 1)

	assert.Panics(t, func() { g.Execute(Action(99)) })
	assert.Equal(t, "Action(?)", Action(99).String())
	assert.Equal(t, "TrySpawn", ActionTrySpawn.String())
}

func TestControlSystem(t *testing.T) {
	g, _ := newTestGame(t)
	control := &ControlSystem{Force: g.cfg.Control.Force, Torque: g.cfg.Control.Torque}
	frame := &Frame{Game: g}

	g.state.Rotation = RotateClockwise
	g.state.Translation = MoveRight
	control.Execute(frame)
	assert.Equal(t, RotateNone, g.State().Rotation, "intents reset without a controlled piece")
	assert.Equal(t, MoveNone, g.State().Translation)

	require.True(t, g.TrySpawn())
	h := g.State().Controlled

	g.Execute(ActionRotateCW)
	g.Execute(ActionMoveRight)
	control.Execute(frame)
	assert.Less(t, g.World().AngularVelocity(h), 0.0)
	assert.Greater(t, g.World().Velocity(h).X, 0.0)

	g.Execute(ActionRotateCCW)
	g.Execute(ActionMoveLeft)
	control.Execute(frame)
	control.Execute(frame)
	assert.Greater(t, g.World().AngularVelocity(h), 0.0)
	assert.Less(t, g.World().Velocity(h).X, 0.0)
}

func TestControlledMissingPanics(t *testing.T) {
	g, _ := newTestGame(t)
	require.True(t, g.TrySpawn())

	g.index.Clear()
	assert.Panics(t, func() { g.Controlled() })
}

func TestSchedulerStats(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGame(t, WithObserver(rec))

	for i := 0; i < 3; i++ {
		g.Update()
	}

	stats := g.Stats()
	require.Len(t, stats, 3)
	assert.Equal(t, "ControlSystem", stats[0].Name)
	assert.Equal(t, "LineClearSystem", stats[1].Name)
	assert.Equal(t, "StepSystem", stats[2].Name)
	for _, s := range stats {
		assert.Equal(t, int64(3), s.Runs)
		assert.LessOrEqual(t, s.Min, s.Avg())
		assert.LessOrEqual(t, s.Avg(), s.Max)
		assert.LessOrEqual(t, s.Last, s.Max)
	}

	stats[0].Runs = 100
	assert.Equal(t, int64(3), g.Stats()[0].Runs, "stats are returned as a copy")

	assert.Equal(t, []uint64{1, 2, 3}, rec.ticks)
	assert.Equal(t, uint64(3), g.State().Ticks)
}

type orderedSystem struct {
	name string
	log  *[]string
}

func (p *orderedSystem) Execute(frame *Frame) {
	*p.log = append(*p.log, p.name)
}

func TestSchedulerOrder(t *testing.T) {
	var log []string
	s := NewScheduler(nil)
	s.Register(&orderedSystem{name: "a", log: &log})
	s.Register(&orderedSystem{name: "b", log: &log})

	s.Once(1, 0.016)
	s.Once(2, 0.016)
	assert.Equal(t, []string{"a", "b", "a", "b"}, log)
	assert.Equal(t, "orderedSystem", s.Stats()[0].Name)
}

func TestSnapshot(t *testing.T) {
	g, _ := newTestGame(t)
	require.True(t, g.TrySpawn())

	snap := g.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, g.State().Controlled, snap.Controlled)
	require.Len(t, snap.Pieces, 1)

	view := snap.Pieces[0]
	p := g.Pieces()[0]
	assert.Equal(t, p.Handle, view.Handle)
	assert.Equal(t, p.Color, view.Color)
	require.Len(t, view.Blocks, len(p.Blocks))

	centers := g.World().BlockCenters(p.Handle)
	for i, b := range view.Blocks {
		assert.InDelta(t, centers[i].X, b.Position.X, 1e-9)
		assert.InDelta(t, centers[i].Y, b.Position.Y, 1e-9)
		assert.InDelta(t, view.Pose.Angle, b.Angle, 1e-9)
	}
}

func TestRun(t *testing.T) {
	g, _ := newTestGame(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	err := g.Run(ctx, 0, func(g *Game) {
		calls++
		if calls == 5 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, calls)
	assert.Equal(t, uint64(5), g.State().Ticks)

	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = g.Run(ctx, time.Millisecond, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, g.State().Ticks, uint64(5))
}

func TestPiecesFallAndSettle(t *testing.T) {
	g, clock := newTestGame(t)

	for i := 0; i < 3; i++ {
		require.True(t, g.TrySpawn())
		for j := 0; j < 60; j++ {
			g.Update()
		}
		clock.advance(time.Second)
	}
	for j := 0; j < 300; j++ {
		g.Update()
	}

	cfg := g.Config()
	for _, p := range g.Pieces() {
		for _, c := range g.World().BlockCenters(p.Handle) {
			assert.Greater(t, c.Y, cfg.Arena.Bottom)
			assert.Less(t, c.Y, cfg.Arena.Top)
			assert.Greater(t, c.X, cfg.Arena.Left)
			assert.Less(t, c.X, cfg.Arena.Right)
		}
	}
}
