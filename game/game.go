// Package game is the rigidtris gameplay layer: spawning pieces, steering the controlled
// piece, detecting completed lines and fracturing pieces along them.
//
// A Game is owned by a single goroutine. Every tick runs the control, line clear and
// physics step systems in that order.
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/physics"
	"github.com/plus3/rigidtris/polyomino"
)

// Game is one play session.
type Game struct {
	cfg       config.Config
	world     *physics.World
	spawner   Spawner
	scheduler *Scheduler

	pieces []Piece
	index  *intmap.Map[physics.Handle, int]
	state  State

	rng      *rand.Rand
	now      func() time.Time
	observer Observer
}

// Option customises a Game at construction.
type Option func(*Game)

// WithRand sets the source of every random choice made by the game.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		g.rng = rng
	}
}

// WithClock replaces time.Now for the spawn cooldown.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
	}
}

// WithObserver adds an event observer. It may be given several times.
func WithObserver(o Observer) Option {
	return func(g *Game) {
		if existing, ok := g.observer.(Observers); ok {
			g.observer = append(existing, o)
			return
		}
		g.observer = Observers{o}
	}
}

// New validates cfg and builds an empty session.
func New(cfg config.Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	layouts, err := polyomino.Library(cfg.Pieces.Set)
	if err != nil {
		return nil, fmt.Errorf("piece library: %w", err)
	}

	g := &Game{
		cfg:      cfg,
		world:    physics.NewWorld(cfg),
		spawner:  NewSpawner(cfg, layouts),
		index:    intmap.New[physics.Handle, int](64),
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now:      time.Now,
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}

	g.scheduler = NewScheduler(g)
	g.scheduler.Register(&ControlSystem{Force: cfg.Control.Force, Torque: cfg.Control.Torque})
	g.scheduler.Register(&LineClearSystem{
		Detector:     NewDetector(cfg.Lines),
		Partitioner:  NewPartitioner(cfg),
		ScorePerLine: cfg.Lines.ScorePerLine,
	})
	g.scheduler.Register(&StepSystem{})

	return g, nil
}

// Execute applies a player action.
func (g *Game) Execute(a Action) {
	switch a {
	case ActionRotateCW:
		g.state.Rotation = RotateClockwise
	case ActionRotateCCW:
		g.state.Rotation = RotateCounterClockwise
	case ActionRotateStop:
		g.state.Rotation = RotateNone
	case ActionMoveLeft:
		g.state.Translation = MoveLeft
	case ActionMoveRight:
		g.state.Translation = MoveRight
	case ActionMoveStop:
		g.state.Translation = MoveNone
	case ActionTrySpawn:
		g.TrySpawn()
	case ActionReset:
		g.Reset()
	default:
		panic(fmt.Sprintf("game: unknown action %d", int(a)))
	}
}

// TrySpawn adds a random piece and gives it control, unless the previous spawn is more
// recent than the cooldown. A rejected spawn changes nothing.
func (g *Game) TrySpawn() bool {
	now := g.now()
	if !g.state.LastSpawn.IsZero() && now.Sub(g.state.LastSpawn) < g.cfg.Pieces.SpawnCooldown {
		return false
	}

	p := g.spawner.Spawn(g.world, g.rng)
	g.addPiece(p)
	g.state.Controlled = p.Handle
	g.state.LastSpawn = now
	g.state.Spawned++
	g.observer.PieceSpawned(p)
	return true
}

// Update advances the session by one tick of the configured timestep.
func (g *Game) Update() {
	start := time.Now()
	g.state.Ticks++
	g.scheduler.Once(g.state.Ticks, g.cfg.Physics.TimeStep.Seconds())
	g.observer.TickCompleted(g.state.Ticks, time.Since(start))
}

// Reset removes every piece and returns to the initial state. Calling it twice in a row
// is the same as calling it once.
func (g *Game) Reset() {
	for _, p := range g.pieces {
		g.world.RemoveBody(p.Handle)
	}
	g.pieces = nil
	g.index.Clear()
	g.state = State{}
	g.observer.Reset()
}

// Run ticks the game every interval until ctx is done, calling input before each tick.
// Logical time advances by the configured timestep per tick whatever the interval; an
// interval of zero or less runs ticks back to back.
func (g *Game) Run(ctx context.Context, interval time.Duration, input func(*Game)) error {
	if interval <= 0 {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if input != nil {
				input(g)
			}
			g.Update()
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if input != nil {
				input(g)
			}
			g.Update()
		}
	}
}

// Pieces returns a copy of the live pieces in game order.
func (g *Game) Pieces() []Piece {
	out := make([]Piece, len(g.pieces))
	copy(out, g.pieces)
	return out
}

// Piece looks a live piece up by its body handle.
func (g *Game) Piece(h physics.Handle) (Piece, bool) {
	i, ok := g.index.Get(h)
	if !ok {
		return Piece{}, false
	}
	return g.pieces[i], true
}

// Controlled returns the piece receiving player impulses, if any.
func (g *Game) Controlled() (Piece, bool) {
	if g.state.Controlled.IsZero() {
		return Piece{}, false
	}
	p, ok := g.Piece(g.state.Controlled)
	if !ok {
		panic(fmt.Sprintf("game: controlled %v is not a live piece", g.state.Controlled))
	}
	return p, true
}

func (g *Game) Score() int {
	return g.state.Score
}

// State returns a copy of the gameplay state.
func (g *Game) State() State {
	return g.state
}

func (g *Game) World() *physics.World {
	return g.world
}

func (g *Game) Config() config.Config {
	return g.cfg
}

// Stats returns per-system timing of the tick.
func (g *Game) Stats() []SystemStats {
	return g.scheduler.Stats()
}

// Snapshot is what a renderer needs to draw one frame.
type Snapshot struct {
	Score      int
	Controlled physics.Handle
	Pieces     []View
}

// Snapshot captures the pieces as they are between ticks.
func (g *Game) Snapshot() Snapshot {
	views := make([]View, len(g.pieces))
	for i, p := range g.pieces {
		views[i] = p.view(g.world)
	}
	return Snapshot{
		Score:      g.state.Score,
		Controlled: g.state.Controlled,
		Pieces:     views,
	}
}

func (g *Game) addPiece(p Piece) {
	g.index.Put(p.Handle, len(g.pieces))
	g.pieces = append(g.pieces, p)
}

func (g *Game) setPieces(pieces []Piece) {
	g.pieces = pieces
	g.index.Clear()
	for i, p := range pieces {
		g.index.Put(p.Handle, i)
	}
}
