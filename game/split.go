package game

import (
	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/physics"
)

// Partitioner breaks pieces apart along cleared bands.
type Partitioner struct {
	// Reach is the centre distance under which two blocks are adjacent.
	Reach     float64
	Jitter    float64
	Tolerance float64
	Material  physics.Material
	Margin    float64
}

func NewPartitioner(cfg config.Config) Partitioner {
	return Partitioner{
		Reach:     cfg.Lines.Adjacency * cfg.BlockSize(),
		Jitter:    cfg.Lines.Jitter,
		Tolerance: cfg.Lines.Tolerance,
		Material:  pieceMaterial(cfg),
		Margin:    cfg.Physics.Margin,
	}
}

// Retained returns the blocks of p lying outside band, and how many were consumed by it.
func (pt Partitioner) Retained(w *physics.World, p Piece, band Band) ([]physics.Block, int) {
	heights := p.BlockHeights(w)
	kept := make([]physics.Block, 0, len(p.Blocks))
	for i, b := range p.Blocks {
		if !band.Contains(heights[i], pt.Jitter, pt.Tolerance) {
			kept = append(kept, b)
		}
	}
	return kept, len(p.Blocks) - len(kept)
}

// RequiresSplit reports whether band consumes at least one block of p.
func (pt Partitioner) RequiresSplit(w *physics.World, p Piece, band Band) bool {
	for _, y := range p.BlockHeights(w) {
		if band.Contains(y, pt.Jitter, pt.Tolerance) {
			return true
		}
	}
	return false
}

// Groups partitions blocks into connected components, two blocks being adjacent when
// their centres are closer than Reach. Distances are taken in the shared local frame,
// which a rigid transform preserves. Groups are ordered by their first block and keep
// the input order inside.
func (pt Partitioner) Groups(blocks []physics.Block) [][]physics.Block {
	uf := newUnionFind(len(blocks))
	for i := range blocks {
		for j := i + 1; j < len(blocks); j++ {
			d := blocks[i].Local.Position.Distance(blocks[j].Local.Position)
			if d < pt.Reach {
				uf.union(i, j)
			}
		}
	}

	slot := make(map[int]int)
	var groups [][]physics.Block
	for i, b := range blocks {
		root := uf.find(i)
		g, ok := slot[root]
		if !ok {
			g = len(groups)
			slot[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], b)
	}
	return groups
}

// Split removes p's body from w and registers one new body per connected group of its
// surviving blocks. Fragments keep the generator's pose and spin; their linear velocity
// is the generator's velocity field sampled at their own centre of mass. A piece whose
// blocks are all consumed disappears without replacement.
func (pt Partitioner) Split(w *physics.World, p Piece, band Band) []Piece {
	pose := w.Pose(p.Handle)
	velocity := w.Velocity(p.Handle)
	spin := w.AngularVelocity(p.Handle)
	com := w.CenterOfMass(p.Handle)

	kept, _ := pt.Retained(w, p, band)
	w.RemoveBody(p.Handle)

	groups := pt.Groups(kept)
	fragments := make([]Piece, 0, len(groups))
	for _, group := range groups {
		h := w.AddBody(physics.BodyDef{
			Blocks:     group,
			Material:   pt.Material,
			Pose:       pose,
			NeverSleep: true,
			Margin:     pt.Margin,
		})
		offset := w.CenterOfMass(h).Sub(com)
		w.SetVelocity(h, FragmentVelocity(velocity, spin, offset), spin)

		fragments = append(fragments, Piece{
			Handle: h,
			Blocks: group,
			Color:  p.Color,
		})
	}
	return fragments
}

// FragmentVelocity is the velocity at offset r from the centre of mass of a rigid body
// moving with velocity v and spin omega: v + omega × r.
func FragmentVelocity(v physics.Vec, omega float64, r physics.Vec) physics.Vec {
	return physics.Vec{
		X: v.X - omega*r.Y,
		Y: v.Y + omega*r.X,
	}
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}
