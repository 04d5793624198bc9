// Package polyomino provides the piece layouts: fixed tables for tetrominoes and
// pentominoes, and a generator for one-sided polyominoes of any size.
package polyomino

import (
	"fmt"
	"slices"
	"strings"
)

// Cell is one unit square of a layout, in grid units.
type Cell struct {
	Col, Row int
}

// Layout is a polyomino as a list of cells.
type Layout []Cell

func (l Layout) String() string {
	var b strings.Builder
	for i, c := range l {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "(%d,%d)", c.Col, c.Row)
	}
	return b.String()
}

// Tetrominoes are the seven one-sided tetrominoes: I, O, T, J, L, S, Z.
var Tetrominoes = []Layout{
	{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	{{0, 0}, {1, 0}, {2, 0}, {1, 1}},
	{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
	{{0, 0}, {1, 0}, {2, 0}, {0, 1}},
	{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
	{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
}

// Pentominoes are the eighteen one-sided pentominoes in canonical form.
var Pentominoes = []Layout{
	{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}},
	{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 0}},
	{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 1}},
	{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 2}},
	{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 3}},
	{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}},
	{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 2}},
	{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {2, 0}},
	{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 2}},
	{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {2, 1}},
	{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {1, 3}},
	{{0, 0}, {0, 1}, {1, 1}, {1, 2}, {2, 1}},
	{{0, 0}, {0, 1}, {1, 1}, {1, 2}, {2, 2}},
	{{0, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {1, 1}, {1, 2}, {2, 1}},
	{{0, 0}, {1, 0}, {1, 1}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 0}, {1, 1}, {2, 1}, {3, 1}},
	{{0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 1}},
}

var setSizes = map[string]int{
	"triomino":  3,
	"tetromino": 4,
	"pentomino": 5,
	"hexomino":  6,
}

// Library returns the layouts of a named piece set.
func Library(name string) ([]Layout, error) {
	switch name {
	case "tetromino":
		return slices.Clone(Tetrominoes), nil
	case "pentomino":
		return slices.Clone(Pentominoes), nil
	}

	size, ok := setSizes[name]
	if !ok {
		return nil, fmt.Errorf("unknown polyomino set %q", name)
	}
	return Enumerate(size), nil
}

// Enumerate returns every one-sided polyomino of n cells (rotations are the same piece,
// mirror images are not), each in canonical form, sorted.
func Enumerate(n int) []Layout {
	if n <= 0 {
		return nil
	}

	current := map[string]Layout{}
	seed := Layout{{0, 0}}
	current[seed.String()] = seed

	for size := 2; size <= n; size++ {
		next := make(map[string]Layout, len(current)*4)
		for _, poly := range current {
			occupied := make(map[Cell]bool, len(poly))
			for _, c := range poly {
				occupied[c] = true
			}

			for _, c := range poly {
				for _, nb := range neighbours(c) {
					if occupied[nb] {
						continue
					}
					grown := append(slices.Clone(poly), nb)
					canon := Canonical(grown)
					next[canon.String()] = canon
				}
			}
		}
		current = next
	}

	result := make([]Layout, 0, len(current))
	for _, l := range current {
		result = append(result, l)
	}
	slices.SortFunc(result, compareLayouts)
	return result
}

// Canonical returns the smallest of the four rotations of l, each shifted to the origin
// and sorted. Two layouts are the same one-sided polyomino iff their canonical forms match.
func Canonical(l Layout) Layout {
	best := normalize(l)
	rotated := best
	for range 3 {
		rotated = normalize(rotate(rotated))
		if compareLayouts(rotated, best) < 0 {
			best = rotated
		}
	}
	return best
}

func neighbours(c Cell) [4]Cell {
	return [4]Cell{
		{c.Col + 1, c.Row},
		{c.Col, c.Row + 1},
		{c.Col - 1, c.Row},
		{c.Col, c.Row - 1},
	}
}

func rotate(l Layout) Layout {
	out := make(Layout, len(l))
	for i, c := range l {
		out[i] = Cell{Col: -c.Row, Row: c.Col}
	}
	return out
}

func normalize(l Layout) Layout {
	if len(l) == 0 {
		return nil
	}

	minCol, minRow := l[0].Col, l[0].Row
	for _, c := range l[1:] {
		minCol = min(minCol, c.Col)
		minRow = min(minRow, c.Row)
	}

	out := make(Layout, len(l))
	for i, c := range l {
		out[i] = Cell{Col: c.Col - minCol, Row: c.Row - minRow}
	}
	slices.SortFunc(out, compareCells)
	return out
}

func compareCells(a, b Cell) int {
	if a.Col != b.Col {
		return a.Col - b.Col
	}
	return a.Row - b.Row
}

func compareLayouts(a, b Layout) int {
	return slices.CompareFunc(a, b, compareCells)
}
