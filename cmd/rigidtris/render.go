package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/game"
	"github.com/plus3/rigidtris/physics"
)

var (
	backgroundColor = color.RGBA{18, 18, 24, 255}
	wallColor       = color.RGBA{120, 120, 140, 255}
	focusColor      = color.RGBA{255, 255, 255, 255}
)

var whiteSubImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

// Renderer draws snapshots in a y-up world onto a y-down screen.
type Renderer struct {
	arena   config.Arena
	outline []physics.Vec

	scale      float64
	offsetX    float64
	offsetY    float64
	vertices   []ebiten.Vertex
	indices    []uint16
	screenSize image.Point
}

func NewRenderer(cfg config.Config, outline []physics.Vec) *Renderer {
	return &Renderer{
		arena:   cfg.Arena,
		outline: outline,
	}
}

func (r *Renderer) fit(size image.Point) {
	if size == r.screenSize {
		return
	}
	r.screenSize = size

	const padding = 0.9
	sx := float64(size.X) / r.arena.Width()
	sy := float64(size.Y) / r.arena.Height()
	r.scale = min(sx, sy) * padding
	r.offsetX = (float64(size.X) - r.arena.Width()*r.scale) / 2
	r.offsetY = (float64(size.Y) - r.arena.Height()*r.scale) / 2
}

func (r *Renderer) project(p physics.Vec) (float32, float32) {
	x := r.offsetX + (p.X-r.arena.Left)*r.scale
	y := r.offsetY + (r.arena.Top-p.Y)*r.scale
	return float32(x), float32(y)
}

func (r *Renderer) Draw(screen *ebiten.Image, snap game.Snapshot) {
	r.fit(screen.Bounds().Size())
	screen.Fill(backgroundColor)
	r.drawArena(screen)

	for _, piece := range snap.Pieces {
		focused := piece.Handle == snap.Controlled
		for _, block := range piece.Blocks {
			r.drawBlock(screen, block, piece.Color)
			if focused {
				r.strokeBlock(screen, block)
			}
		}
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SCORE %d", snap.Score), 8, 8)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f", ebiten.ActualTPS()), 8, 24)
}

func (r *Renderer) drawArena(screen *ebiten.Image) {
	a := r.arena
	corners := []physics.Vec{
		{X: a.Left, Y: a.Top},
		{X: a.Left, Y: a.Bottom},
		{X: a.Right, Y: a.Bottom},
		{X: a.Right, Y: a.Top},
	}
	for i := 0; i+1 < len(corners); i++ {
		x0, y0 := r.project(corners[i])
		x1, y1 := r.project(corners[i+1])
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, wallColor, true)
	}
}

// drawBlock fills the block outline as a triangle fan around its centre.
func (r *Renderer) drawBlock(screen *ebiten.Image, block physics.Transform, c color.RGBA) {
	cr := float32(c.R) / 255
	cg := float32(c.G) / 255
	cb := float32(c.B) / 255

	r.vertices = r.vertices[:0]
	r.indices = r.indices[:0]

	cx, cy := r.project(block.Position)
	r.vertices = append(r.vertices, ebiten.Vertex{
		DstX: cx, DstY: cy, SrcX: 1, SrcY: 1,
		ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
	})
	for _, p := range r.outline {
		x, y := r.project(block.Apply(p))
		r.vertices = append(r.vertices, ebiten.Vertex{
			DstX: x, DstY: y, SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		})
	}

	n := uint16(len(r.outline))
	for i := uint16(0); i < n; i++ {
		r.indices = append(r.indices, 0, 1+i, 1+(i+1)%n)
	}

	screen.DrawTriangles(r.vertices, r.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func (r *Renderer) strokeBlock(screen *ebiten.Image, block physics.Transform) {
	n := len(r.outline)
	for i := range r.outline {
		x0, y0 := r.project(block.Apply(r.outline[i]))
		x1, y1 := r.project(block.Apply(r.outline[(i+1)%n]))
		vector.StrokeLine(screen, x0, y0, x1, y1, 1.5, focusColor, true)
	}
}
