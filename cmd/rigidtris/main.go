package main

import (
	"errors"
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/game"
	"github.com/plus3/rigidtris/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ScreenWidth  = 720
	ScreenHeight = 960
)

// App adapts a game session to ebiten's update/draw cycle. One ebiten tick is one
// simulation tick.
type App struct {
	game     *game.Game
	renderer *Renderer
	snapshot game.Snapshot
}

func main() {
	configPath := flag.String("config", os.Getenv("RIGIDTRIS_CONFIG"), "Path to a YAML config file.")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for piece shapes, rotations and colours.")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :2112).")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts := []game.Option{
		game.WithRand(rand.New(rand.NewPCG(*seed, 0))),
		game.WithObserver(logObserver{}),
	}

	if *metricsAddr != "" {
		registry := prometheus.NewRegistry()
		recorder, err := metrics.NewRecorder(registry)
		if err != nil {
			log.Fatalf("Failed to register metrics: %v", err)
		}
		opts = append(opts, game.WithObserver(recorder))

		go func() {
			log.Printf("Serving metrics on %s/metrics", *metricsAddr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(registry))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
	}

	g, err := game.New(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create game: %v", err)
	}

	app := &App{
		game:     g,
		renderer: NewRenderer(cfg, g.World().Geometry().Outline()),
		snapshot: g.Snapshot(),
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("rigidtris")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(time.Second / cfg.Physics.TimeStep))

	log.Printf("Starting rigidtris (seed %d, %s)", *seed, cfg.Pieces.Set)
	if err := ebiten.RunGame(app); err != nil {
		log.Fatalf("Game stopped: %v", err)
	}
}

func (a *App) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	for _, action := range pollActions() {
		a.game.Execute(action)
	}
	a.game.Update()
	a.snapshot = a.game.Snapshot()
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	a.renderer.Draw(screen, a.snapshot)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// logObserver reports gameplay events on the standard logger.
type logObserver struct {
	game.NopObserver
}

func (logObserver) PieceSpawned(p game.Piece) {
	log.Printf("spawned %v with %d blocks", p.Handle, len(p.Blocks))
}

func (logObserver) LinesCleared(bands []game.Band, score int) {
	log.Printf("cleared %d line(s), score %d", len(bands), score)
}

func (logObserver) PieceSplit(parent game.Piece, fragments []game.Piece) {
	log.Printf("split %v into %d fragment(s)", parent.Handle, len(fragments))
}

func (logObserver) Reset() {
	log.Println("reset")
}
