package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/game"
)

// playerActions are what the random player picks from each tick.
var playerActions = []game.Action{
	game.ActionRotateCW,
	game.ActionRotateCCW,
	game.ActionRotateStop,
	game.ActionMoveLeft,
	game.ActionMoveRight,
	game.ActionMoveStop,
	game.ActionTrySpawn,
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total wall time the soak should run for.")
	configPath := flag.String("config", os.Getenv("RIGIDTRIS_CONFIG"), "Path to a YAML config file.")
	seed := flag.Uint64("seed", 1, "Seed for the game and the random player.")
	actionRate := flag.Float64("action-rate", 0.2, "Probability that the player acts on a given tick.")
	resetEvery := flag.Int("reset-every", 20000, "Reset the session after this many ticks (0 disables).")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting rigidtris soak run...")

	// Logical time: every tick advances the clock by exactly one timestep, so the spawn
	// cooldown is measured in simulated time however fast the host runs.
	simulated := time.Unix(0, 0)
	report := &Report{
		Duration:       *duration,
		Seed:           *seed,
		PieceSet:       cfg.Pieces.Set,
		TimeStep:       cfg.Physics.TimeStep,
		GCPauseMetrics: *gcPauseMetrics,
	}

	g, err := game.New(cfg,
		game.WithRand(rand.New(rand.NewPCG(*seed, 0))),
		game.WithClock(func() time.Time { return simulated }),
		game.WithObserver(report),
	)
	if err != nil {
		log.Fatalf("Failed to create game: %v", err)
	}
	player := rand.New(rand.NewPCG(*seed, 1))

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	input := func(g *game.Game) {
		simulated = simulated.Add(cfg.Physics.TimeStep)

		if *resetEvery > 0 && g.State().Ticks > 0 && g.State().Ticks%uint64(*resetEvery) == 0 {
			g.Execute(game.ActionReset)
			return
		}
		if player.Float64() < *actionRate {
			g.Execute(playerActions[player.IntN(len(playerActions))])
		}

		report.MaxPieces = max(report.MaxPieces, len(g.Pieces()))
	}

	if err := g.Run(ctx, 0, input); err != nil && ctx.Err() == nil {
		log.Fatalf("Simulation stopped: %v", err)
	}

	report.TotalTime = time.Since(startTime)
	report.Sessions++
	report.FinalScore = g.Score()
	report.TickTime.Finalize()
	report.Systems = g.Stats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Soak Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}
