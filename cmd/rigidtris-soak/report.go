package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/rigidtris/game"
)

// Report gathers the soak results. It observes the game directly, so totals survive
// the resets that zero the game's own state.
type Report struct {
	// Configuration
	Duration time.Duration
	Seed     uint64
	PieceSet string
	TimeStep time.Duration

	// Results
	TotalTime  time.Duration
	TickTime   Stats
	Systems    []game.SystemStats
	Sessions   int
	MaxPieces  int
	FinalScore int

	Spawned   int
	Lines     int
	BestScore int
	Splits    int
	Fragments int

	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) PieceSpawned(game.Piece) {
	r.Spawned++
}

func (r *Report) LinesCleared(bands []game.Band, score int) {
	r.Lines += len(bands)
	r.BestScore = max(r.BestScore, score)
}

func (r *Report) PieceSplit(_ game.Piece, fragments []game.Piece) {
	r.Splits++
	r.Fragments += len(fragments)
}

func (r *Report) TickCompleted(_ uint64, elapsed time.Duration) {
	r.TickTime.Samples = append(r.TickTime.Samples, elapsed)
}

func (r *Report) Reset() {
	r.Sessions++
}

// SimulatedTime is the logical time covered by all ticks.
func (r *Report) SimulatedTime() time.Duration {
	return time.Duration(len(r.TickTime.Samples)) * r.TimeStep
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Rigidtris Soak Report

## Run Configuration
- **Run Duration:** {{.Duration}}
- **Seed:** {{.Seed}}
- **Piece Set:** {{.PieceSet}}
- **Time Step:** {{.TimeStep}}

## Gameplay Totals
- **Sessions:** {{.Sessions}}
- **Pieces Spawned:** {{.Spawned}}
- **Lines Cleared:** {{.Lines}}
- **Best Score:** {{.BestScore}} (final session: {{.FinalScore}})
- **Splits:** {{.Splits}} ({{.Fragments}} fragments)
- **Most Live Pieces:** {{.MaxPieces}}

## Performance Results
- **Total Ticks:** {{len .TickTime.Samples}}
- **Simulated Time:** {{.SimulatedTime}}
- **Total Run Time:** {{.TotalTime}}
- **Tick Time:**
  - **Avg:** {{.TickTime.Avg}}
  - **Min:** {{.TickTime.Min}}
  - **Max:** {{.TickTime.Max}}

| System | Runs | Avg | Min | Max |
|---|---|---|---|---|
{{range .Systems}}| {{.Name}} | {{.Runs}} | {{.Avg}} | {{.Min}} | {{.Max}} |
{{end}}
## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MiB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MiB (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}} B
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} MiB (start) -> {{mb .MemStatsEnd.TotalAlloc}} MiB (end)
- Sys Memory:     {{mb .MemStatsStart.Sys}} MiB (start) -> {{mb .MemStatsEnd.Sys}} MiB (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
