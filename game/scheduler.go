package game

import (
	"reflect"
	"time"
)

// System is one phase of a tick. Systems run in registration order, each to completion,
// before the next one starts.
type System interface {
	Execute(frame *Frame)
}

// Frame is handed to every system of a tick.
type Frame struct {
	Tick      uint64
	DeltaTime float64
	Game      *Game
}

// SystemStats is the running wall-time profile of one system.
type SystemStats struct {
	Name  string
	Runs  int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

// Avg is the mean duration per run, zero before the first run.
func (s SystemStats) Avg() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Runs)
}

func (s *SystemStats) record(d time.Duration) {
	if s.Runs == 0 || d < s.Min {
		s.Min = d
	}
	s.Max = max(s.Max, d)
	s.Last = d
	s.Total += d
	s.Runs++
}

// Scheduler runs the systems of a game once per tick and times each of them.
type Scheduler struct {
	game    *Game
	systems []System
	stats   []SystemStats
}

func NewScheduler(g *Game) *Scheduler {
	return &Scheduler{game: g}
}

// Register appends a system to the tick.
func (s *Scheduler) Register(system System) {
	s.systems = append(s.systems, system)
	s.stats = append(s.stats, SystemStats{Name: systemName(system)})
}

// Once runs every system for tick number tick with the given delta time.
func (s *Scheduler) Once(tick uint64, dt float64) {
	frame := &Frame{Tick: tick, DeltaTime: dt, Game: s.game}
	for i, system := range s.systems {
		start := time.Now()
		system.Execute(frame)
		s.stats[i].record(time.Since(start))
	}
}

// Stats returns a copy of the per-system profiles in registration order.
func (s *Scheduler) Stats() []SystemStats {
	out := make([]SystemStats, len(s.stats))
	copy(out, s.stats)
	return out
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
