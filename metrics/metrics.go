// Package metrics exports gameplay counters and tick timing to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/plus3/rigidtris/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rigidtris"

// Recorder is a game.Observer feeding Prometheus collectors. Collectors are safe for
// concurrent scrapes while the game goroutine records.
type Recorder struct {
	spawned   prometheus.Counter
	lines     prometheus.Counter
	splits    prometheus.Counter
	fragments prometheus.Counter
	resets    prometheus.Counter
	score     prometheus.Gauge
	tick      prometheus.Histogram
}

var _ game.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pieces_spawned_total",
			Help:      "Pieces added by the player.",
		}),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_cleared_total",
			Help:      "Completed lines removed from the arena.",
		}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "piece_splits_total",
			Help:      "Pieces fractured by a cleared line.",
		}),
		fragments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_created_total",
			Help:      "Rigid fragments left behind by fractured pieces.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Session resets.",
		}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Score of the running session.",
		}),
		tick: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{r.spawned, r.lines, r.splits, r.fragments, r.resets, r.score, r.tick} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) PieceSpawned(game.Piece) {
	r.spawned.Inc()
}

func (r *Recorder) LinesCleared(bands []game.Band, score int) {
	r.lines.Add(float64(len(bands)))
	r.score.Set(float64(score))
}

func (r *Recorder) PieceSplit(_ game.Piece, fragments []game.Piece) {
	r.splits.Inc()
	r.fragments.Add(float64(len(fragments)))
}

func (r *Recorder) TickCompleted(_ uint64, elapsed time.Duration) {
	r.tick.Observe(elapsed.Seconds())
}

func (r *Recorder) Reset() {
	r.resets.Inc()
	r.score.Set(0)
}

// Handler serves the text exposition of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
