package game

import "time"

// Observer receives gameplay events as they happen inside a tick. Implementations must
// not call back into the Game.
type Observer interface {
	PieceSpawned(p Piece)
	LinesCleared(bands []Band, score int)
	PieceSplit(parent Piece, fragments []Piece)
	TickCompleted(tick uint64, elapsed time.Duration)
	Reset()
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PieceSpawned(Piece)                  {}
func (NopObserver) LinesCleared([]Band, int)            {}
func (NopObserver) PieceSplit(Piece, []Piece)           {}
func (NopObserver) TickCompleted(uint64, time.Duration) {}
func (NopObserver) Reset()                              {}

// Observers fans every event out to each member in order.
type Observers []Observer

func (o Observers) PieceSpawned(p Piece) {
	for _, obs := range o {
		obs.PieceSpawned(p)
	}
}

func (o Observers) LinesCleared(bands []Band, score int) {
	for _, obs := range o {
		obs.LinesCleared(bands, score)
	}
}

func (o Observers) PieceSplit(parent Piece, fragments []Piece) {
	for _, obs := range o {
		obs.PieceSplit(parent, fragments)
	}
}

func (o Observers) TickCompleted(tick uint64, elapsed time.Duration) {
	for _, obs := range o {
		obs.TickCompleted(tick, elapsed)
	}
}

func (o Observers) Reset() {
	for _, obs := range o {
		obs.Reset()
	}
}
