package game

import (
	"time"

	"github.com/plus3/rigidtris/physics"
)

type Rotation int

const (
	RotateNone Rotation = iota
	RotateClockwise
	RotateCounterClockwise
)

type Translation int

const (
	MoveNone Translation = iota
	MoveLeft
	MoveRight
)

// Action is a discrete command produced by the input layer.
type Action int

const (
	ActionRotateCW Action = iota
	ActionRotateCCW
	ActionRotateStop
	ActionMoveLeft
	ActionMoveRight
	ActionMoveStop
	ActionTrySpawn
	ActionReset
)

var actionNames = [...]string{
	ActionRotateCW:   "RotateCW",
	ActionRotateCCW:  "RotateCCW",
	ActionRotateStop: "RotateStop",
	ActionMoveLeft:   "MoveLeft",
	ActionMoveRight:  "MoveRight",
	ActionMoveStop:   "MoveStop",
	ActionTrySpawn:   "TrySpawn",
	ActionReset:      "Reset",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Action(?)"
	}
	return actionNames[a]
}

// State is the gameplay state of a session. The zero value is the state after a reset.
type State struct {
	Score int
	// Controlled is the piece receiving player impulses, zero when none.
	Controlled  physics.Handle
	Rotation    Rotation
	Translation Translation
	// LastSpawn is the instant of the last successful spawn, zero when none.
	LastSpawn time.Time

	Ticks        uint64
	LinesCleared int
	Spawned      int
	Splits       int
}
