package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/rigidtris/game"
)

// binding maps a key to the action sent on press and the one sent on release.
type binding struct {
	key       ebiten.Key
	press     game.Action
	release   game.Action
	onRelease bool
}

var bindings = []binding{
	{key: ebiten.KeyArrowUp, press: game.ActionRotateCW, release: game.ActionRotateStop, onRelease: true},
	{key: ebiten.KeyK, press: game.ActionRotateCW, release: game.ActionRotateStop, onRelease: true},
	{key: ebiten.KeyArrowDown, press: game.ActionRotateCCW, release: game.ActionRotateStop, onRelease: true},
	{key: ebiten.KeyJ, press: game.ActionRotateCCW, release: game.ActionRotateStop, onRelease: true},
	{key: ebiten.KeyArrowLeft, press: game.ActionMoveLeft, release: game.ActionMoveStop, onRelease: true},
	{key: ebiten.KeyH, press: game.ActionMoveLeft, release: game.ActionMoveStop, onRelease: true},
	{key: ebiten.KeyArrowRight, press: game.ActionMoveRight, release: game.ActionMoveStop, onRelease: true},
	{key: ebiten.KeyL, press: game.ActionMoveRight, release: game.ActionMoveStop, onRelease: true},
	{key: ebiten.KeySpace, press: game.ActionTrySpawn},
	{key: ebiten.KeyBackspace, press: game.ActionReset},
}

// pollActions returns the actions triggered since the previous tick. Releases come
// first so that rolling from one direction key to the opposite one keeps the new intent.
func pollActions() []game.Action {
	var actions []game.Action
	for _, b := range bindings {
		if b.onRelease && inpututil.IsKeyJustReleased(b.key) {
			actions = append(actions, b.release)
		}
	}
	for _, b := range bindings {
		if inpututil.IsKeyJustPressed(b.key) {
			actions = append(actions, b.press)
		}
	}
	return actions
}
