// Package tui is the hot-seat terminal front end. One goroutine owns the
// controller: Run polls tcell events and every deferred action comes back
// through the same queue as an EventInterrupt.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"battleship/internal/app"
	"battleship/internal/game"
)

// Screen is one view of the game. The UI activates the screen matching the
// controller's phase and routes every non-global event to it.
type Screen interface {
	Activate()
	HandleEvent(ev tcell.Event)
	Render(s tcell.Screen)
}

const (
	postRetries = 20
	postBackoff = 10 * time.Millisecond
)

type UI struct {
	scr  tcell.Screen
	ctrl *app.Controller
	log  *log.Logger
	task app.Task

	screens map[game.Phase]Screen
	phase   game.Phase
	current Screen

	mouseDown bool
	quit      bool
}

// New wires the screens to ctrl. scr must already be initialized.
func New(scr tcell.Screen, ctrl *app.Controller, logger *log.Logger) *UI {
	u := &UI{scr: scr, ctrl: ctrl, log: logger}
	u.screens = map[game.Phase]Screen{
		game.PhaseSelecting: &selectionScreen{ui: u},
		game.PhasePlacing:   &placementScreen{ui: u},
		game.PhaseBattle:    &battleScreen{ui: u},
		game.PhaseGameOver:  &gameOverScreen{ui: u},
	}
	u.sync()
	return u
}

// Run draws and dispatches events until the player quits. A pending turn
// switch is cancelled on the way out.
func (u *UI) Run() error {
	defer u.teardown()
	u.draw()
	for !u.quit {
		ev := u.scr.PollEvent()
		if ev == nil {
			return errors.New("screen finalized")
		}
		u.handle(ev)
		u.draw()
	}
	return nil
}

func (u *UI) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
	case *tcell.EventResize:
		u.scr.Sync()
	case *tcell.EventKey:
		if isQuit(ev) {
			u.quit = true
			return
		}
		u.current.HandleEvent(ev)
	case *tcell.EventMouse:
		// only the press edge counts as a click
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !u.mouseDown {
			u.current.HandleEvent(ev)
		}
		u.mouseDown = down
	}
	u.sync()
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// sync activates the screen for the controller's current phase.
func (u *UI) sync() {
	p := u.ctrl.State().Phase
	if u.current != nil && p == u.phase {
		return
	}
	u.phase = p
	u.current = u.screens[p]
	u.current.Activate()
}

func (u *UI) draw() {
	u.scr.Clear()
	u.current.Render(u.scr)
	u.scr.Show()
}

// post queues fn onto the event loop. It is the only way timer goroutines
// reach the controller. If the queue stays full the task is dropped and the
// battle screen finishes the turn switch on the next input.
func (u *UI) post(fn func()) {
	var err error
	for i := 0; i < postRetries; i++ {
		if err = u.scr.PostEvent(tcell.NewEventInterrupt(fn)); err == nil {
			return
		}
		time.Sleep(postBackoff)
	}
	u.task.Cancel()
	u.log.Warn("event queue full, deferred action dropped", "err", err)
}

// newGame drops any pending deferred action and returns to count selection.
func (u *UI) newGame() {
	if u.task.Cancel() {
		u.log.Info("pending action cancelled", "reason", "new game")
	}
	u.ctrl.NewGame()
}

func (u *UI) teardown() {
	if u.task.Cancel() {
		u.log.Debug("pending action cancelled on exit")
	}
}

// banner is the short text shown for a rejected action.
func banner(err error) string {
	var inc *game.IncompletePlacementError
	switch {
	case errors.Is(err, game.ErrNoTarget):
		return "SELECT A CELL"
	case errors.Is(err, game.ErrAlreadyShot):
		return game.OutcomeAlready.Display()
	case errors.As(err, &inc):
		return fmt.Sprintf("Place all ships first. Remaining: %d", inc.Remaining)
	}
	return err.Error()
}
