package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"battleship/internal/app"
	"battleship/internal/game"
)

type battleScreen struct {
	ui       *UI
	cursor   game.Coord
	selected *game.Coord
	msg      string
}

func (b *battleScreen) Activate() {
	b.cursor = game.Coord{}
	b.selected = nil
	b.msg = ""
}

// locked is true between a resolved shot and the turn switch.
func (b *battleScreen) locked() bool { return b.ui.ctrl.TurnPending() }

func (b *battleScreen) HandleEvent(ev tcell.Event) {
	// a turn switch whose timer could not be delivered
	if b.locked() && !b.ui.task.Pending() {
		b.endTurn()
	}
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
			b.cursor = moveCursor(b.cursor, ev.Key())
		case tcell.KeyEnter:
			b.fire()
		case tcell.KeyRune:
			switch ev.Rune() {
			case ' ':
				b.selectCell(b.cursor)
			case 'f', 'F':
				b.fire()
			case 'n', 'N':
				b.ui.newGame()
			}
		}
	case *tcell.EventMouse:
		if c, ok := rightBoard.hit(ev.Position()); ok {
			b.cursor = c
			b.selectCell(c)
		}
	}
}

func (b *battleScreen) selectCell(c game.Coord) {
	if b.locked() {
		return
	}
	b.selected = &c
	b.msg = ""
}

func (b *battleScreen) fire() {
	if b.locked() {
		return
	}
	if b.selected == nil {
		b.msg = banner(game.ErrNoTarget)
		return
	}
	ctrl := b.ui.ctrl
	rep, err := ctrl.Fire(b.selected.Row, b.selected.Col)
	if err != nil {
		b.msg = banner(err)
		return
	}
	b.msg = fmt.Sprintf("%s %s", rep.Target, rep.Outcome.Display())
	b.selected = nil
	if rep.Winner != 0 {
		return
	}
	b.ui.task.Schedule(ctrl.Config().TurnDelay, b.ui.post, b.endTurn)
}

func (b *battleScreen) endTurn() {
	if err := b.ui.ctrl.EndTurn(); err != nil {
		b.ui.log.Warn("turn switch skipped", "err", err)
		return
	}
	b.msg = ""
	b.cursor = game.Coord{}
}

func (b *battleScreen) Render(scr tcell.Screen) {
	ctrl := b.ui.ctrl
	turn := ctrl.State().CurrentTurn
	view := ctrl.View(turn)

	drawText(scr, 2, 1, styleTitle, fmt.Sprintf("Player %d's turn", turn))
	if b.msg != "" {
		drawText(scr, 2, 3, styleAlert, b.msg)
	}
	if b.locked() {
		drawText(scr, 2+boardW+8, 1, styleDim, "switching turns...")
	}

	drawBoard(scr, leftBoard, "Your Board", func(c game.Coord) (rune, tcell.Style) {
		return markCell(view.Own[c.Row][c.Col], turn)
	})
	drawBoard(scr, rightBoard, "Opponent Board", func(c game.Coord) (rune, tcell.Style) {
		m := view.Target[c.Row][c.Col]
		r, st := markCell(m, turn)
		switch {
		case b.locked():
		case b.selected != nil && *b.selected == c && m == app.MarkWater:
			st = styleCursor
		case c == b.cursor:
			st = st.Reverse(true)
		}
		return r, st
	})

	y := leftBoard.y + game.GridSize + 2
	drawText(scr, 2, y, styleText, scoreLine(1, ctrl.Stats(1)))
	drawText(scr, 2, y+1, styleText, scoreLine(2, ctrl.Stats(2)))
	drawText(scr, 2, y+3, styleDim, "click/arrows+space: select   f/Enter: FIRE   n: new game   q: quit")
}

type gameOverScreen struct {
	ui *UI
}

// Activate arms the automatic return to count selection.
func (g *gameOverScreen) Activate() {
	if d := g.ui.ctrl.Config().GameOverDelay; d > 0 {
		g.ui.task.Schedule(d, g.ui.post, g.ui.ctrl.NewGame)
	}
}

func (g *gameOverScreen) HandleEvent(ev tcell.Event) {
	k, ok := ev.(*tcell.EventKey)
	if !ok {
		return
	}
	if k.Key() == tcell.KeyEnter || k.Rune() == 'n' || k.Rune() == 'N' {
		g.ui.newGame()
	}
}

func (g *gameOverScreen) Render(scr tcell.Screen) {
	ctrl := g.ui.ctrl
	drawText(scr, 2, 1, styleTitle, fmt.Sprintf("PLAYER %d WINS!", ctrl.State().Winner))
	for i, b := range []boardBox{leftBoard, rightBoard} {
		n := i + 1
		view := ctrl.View(n)
		drawBoard(scr, b, fmt.Sprintf("Player %d", n), func(c game.Coord) (rune, tcell.Style) {
			return markCell(view.Own[c.Row][c.Col], n)
		})
	}
	y := leftBoard.y + game.GridSize + 2
	drawText(scr, 2, y, styleText, scoreLine(1, ctrl.Stats(1)))
	drawText(scr, 2, y+1, styleText, scoreLine(2, ctrl.Stats(2)))
	drawText(scr, 2, y+3, styleDim, "returning to ship selection...   n: new game now   q: quit")
}
