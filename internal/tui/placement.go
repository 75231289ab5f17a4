package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"battleship/internal/app"
	"battleship/internal/game"
)

type selectionScreen struct {
	ui    *UI
	count int
	msg   string
}

func (s *selectionScreen) Activate() {
	s.count = s.ui.ctrl.PreferredCount()
	s.msg = ""
}

func (s *selectionScreen) HandleEvent(ev tcell.Event) {
	k, ok := ev.(*tcell.EventKey)
	if !ok {
		return
	}
	switch k.Key() {
	case tcell.KeyLeft, tcell.KeyDown:
		if s.count > game.MinShips {
			s.count--
		}
	case tcell.KeyRight, tcell.KeyUp:
		if s.count < game.MaxShips {
			s.count++
		}
	case tcell.KeyEnter:
		if err := s.ui.ctrl.SelectCount(s.count); err != nil {
			s.msg = banner(err)
		}
	case tcell.KeyRune:
		if r := k.Rune(); r >= '0'+game.MinShips && r <= '0'+game.MaxShips {
			s.count = int(r - '0')
			s.msg = ""
		}
	}
}

func (s *selectionScreen) Render(scr tcell.Screen) {
	drawCentered(scr, 2, styleTitle, "B A T T L E S H I P")
	drawCentered(scr, 4, styleText, fmt.Sprintf("Choose how many ships you want (%d-%d)", game.MinShips, game.MaxShips))
	drawCentered(scr, 6, styleTitle, fmt.Sprintf("Ships: < %d >", s.count))
	drawCentered(scr, 8, styleDim, "Ship sizes are based on this number.")
	drawCentered(scr, 9, styleDim, "Example: 3 ships means 1x1, 1x2, 1x3.")
	drawCentered(scr, 11, styleText, "1-5 or arrows: choose   Enter: continue   q: quit")
	if s.msg != "" {
		drawCentered(scr, 13, styleAlert, s.msg)
	}
}

type placementScreen struct {
	ui     *UI
	cursor game.Coord
	msg    string
}

func (p *placementScreen) Activate() {
	p.cursor = game.Coord{}
	p.msg = ""
}

func (p *placementScreen) HandleEvent(ev tcell.Event) {
	ctrl := p.ui.ctrl
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
			p.cursor = moveCursor(p.cursor, ev.Key())
		case tcell.KeyEnter:
			p.click(ctrl.State().PlacingPlayer, p.cursor)
		case tcell.KeyRune:
			switch ev.Rune() {
			case ' ':
				p.click(ctrl.State().PlacingPlayer, p.cursor)
			case 'o', 'O':
				if o, err := ctrl.ToggleOrientation(); err == nil {
					p.msg = "Orientation: " + string(o)
				}
			case 'a', 'A':
				p.report(ctrl.AutoPlace())
			case 'r', 'R':
				p.ready()
			case 'n', 'N':
				p.ui.newGame()
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		for i, b := range []boardBox{leftBoard, rightBoard} {
			if c, ok := b.hit(x, y); ok {
				p.click(i+1, c)
			}
		}
	}
}

func (p *placementScreen) click(player int, c game.Coord) {
	if player == p.ui.ctrl.State().PlacingPlayer {
		p.cursor = c
	}
	res, err := p.ui.ctrl.Click(player, c.Row, c.Col)
	if err != nil {
		p.msg = banner(err)
		return
	}
	if res.Action == app.Removed {
		p.msg = fmt.Sprintf("Removed ship of length %d", len(res.Ship))
	} else {
		p.msg = ""
	}
}

func (p *placementScreen) ready() {
	before := p.ui.ctrl.State().PlacingPlayer
	if err := p.ui.ctrl.Ready(); err != nil {
		p.msg = banner(err)
		return
	}
	if p.ui.ctrl.State().Phase == game.PhasePlacing {
		p.cursor = game.Coord{}
		p.msg = fmt.Sprintf("Player %d ready. Player %d, place your ships.", before, game.Opponent(before))
	}
}

func (p *placementScreen) report(err error) {
	if err != nil {
		p.msg = banner(err)
		return
	}
	p.msg = ""
}

func (p *placementScreen) Render(scr tcell.Screen) {
	st := p.ui.ctrl.State()
	placing := st.PlacingPlayer
	if next := st.NextLength(); next <= st.NumShips {
		drawText(scr, 2, 1, styleTitle, fmt.Sprintf("Placement: Player %d, place ship length %d", placing, next))
	} else {
		drawText(scr, 2, 1, styleTitle, fmt.Sprintf("Placement: Player %d, all ships placed. Press r for Ready.", placing))
	}
	drawText(scr, 2, 2, styleText, fmt.Sprintf("Orientation: %s   Ships: %v", st.Orientation, game.BuildShipSet(st.NumShips)))

	for i, b := range []boardBox{leftBoard, rightBoard} {
		n := i + 1
		title := fmt.Sprintf("Player %d", n)
		if n != placing {
			drawBoard(scr, b, title, coveredCell)
			continue
		}
		view := p.ui.ctrl.View(n)
		drawBoard(scr, b, title, func(c game.Coord) (rune, tcell.Style) {
			r, style := markCell(view.Own[c.Row][c.Col], n)
			if c == p.cursor {
				style = styleCursor
			}
			return r, style
		})
	}

	y := leftBoard.y + game.GridSize + 2
	drawText(scr, 2, y, styleDim, "click/space: place or remove   o: orientation   a: auto   r: ready   n: new game   q: quit")
	if p.msg != "" {
		drawText(scr, 2, y+2, styleAlert, p.msg)
	}
}
