package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"battleship/internal/app"
	"battleship/internal/game"
)

const (
	cellW  = 2 // terminal columns per board cell
	labelW = 3 // row label gutter
	boardW = labelW + game.GridSize*cellW
)

// boardBox is a board's on-screen position; (x, y) is the column header row.
type boardBox struct{ x, y int }

var (
	leftBoard  = boardBox{x: 2, y: 6}
	rightBoard = boardBox{x: 2 + boardW + 8, y: 6}
)

func (b boardBox) cellOrigin(c game.Coord) (int, int) {
	return b.x + labelW + c.Col*cellW, b.y + 1 + c.Row
}

// hit maps a mouse position to the cell under it.
func (b boardBox) hit(mx, my int) (game.Coord, bool) {
	dx, row := mx-b.x-labelW, my-b.y-1
	if dx < 0 || row < 0 {
		return game.Coord{}, false
	}
	c := game.Coord{Row: row, Col: dx / cellW}
	return c, c.InBounds()
}

var (
	styleText    = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAlert   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleWater   = tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
	styleMiss    = tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorBlack)
	styleHit     = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite)
	styleCovered = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleCursor  = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
)

var shipStyles = [2]tcell.Style{
	tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite),
	tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite),
}

const (
	runeWater   = '·'
	runeShip    = '■'
	runeMiss    = 'O'
	runeHit     = 'X'
	runeCovered = '░'
)

func markCell(m app.Mark, player int) (rune, tcell.Style) {
	switch m {
	case app.MarkShip:
		return runeShip, shipStyles[player-1]
	case app.MarkMiss:
		return runeMiss, styleMiss
	case app.MarkHit:
		return runeHit, styleHit
	}
	return runeWater, styleWater
}

func coveredCell(game.Coord) (rune, tcell.Style) { return runeCovered, styleCovered }

// drawText writes text from (x, y) and returns the column after it.
func drawText(s tcell.Screen, x, y int, st tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, st)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func drawCentered(s tcell.Screen, y int, st tcell.Style, text string) {
	w, _ := s.Size()
	x := (w - runewidth.StringWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	drawText(s, x, y, st, text)
}

// drawBoard renders labels and the 10x10 grid, asking cell for each square.
func drawBoard(s tcell.Screen, b boardBox, title string, cell func(game.Coord) (rune, tcell.Style)) {
	drawText(s, b.x, b.y-1, styleTitle, title)
	for col := 0; col < game.GridSize; col++ {
		drawText(s, b.x+labelW+col*cellW, b.y, styleDim, game.ColLabel(col))
	}
	for row := 0; row < game.GridSize; row++ {
		drawText(s, b.x, b.y+1+row, styleDim, fmt.Sprintf("%2s", game.RowLabel(row)))
		for col := 0; col < game.GridSize; col++ {
			c := game.Coord{Row: row, Col: col}
			r, st := cell(c)
			x, y := b.cellOrigin(c)
			s.SetContent(x, y, r, nil, st)
			s.SetContent(x+1, y, ' ', nil, st)
		}
	}
}

func scoreLine(n int, st app.Stats) string {
	ships := "-"
	if len(st.Counters) > 0 {
		ships = strings.Join(st.Counters, ", ")
	}
	return fmt.Sprintf("P%d > Shots: %d | Hits: %d | Misses: %d | Accuracy: %.0f%% | Ships: %d | Ship hits: %s",
		n, st.Shots, st.Hits, st.Misses, st.Accuracy, st.Ships, ships)
}

func moveCursor(c game.Coord, k tcell.Key) game.Coord {
	n := c
	switch k {
	case tcell.KeyUp:
		n.Row--
	case tcell.KeyDown:
		n.Row++
	case tcell.KeyLeft:
		n.Col--
	case tcell.KeyRight:
		n.Col++
	}
	if !n.InBounds() {
		return c
	}
	return n
}
