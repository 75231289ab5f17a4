package app

import (
	"github.com/dariubs/percent"

	"battleship/internal/game"
)

// Mark is what a single cell shows in a rendered board.
type Mark uint8

const (
	MarkWater Mark = iota
	MarkShip
	MarkMiss
	MarkHit
)

// View is what player n may see: their own ships with incoming marks, and
// the opponent's board reduced to their own shots. Opponent ships are never
// part of it.
type View struct {
	Player int                                `json:"player"`
	Own    [game.GridSize][game.GridSize]Mark `json:"own"`
	Target [game.GridSize][game.GridSize]Mark `json:"target"`
}

func (c *Controller) View(n int) View {
	p := c.state.Player(n)
	v := View{Player: n}
	for r := 0; r < game.GridSize; r++ {
		for col := 0; col < game.GridSize; col++ {
			if p.Board.Cells[r][col] == game.Occupied {
				v.Own[r][col] = MarkShip
			}
			switch p.Incoming[r][col] {
			case game.ShotMiss:
				v.Own[r][col] = MarkMiss
			case game.ShotHit:
				v.Own[r][col] = MarkHit
			}
			v.Target[r][col] = shotMark(p.Shots[r][col])
		}
	}
	return v
}

func shotMark(s game.ShotState) Mark {
	switch s {
	case game.ShotMiss:
		return MarkMiss
	case game.ShotHit:
		return MarkHit
	}
	return MarkWater
}

// Stats is one scoreboard line.
type Stats struct {
	Shots    int      `json:"shots"`
	Hits     int      `json:"hits"`
	Misses   int      `json:"misses"`
	Ships    int      `json:"ships"` // own ships still afloat
	Accuracy float64  `json:"accuracy"`
	Counters []string `json:"counters"` // hits/length per own ship
}

func (c *Controller) Stats(n int) Stats {
	p := c.state.Player(n)
	st := Stats{
		Hits:     p.Shots.Count(game.ShotHit),
		Misses:   p.Shots.Count(game.ShotMiss),
		Ships:    game.ShipsRemaining(p.Ships, p.Hits),
		Counters: game.ShipHitCounters(p.Ships, p.Hits),
	}
	st.Shots = st.Hits + st.Misses
	if st.Shots > 0 {
		st.Accuracy = percent.PercentOf(st.Hits, st.Shots)
	}
	return st
}
