package game

import (
	"sort"

	"github.com/dolthub/swiss"
)

// ShotState is the tri-state of a shot-tracking cell.
type ShotState uint8

const (
	ShotUnknown ShotState = 0
	ShotMiss    ShotState = 1
	ShotHit     ShotState = 2
)

// ShotGrid records resolved shots. A player keeps two of them: the shots
// they fired and the shots received on their own board.
type ShotGrid [GridSize][GridSize]ShotState

func (g *ShotGrid) At(c Coord) ShotState { return g[c.Row][c.Col] }

// Count returns the number of cells in state s.
func (g *ShotGrid) Count(s ShotState) int {
	n := 0
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if g[r][c] == s {
				n++
			}
		}
	}
	return n
}

// HitSet holds the coordinates of a defender's ships that have been struck.
// The zero value is ready to use.
type HitSet struct {
	m *swiss.Map[Coord, struct{}]
}

func NewHitSet() *HitSet {
	return &HitSet{m: swiss.NewMap[Coord, struct{}](16)}
}

func (h *HitSet) init() {
	if h.m == nil {
		h.m = swiss.NewMap[Coord, struct{}](16)
	}
}

func (h *HitSet) Add(c Coord) {
	h.init()
	h.m.Put(c, struct{}{})
}

func (h *HitSet) Has(c Coord) bool {
	if h == nil || h.m == nil {
		return false
	}
	return h.m.Has(c)
}

func (h *HitSet) Len() int {
	if h == nil || h.m == nil {
		return 0
	}
	return h.m.Count()
}

// Coords returns the members in row-major order.
func (h *HitSet) Coords() []Coord {
	out := make([]Coord, 0, h.Len())
	if h.Len() == 0 {
		return out
	}
	h.m.Iter(func(c Coord, _ struct{}) bool {
		out = append(out, c)
		return false
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
