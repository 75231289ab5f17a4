package game

import (
	"fmt"
	"strings"
)

// Outcome of a single shot.
type Outcome string

const (
	OutcomeAlready Outcome = "already"
	OutcomeMiss    Outcome = "miss"
	OutcomeHit     Outcome = "hit"
	OutcomeSink    Outcome = "sink"
)

// Display is the banner text shown after a shot.
func (o Outcome) Display() string {
	if o == OutcomeAlready {
		return "ALREADY SHOT"
	}
	return strings.ToUpper(string(o))
}

// FireShot resolves a shot at (row, col). A cell already resolved in shots,
// or one off the grid, returns OutcomeAlready without touching anything.
// Otherwise the outcome is decided first and then shots, incoming and hits
// are written together.
func FireShot(shots, incoming *ShotGrid, ships []Ship, hits *HitSet, row, col int) Outcome {
	target := Coord{Row: row, Col: col}
	if !target.InBounds() || shots[row][col] != ShotUnknown {
		return OutcomeAlready
	}

	idx := ShipIndexAt(ships, target)
	if idx < 0 {
		shots[row][col] = ShotMiss
		incoming[row][col] = ShotMiss
		return OutcomeMiss
	}

	shots[row][col] = ShotHit
	incoming[row][col] = ShotHit
	hits.Add(target)

	if sunk(ships[idx], hits) {
		return OutcomeSink
	}
	return OutcomeHit
}

func sunk(s Ship, hits *HitSet) bool {
	for _, c := range s {
		if !hits.Has(c) {
			return false
		}
	}
	return true
}

// ShipsRemaining counts ships with at least one cell not yet hit.
func ShipsRemaining(ships []Ship, hits *HitSet) int {
	n := 0
	for _, s := range ships {
		if !sunk(s, hits) {
			n++
		}
	}
	return n
}

// ShipHitCounters reports "hits/length" per ship, in fleet order.
func ShipHitCounters(ships []Ship, hits *HitSet) []string {
	out := make([]string, 0, len(ships))
	for _, s := range ships {
		n := 0
		for _, c := range s {
			if hits.Has(c) {
				n++
			}
		}
		out = append(out, fmt.Sprintf("%d/%d", n, len(s)))
	}
	return out
}

// ShipHitCountersSorted is ShipHitCounters with ships ordered by length.
func ShipHitCountersSorted(ships []Ship, hits *HitSet) []string {
	return ShipHitCounters(sortedByLength(ships), hits)
}
