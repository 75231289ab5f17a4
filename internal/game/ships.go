package game

import "sort"

const (
	MinShips = 1
	MaxShips = 5
)

// Ship is the ordered list of cells it covers. A ship has no id of its own;
// it is identified by its index in the owner's fleet.
type Ship []Coord

func (s Ship) Contains(c Coord) bool {
	for _, x := range s {
		if x == c {
			return true
		}
	}
	return false
}

// BuildShipSet returns the lengths both players must place: 1..numShips.
func BuildShipSet(numShips int) []int {
	out := make([]int, 0, numShips)
	for l := 1; l <= numShips; l++ {
		out = append(out, l)
	}
	return out
}

// NextRequiredLength is the smallest length in 1..numShips not yet present
// in ships, or numShips+1 once the fleet is complete. Removing a ship in the
// middle of the sequence makes its length required again.
func NextRequiredLength(ships []Ship, numShips int) int {
	placed := make(map[int]bool, len(ships))
	for _, s := range ships {
		placed[len(s)] = true
	}
	for l := 1; l <= numShips; l++ {
		if !placed[l] {
			return l
		}
	}
	return numShips + 1
}

// ShipIndexAt returns the index of the ship covering c, or -1.
func ShipIndexAt(ships []Ship, c Coord) int {
	for i, s := range ships {
		if s.Contains(c) {
			return i
		}
	}
	return -1
}

func sortedByLength(ships []Ship) []Ship {
	out := append([]Ship(nil), ships...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) < len(out[j]) })
	return out
}
