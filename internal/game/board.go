package game

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"text/tabwriter"
)

type Cell uint8

const (
	Empty    Cell = 0
	Occupied Cell = 1
)

// Orientation of a ship: horizontal grows rightward, vertical grows downward.
type Orientation string

const (
	Horizontal Orientation = "H"
	Vertical   Orientation = "V"
)

func (o Orientation) Toggle() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Board is a 10x10 occupancy grid for one player's ships.
type Board struct {
	Cells [GridSize][GridSize]Cell `json:"cells"`
}

// cellsFor lists the cells a ship would cover, or false if any of them
// falls outside the grid.
func cellsFor(row, col, length int, o Orientation) ([]Coord, bool) {
	if length <= 0 || (o != Horizontal && o != Vertical) {
		return nil, false
	}
	if !(Coord{Row: row, Col: col}).InBounds() {
		return nil, false
	}
	out := make([]Coord, 0, length)
	for i := 0; i < length; i++ {
		c := Coord{Row: row, Col: col + i}
		if o == Vertical {
			c = Coord{Row: row + i, Col: col}
		}
		if !c.InBounds() {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

// CanPlace reports whether a ship fits at (row, col) on empty cells only.
func (b *Board) CanPlace(row, col, length int, o Orientation) bool {
	cells, ok := cellsFor(row, col, length, o)
	if !ok {
		return false
	}
	for _, c := range cells {
		if b.Cells[c.Row][c.Col] != Empty {
			return false
		}
	}
	return true
}

// Place marks the ship's cells occupied and returns them in order. An
// invalid placement leaves the board untouched.
func (b *Board) Place(row, col, length int, o Orientation) ([]Coord, error) {
	if !b.CanPlace(row, col, length, o) {
		return nil, fmt.Errorf("place %s len %d %s: %w", Label(row, col), length, o, ErrInvalidPlacement)
	}
	cells, _ := cellsFor(row, col, length, o)
	for _, c := range cells {
		b.Cells[c.Row][c.Col] = Occupied
	}
	return cells, nil
}

// Remove frees every cell of ship.
func (b *Board) Remove(ship Ship) {
	for _, c := range ship {
		if c.InBounds() {
			b.Cells[c.Row][c.Col] = Empty
		}
	}
}

func (b *Board) Clear() { b.Cells = [GridSize][GridSize]Cell{} }

func (b *Board) At(c Coord) Cell { return b.Cells[c.Row][c.Col] }

// Occupied counts occupied cells.
func (b *Board) Occupied() int {
	n := 0
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if b.Cells[r][c] == Occupied {
				n++
			}
		}
	}
	return n
}

// Validate checks that cells are binary and that the occupied count matches
// a full fleet of numShips ships (1+2+...+numShips cells).
func (b *Board) Validate(numShips int) error {
	total := 0
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			v := b.Cells[r][c]
			if v != Empty && v != Occupied {
				return errors.New("board has non-binary cell")
			}
			total += int(v)
		}
	}
	if want := numShips * (numShips + 1) / 2; total != want {
		return fmt.Errorf("board must contain exactly %d ship cells, has %d", want, total)
	}
	return nil
}

// Flatten returns the cells in row-major order.
func (b *Board) Flatten() []uint8 {
	out := make([]uint8, 0, GridSize*GridSize)
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			out = append(out, uint8(b.Cells[r][c]))
		}
	}
	return out
}

func (b *Board) String() string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 2, 0, 1, ' ', 0)
	fmt.Fprint(tw, "\t")
	for c := 0; c < GridSize; c++ {
		fmt.Fprint(tw, ColLabel(c)+"\t")
	}
	fmt.Fprintln(tw)
	for r := 0; r < GridSize; r++ {
		fmt.Fprint(tw, RowLabel(r)+"\t")
		for c := 0; c < GridSize; c++ {
			if b.Cells[r][c] == Occupied {
				fmt.Fprint(tw, "S\t")
			} else {
				fmt.Fprint(tw, "~\t")
			}
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	return buf.String()
}

// PlaceRandom drops a ship of the given length at a random free position.
// No adjacency rule is enforced.
func (b *Board) PlaceRandom(rng *rand.Rand, length int) ([]Coord, error) {
	for tries := 0; tries < 10000; tries++ {
		o := Horizontal
		if rng.Intn(2) == 0 {
			o = Vertical
		}
		r, c := rng.Intn(GridSize), rng.Intn(GridSize)
		if b.CanPlace(r, c, length, o) {
			return b.Place(r, c, length, o)
		}
	}
	return nil, fmt.Errorf("failed to place ship of length %d: %w", length, ErrInvalidPlacement)
}
