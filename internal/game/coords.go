package game

import (
	"fmt"
	"strconv"
	"strings"
)

// GridSize is the side of every board and shot grid.
const GridSize = 10

const colLetters = "ABCDEFGHIJ"

// Coord is a zero-based (row, column) position on a board.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < GridSize && c.Col >= 0 && c.Col < GridSize
}

// String renders the coordinate as its human label, e.g. (0,0) -> "A1".
func (c Coord) String() string { return Label(c.Row, c.Col) }

// ColLabel maps column 0 -> "A". Columns off the grid map to "?".
func ColLabel(col int) string {
	if col < 0 || col >= GridSize {
		return "?"
	}
	return colLetters[col : col+1]
}

// RowLabel maps row 0 -> "1".
func RowLabel(row int) string { return strconv.Itoa(row + 1) }

func Label(row, col int) string { return ColLabel(col) + RowLabel(row) }

// ParseLabel is the inverse of Label ("C7" -> row 6, col 2).
func ParseLabel(s string) (Coord, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || len(s) > 3 {
		return Coord{}, fmt.Errorf("label %q: %w", s, ErrOutOfBounds)
	}
	col := strings.IndexByte(colLetters, s[0])
	if col < 0 {
		return Coord{}, fmt.Errorf("label %q: %w", s, ErrOutOfBounds)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return Coord{}, fmt.Errorf("label %q: %w", s, ErrOutOfBounds)
	}
	c := Coord{Row: n - 1, Col: col}
	if !c.InBounds() {
		return Coord{}, fmt.Errorf("label %q: %w", s, ErrOutOfBounds)
	}
	return c, nil
}
