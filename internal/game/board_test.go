package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestCanPlace(t *testing.T) {
	var b Board
	tests := []struct {
		name             string
		row, col, length int
		o                Orientation
		want             bool
	}{
		{"single cell", 0, 0, 1, Horizontal, true},
		{"length ten fits at col 0", 0, 0, 10, Horizontal, true},
		{"length ten overflows at col 1", 0, 1, 10, Horizontal, false},
		{"vertical fits at row 5", 5, 3, 5, Vertical, true},
		{"vertical overflows at row 6", 6, 3, 5, Vertical, false},
		{"negative row", -1, 0, 1, Horizontal, false},
		{"col out of grid", 0, 10, 1, Horizontal, false},
		{"zero length", 2, 2, 0, Horizontal, false},
		{"bad orientation", 2, 2, 2, Orientation("D"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.CanPlace(tc.row, tc.col, tc.length, tc.o); got != tc.want {
				t.Errorf("CanPlace(%d,%d,%d,%s) = %v, want %v", tc.row, tc.col, tc.length, tc.o, got, tc.want)
			}
		})
	}
}

func TestCanPlaceHasNoSideEffects(t *testing.T) {
	var b Board
	if _, err := b.Place(4, 4, 3, Vertical); err != nil {
		t.Fatal(err)
	}
	before := b
	for i := 0; i < 50; i++ {
		b.CanPlace(i%GridSize, (i*7)%GridSize, 1+i%5, Horizontal)
		b.CanPlace(i%GridSize, (i*3)%GridSize, 1+i%5, Vertical)
	}
	if b != before {
		t.Errorf("CanPlace mutated the board")
	}
}

func TestPlace(t *testing.T) {
	var b Board
	cells, err := b.Place(1, 1, 3, Horizontal)
	if err != nil {
		t.Fatal(err)
	}
	want := []Coord{{1, 1}, {1, 2}, {1, 3}}
	if len(cells) != len(want) {
		t.Fatalf("got %v, want %v", cells, want)
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, cells[i], want[i])
		}
	}
	if n := b.Occupied(); n != 3 {
		t.Errorf("occupied = %d, want 3", n)
	}

	cells, err = b.Place(0, 2, 3, Vertical)
	if !errors.Is(err, ErrInvalidPlacement) {
		t.Errorf("overlap err = %v, want ErrInvalidPlacement", err)
	}
	if cells != nil {
		t.Errorf("overlap returned cells %v", cells)
	}
	if n := b.Occupied(); n != 3 {
		t.Errorf("failed placement changed occupied count to %d", n)
	}

	for _, at := range []Coord{{0, 10}, {0, -1}, {-1, 0}, {10, 0}} {
		before := b
		cells, err := b.Place(at.Row, at.Col, 1, Horizontal)
		if !errors.Is(err, ErrInvalidPlacement) || cells != nil {
			t.Errorf("Place(%d,%d) = %v, %v, want ErrInvalidPlacement", at.Row, at.Col, cells, err)
		}
		if b != before {
			t.Errorf("Place(%d,%d) off the grid mutated the board", at.Row, at.Col)
		}
	}
}

func TestPlaceOnlyFillsEmptyCells(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		var b Board
		for _, l := range BuildShipSet(5) {
			r, c := rng.Intn(GridSize), rng.Intn(GridSize)
			o := Horizontal
			if rng.Intn(2) == 1 {
				o = Vertical
			}
			before := b
			n := b.Occupied()
			cells, err := b.Place(r, c, l, o)
			if err != nil {
				if b != before {
					t.Fatalf("rejected placement mutated the board")
				}
				continue
			}
			for _, cell := range cells {
				if before.At(cell) != Empty {
					t.Fatalf("placed over occupied cell %v", cell)
				}
			}
			if got := b.Occupied(); got != n+l {
				t.Fatalf("occupied = %d, want %d", got, n+l)
			}
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	var b Board
	ship, _ := b.Place(2, 2, 4, Vertical)
	other, _ := b.Place(0, 0, 2, Horizontal)
	b.Remove(ship)
	if n := b.Occupied(); n != len(other) {
		t.Errorf("after remove occupied = %d, want %d", n, len(other))
	}
	if !b.CanPlace(2, 2, 4, Vertical) {
		t.Errorf("freed cells not placeable")
	}
	b.Clear()
	if n := b.Occupied(); n != 0 {
		t.Errorf("after clear occupied = %d", n)
	}
}

func TestValidate(t *testing.T) {
	var b Board
	for i, l := range BuildShipSet(3) {
		if _, err := b.Place(i*2, 0, l, Horizontal); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Validate(3); err != nil {
		t.Errorf("Validate(3) = %v", err)
	}
	if err := b.Validate(4); err == nil {
		t.Errorf("Validate(4) on a 3-ship board should fail")
	}
	b.Cells[9][9] = 7
	if err := b.Validate(3); err == nil {
		t.Errorf("non-binary cell accepted")
	}
}

func TestPlaceRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var b Board
	for _, l := range BuildShipSet(MaxShips) {
		if _, err := b.PlaceRandom(rng, l); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Validate(MaxShips); err != nil {
		t.Error(err)
	}
}

func TestBoardString(t *testing.T) {
	var b Board
	b.Place(0, 0, 2, Horizontal)
	s := b.String()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != GridSize+1 {
		t.Fatalf("got %d lines", len(lines))
	}
	got := strings.Join(strings.Fields(lines[1])[:4], " ")
	if got != "1 S S ~" {
		t.Errorf("first row = %q", lines[1])
	}
}
