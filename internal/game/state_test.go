package game

import "testing"

func TestResetForNewGame(t *testing.T) {
	s := NewGameState()
	firstID := s.ID
	if s.ID == "" || s.Phase != PhaseSelecting || s.PlacingPlayer != 1 || s.CurrentTurn != 1 || s.Orientation != Horizontal {
		t.Fatalf("fresh state = %+v", s)
	}

	s.NumShips = 2
	s.Phase = PhaseBattle
	s.PlacingPlayer = 2
	s.Orientation = Vertical
	s.CurrentTurn = 2
	s.Winner = 1
	p := s.Player(2)
	cells, _ := p.Board.Place(0, 0, 2, Horizontal)
	p.Ships = append(p.Ships, cells)
	FireShot(&s.Player(1).Shots, &p.Incoming, p.Ships, p.Hits, 0, 0)

	s.ResetForNewGame()
	if s.ID == firstID {
		t.Errorf("id not regenerated")
	}
	if s.NumShips != 0 || s.Phase != PhaseSelecting || s.PlacingPlayer != 1 ||
		s.Orientation != Horizontal || s.CurrentTurn != 1 || s.Winner != 0 {
		t.Errorf("scalar fields not reset: %+v", s)
	}
	for n := 1; n <= 2; n++ {
		p := s.Player(n)
		if p.Board.Occupied() != 0 || len(p.Ships) != 0 || p.Hits.Len() != 0 ||
			p.Shots.Count(ShotUnknown) != GridSize*GridSize || p.Incoming.Count(ShotUnknown) != GridSize*GridSize {
			t.Errorf("player %d not reset", n)
		}
	}
}

// Placing the full set for N ships and firing at every occupied cell always
// sinks the whole fleet.
func TestFullFleetRoundTrip(t *testing.T) {
	for n := MinShips; n <= MaxShips; n++ {
		s := NewGameState()
		s.NumShips = n
		def := s.Player(2)
		for i, l := range BuildShipSet(n) {
			cells, err := def.Board.Place(i, 0, l, Horizontal)
			if err != nil {
				t.Fatal(err)
			}
			def.Ships = append(def.Ships, cells)
		}
		att := s.Player(1)
		fired := 0
		for r := 0; r < GridSize; r++ {
			for c := 0; c < GridSize; c++ {
				if def.Board.Cells[r][c] == Occupied {
					FireShot(&att.Shots, &def.Incoming, def.Ships, def.Hits, r, c)
					fired++
				}
			}
		}
		if fired != n*(n+1)/2 {
			t.Errorf("n=%d fired %d shots", n, fired)
		}
		if got := s.Remaining(2); got != 0 {
			t.Errorf("n=%d remaining = %d", n, got)
		}
	}
}

func TestOpponent(t *testing.T) {
	if Opponent(1) != 2 || Opponent(2) != 1 {
		t.Error("Opponent mapping wrong")
	}
}
