package game

import "github.com/google/uuid"

// Phase of a game.
type Phase string

const (
	PhaseSelecting Phase = "selecting"
	PhasePlacing   Phase = "placing"
	PhaseBattle    Phase = "battle"
	PhaseGameOver  Phase = "game_over"
)

// Player is everything one side owns.
type Player struct {
	Board    Board
	Ships    []Ship
	Hits     *HitSet  // hits taken on this player's ships
	Shots    ShotGrid // shots this player fired
	Incoming ShotGrid // shots received on this player's board
}

// GameState is the aggregate for one game. Players are numbered 1 and 2.
type GameState struct {
	ID       string
	NumShips int // 0 until a count is chosen

	Phase         Phase
	PlacingPlayer int
	Orientation   Orientation

	Players     [2]Player
	CurrentTurn int
	Winner      int // 0 while nobody has won
}

func NewGameState() *GameState {
	s := &GameState{}
	s.ResetForNewGame()
	return s
}

// ResetForNewGame puts every field back to its start-of-game value.
func (s *GameState) ResetForNewGame() {
	*s = GameState{
		ID:            uuid.NewString(),
		Phase:         PhaseSelecting,
		PlacingPlayer: 1,
		Orientation:   Horizontal,
		CurrentTurn:   1,
	}
	for i := range s.Players {
		s.Players[i].Hits = NewHitSet()
	}
}

// Player returns player n (1 or 2).
func (s *GameState) Player(n int) *Player { return &s.Players[n-1] }

// Opponent of player n.
func Opponent(n int) int { return 3 - n }

// NextLength is the next ship length the placing player must place.
func (s *GameState) NextLength() int {
	return NextRequiredLength(s.Player(s.PlacingPlayer).Ships, s.NumShips)
}

// Remaining is the number of player n's ships still afloat.
func (s *GameState) Remaining(n int) int {
	p := s.Player(n)
	return ShipsRemaining(p.Ships, p.Hits)
}
