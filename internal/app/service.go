package app

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"battleship/internal/codec"
	"battleship/internal/game"
	"battleship/internal/merkle"
	"battleship/internal/zk"
)

// Placement actions reported by Click.
const (
	Placed  = "placed"
	Removed = "removed"
)

type PlacementResult struct {
	Action string    `json:"action"`
	Ship   game.Ship `json:"ship"`
}

// ShotReport is the result of one Fire call.
type ShotReport struct {
	Attacker  int                     `json:"attacker"`
	Target    game.Coord              `json:"target"`
	Outcome   game.Outcome            `json:"outcome"`
	Remaining int                     `json:"remaining"` // defender ships still afloat
	Winner    int                     `json:"winner,omitempty"`
	Proof     *codec.ShotProofPayload `json:"proof,omitempty"`
}

// Controller drives one GameState through selection, placement, battle and
// game over. It is not safe for concurrent use; front ends call it from the
// single goroutine that owns the game.
type Controller struct {
	cfg    Config
	log    *log.Logger
	state  *game.GameState
	seals  [2]*merkle.Commitment
	prover *zk.Prover
	rng    *rand.Rand

	switchPending bool
	lastCount     int
	shotsProven   int
}

// New builds a controller in the count-selection phase. With ProveShots set
// the shot circuit is compiled and its keys loaded or generated up front.
func New(cfg Config, logger *log.Logger) (*Controller, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Controller{
		cfg:   cfg,
		log:   logger,
		state: game.NewGameState(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg.ProveShots {
		p, err := zk.NewProver(cfg.KeysDir)
		if err != nil {
			return nil, fmt.Errorf("shot prover: %w", err)
		}
		c.prover = p
	}
	return c, nil
}

func (c *Controller) Config() Config { return c.cfg }

// State exposes the game for rendering. Callers must not mutate it.
func (c *Controller) State() *game.GameState { return c.state }

// TurnPending reports that a shot was resolved and EndTurn has not run yet.
func (c *Controller) TurnPending() bool { return c.switchPending }

// Commitment returns the seal of player n's fleet, nil before Ready.
func (c *Controller) Commitment(n int) *merkle.Commitment { return c.seals[n-1] }

// PreferredCount is the count the selection view should start from.
func (c *Controller) PreferredCount() int {
	if c.cfg.KeepShipCount && c.lastCount != 0 {
		return c.lastCount
	}
	return game.MinShips
}

// SelectCount starts placement for n ships per player.
func (c *Controller) SelectCount(n int) error {
	if c.state.Phase != game.PhaseSelecting {
		return game.ErrWrongPhase
	}
	if n < game.MinShips || n > game.MaxShips {
		return fmt.Errorf("%d ships: %w", n, game.ErrInvalidSelection)
	}
	c.reset()
	c.state.NumShips = n
	c.state.Phase = game.PhasePlacing
	c.lastCount = n
	c.log.Info("game started", "game", c.state.ID, "ships", n, "lengths", game.BuildShipSet(n))
	return nil
}

// ToggleOrientation flips H/V for subsequent placements.
func (c *Controller) ToggleOrientation() (game.Orientation, error) {
	if c.state.Phase != game.PhasePlacing {
		return c.state.Orientation, game.ErrWrongPhase
	}
	c.state.Orientation = c.state.Orientation.Toggle()
	return c.state.Orientation, nil
}

// Click handles a placement click by player on their own board. An occupied
// cell removes the whole ship under it; an empty cell places the next
// required length there with the current orientation.
func (c *Controller) Click(player, row, col int) (PlacementResult, error) {
	s := c.state
	if s.Phase != game.PhasePlacing {
		return PlacementResult{}, game.ErrWrongPhase
	}
	if player != s.PlacingPlayer {
		return PlacementResult{}, game.ErrNotPlacingPlayer
	}
	at := game.Coord{Row: row, Col: col}
	if !at.InBounds() {
		return PlacementResult{}, game.ErrOutOfBounds
	}
	p := s.Player(player)

	if p.Board.At(at) == game.Occupied {
		i := game.ShipIndexAt(p.Ships, at)
		if i < 0 {
			return PlacementResult{}, fmt.Errorf("occupied cell %s has no ship", at)
		}
		ship := p.Ships[i]
		p.Board.Remove(ship)
		p.Ships = append(p.Ships[:i:i], p.Ships[i+1:]...)
		c.log.Debug("ship removed", "player", player, "at", at, "length", len(ship))
		return PlacementResult{Action: Removed, Ship: ship}, nil
	}

	length := s.NextLength()
	if length > s.NumShips {
		return PlacementResult{}, game.ErrFleetComplete
	}
	cells, err := p.Board.Place(row, col, length, s.Orientation)
	if err != nil {
		return PlacementResult{}, err
	}
	p.Ships = append(p.Ships, cells)
	c.log.Debug("ship placed", "player", player, "at", at, "length", length, "orientation", s.Orientation)
	return PlacementResult{Action: Placed, Ship: cells}, nil
}

// AutoPlace fills the placing player's missing ships at random positions.
func (c *Controller) AutoPlace() error {
	s := c.state
	if s.Phase != game.PhasePlacing {
		return game.ErrWrongPhase
	}
	p := s.Player(s.PlacingPlayer)
	for l := s.NextLength(); l <= s.NumShips; l = s.NextLength() {
		cells, err := p.Board.PlaceRandom(c.rng, l)
		if err != nil {
			return err
		}
		p.Ships = append(p.Ships, cells)
	}
	return nil
}

// Ready seals the placing player's fleet and hands over to player 2, or
// starts the battle once both fleets are sealed.
func (c *Controller) Ready() error {
	s := c.state
	if s.Phase != game.PhasePlacing {
		return game.ErrWrongPhase
	}
	n := s.PlacingPlayer
	p := s.Player(n)
	if missing := s.NumShips - len(p.Ships); s.NextLength() <= s.NumShips {
		return &game.IncompletePlacementError{Player: n, Remaining: missing}
	}
	if err := p.Board.Validate(s.NumShips); err != nil {
		return err
	}
	seal, err := merkle.Commit(p.Board.Flatten(), nil)
	if err != nil {
		return fmt.Errorf("seal fleet: %w", err)
	}
	c.seals[n-1] = seal
	c.log.Info("fleet sealed", "player", n, "root", seal.RootHex())

	if n == 1 {
		s.PlacingPlayer = 2
		s.Orientation = game.Horizontal
		return nil
	}
	s.Phase = game.PhaseBattle
	s.CurrentTurn = 1
	c.log.Info("battle started", "game", s.ID)
	return nil
}

// Fire resolves the current player's shot at the opponent's board. A shot
// that leaves the opponent with ships afloat puts the controller in the
// turn-pending state until EndTurn; sinking the last ship ends the game.
func (c *Controller) Fire(row, col int) (ShotReport, error) {
	s := c.state
	if s.Phase != game.PhaseBattle {
		return ShotReport{}, game.ErrWrongPhase
	}
	if c.switchPending {
		return ShotReport{}, game.ErrTurnPending
	}
	at := game.Coord{Row: row, Col: col}
	if !at.InBounds() {
		return ShotReport{}, game.ErrOutOfBounds
	}

	attacker := s.CurrentTurn
	defender := game.Opponent(attacker)
	att, def := s.Player(attacker), s.Player(defender)

	out := game.FireShot(&att.Shots, &def.Incoming, def.Ships, def.Hits, row, col)
	rep := ShotReport{Attacker: attacker, Target: at, Outcome: out, Remaining: s.Remaining(defender)}
	if out == game.OutcomeAlready {
		return rep, game.ErrAlreadyShot
	}
	c.log.Info("shot", "attacker", attacker, "target", at, "outcome", out, "remaining", rep.Remaining)

	if c.prover != nil {
		proof, err := c.prove(attacker, defender, at)
		if err != nil {
			c.log.Error("shot proof failed", "target", at, "err", err)
		} else {
			rep.Proof = proof
		}
	}

	if rep.Remaining == 0 {
		s.Phase = game.PhaseGameOver
		s.Winner = attacker
		rep.Winner = attacker
		c.log.Info("game over", "game", s.ID, "winner", attacker)
		return rep, nil
	}
	c.switchPending = true
	return rep, nil
}

// EndTurn passes the turn to the other player after a resolved shot.
func (c *Controller) EndTurn() error {
	if c.state.Phase != game.PhaseBattle || !c.switchPending {
		return game.ErrWrongPhase
	}
	c.state.CurrentTurn = game.Opponent(c.state.CurrentTurn)
	c.switchPending = false
	return nil
}

// NewGame returns to count selection with everything reset.
func (c *Controller) NewGame() {
	c.reset()
	c.log.Info("new game", "game", c.state.ID)
}

func (c *Controller) reset() {
	c.state.ResetForNewGame()
	c.seals = [2]*merkle.Commitment{}
	c.switchPending = false
}

func (c *Controller) prove(attacker, defender int, at game.Coord) (*codec.ShotProofPayload, error) {
	seal := c.seals[defender-1]
	if seal == nil {
		return nil, errors.New("defender fleet not sealed")
	}
	cells := c.state.Player(defender).Board.Flatten()
	w, err := zk.WitnessFor(seal, cells, at.Row*game.GridSize+at.Col)
	if err != nil {
		return nil, err
	}
	proof, pub, err := c.prover.Prove(w)
	if err != nil {
		return nil, err
	}
	payload := &codec.ShotProofPayload{
		Game:     c.state.ID,
		Attacker: attacker,
		Target:   at.String(),
		Proof:    proof,
		Public:   pub,
	}
	c.shotsProven++
	if c.cfg.ProofDir != "" {
		name := filepath.Join(c.cfg.ProofDir, fmt.Sprintf("%s-%03d.json", c.state.ID, c.shotsProven))
		err := os.MkdirAll(c.cfg.ProofDir, 0o755)
		if err == nil {
			err = codec.SaveJSON(name, payload)
		}
		if err != nil {
			c.log.Warn("proof not saved", "file", name, "err", err)
		}
	}
	return payload, nil
}

// VerifyingKey returns the serialized groth16 verifying key, nil when
// shot proving is off.
func (c *Controller) VerifyingKey() ([]byte, error) {
	if c.prover == nil {
		return nil, nil
	}
	return c.prover.VerifyingKey()
}

// VerifyShot checks a proof with the controller's verifying key.
func (c *Controller) VerifyShot(p *codec.ShotProofPayload) error {
	if c.prover == nil {
		return errors.New("shot proving disabled")
	}
	return c.prover.Verify(p.Proof, p.Public)
}
