package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSelection = errors.New("ship count must be between 1 and 5")
	ErrInvalidPlacement = errors.New("ship does not fit there or overlaps another ship")
	ErrAlreadyShot      = errors.New("cell already targeted")
	ErrFleetComplete    = errors.New("all ships already placed")
	ErrOutOfBounds      = errors.New("coordinate outside the board")
	ErrWrongPhase       = errors.New("action not allowed in the current phase")
	ErrNotPlacingPlayer = errors.New("it is the other player's turn to place")
	ErrTurnPending      = errors.New("turn switch pending")
	ErrNoTarget         = errors.New("no target selected")
)

// IncompletePlacementError is returned when a player readies up with ships
// still to place.
type IncompletePlacementError struct {
	Player    int
	Remaining int
}

func (e *IncompletePlacementError) Error() string {
	return fmt.Sprintf("player %d must place all ships first, remaining: %d", e.Player, e.Remaining)
}
