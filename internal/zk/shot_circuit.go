package zk

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"battleship/internal/merkle"
)

// ShotCircuit proves that the board cell at a public index holds the public
// hit bit, against a salted fleet commitment, without revealing the board.
type ShotCircuit struct {
	Cell frontend.Variable               `gnark:",secret"`
	Path [merkle.Depth]frontend.Variable `gnark:",secret"`
	Dir  [merkle.Depth]frontend.Variable `gnark:",secret"`
	Salt frontend.Variable               `gnark:",secret"`

	Root  frontend.Variable `gnark:",public"`
	Index frontend.Variable `gnark:",public"`
	Hit   frontend.Variable `gnark:",public"`
}

func (c *ShotCircuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.Cell)
	api.AssertIsEqual(c.Hit, c.Cell)

	// direction bits are the leaf index, least significant first
	for i := 0; i < merkle.Depth; i++ {
		api.AssertIsBoolean(c.Dir[i])
	}
	api.AssertIsEqual(api.FromBinary(c.Dir[:]...), c.Index)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Cell)
	curr := h.Sum()

	for i := 0; i < merkle.Depth; i++ {
		h.Reset()
		left := api.Select(c.Dir[i], c.Path[i], curr)
		right := api.Select(c.Dir[i], curr, c.Path[i])
		h.Write(left, right)
		curr = h.Sum()
	}

	h.Reset()
	h.Write(c.Salt, curr)
	api.AssertIsEqual(h.Sum(), c.Root)
	return nil
}
