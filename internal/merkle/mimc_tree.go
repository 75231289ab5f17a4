package merkle

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

const (
	Depth  = 7 // 128 leaves, enough for a 10x10 board
	Leaves = 1 << Depth
)

// element encodes a BN254 field element as 32 bytes big-endian.
func element(x *big.Int) []byte {
	out := make([]byte, fr.Bytes)
	return x.FillBytes(out)
}

// HashLeaf is MiMC(cell), consistent with the in-circuit hash.
func HashLeaf(cell uint8) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(element(new(big.Int).SetUint64(uint64(cell))))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// HashPair is MiMC(left, right).
func HashPair(left, right *big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(element(left))
	h.Write(element(right))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Tree is a fixed-size binary Merkle tree stored level by level:
// Levels[0] holds the leaves, Levels[Depth] the root.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"`
}

// Build hashes cells (row-major board cells) into a tree, padding the
// unused leaves with HashLeaf(0).
func Build(cells []uint8) (*Tree, error) {
	if len(cells) > Leaves {
		return nil, fmt.Errorf("too many leaves: %d > %d", len(cells), Leaves)
	}
	pad := HashLeaf(0)
	leaves := make([]*big.Int, Leaves)
	for i := range leaves {
		if i < len(cells) {
			leaves[i] = HashLeaf(cells[i])
		} else {
			leaves[i] = new(big.Int).Set(pad)
		}
	}

	levels := [][]*big.Int{leaves}
	for prev := leaves; len(prev) > 1; {
		up := make([]*big.Int, len(prev)/2)
		for i := range up {
			up[i] = HashPair(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
		prev = up
	}
	return &Tree{Depth: len(levels) - 1, Levels: levels}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[t.Depth][0]) }

// Path returns sibling hashes and direction bits for leaf idx, bottom up.
// dir[i]=0 means the running node is a left child, 1 a right child.
func (t *Tree) Path(idx int) (path []*big.Int, dir []uint8, err error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, nil, errors.New("leaf index out of range")
	}
	path = make([]*big.Int, 0, t.Depth)
	dir = make([]uint8, 0, t.Depth)
	cur := idx
	for level := 0; level < t.Depth; level++ {
		sib := cur ^ 1
		path = append(path, new(big.Int).Set(t.Levels[level][sib]))
		dir = append(dir, uint8(cur&1))
		cur >>= 1
	}
	return path, dir, nil
}

// Commitment seals a board: Root = MiMC(Salt, tree root). The salt keeps
// equal boards from producing equal roots.
type Commitment struct {
	Tree *Tree    `json:"tree"`
	Salt *big.Int `json:"salt"`
	Root *big.Int `json:"root"`
}

// Commit builds the tree for cells and salts its root with a random field
// element read from rnd (crypto/rand when nil).
func Commit(cells []uint8, rnd io.Reader) (*Commitment, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	t, err := Build(cells)
	if err != nil {
		return nil, err
	}
	salt, err := rand.Int(rnd, fr.Modulus())
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return &Commitment{Tree: t, Salt: salt, Root: HashPair(salt, t.Root())}, nil
}

func (c *Commitment) RootHex() string { return FormatHex(c.Root) }

// Verify reports whether cells still hash to the sealed root.
func (c *Commitment) Verify(cells []uint8) bool {
	t, err := Build(cells)
	if err != nil {
		return false
	}
	return HashPair(c.Salt, t.Root()).Cmp(c.Root) == 0
}

func FormatHex(x *big.Int) string { return fmt.Sprintf("0x%x", x) }

// ParseHex accepts a field element with or without the 0x prefix.
func ParseHex(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.New("empty hex value")
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value %q", s)
	}
	return n, nil
}
