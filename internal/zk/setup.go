package zk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"battleship/internal/merkle"
)

const (
	vkFile = "shot.vk"
	pkFile = "shot.pk"
)

// ShotPublic is the public part of a shot proof.
type ShotPublic struct {
	Root  *big.Int `json:"root"`
	Index int      `json:"index"`
	Hit   uint8    `json:"hit"`
}

// ShotWitness is everything the defender knows about one cell.
type ShotWitness struct {
	Cell  uint8
	Index int
	Path  []*big.Int
	Dir   []uint8
	Salt  *big.Int
	Root  *big.Int
}

// WitnessFor opens commitment c at board index idx.
func WitnessFor(c *merkle.Commitment, cells []uint8, idx int) (ShotWitness, error) {
	if idx < 0 || idx >= len(cells) {
		return ShotWitness{}, fmt.Errorf("cell index %d out of range", idx)
	}
	path, dir, err := c.Tree.Path(idx)
	if err != nil {
		return ShotWitness{}, err
	}
	return ShotWitness{
		Cell:  cells[idx],
		Index: idx,
		Path:  path,
		Dir:   dir,
		Salt:  c.Salt,
		Root:  c.Root,
	}, nil
}

// Prover holds the compiled shot circuit and its groth16 keys.
type Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

func compile() (constraint.ConstraintSystem, error) {
	var circuit ShotCircuit
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
}

// NewProver compiles the circuit and loads keys from dir. When either key
// file is missing or unreadable both are regenerated and written back. An
// empty dir keeps freshly generated keys in memory only.
func NewProver(dir string) (*Prover, error) {
	ccs, err := compile()
	if err != nil {
		return nil, fmt.Errorf("compile shot circuit: %w", err)
	}
	p := &Prover{ccs: ccs}

	if dir != "" {
		if vk, pk, err := readKeys(dir); err == nil {
			p.vk, p.pk = vk, pk
			return p, nil
		}
	}

	p.pk, p.vk, err = groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	if dir != "" {
		if err := writeKeys(dir, p.vk, p.pk); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// EnsureShotKeys makes sure dir holds a usable key pair.
func EnsureShotKeys(dir string) error {
	_, err := NewProver(dir)
	return err
}

// Prove produces a serialized proof for one opened cell.
func (p *Prover) Prove(w ShotWitness) ([]byte, ShotPublic, error) {
	if len(w.Path) != merkle.Depth || len(w.Dir) != merkle.Depth {
		return nil, ShotPublic{}, errors.New("bad path length")
	}
	var assign ShotCircuit
	assign.Cell = w.Cell
	for i := 0; i < merkle.Depth; i++ {
		assign.Path[i] = w.Path[i]
		assign.Dir[i] = w.Dir[i]
	}
	assign.Salt = w.Salt
	assign.Root = w.Root
	assign.Index = w.Index
	assign.Hit = w.Cell

	full, err := frontend.NewWitness(&assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, ShotPublic{}, err
	}
	proof, err := groth16.Prove(p.ccs, p.pk, full)
	if err != nil {
		return nil, ShotPublic{}, fmt.Errorf("prove shot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, ShotPublic{}, err
	}
	pub := ShotPublic{Root: new(big.Int).Set(w.Root), Index: w.Index, Hit: w.Cell}
	return buf.Bytes(), pub, nil
}

// Verify checks a proof with the prover's own verifying key.
func (p *Prover) Verify(proofBin []byte, pub ShotPublic) error {
	return verify(p.vk, proofBin, pub)
}

// VerifyingKey serializes the verifying key.
func (p *Prover) VerifyingKey() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.vk.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// VerifyFile checks a proof against a verifying key on disk.
func VerifyFile(vkPath string, proofBin []byte, pub ShotPublic) error {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFrom(vkPath, vk); err != nil {
		return err
	}
	return verify(vk, proofBin, pub)
}

func verify(vk groth16.VerifyingKey, proofBin []byte, pub ShotPublic) error {
	if pub.Root == nil {
		return errors.New("proof payload missing public root")
	}
	if pub.Hit != 0 && pub.Hit != 1 {
		return errors.New("invalid hit public output")
	}
	var assign ShotCircuit
	assign.Root = pub.Root
	assign.Index = pub.Index
	assign.Hit = pub.Hit
	pubWit, err := frontend.NewWitness(&assign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBin)); err != nil {
		return fmt.Errorf("decode proof: %w", err)
	}
	return groth16.Verify(proof, vk, pubWit)
}

// --- key IO via io.WriterTo / io.ReaderFrom ---

func writeKeys(dir string, vk groth16.VerifyingKey, pk groth16.ProvingKey) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeTo(filepath.Join(dir, vkFile), vk); err != nil {
		return err
	}
	return writeTo(filepath.Join(dir, pkFile), pk)
}

func readKeys(dir string) (groth16.VerifyingKey, groth16.ProvingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFrom(filepath.Join(dir, vkFile), vk); err != nil {
		return nil, nil, err
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readFrom(filepath.Join(dir, pkFile), pk); err != nil {
		return nil, nil, err
	}
	return vk, pk, nil
}

// VKPath is where NewProver keeps the verifying key under dir.
func VKPath(dir string) string { return filepath.Join(dir, vkFile) }

func writeTo(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = w.WriteTo(f)
	return err
}

func readFrom(path string, r io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.ReadFrom(f)
	return err
}
