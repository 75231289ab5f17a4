package codec

import (
	"encoding/json"
	"os"

	"battleship/internal/zk"
)

// ShotProofPayload is a proven shot as exported to disk and over HTTP.
type ShotProofPayload struct {
	Game     string        `json:"game"`
	Attacker int           `json:"attacker"`
	Target   string        `json:"target"` // e.g. "C7"
	Proof    []byte        `json:"proof"`
	Public   zk.ShotPublic `json:"public"` // salted root, cell index, hit bit
}

func SaveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func LoadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
