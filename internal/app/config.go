package app

import "time"

// Config holds the knobs the front ends expose as flags.
type Config struct {
	TurnDelay     time.Duration // pause between a shot and the turn switch
	GameOverDelay time.Duration // pause before returning to count selection
	KeepShipCount bool          // preselect the previous count on a new game

	ProveShots bool   // prove every shot against the defender's sealed fleet
	KeysDir    string // groth16 key directory, "" keeps keys in memory
	ProofDir   string // when set, proven shots are written here as JSON
}

func DefaultConfig() Config {
	return Config{
		TurnDelay:     3 * time.Second,
		GameOverDelay: 2500 * time.Millisecond,
		KeysDir:       "./keys",
	}
}
