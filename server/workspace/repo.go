package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultIdleTimeout is how long an unused workspace is kept
const DefaultIdleTimeout = 30 * time.Minute

type Repo interface {
	Upsert(accessToken string, w *Workspace) error
	Get(accessToken string) (*Workspace, error)
	Delete(accessToken string) error
	// Sweep drops workspaces unused since before cutoff and returns how many went
	Sweep(cutoff time.Time) int
}

// Key is the map key of a token. Raw tokens are never used as keys.
func Key(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}
