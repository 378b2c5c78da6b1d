package cli

import (
	"time"
)

// DefaultEvaluatorsPath is read when --evaluators is not given.
const DefaultEvaluatorsPath = "evaluators.yaml"

// EncryptionKeyEnv names the variable holding the hex encoded AES-256 key
// when --encryption-key is not given.
const EncryptionKeyEnv = "CADO_ENCRYPTION_KEY"

// Local store backends selectable with --store.
const (
	StoreFile = "file"
	StoreLoam = "loam"
)

// Options carries the flags shared by every command.
type Options struct {
	Store          string        // Local store backend: file (default) or loam
	Dir            string        // Notebook directory of the file and loam stores
	Debug          bool          // Debug logging on stderr
	RedisURL       string        // Use Redis for storage and locking when set
	EvaluatorsPath string        // evaluators.yaml with extra process evaluators
	Timeout        time.Duration // Per-cell evaluation deadline, 0 for none
	Format         string        // Document format of the file store: json or yaml
	EncryptionKey  string        // Hex encoded AES-256 key sealing stored notebooks
	Redact         []string      // Output binding patterns masked before storage
	StripOutputs   bool          // Store code only, never outputs
}
