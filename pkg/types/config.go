package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend" validate:"required"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// SyncStrategy controls when the SQLite backend rewrites its JSONL
	// files. Empty means SyncImmediate.
	SyncStrategy string `json:"sync_strategy,omitempty" yaml:"sync_strategy,omitempty" validate:"omitempty,oneof=immediate on_close"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Sync strategies for the SQLite backend.
const (
	SyncImmediate = "immediate" // persist after every write
	SyncOnClose   = "on_close"  // persist dirty tables on Detach
)

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrSyncStrategyUnknown = errors.New("unknown sync strategy")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating config: %w", err)
		}
		for _, fe := range verrs {
			if fe.Field() == "SyncStrategy" {
				return fmt.Errorf("%w: %q", ErrSyncStrategyUnknown, c.SyncStrategy)
			}
		}
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// EffectiveSyncStrategy returns the sync strategy with the default applied.
func (c Config) EffectiveSyncStrategy() string {
	if c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}
