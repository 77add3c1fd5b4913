package config

import (
	"errors"
	"fmt"

	"github.com/aikodesk/aiko/internal/core"
)

// supportedVersion is the only config format version this build understands.
const supportedVersion = "1"

// Validate checks the structural integrity of a loaded configuration:
// the version field, and that every configured module ID is registered
// in this build. It does not validate module-specific settings — modules
// do that themselves via their Validate() lifecycle hook.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil configuration")
	}

	if cfg.Version != supportedVersion {
		return fmt.Errorf("config: unsupported version %q (want %q)", cfg.Version, supportedVersion)
	}

	if len(cfg.Modules) == 0 {
		return errors.New("config: no modules configured")
	}

	var errs []error
	for _, id := range Resolve(cfg) {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q (not compiled into this build)", id))
		}
	}
	return errors.Join(errs...)
}
