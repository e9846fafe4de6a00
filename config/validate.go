package config

import (
	"fmt"
	"strings"

	"bigbangchain/crypto"
)

// Validate checks the structural fields of the config file. Genesis business
// parameters are validated separately by the parameter store when seeded.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendLevelDB, BackendBolt:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.StorageBackend)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	for _, admin := range c.Roles.Admins {
		if _, err := crypto.DecodeAddress(admin); err != nil {
			return fmt.Errorf("config: invalid admin address %q: %w", admin, err)
		}
	}
	for _, adjuster := range c.Roles.Adjusters {
		if _, err := crypto.DecodeAddress(adjuster); err != nil {
			return fmt.Errorf("config: invalid adjuster address %q: %w", adjuster, err)
		}
	}
	if owner := strings.TrimSpace(c.Roles.Owner); owner != "" {
		if _, err := crypto.DecodeAddress(owner); err != nil {
			return fmt.Errorf("config: invalid owner address %q: %w", owner, err)
		}
	}
	return nil
}
