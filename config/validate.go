package config

import (
	"fmt"
	"strings"

	"stakevest/crypto"
)

// Addresses holds the decoded identities from the configuration.
type Addresses struct {
	Owner        crypto.Address
	RewardToken  crypto.Address
	VestingToken crypto.Address
}

// Validate checks the configuration and decodes its addresses.
func (c *Config) Validate() (Addresses, error) {
	var out Addresses
	if strings.TrimSpace(c.Owner) == "" {
		return out, fmt.Errorf("config: Owner must be set to the administrator address")
	}
	owner, err := crypto.DecodeAddress(c.Owner)
	if err != nil {
		return out, fmt.Errorf("config: Owner: %w", err)
	}
	out.Owner = owner
	if out.RewardToken, err = crypto.DecodeAddress(c.RewardToken); err != nil {
		return out, fmt.Errorf("config: RewardToken: %w", err)
	}
	out.VestingToken = out.RewardToken
	if strings.TrimSpace(c.VestingToken) != "" {
		if out.VestingToken, err = crypto.DecodeAddress(c.VestingToken); err != nil {
			return out, fmt.Errorf("config: VestingToken: %w", err)
		}
	}
	if c.BlockIntervalMs <= 0 {
		return out, fmt.Errorf("config: BlockIntervalMs must be positive")
	}
	if c.GenesisTime <= 0 {
		return out, fmt.Errorf("config: GenesisTime must be set")
	}
	if strings.TrimSpace(c.Auth.HMACSecret) == "" {
		return out, fmt.Errorf("config: Auth.HMACSecret required")
	}
	switch c.Oracle.Mode {
	case OracleModeNone:
	case OracleModeFile:
		if strings.TrimSpace(c.Oracle.File) == "" {
			return out, fmt.Errorf("config: Oracle.File required in file mode")
		}
	case OracleModeHTTP:
		if strings.TrimSpace(c.Oracle.URL) == "" {
			return out, fmt.Errorf("config: Oracle.URL required in http mode")
		}
	default:
		return out, fmt.Errorf("config: unknown oracle mode %q", c.Oracle.Mode)
	}
	return out, nil
}
