package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stakevest/crypto"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, ":8645", cfg.RPCAddress)
	require.Equal(t, "stakevest-local", cfg.NetworkName)
	require.Len(t, cfg.Auth.HMACSecret, 64)
	require.True(t, cfg.Indexer.Enabled)
	require.Equal(t, int64(1_000), cfg.BlockIntervalMs)

	_, err = cfg.Validate()
	require.ErrorContains(t, err, "Owner")

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Auth.HMACSecret, reloaded.Auth.HMACSecret)
	require.Equal(t, cfg.GenesisTime, reloaded.GenesisTime)
}

func TestLoadAndValidate(t *testing.T) {
	owner := crypto.ModuleAddress("owner")
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `RPCAddress = "127.0.0.1:9000"
Owner = "` + owner.String() + `"
GenesisTime = 1700000000
BlockIntervalMs = 2000

[Auth]
HMACSecret = "secret"

[Oracle]
Mode = "file"
File = "allocations.yaml"

[Pauses]
Vesting = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	addrs, err := cfg.Validate()
	require.NoError(t, err)
	require.True(t, addrs.Owner.Equal(owner))
	require.True(t, addrs.RewardToken.Equal(crypto.TokenAddress("STV")))
	require.True(t, addrs.VestingToken.Equal(addrs.RewardToken))
	require.Equal(t, "2s", cfg.BlockInterval().String())
	require.Equal(t, int64(1_700_000_000), cfg.Genesis().Unix())
	require.True(t, cfg.Pauses.View().IsPaused("vesting"))
	require.False(t, cfg.Pauses.View().IsPaused("rewards"))
}

func TestValidateRejects(t *testing.T) {
	owner := crypto.ModuleAddress("owner").String()
	base := func() *Config {
		cfg := &Config{Owner: owner, GenesisTime: 1, Auth: Auth{HMACSecret: "s"}}
		cfg.applyDefaults()
		return cfg
	}
	cases := map[string]func(*Config){
		"bad owner":        func(c *Config) { c.Owner = "nope" },
		"bad reward token": func(c *Config) { c.RewardToken = "nope" },
		"interval":         func(c *Config) { c.BlockIntervalMs = -1 },
		"genesis":          func(c *Config) { c.GenesisTime = 0 },
		"secret":           func(c *Config) { c.Auth.HMACSecret = "" },
		"oracle mode":      func(c *Config) { c.Oracle.Mode = "carrier-pigeon" },
		"oracle url":       func(c *Config) { c.Oracle.Mode = OracleModeHTTP },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		_, err := cfg.Validate()
		require.Error(t, err, name)
	}
	_, err := base().Validate()
	require.NoError(t, err)
}
