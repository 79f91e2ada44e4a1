package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"stakevest/crypto"
)

type Config struct {
	RPCAddress      string `toml:"RPCAddress"`
	DataDir         string `toml:"DataDir"`
	NetworkName     string `toml:"NetworkName"`
	Owner           string `toml:"Owner"`
	RewardToken     string `toml:"RewardToken"`
	VestingToken    string `toml:"VestingToken"`
	GenesisTime     int64  `toml:"GenesisTime"`
	BlockIntervalMs int64  `toml:"BlockIntervalMs"`

	Logging   Logging   `toml:"Logging"`
	Auth      Auth      `toml:"Auth"`
	Oracle    Oracle    `toml:"Oracle"`
	Indexer   Indexer   `toml:"Indexer"`
	Telemetry Telemetry `toml:"Telemetry"`
	Pauses    Pauses    `toml:"Pauses"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.NetworkName) == "" {
		c.NetworkName = "stakevest-local"
	}
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = ":8645"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./stakevest-data"
	}
	if strings.TrimSpace(c.RewardToken) == "" {
		c.RewardToken = crypto.TokenAddress("STV").String()
	}
	if c.BlockIntervalMs == 0 {
		c.BlockIntervalMs = 1_000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Auth.ClockSkewSeconds == 0 {
		c.Auth.ClockSkewSeconds = 30
	}
	if c.Indexer.DSN == "" {
		c.Indexer.DSN = filepath.Join(c.DataDir, "events.db")
	}
	if c.Oracle.TimeoutMs == 0 {
		c.Oracle.TimeoutMs = 5_000
	}
}

// createDefault creates and saves a default configuration file. The owner is
// left empty and must be filled in before the node starts.
func createDefault(path string) (*Config, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	cfg := &Config{
		GenesisTime: time.Now().Unix(),
		Auth: Auth{
			HMACSecret: hex.EncodeToString(secret),
			Issuer:     "stakevest",
		},
		Indexer: Indexer{Enabled: true},
	}
	cfg.applyDefaults()

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// BlockInterval returns the configured block interval.
func (c *Config) BlockInterval() time.Duration {
	return time.Duration(c.BlockIntervalMs) * time.Millisecond
}

// Genesis returns the genesis time used by the chain clock.
func (c *Config) Genesis() time.Time {
	return time.Unix(c.GenesisTime, 0)
}
