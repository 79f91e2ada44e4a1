package config

import nativecommon "stakevest/native/common"

// Logging controls the structured logger and its optional rotating file.
type Logging struct {
	Env        string `toml:"Env"`
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

// Auth configures bearer-token verification on the RPC server.
type Auth struct {
	HMACSecret       string `toml:"HMACSecret"`
	Issuer           string `toml:"Issuer"`
	Audience         string `toml:"Audience"`
	ClockSkewSeconds int    `toml:"ClockSkewSeconds"`
}

// Oracle selects the allocation source for the externally sourced vesting
// categories.
type Oracle struct {
	Mode              string  `toml:"Mode"`
	File              string  `toml:"File"`
	URL               string  `toml:"URL"`
	APIKey            string  `toml:"APIKey"`
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
	TimeoutMs         int     `toml:"TimeoutMs"`
}

const (
	OracleModeNone = ""
	OracleModeFile = "file"
	OracleModeHTTP = "http"
)

// Indexer configures the SQLite event history.
type Indexer struct {
	Enabled bool   `toml:"Enabled"`
	DSN     string `toml:"DSN"`
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	Traces      bool    `toml:"Traces"`
	Metrics     bool    `toml:"Metrics"`
	Endpoint    string  `toml:"Endpoint"`
	Insecure    bool    `toml:"Insecure"`
	Headers     string  `toml:"Headers"`
	SampleRatio float64 `toml:"SampleRatio"`
}

type Pauses struct {
	Rewards bool `toml:"Rewards"`
	Vesting bool `toml:"Vesting"`
}

// View converts the pause flags into the table consulted by the engines.
func (p Pauses) View() nativecommon.StaticPauses {
	return nativecommon.StaticPauses{
		"rewards": p.Rewards,
		"vesting": p.Vesting,
	}
}
