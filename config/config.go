package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the daemon configuration. Governance is the only field
// without a usable default: the registry refuses to start without an
// explicitly configured principal.
type Config struct {
	RPCAddress        string `toml:"RPCAddress"`
	OpsAddress        string `toml:"OpsAddress"`
	DataDir           string `toml:"DataDir"`
	ChainID           uint64 `toml:"ChainID"`
	TokenName         string `toml:"TokenName"`
	TokenSymbol       string `toml:"TokenSymbol"`
	GovernanceAddress string `toml:"GovernanceAddress"`
	RPCTokenEnv       string `toml:"RPCTokenEnv"`
	RateLimitPerMin   int    `toml:"RateLimitPerMin"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8645"
	}
	if strings.TrimSpace(cfg.OpsAddress) == "" {
		cfg.OpsAddress = ":9090"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 68001
	}
	if strings.TrimSpace(cfg.TokenName) == "" {
		cfg.TokenName = "GuardToken"
	}
	if strings.TrimSpace(cfg.TokenSymbol) == "" {
		cfg.TokenSymbol = "GTK"
	}
	if strings.TrimSpace(cfg.RPCTokenEnv) == "" {
		cfg.RPCTokenEnv = "GUARDTOKEN_RPC_TOKEN"
	}
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = 600
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("config: create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("config: create default: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: encode default: %w", err)
	}
	return cfg, nil
}

// Validate checks fields that have no safe default.
func (c *Config) Validate() error {
	if _, err := c.Governance(); err != nil {
		return err
	}
	return nil
}

// Governance decodes the configured governance principal.
func (c *Config) Governance() ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimSpace(c.GovernanceAddress)
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	if trimmed == "" {
		return addr, fmt.Errorf("config: GovernanceAddress required")
	}
	if len(trimmed) != 2*len(addr) {
		return addr, fmt.Errorf("config: GovernanceAddress must be 20 bytes")
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("config: decode GovernanceAddress: %w", err)
	}
	copy(addr[:], decoded)
	return addr, nil
}

// RPCToken resolves the RPC bearer token from the configured environment
// variable. An empty result disables privileged RPC methods.
func (c *Config) RPCToken() string {
	return strings.TrimSpace(os.Getenv(c.RPCTokenEnv))
}
