package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default file to be written: %v", err)
	}
	if cfg.RPCAddress != ":8645" || cfg.TokenName != "GuardToken" || cfg.ChainID != 68001 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	// Governance has no default, so the fresh file does not validate yet.
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure without governance address")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `RPCAddress = ":7000"
TokenName = "TestToken"
GovernanceAddress = "0x00000000000000000000000000000000000000ff"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":7000" || cfg.TokenName != "TestToken" {
		t.Fatalf("explicit values not honoured: %+v", cfg)
	}
	// Unset fields still receive defaults.
	if cfg.OpsAddress != ":9090" || cfg.RateLimitPerMin != 600 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	governance, err := cfg.Governance()
	if err != nil {
		t.Fatalf("governance: %v", err)
	}
	if governance[19] != 0xff {
		t.Fatalf("unexpected governance address: %x", governance)
	}
}

func TestGovernanceRejectsMalformedAddresses(t *testing.T) {
	cases := []string{"", "0x1234", "zz000000000000000000000000000000000000ff"}
	for _, value := range cases {
		cfg := &Config{GovernanceAddress: value}
		if _, err := cfg.Governance(); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestRPCTokenFromEnvironment(t *testing.T) {
	cfg := &Config{RPCTokenEnv: "GUARDTOKEN_TEST_RPC_TOKEN"}
	t.Setenv("GUARDTOKEN_TEST_RPC_TOKEN", "  secret  ")
	if got := cfg.RPCToken(); got != "secret" {
		t.Fatalf("expected trimmed token, got %q", got)
	}
}
