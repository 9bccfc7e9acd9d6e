package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that parses Go duration strings ("48h",
// "30m") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds runtime wiring options for building the trust core.
type Config struct {
	// Home is the state directory, e.g. $HOME/.meshguard.
	Home string `yaml:"home"`
	// KEMAlgorithm and SigAlgorithm accept canonical NIST names or the
	// deprecated Kyber/Dilithium aliases.
	KEMAlgorithm string `yaml:"kem_algorithm"`
	SigAlgorithm string `yaml:"sig_algorithm"`
	// JoinTTL bounds how long a mesh join credential stays valid.
	JoinTTL Duration `yaml:"join_ttl"`
	// AuditRingSize bounds the in-memory audit buffer per mesh.
	AuditRingSize int `yaml:"audit_ring_size"`
}

// DefaultConfig returns the stock configuration rooted at home.
func DefaultConfig(home string) Config {
	return Config{
		Home:          home,
		KEMAlgorithm:  "ML-KEM-768",
		SigAlgorithm:  "ML-DSA-65",
		AuditRingSize: 256,
	}
}

// LoadConfig reads config.yaml under home, if present, over the defaults.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)
	b, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Home == "" {
		cfg.Home = home
	}
	if cfg.AuditRingSize <= 0 {
		cfg.AuditRingSize = 256
	}
	return cfg, nil
}
