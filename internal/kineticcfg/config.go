// Package kineticcfg loads the demo CLI's YAML configuration: one or
// more Kinetic peer connections plus the demo's HTTP status port. Not
// required by the core library, only by cmd/kineticdemo.
package kineticcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level demo configuration document.
type Config struct {
	Peers  []PeerConfig `yaml:"peers"`
	Server ServerConfig `yaml:"server"`
}

// PeerConfig describes one Kinetic session to open: the session
// option set, plus a name for the demo's status surface and a path
// to the HMAC key instead of inlining key bytes.
type PeerConfig struct {
	Name           string `yaml:"name"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Identity       int64  `yaml:"identity"`
	HMACKeyFile    string `yaml:"hmac_key_file"`
	ClusterVersion int64  `yaml:"cluster_version"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
	UseSSL         bool   `yaml:"use_ssl"`
}

// ServerConfig is the demo's HTTP status surface.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Load reads and defaults a Config: read the whole file, seed
// defaults, then let yaml.Unmarshal override whatever the document
// sets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: 8088,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	for i := range cfg.Peers {
		p := &cfg.Peers[i]
		if p.Port == 0 {
			p.Port = 8123
		}
		if p.TimeoutSecs == 0 {
			p.TimeoutSecs = 10
		}
	}

	return cfg, nil
}

// HMACKey reads the peer's HMAC key material from its key file.
func (p PeerConfig) HMACKey() ([]byte, error) {
	if p.HMACKeyFile == "" {
		return nil, fmt.Errorf("kineticcfg: peer %q: hmac_key_file is required", p.Name)
	}
	key, err := os.ReadFile(p.HMACKeyFile)
	if err != nil {
		return nil, fmt.Errorf("kineticcfg: peer %q: %w", p.Name, err)
	}
	return key, nil
}
