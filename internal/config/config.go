// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package config handles application configuration: the user's patch
// catalogue, SSH host definitions for remote targets, and reading and
// writing the configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"blockfix/internal/patch"

	"gopkg.in/yaml.v3"
)

var ErrHostNotFound = errors.New("ssh host not found")

// SSHHost represents a remote SSH host whose files can be patched using
// the host:path target form.
type SSHHost struct {
	// Name is the unique identifier for this host configuration
	Name string `yaml:"name"`

	// Hostname is the server address (IP or domain)
	Hostname string `yaml:"hostname"`

	// User is the SSH username for authentication
	User string `yaml:"user"`

	// Port is the SSH port number (optional, defaults to standard SSH port)
	Port int `yaml:"port,omitempty"`

	// KeyPath is the path to the SSH private key file
	KeyPath string `yaml:"key_path,omitempty"`

	// Password is an optional authentication method (plaintext, discouraged)
	Password string `yaml:"password,omitempty"`

	// Disabled hosts are never used as targets
	Disabled bool `yaml:"disabled,omitempty"`
}

// Config represents the top-level application configuration
type Config struct {
	// Patches are user-defined patches, merged over the builtin ones
	Patches []patch.Patch `yaml:"patches,omitempty"`

	// SSHHosts is a list of remote SSH host configurations
	SSHHosts []SSHHost `yaml:"ssh_hosts"`
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "blockfix", "config.yaml"), nil
}

func LoadConfig() (Config, error) {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return cfg, nil
}

func EnsureConfigDir() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(configPath)
	err = os.MkdirAll(configDir, 0750) // rwxr-x---
	if err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	return nil
}

func SaveConfig(cfg Config) error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}

	err = EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// Write with permissions rw-r----- (0640)
	err = os.WriteFile(configPath, data, 0640)
	if err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configPath, err)
	}

	return nil
}

// EnabledHosts returns the hosts that may be used as targets.
func (c Config) EnabledHosts() []SSHHost {
	return slices.DeleteFunc(slices.Clone(c.SSHHosts), func(h SSHHost) bool {
		return h.Disabled
	})
}

// AddHost appends host, rejecting duplicate names.
func (c *Config) AddHost(host SSHHost) error {
	if host.Name == "" {
		return errors.New("host name is required")
	}
	if strings.ContainsAny(host.Name, ":/ ") {
		return fmt.Errorf("host name %q must not contain ':', '/' or spaces", host.Name)
	}
	if slices.ContainsFunc(c.SSHHosts, func(h SSHHost) bool { return h.Name == host.Name }) {
		return fmt.Errorf("host %q already exists", host.Name)
	}
	c.SSHHosts = append(c.SSHHosts, host)
	return nil
}

// RemoveHost deletes the host called name.
func (c *Config) RemoveHost(name string) error {
	idx := slices.IndexFunc(c.SSHHosts, func(h SSHHost) bool { return h.Name == name })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrHostNotFound, name)
	}
	c.SSHHosts = slices.Delete(c.SSHHosts, idx, idx+1)
	return nil
}

func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
