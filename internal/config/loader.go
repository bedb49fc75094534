// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hjson/hjson-go/v4"
)

// Loader loads overseerd's HJSON configuration file.
type Loader struct{}

// NewLoader returns a ready-to-use Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, env-expands, and parses the HJSON config at path.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.Expand(string(data), lookupEnv)

	var raw map[string]interface{}
	if err := hjson.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads path and fills in every zero-value field
// applyDefaults covers.
func (l *Loader) LoadWithDefaults(path string) (*Config, error) {
	cfg, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// FindConfig looks for overseer.hjson then overseer.json in the current
// directory, returning the absolute path to whichever is found first.
func (l *Loader) FindConfig() (string, error) {
	for _, name := range []string{"overseer.hjson", "overseer.json"} {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs, nil
			}
			return path, nil
		}
	}
	return "", fmt.Errorf("config file not found (looked for overseer.hjson, overseer.json)")
}

// lookupEnv backs os.Expand's ${VAR} substitution; an unset variable
// expands to the empty string, matching shell behavior under `set -u`'s
// absence.
func lookupEnv(name string) string {
	return os.Getenv(name)
}
