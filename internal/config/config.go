// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and environment
// expansion for overseerd, grounded on the teacher's internal/config
// package but reduced to the sections this program actually has: server,
// project discovery, approvals, PTY defaults, and logging.
package config

// Config is the root configuration structure for overseerd.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Projects  ProjectsConfig  `json:"projects"`
	Approvals ApprovalsConfig `json:"approvals"`
	PTY       PTYConfig       `json:"pty"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig configures the HTTP/WS bridge.
type ServerConfig struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	TLSCert string `json:"tls_cert"` // path to TLS certificate; enables HTTPS if both cert and key set
	TLSKey  string `json:"tls_key"`  // path to TLS private key
	Token   string `json:"token"`    // bearer token required of API/WS clients; empty disables auth
}

// ProjectsConfig configures where overseerd discovers and persists
// project/workspace registry data.
type ProjectsConfig struct {
	RootDir string `json:"root_dir"` // directory project discovery scans; empty means "none configured"
	DataDir string `json:"data_dir"` // directory holding projects.json/repos.json
}

// ApprovalsConfig configures the per-project approval cache.
type ApprovalsConfig struct {
	ConfigDir string `json:"config_dir"` // directory holding <projectID>/approvals.json for each project
}

// PTYConfig configures embedded-terminal defaults.
type PTYConfig struct {
	DefaultShell string `json:"default_shell"`
	DefaultCols  int    `json:"default_cols"`
	DefaultRows  int    `json:"default_rows"`
}

// LoggingConfig configures process-wide structured logging.
type LoggingConfig struct {
	Level string `json:"level"` // "debug", "info", "warn", "error"
	Dest  string `json:"dest"`  // "stderr" (default), "stdout", or a file path
}

// applyDefaults fills in the zero-value fields every overseerd deployment
// needs a sane value for, mirroring the teacher's applyDefaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.PTY.DefaultShell == "" {
		cfg.PTY.DefaultShell = "/bin/sh"
	}
	if cfg.PTY.DefaultCols == 0 {
		cfg.PTY.DefaultCols = 80
	}
	if cfg.PTY.DefaultRows == 0 {
		cfg.PTY.DefaultRows = 24
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Dest == "" {
		cfg.Logging.Dest = "stderr"
	}
}
