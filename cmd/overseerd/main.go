// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wingedpig/overseer/internal/approval"
	"github.com/wingedpig/overseer/internal/bus"
	"github.com/wingedpig/overseer/internal/chatstore"
	"github.com/wingedpig/overseer/internal/config"
	"github.com/wingedpig/overseer/internal/crashring"
	"github.com/wingedpig/overseer/internal/httpapi"
	"github.com/wingedpig/overseer/internal/project"
	"github.com/wingedpig/overseer/internal/ptysup"
	"github.com/wingedpig/overseer/internal/supervisor"
	"github.com/wingedpig/overseer/internal/watch"
	"github.com/wingedpig/overseer/internal/workspace"
)

var version = "0.1.0"

func main() {
	var (
		configPath  string
		host        string
		port        int
		showVersion bool
		debug       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&host, "host", "", "HTTP server host (overrides config)")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.BoolVar(&debug, "debug", false, "Enable debug mode")
	flag.Parse()

	if showVersion {
		fmt.Printf("overseerd %s\n", version)
		os.Exit(0)
	}

	workspace.Debug = debug

	if configPath == "" {
		loader := config.NewLoader()
		found, err := loader.FindConfig()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		configPath = found
	}

	log.Printf("Using config: %s", configPath)

	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	if err := run(cfg); err != nil {
		log.Fatalf("overseerd: %v", err)
	}
}

func run(cfg *config.Config) error {
	b := bus.New()

	projectsDir := cfg.Projects.DataDir
	if projectsDir == "" {
		projectsDir = filepath.Join(cfg.Projects.RootDir, ".overseer")
	}
	projects, err := project.NewManager(projectsDir)
	if err != nil {
		return fmt.Errorf("failed to open project registry: %w", err)
	}

	approvals := approval.NewManager(cfg.Approvals.ConfigDir)
	chats := chatstore.NewManager(projectsDir)

	sup := supervisor.NewManager(b, approvals, chats, filepath.Join(projectsDir, "logs"))
	openCodeClient := &http.Client{Timeout: 60 * time.Second}
	openCode := supervisor.NewOpenCodeManager(b, chats, openCodeClient)
	pty := ptysup.NewManager(b)

	crashes := crashring.New()
	if err := crashring.Subscribe(b, crashes); err != nil {
		return fmt.Errorf("failed to subscribe crash ring: %w", err)
	}

	watcher, err := watch.New(b)
	if err != nil {
		return fmt.Errorf("failed to start binary watcher: %w", err)
	}
	defer watcher.Close()

	deps := &httpapi.Dependencies{
		Bus:            b,
		Supervisor:     sup,
		OpenCode:       openCode,
		PTY:            pty,
		Projects:       projects,
		Approvals:      approvals,
		Chats:          chats,
		Crashes:        crashes,
		OpenCodeClient: openCodeClient,
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		TLSCert: cfg.Server.TLSCert,
		TLSKey:  cfg.Server.TLSKey,
		Token:   cfg.Server.Token,
	}, deps)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %v, shutting down...", sig)
	case err := <-errCh:
		return fmt.Errorf("API server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
