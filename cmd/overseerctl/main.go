// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// overseerctl is a command-line tool for controlling a running overseerd
// instance over its HTTP bridge.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	version = "0.1.0"
	apiURL  = "http://localhost:8420"
	token   = ""
)

func main() {
	if env := os.Getenv("OVERSEER_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}
	if env := os.Getenv("OVERSEER_TOKEN"); env != "" {
		token = env
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "health":
		err = cmdHealth()
	case "crashes":
		err = cmdCrashes()
	case "invoke":
		err = cmdInvoke(args)
	case "version":
		fmt.Printf("overseerctl %s\n", version)
		return
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: overseerctl <command> [args]

Commands:
  health                    Show daemon health and OS-process cross-check
  crashes                   List recent abnormal agent/PTY terminations
  invoke <command> [json]   Call POST /api/invoke/<command> with a JSON args body
  version                   Show overseerctl version

Environment:
  OVERSEER_API    Base URL of the overseerd HTTP bridge (default http://localhost:8420)
  OVERSEER_TOKEN  Bearer token, if the daemon requires authentication`)
}

func cmdHealth() error {
	body, err := request("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	return printResponse(body)
}

func cmdCrashes() error {
	body, err := request("GET", "/api/crashes", nil)
	if err != nil {
		return err
	}
	return printResponse(body)
}

func cmdInvoke(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: overseerctl invoke <command> [json-args]")
	}
	command := args[0]

	var payload struct {
		Args json.RawMessage `json:"args,omitempty"`
	}
	if len(args) > 1 {
		payload.Args = json.RawMessage(args[1])
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	body, err := request("POST", "/api/invoke/"+command, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	return printResponse(body)
}

// response mirrors httpapi.Response, the {success, data?, error?} wire
// contract every endpoint replies with.
type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func request(method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func printResponse(raw []byte) error {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Data, "", "  "); err != nil {
		fmt.Println(string(resp.Data))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
