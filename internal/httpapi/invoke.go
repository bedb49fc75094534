// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wingedpig/overseer/internal/process"
	"github.com/wingedpig/overseer/internal/project"
	"github.com/wingedpig/overseer/internal/ptysup"
	"github.com/wingedpig/overseer/internal/workspace"
)

// command is one /api/invoke/{name} handler: it receives the raw `args`
// object from the request body and returns whatever the response's data
// field should hold.
type command func(deps *Dependencies, args json.RawMessage) (any, error)

// commands is the dispatch table behind POST /api/invoke/{command},
// covering the same operations the desktop IPC transport exposes.
var commands = map[string]command{
	"agent.start":       cmdAgentStart,
	"agent.stop":        cmdAgentStop,
	"agent.running":     cmdAgentRunning,
	"agent.writeStdin":  cmdAgentWriteStdin,
	"agent.sendMessage": cmdAgentSendMessage,

	"opencode.sendPrompt": cmdOpenCodeSendPrompt,

	"pty.spawn":  cmdPTYSpawn,
	"pty.write":  cmdPTYWrite,
	"pty.resize": cmdPTYResize,
	"pty.kill":   cmdPTYKill,

	"project.list":          cmdProjectList,
	"project.add":           cmdProjectAdd,
	"project.remove":        cmdProjectRemove,
	"project.addWorkspace":  cmdProjectAddWorkspace,
	"project.removeWorkspace": cmdProjectRemoveWorkspace,

	"workspace.add":          cmdWorkspaceAdd,
	"workspace.archive":      cmdWorkspaceArchive,
	"workspace.list":         cmdWorkspaceList,
	"workspace.changedFiles": cmdWorkspaceChangedFiles,
	"workspace.checkMerge":   cmdWorkspaceCheckMerge,
	"workspace.merge":        cmdWorkspaceMerge,
	"workspace.rename":       cmdWorkspaceRename,
	"workspace.deleteBranch": cmdWorkspaceDeleteBranch,
	"workspace.listFiles":    cmdWorkspaceListFiles,

	"approvals.addTool":   cmdApprovalsAddTool,
	"approvals.addPrefix": cmdApprovalsAddPrefix,
	"approvals.clear":     cmdApprovalsClear,
}

// invokeHandler dispatches POST /api/invoke/{command}: unknown commands
// are a 404, and a failed operation (including args that do not decode
// into the command's request) is a 400, both wrapped in the standard
// Response envelope. A body that is not valid JSON is treated as carrying
// no args.
func invokeHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["command"]
		fn, ok := commands[name]
		if !ok {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown command %q", name))
			return
		}

		var body struct {
			Args json.RawMessage `json:"args"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		data, err := fn(deps, body.Args)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, data)
	}
}

func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

func cmdAgentStart(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID            string   `json:"id"`
		Kind          string   `json:"kind"`
		ProjectID     string   `json:"projectId"`
		BinaryPath    string   `json:"binaryPath"`
		Args          []string `json:"args"`
		WorkingDir    string   `json:"workingDir"`
		ShellPrefix   string   `json:"shellPrefix"`
		InitialStdin  string   `json:"initialStdin"`
		UsesStdin     bool     `json:"usesStdin"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	cfg := process.SpawnConfig{
		BinaryPath:   req.BinaryPath,
		Args:         req.Args,
		WorkingDir:   req.WorkingDir,
		ShellPrefix:  req.ShellPrefix,
		InitialStdin: req.InitialStdin,
		UsesStdin:    req.UsesStdin,
	}
	if err := deps.Supervisor.Start(req.ID, req.Kind, req.ProjectID, cfg); err != nil {
		return nil, err
	}
	return map[string]bool{"started": true}, nil
}

func cmdAgentStop(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	deps.Supervisor.Stop(req.ID)
	return map[string]bool{"stopped": true}, nil
}

func cmdAgentRunning(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return map[string]bool{"running": deps.Supervisor.Running(req.ID)}, nil
}

func cmdAgentWriteStdin(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.Supervisor.WriteStdin(req.ID, req.Data); err != nil {
		return nil, err
	}
	return map[string]bool{"written": true}, nil
}

func cmdAgentSendMessage(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID            string   `json:"id"`
		Kind          string   `json:"kind"`
		ProjectID     string   `json:"projectId"`
		Prompt        string   `json:"prompt"`
		BinaryPath    string   `json:"binaryPath"`
		Args          []string `json:"args"`
		WorkingDir    string   `json:"workingDir"`
		ShellPrefix   string   `json:"shellPrefix"`
		InitialStdin  string   `json:"initialStdin"`
		UsesStdin     bool     `json:"usesStdin"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	cfg := process.SpawnConfig{
		BinaryPath:   req.BinaryPath,
		Args:         req.Args,
		WorkingDir:   req.WorkingDir,
		ShellPrefix:  req.ShellPrefix,
		InitialStdin: req.InitialStdin,
		UsesStdin:    req.UsesStdin,
	}
	if err := deps.Supervisor.SendMessage(req.ID, req.Kind, req.ProjectID, req.Prompt, cfg); err != nil {
		return nil, err
	}
	return map[string]bool{"sent": true}, nil
}

func cmdOpenCodeSendPrompt(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID        string `json:"id"`
		BaseURL   string `json:"baseUrl"`
		SessionID string `json:"sessionId"`
		Prompt    string `json:"prompt"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.OpenCode.SendPrompt(context.Background(), req.ID, req.BaseURL, req.SessionID, req.Prompt); err != nil {
		return nil, err
	}
	return map[string]bool{"sent": true}, nil
}

func cmdPTYSpawn(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID            string `json:"id"`
		Shell         string `json:"shell"`
		Cwd           string `json:"cwd"`
		WorkspaceRoot string `json:"workspaceRoot"`
		Cols          int    `json:"cols"`
		Rows          int    `json:"rows"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	cfg := ptysup.Config{Shell: req.Shell, Cwd: req.Cwd, WorkspaceRoot: req.WorkspaceRoot, Cols: req.Cols, Rows: req.Rows}
	if err := deps.PTY.Spawn(req.ID, cfg); err != nil {
		return nil, err
	}
	return map[string]bool{"spawned": true}, nil
}

func cmdPTYWrite(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.PTY.Write(req.ID, []byte(req.Data)); err != nil {
		return nil, err
	}
	return map[string]bool{"written": true}, nil
}

func cmdPTYResize(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID   string `json:"id"`
		Cols int    `json:"cols"`
		Rows int    `json:"rows"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.PTY.Resize(req.ID, req.Cols, req.Rows); err != nil {
		return nil, err
	}
	return map[string]bool{"resized": true}, nil
}

func cmdPTYKill(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.PTY.Kill(req.ID); err != nil {
		return nil, err
	}
	return map[string]bool{"killed": true}, nil
}

func cmdProjectList(deps *Dependencies, _ json.RawMessage) (any, error) {
	return deps.Projects.Projects(), nil
}

func cmdProjectAdd(deps *Dependencies, args json.RawMessage) (any, error) {
	var p project.Project
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := deps.Projects.AddProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

func cmdProjectRemove(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.Projects.RemoveProject(req.ID); err != nil {
		return nil, err
	}
	return map[string]bool{"removed": true}, nil
}

func cmdProjectAddWorkspace(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ProjectID string            `json:"projectId"`
		Workspace project.Workspace `json:"workspace"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.Projects.AddWorkspace(req.ProjectID, req.Workspace); err != nil {
		return nil, err
	}
	return req.Workspace, nil
}

func cmdProjectRemoveWorkspace(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ProjectID   string `json:"projectId"`
		WorkspaceID string `json:"workspaceId"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.Projects.RemoveWorkspace(req.ProjectID, req.WorkspaceID); err != nil {
		return nil, err
	}
	return map[string]bool{"removed": true}, nil
}

func cmdWorkspaceAdd(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		RepoPath string `json:"repoPath"`
		Branch   string `json:"branch"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	path, err := workspace.AddWorkspace(context.Background(), req.RepoPath, req.Branch)
	if err != nil {
		return nil, err
	}
	return map[string]string{"path": path}, nil
}

func cmdWorkspaceArchive(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		RepoPath      string `json:"repoPath"`
		WorkspacePath string `json:"workspacePath"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := workspace.ArchiveWorkspace(context.Background(), req.RepoPath, req.WorkspacePath); err != nil {
		return nil, err
	}
	return map[string]bool{"archived": true}, nil
}

func cmdWorkspaceList(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		RepoPath string `json:"repoPath"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return workspace.ListWorkspaces(context.Background(), req.RepoPath)
}

func cmdWorkspaceChangedFiles(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		WorkspacePath string `json:"workspacePath"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return workspace.ListChangedFiles(context.Background(), req.WorkspacePath)
}

func cmdWorkspaceCheckMerge(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		WorkspacePath string `json:"workspacePath"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return workspace.CheckMerge(context.Background(), req.WorkspacePath)
}

func cmdWorkspaceMerge(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		WorkspacePath string `json:"workspacePath"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return workspace.MergeIntoMain(context.Background(), req.WorkspacePath)
}

func cmdWorkspaceRename(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		WorkspacePath string `json:"workspacePath"`
		NewName       string `json:"newName"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := workspace.RenameBranch(context.Background(), req.WorkspacePath, req.NewName); err != nil {
		return nil, err
	}
	return map[string]bool{"renamed": true}, nil
}

func cmdWorkspaceDeleteBranch(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		RepoPath   string `json:"repoPath"`
		BranchName string `json:"branchName"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := workspace.DeleteBranch(context.Background(), req.RepoPath, req.BranchName); err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": true}, nil
}

func cmdWorkspaceListFiles(_ *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		WorkspacePath string `json:"workspacePath"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return workspace.ListFiles(req.WorkspacePath)
}

func cmdApprovalsAddTool(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ProjectID string `json:"projectId"`
		ToolName  string `json:"toolName"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.Approvals.AddToolApproval(req.ProjectID, req.ToolName); err != nil {
		return nil, err
	}
	return map[string]bool{"approved": true}, nil
}

func cmdApprovalsAddPrefix(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ProjectID string `json:"projectId"`
		Prefix    string `json:"prefix"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.Approvals.AddPrefixApproval(req.ProjectID, req.Prefix); err != nil {
		return nil, err
	}
	return map[string]bool{"approved": true}, nil
}

func cmdApprovalsClear(deps *Dependencies, args json.RawMessage) (any, error) {
	var req struct {
		ProjectID string `json:"projectId"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := deps.Approvals.ClearApprovals(req.ProjectID); err != nil {
		return nil, err
	}
	return map[string]bool{"cleared": true}, nil
}
