// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package approval decides which tool invocations may bypass the user
// approval prompt, driven by a shell-command prefix extractor and a
// per-project set of previously-approved tools and command prefixes.
package approval

// SafeCommands is the static set of read-only shell command prefixes that
// auto-approve unconditionally, regardless of per-project configuration.
var SafeCommands = map[string]struct{}{
	// Git read operations
	"git status":       {},
	"git diff":         {},
	"git log":          {},
	"git show":         {},
	"git branch":       {},
	"git remote":       {},
	"git rev-parse":    {},
	"git symbolic-ref": {},
	"git config":       {},
	"git ls-files":     {},
	"git ls-tree":      {},
	"git cat-file":     {},
	"git describe":     {},
	"git shortlog":     {},
	"git blame":        {},
	"git reflog":       {},
	"git stash list":   {},
	"git tag":          {},
	"git worktree list": {},

	// GitHub CLI read operations
	"gh pr list":    {},
	"gh pr view":    {},
	"gh pr status":  {},
	"gh pr checks":  {},
	"gh pr diff":    {},
	"gh issue list": {},
	"gh issue view": {},
	"gh issue status": {},
	"gh repo view":  {},
	"gh api":        {},
}

// IsSafeCommand reports whether prefix is in the static safe-command
// table.
func IsSafeCommand(prefix string) bool {
	_, ok := SafeCommands[prefix]
	return ok
}

// SingleWordCommands is the set of commands whose canonical prefix is
// just their first word — they take arguments directly rather than
// subcommands.
var SingleWordCommands = map[string]struct{}{
	// Shell/scripting
	"cd": {}, "ls": {}, "cat": {}, "head": {}, "tail": {}, "less": {}, "more": {},
	"echo": {}, "printf": {}, "true": {}, "false": {}, "test": {}, "exit": {},
	"return": {}, "break": {}, "continue": {}, "export": {}, "unset": {},
	"local": {}, "declare": {}, "typeset": {}, "readonly": {}, "set": {},
	"shopt": {}, "alias": {}, "unalias": {}, "type": {}, "which": {},
	"whereis": {}, "whence": {}, "command": {}, "builtin": {}, "enable": {},
	"hash": {}, "help": {}, "man": {}, "info": {}, "apropos": {},

	// Shell invocation
	"zsh": {}, "bash": {}, "sh": {}, "fish": {}, "source": {}, "eval": {},

	// File operations
	"pwd": {}, "pushd": {}, "popd": {}, "dirs": {}, "mkdir": {}, "rmdir": {},
	"rm": {}, "cp": {}, "mv": {}, "ln": {}, "touch": {}, "chmod": {},
	"chown": {}, "chgrp": {}, "stat": {}, "file": {}, "find": {}, "locate": {},
	"xargs": {}, "basename": {}, "dirname": {}, "realpath": {}, "readlink": {},

	// Text processing
	"grep": {}, "egrep": {}, "fgrep": {}, "rg": {}, "ag": {}, "ack": {},
	"sed": {}, "awk": {}, "gawk": {}, "mawk": {}, "cut": {}, "paste": {},
	"join": {}, "sort": {}, "uniq": {}, "comm": {}, "diff": {}, "patch": {},
	"tr": {}, "wc": {}, "nl": {}, "fold": {}, "fmt": {}, "pr": {}, "column": {},
	"expand": {}, "unexpand": {}, "tac": {}, "rev": {}, "shuf": {},

	// Process/system
	"ps": {}, "top": {}, "htop": {}, "kill": {}, "pkill": {}, "killall": {},
	"pgrep": {}, "jobs": {}, "fg": {}, "bg": {}, "wait": {}, "nohup": {},
	"nice": {}, "renice": {}, "time": {}, "timeout": {}, "watch": {},
	"sleep": {}, "date": {}, "cal": {}, "uptime": {}, "hostname": {},
	"uname": {}, "whoami": {}, "id": {}, "groups": {}, "users": {}, "who": {},
	"w": {}, "last": {}, "lastlog": {}, "env": {}, "printenv": {},

	// Network
	"curl": {}, "wget": {}, "ping": {}, "traceroute": {}, "dig": {},
	"nslookup": {}, "host": {}, "nc": {}, "netcat": {}, "ssh": {}, "scp": {},
	"sftp": {}, "rsync": {}, "ftp": {},

	// Archive
	"tar": {}, "gzip": {}, "gunzip": {}, "bzip2": {}, "bunzip2": {}, "xz": {},
	"unxz": {}, "zip": {}, "unzip": {}, "7z": {},

	// Development — note cargo, go, mvn, gradle are intentionally absent:
	// they have subcommands ("go build", "cargo test") tracked separately.
	// Package managers (npm, yarn, pnpm, pip, gem, brew, apt, ...) are
	// also intentionally absent for the same reason.
	"python": {}, "python3": {}, "node": {}, "deno": {}, "bun": {},
	"ruby": {}, "perl": {}, "php": {}, "rustc": {}, "make": {}, "cmake": {},
	"gcc": {}, "g++": {}, "clang": {}, "clang++": {}, "javac": {}, "java": {},

	// Misc
	"jq": {}, "yq": {}, "base64": {}, "md5sum": {}, "sha256sum": {},
	"openssl": {}, "tee": {}, "xclip": {}, "pbcopy": {}, "pbpaste": {},
	"open": {}, "xdg-open": {},
}

// IsSingleWordCommand reports whether w0 takes its canonical prefix from
// its first word alone.
func IsSingleWordCommand(w0 string) bool {
	_, ok := SingleWordCommands[w0]
	return ok
}
