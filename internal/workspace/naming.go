// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// animals is the 52-name pool new workspace directories are drawn from.
var animals = []string{
	"alpaca", "badger", "capybara", "dingo", "elephant", "falcon", "gazelle",
	"heron", "ibex", "jackal", "koala", "lemur", "meerkat", "narwhal",
	"ocelot", "pangolin", "quokka", "raccoon", "serval", "tapir", "urial",
	"viper", "walrus", "xerus", "yak", "zebu", "armadillo", "bison",
	"chinchilla", "dugong", "ermine", "ferret", "grouse", "hedgehog",
	"impala", "jaguar", "kestrel", "lynx", "marten", "newt", "osprey",
	"puma", "quail", "raven", "stoat", "toucan", "urchin", "vulture",
	"wombat", "xenops", "yapok", "zorilla",
}

// shuffledAnimals returns animals permuted by an xorshift generator seeded
// with seed (the current nanosecond clock, by convention), via a
// Fisher-Yates shuffle.
func shuffledAnimals(seed uint64) []string {
	out := make([]string, len(animals))
	copy(out, animals)

	s := seed
	if s == 0 {
		s = 1
	}
	for i := len(out) - 1; i > 0; i-- {
		s ^= s << 13
		s ^= s >> 7
		s ^= s << 17
		j := int(s % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Debug routes new workspaces under "workspaces-dev" instead of
// "workspaces"; cmd/overseerd sets this from its -debug flag at startup.
var Debug bool

func workspacesDirName() string {
	if Debug {
		return "workspaces-dev"
	}
	return "workspaces"
}

// pickWorkspaceDir generates a collision-free directory for a new workspace
// of repoPath under ~/overseer/<workspaces[-dev]>/<repo-name>/, trying each
// animal name in shuffled order, then falling back to "<animal>-v<n>" once
// every base name is taken.
func pickWorkspaceDir(repoPath string) (string, error) {
	repoName := filepath.Base(repoPath)

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	base := filepath.Join(home, "overseer", workspacesDirName(), repoName)
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", err
	}

	candidates := shuffledAnimals(uint64(time.Now().UnixNano()))

	for _, name := range candidates {
		dir := filepath.Join(base, name)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return dir, nil
		}
	}

	for _, name := range candidates {
		for v := 1; ; v++ {
			dir := filepath.Join(base, name+"-v"+strconv.Itoa(v))
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return dir, nil
			}
		}
	}
}
