// Package gitops versions the data directory with git so every import and
// reconciliation leaves a recoverable snapshot.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// dataPaths are the files tally owns inside the data directory. Only these
// are staged, so user files dropped next to them are never swept into a
// commit.
var dataPaths = []string{
	"tally.yaml",
	"categories.json",
	"transactions.json",
	"merchant-cache.json",
	"logs",
	"import",
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitData stages tally's data files and commits them. It returns the short
// commit hash, or "" when there was nothing to commit.
func CommitData(dir, message, authorName, authorEmail string) (string, error) {
	args := append([]string{"add", "--"}, existingPaths(dir)...)
	if len(args) == 2 {
		return "", nil
	}
	add := exec.Command("git", args...)
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	if !hasStagedChanges(dir) {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)
	commit := exec.Command("git", "commit", "-m", message, "--author", author)
	commit.Dir = dir
	commit.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+authorName,
		"GIT_COMMITTER_EMAIL="+authorEmail,
	)
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	return HeadShort(dir)
}

// HeadShort returns the abbreviated hash of the current HEAD commit.
func HeadShort(dir string) (string, error) {
	rev := exec.Command("git", "rev-parse", "--short", "HEAD")
	rev.Dir = dir
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func existingPaths(dir string) []string {
	var paths []string
	for _, p := range dataPaths {
		if _, err := os.Stat(filepath.Join(dir, p)); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

func hasStagedChanges(dir string) bool {
	diff := exec.Command("git", "diff", "--cached", "--quiet")
	diff.Dir = dir
	// Exit status 1 means there are staged changes.
	return diff.Run() != nil
}
