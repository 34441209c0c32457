package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/webradar/webradar/pkg/content"
)

const gitStoreFile = "discoveries.json"

// GitBackend persists discoveries in a local git repository, one
// commit per save, so the discovery history stays inspectable with
// ordinary git tooling
type GitBackend struct {
	repo     *git.Repository
	repoPath string
}

// NewGitBackend opens the repository at repoPath, initializing a fresh
// one if none exists
func NewGitBackend(repoPath string) (*GitBackend, error) {
	repo, err := git.PlainOpen(repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(repoPath, false)
	}
	if err != nil {
		return nil, fmt.Errorf("opening git repository: %w", err)
	}

	return &GitBackend{repo: repo, repoPath: repoPath}, nil
}

func (g *GitBackend) Save(ctx context.Context, discoveries []*content.Discovery) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	data, err := json.MarshalIndent(discoveries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling discoveries: %w", err)
	}

	filePath := filepath.Join(g.repoPath, gitStoreFile)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}

	if _, err := w.Add(gitStoreFile); err != nil {
		return fmt.Errorf("staging store file: %w", err)
	}

	status, err := w.Status()
	if err != nil {
		return fmt.Errorf("checking worktree status: %w", err)
	}
	if status.IsClean() {
		// Nothing changed since the last save
		return nil
	}

	_, err = w.Commit(fmt.Sprintf("Update discoveries (%d entries)", len(discoveries)), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "webradar",
			Email: "webradar@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing store file: %w", err)
	}
	return nil
}

func (g *GitBackend) Load(ctx context.Context) ([]*content.Discovery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(g.repoPath, gitStoreFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*content.Discovery{}, nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	var discoveries []*content.Discovery
	if err := json.Unmarshal(data, &discoveries); err != nil {
		return nil, fmt.Errorf("decoding store file: %w", err)
	}
	return discoveries, nil
}
