// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRepo is a throwaway repository whose commits each add one file.
type GitRepo struct {
	Dir  string
	repo *git.Repository
	n    int
}

func fixtureSignature() *object.Signature {
	return &object.Signature{Name: "lbrecipe test", Email: "test@example.com", When: time.Unix(1700000000, 0)}
}

// InitGitRepo creates a repository in dir.
func InitGitRepo(dir string) (*GitRepo, error) {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", dir, err)
	}
	return &GitRepo{Dir: dir, repo: repo}, nil
}

// OpenGitRepo opens an existing fixture repository in dir.
func OpenGitRepo(dir string) (*GitRepo, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	return &GitRepo{Dir: dir, repo: repo}, nil
}

// Commit adds a new file and commits it, returning the commit hash.
func (r *GitRepo) Commit() (plumbing.Hash, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	var name string
	for {
		r.n++
		name = fmt.Sprintf("change-%03d.txt", r.n)
		if _, err := os.Stat(filepath.Join(r.Dir, name)); os.IsNotExist(err) {
			break
		}
	}
	if err := os.WriteFile(filepath.Join(r.Dir, name), []byte(name+"\n"), 0o644); err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := wt.Add(name); err != nil {
		return plumbing.ZeroHash, err
	}
	return wt.Commit("add "+name, &git.CommitOptions{Author: fixtureSignature()})
}

// Tag tags the commit h. Annotated tags get a tag object; others are lightweight.
func (r *GitRepo) Tag(name string, h plumbing.Hash, annotated bool) error {
	var opts *git.CreateTagOptions
	if annotated {
		opts = &git.CreateTagOptions{Tagger: fixtureSignature(), Message: "release " + name}
	}
	if _, err := r.repo.CreateTag(name, h, opts); err != nil {
		return fmt.Errorf("tag %s: %w", name, err)
	}
	return nil
}

// TagHead tags the current HEAD commit.
func (r *GitRepo) TagHead(name string, annotated bool) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	return r.Tag(name, head.Hash(), annotated)
}

// MustInitGitRepo is InitGitRepo in a fresh temp dir that fails the test on error.
func MustInitGitRepo(t testing.TB) *GitRepo {
	t.Helper()
	r, err := InitGitRepo(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// MustCommit is Commit that fails the test on error.
func (r *GitRepo) MustCommit(t testing.TB) plumbing.Hash {
	t.Helper()
	h, err := r.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return h
}

// MustTag is Tag that fails the test on error.
func (r *GitRepo) MustTag(t testing.TB, name string, h plumbing.Hash, annotated bool) {
	t.Helper()
	if err := r.Tag(name, h, annotated); err != nil {
		t.Fatal(err)
	}
}
