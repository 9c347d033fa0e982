// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/mod/semver"
)

// GitBackend implements Backend over a local git repository.
type GitBackend struct {
	dir  string
	repo *git.Repository
}

var _ Backend = (*GitBackend)(nil)

// OpenGit opens the repository containing dir. Parent directories are searched for
// the .git directory the same way the git CLI does.
func OpenGit(dir string) (*GitBackend, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNoRepository)
		}
		return nil, fmt.Errorf("open repository %s: %w", dir, err)
	}
	return &GitBackend{dir: dir, repo: repo}, nil
}

// Dir returns the directory the backend was opened from.
func (b *GitBackend) Dir() string { return b.dir }

// NearestTag walks history breadth-first from HEAD and returns the tag on the first
// tagged commit it meets. When one commit carries several tags the highest version wins.
func (b *GitBackend) NearestTag(ctx context.Context) (string, error) {
	tagged, err := b.tagsByCommit()
	if err != nil {
		return "", err
	}
	if len(tagged) == 0 {
		return "", ErrNoTags
	}

	head, err := b.commit(HeadRevision)
	if err != nil {
		return "", err
	}

	seen := map[plumbing.Hash]bool{head.Hash: true}
	queue := []*object.Commit{head}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		c := queue[0]
		queue = queue[1:]

		if names, ok := tagged[c.Hash]; ok {
			tag := highestTag(names)
			slog.Debug("nearest tag found", "tag", tag, "commit", c.Hash.String())
			return tag, nil
		}

		err := c.Parents().ForEach(func(p *object.Commit) error {
			if !seen[p.Hash] {
				seen[p.Hash] = true
				queue = append(queue, p)
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("walk parents of %s: %w", c.Hash, err)
		}
	}

	return "", ErrNoTags
}

// CommitsBetween counts commits reachable from to that are not reachable from from.
// from may be a tag name or any revision go-git can resolve.
func (b *GitBackend) CommitsBetween(ctx context.Context, from, to string) (int, error) {
	base, err := b.commit(from)
	if err != nil {
		return 0, err
	}
	tip, err := b.commit(to)
	if err != nil {
		return 0, err
	}

	excluded := make(map[plumbing.Hash]bool)
	if err := walk(ctx, base, func(c *object.Commit) { excluded[c.Hash] = true }); err != nil {
		return 0, err
	}

	count := 0
	err = walk(ctx, tip, func(c *object.Commit) {
		if !excluded[c.Hash] {
			count++
		}
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// tagsByCommit maps each tagged commit to its tag names. Annotated tags are peeled;
// tags that point at trees or blobs are ignored.
func (b *GitBackend) tagsByCommit() (map[plumbing.Hash][]string, error) {
	refs, err := b.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tagged := make(map[plumbing.Hash][]string)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		hash, ok := b.peel(ref.Hash())
		if !ok {
			slog.Debug("skipping tag that does not point at a commit", "tag", name)
			return nil
		}
		tagged[hash] = append(tagged[hash], name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tagged, nil
}

func (b *GitBackend) peel(h plumbing.Hash) (plumbing.Hash, bool) {
	if tagObj, err := b.repo.TagObject(h); err == nil {
		c, err := tagObj.Commit()
		if err != nil {
			return plumbing.ZeroHash, false
		}
		return c.Hash, true
	}
	if _, err := b.repo.CommitObject(h); err != nil {
		return plumbing.ZeroHash, false
	}
	return h, true
}

// commit resolves a tag name or revision to its commit.
func (b *GitBackend) commit(rev string) (*object.Commit, error) {
	if ref, err := b.repo.Reference(plumbing.NewTagReferenceName(rev), true); err == nil {
		if h, ok := b.peel(ref.Hash()); ok {
			return b.repo.CommitObject(h)
		}
	}

	h, err := b.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, &RevisionError{Revision: rev, Err: err}
	}
	c, err := b.repo.CommitObject(*h)
	if err != nil {
		return nil, &RevisionError{Revision: rev, Err: err}
	}
	return c, nil
}

func walk(ctx context.Context, from *object.Commit, visit func(*object.Commit)) error {
	iter := object.NewCommitPreorderIter(from, nil, nil)
	defer iter.Close()
	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		visit(c)
		return nil
	})
}

// highestTag orders by semantic version; names that are not versions sort last and
// fall back to lexical order.
func highestTag(names []string) string {
	sorted := slices.Clone(names)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := semver.Compare(canonical(b), canonical(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return sorted[0]
}

func canonical(tag string) string {
	if strings.HasPrefix(tag, "v") {
		return tag
	}
	return "v" + tag
}
