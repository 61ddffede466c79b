// Package git clones repositories in memory and reads files from them.
package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-logr/logr"
)

// DefaultMaxFileSize bounds the size of a file read from a clone (10MB)
const DefaultMaxFileSize = 10 * 1024 * 1024

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client defines the interface for Git operations
type Client interface {
	// Clone clones a repository with the given configuration
	Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error)

	// GetFileContent retrieves the content of a file at the checked out commit
	GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error)

	// Cleanup releases the in-memory clone
	Cleanup(ctx context.Context, repoInfo *RepositoryInfo) error
}

// defaultGitClient implements Client using go-git
type defaultGitClient struct {
	maxFileSize int64
}

// NewDefaultGitClient creates a new defaultGitClient
func NewDefaultGitClient() Client {
	return &defaultGitClient{maxFileSize: DefaultMaxFileSize}
}

// Clone clones a repository with the given configuration
func (c *defaultGitClient) Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if config == nil || config.URL == "" {
		return nil, fmt.Errorf("repository URL is required")
	}

	cloneOptions := &git.CloneOptions{
		URL: config.URL,
	}

	if config.Auth != nil && config.Auth.Username != "" {
		cloneOptions.Auth = &githttp.BasicAuth{
			Username: config.Auth.Username,
			Password: config.Auth.Password,
		}
		logger.V(1).Info("Using Git HTTP Basic authentication", "username", config.Auth.Username)
	}

	// Commit checkouts need the full history to find the commit
	if config.Commit == "" {
		cloneOptions.Depth = config.Depth
		if config.Branch != "" {
			cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(config.Branch)
			cloneOptions.SingleBranch = true
		} else if config.Tag != "" {
			cloneOptions.ReferenceName = plumbing.NewTagReferenceName(config.Tag)
			cloneOptions.SingleBranch = true
		}
	}

	// go-git wants separate filesystems for the storer and the worktree
	worktreeFs := memfs.New()
	storerFs := memfs.New()
	storerCache := cache.NewObjectLRUDefault()
	storer := filesystem.NewStorage(storerFs, storerCache)

	repo, err := git.CloneContext(ctx, storer, worktreeFs, cloneOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	repoInfo := &RepositoryInfo{
		Repository:       repo,
		RemoteURL:        config.URL,
		storerFilesystem: storerFs,
		objectCache:      storerCache,
	}

	if config.Commit != "" {
		workTree, err := repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("failed to get worktree: %w", err)
		}

		err = workTree.Checkout(&git.CheckoutOptions{
			Hash: plumbing.NewHash(config.Commit),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to checkout commit %s: %w", config.Commit, err)
		}
	}

	if err := updateRepositoryInfo(repoInfo); err != nil {
		return nil, fmt.Errorf("failed to update repository info: %w", err)
	}

	logger.V(1).Info("Cloned repository",
		"url", config.URL, "branch", repoInfo.Branch, "commit", repoInfo.CommitHash)
	return repoInfo, nil
}

// GetFileContent retrieves the content of a file at the checked out commit
func (c *defaultGitClient) GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return nil, fmt.Errorf("repository is nil")
	}

	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	commit, err := repoInfo.Repository.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", path, err)
	}
	if c.maxFileSize > 0 && file.Size > c.maxFileSize {
		return nil, fmt.Errorf("file %s is %d bytes, limit is %d", path, file.Size, c.maxFileSize)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return []byte(content), nil
}

// Cleanup releases the in-memory clone
func (*defaultGitClient) Cleanup(ctx context.Context, repoInfo *RepositoryInfo) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}
	logger := logr.FromContextOrDiscard(ctx)

	if repoInfo.objectCache != nil {
		repoInfo.objectCache.Clear()
	}

	worktree, err := repoInfo.Repository.Worktree()
	if err == nil && worktree.Filesystem != nil {
		_ = util.RemoveAll(worktree.Filesystem, "/")
	}

	if repoInfo.storerFilesystem != nil {
		_ = util.RemoveAll(repoInfo.storerFilesystem, "/")
	}

	repoInfo.objectCache = nil
	repoInfo.storerFilesystem = nil
	repoInfo.Repository = nil

	logger.V(1).Info("Released repository clone", "url", repoInfo.RemoteURL)
	return nil
}

// updateRepositoryInfo records the checked out branch and commit
func updateRepositoryInfo(repoInfo *RepositoryInfo) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}

	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	if ref.Name().IsBranch() {
		repoInfo.Branch = ref.Name().Short()
	}
	repoInfo.CommitHash = ref.Hash().String()

	return nil
}
