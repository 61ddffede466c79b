package sources

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/git"
)

// gitSourceHandler reads the translation document from a file in a Git repository
type gitSourceHandler struct {
	gitClient git.Client
}

// NewGitSourceHandler creates a new Git source handler
func NewGitSourceHandler(client git.Client) SourceHandler {
	if client == nil {
		client = git.NewDefaultGitClient()
	}
	return &gitSourceHandler{gitClient: client}
}

// Validate validates the git source configuration
func (*gitSourceHandler) Validate(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if cfg.Source.Type != config.SourceTypeGit {
		return fmt.Errorf("invalid source type: expected %s, got %s",
			config.SourceTypeGit, cfg.Source.Type)
	}

	if cfg.Source.Git == nil {
		return fmt.Errorf("git configuration is required")
	}
	if cfg.Source.Git.Repository == "" {
		return fmt.Errorf("git repository cannot be empty")
	}
	if cfg.Source.Git.Path == "" {
		return fmt.Errorf("git path cannot be empty")
	}

	return nil
}

// FetchDocument clones the configured revision in memory and decodes the document
func (h *gitSourceHandler) FetchDocument(ctx context.Context, cfg *config.Config) (*FetchResult, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if err := h.Validate(cfg); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}
	gitCfg := cfg.Source.Git

	cloneConfig := &git.CloneConfig{
		URL:    gitCfg.Repository,
		Branch: gitCfg.Branch,
		Tag:    gitCfg.Tag,
		Commit: gitCfg.Commit,
		Depth:  1,
	}
	if gitCfg.Username != "" {
		cloneConfig.Auth = &git.AuthConfig{Username: gitCfg.Username, Password: gitCfg.Password}
	}

	repoInfo, err := h.gitClient.Clone(ctx, cloneConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository %s: %w", gitCfg.Repository, err)
	}
	defer func() {
		if cleanupErr := h.gitClient.Cleanup(ctx, repoInfo); cleanupErr != nil {
			logger.Error(cleanupErr, "Failed to clean up repository clone")
		}
	}()

	data, err := h.gitClient.GetFileContent(repoInfo, gitCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", gitCfg.Path, err)
	}

	doc, format, err := decodeDocument(data, gitCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", gitCfg.Path, err)
	}

	logger.V(1).Info("Read translations from repository",
		"repository", gitCfg.Repository,
		"commit", repoInfo.CommitHash,
		"path", gitCfg.Path,
		"format", format)

	return NewFetchResult(doc, format)
}
