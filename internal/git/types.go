package git

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
)

// CloneConfig describes the revision of a repository to clone.
// Branch, Tag and Commit are mutually exclusive; none of them clones HEAD.
type CloneConfig struct {
	URL    string
	Branch string
	Tag    string
	Commit string

	// Depth limits the fetched history, 0 fetches all of it.
	// It is ignored for commit checkouts.
	Depth int

	// Auth enables HTTP basic authentication when the username is set
	Auth *AuthConfig
}

// AuthConfig holds HTTP basic credentials. Tokens go in Password.
type AuthConfig struct {
	Username string
	Password string
}

// RepositoryInfo is an in-memory clone
type RepositoryInfo struct {
	Repository *git.Repository
	RemoteURL  string

	// Branch is the checked out branch, empty on a detached HEAD
	Branch string

	// CommitHash is the hash of the checked out commit
	CommitHash string

	storerFilesystem billy.Filesystem
	objectCache      cache.Object
}
