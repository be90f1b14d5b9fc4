package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/relboard/pkg/registry"
	"github.com/matzehuels/relboard/pkg/release"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

const acceptHeader = "application/vnd.github+json"

// Client binds the generic registry client to the GitHub releases endpoint.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a GitHub API client. Pass an empty baseURL to use the
// public API. A timeout of 0 or less uses the registry default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{"Accept": acceptHeader}

	return &Client{
		Client:  registry.NewClient(headers, timeout),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Key returns the canonical cache key for a repository's latest release.
func Key(owner, repo string) string {
	return "github:" + owner + "/" + repo
}

// FetchLatest retrieves the latest published release for a repository.
// It returns the decoded release together with the raw response body;
// the raw bytes are what callers hand to the cache, so stored payloads
// round-trip the API response exactly.
func (c *Client) FetchLatest(ctx context.Context, owner, repo string) (*release.Release, []byte, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)

	var rel release.Release
	raw, err := c.Fetch(ctx, url, &rel)
	if err != nil {
		return nil, nil, err
	}
	return &rel, raw, nil
}
