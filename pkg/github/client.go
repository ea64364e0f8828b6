// Package github fetches coverage artifacts from workflow runs and publishes
// report comments on pull requests through the GitHub REST API.
package github

import (
	"context"

	"github.com/google/go-github/v59/github"
	"golang.org/x/oauth2"
)

// NewClient returns a GitHub API client authenticated with token. An empty
// token yields an unauthenticated client, which is enough for read-only
// queries against public repositories.
func NewClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, source))
}
