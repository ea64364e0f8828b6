package github

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrNoContext = errors.New("not running in GitHub Actions")

// Context carries the repository coordinates injected by GitHub Actions.
type Context struct {
	Owner     string
	Repo      string
	EventName string
	RunID     int64
	Token     string
}

// DetectContext reads the GitHub Actions environment. It fails when invoked
// outside of a workflow run or when GITHUB_REPOSITORY is malformed.
func DetectContext() (*Context, error) {
	if os.Getenv("GITHUB_ACTIONS") != "true" {
		return nil, ErrNoContext
	}

	repository := os.Getenv("GITHUB_REPOSITORY")
	parts := strings.SplitN(repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: GITHUB_REPOSITORY=%q", ErrNoContext, repository)
	}

	runID, _ := strconv.ParseInt(os.Getenv("GITHUB_RUN_ID"), 10, 64)

	return &Context{
		Owner:     parts[0],
		Repo:      parts[1],
		EventName: os.Getenv("GITHUB_EVENT_NAME"),
		RunID:     runID,
		Token:     os.Getenv("GITHUB_TOKEN"),
	}, nil
}
