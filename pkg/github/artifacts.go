package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v59/github"

	"github.com/coverbotdev/coverbot/internal/log"
)

var (
	// ErrNoArtifactFound indicates the requested artifact was not found.
	ErrNoArtifactFound = errors.New("artifact not found")

	// ErrNoWorkflowRunFound indicates no successful workflow run was found.
	ErrNoWorkflowRunFound = errors.New("no successful workflow run found")

	// ErrDownload indicates the artifact archive download failed.
	ErrDownload = errors.New("artifact download failed")
)

const (
	// DefaultArtifactName is the artifact the upstream build attaches the
	// coverage report to.
	DefaultArtifactName = "report"

	// DefaultWorkflowName is the upstream workflow that produces the
	// coverage artifact.
	DefaultWorkflowName = "Build"

	// GitHub API pagination size.
	perPage = 100

	// Redirect budget for archive download URL resolution.
	maxRedirects = 10
)

// ActionsService is the subset of the GitHub Actions API the fetcher needs.
// It matches go-github's ActionsService so the real client drops in.
type ActionsService interface {
	ListWorkflowRunArtifacts(ctx context.Context, owner, repo string, runID int64, opts *github.ListOptions) (*github.ArtifactList, *github.Response, error)
	ListRepositoryWorkflowRuns(ctx context.Context, owner, repo string, opts *github.ListWorkflowRunsOptions) (*github.WorkflowRuns, *github.Response, error)
	DownloadArtifact(ctx context.Context, owner, repo string, artifactID int64, maxRedirects int) (*url.URL, *github.Response, error)
}

// ArtifactFetcher locates and downloads workflow run artifacts.
type ArtifactFetcher struct {
	actions    ActionsService
	httpClient *http.Client
}

func NewArtifactFetcher(actions ActionsService, httpClient *http.Client) *ArtifactFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}
	return &ArtifactFetcher{actions: actions, httpClient: httpClient}
}

// FindArtifact returns the artifact attached to runID whose name equals name.
// Absence is an explicit ErrNoArtifactFound, reported before any download.
func (f *ArtifactFetcher) FindArtifact(ctx context.Context, owner, repo string, runID int64, name string) (*github.Artifact, error) {
	opts := &github.ListOptions{PerPage: perPage}

	for {
		artifacts, resp, err := f.actions.ListWorkflowRunArtifacts(ctx, owner, repo, runID, opts)
		if err != nil {
			return nil, fmt.Errorf("listing artifacts for run %d: %w", runID, err)
		}

		for _, artifact := range artifacts.Artifacts {
			if artifact.GetName() == name {
				log.Debug("Found artifact", "name", artifact.GetName(), "id", artifact.GetID(), "size", artifact.GetSizeInBytes())
				return artifact, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return nil, fmt.Errorf("%w: %q in workflow run %d", ErrNoArtifactFound, name, runID)
}

// DownloadArchive fetches the artifact's zip archive content.
func (f *ArtifactFetcher) DownloadArchive(ctx context.Context, owner, repo string, artifactID int64) ([]byte, error) {
	archiveURL, _, err := f.actions.DownloadArtifact(ctx, owner, repo, artifactID, maxRedirects)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving archive URL for artifact %d: %v", ErrDownload, artifactID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	res, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: archive request returned %s", ErrDownload, res.Status)
	}

	zipData, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	log.Debug("Downloaded artifact archive", "artifactID", artifactID, "bytes", len(zipData))
	return zipData, nil
}

// FetchArchive finds the named artifact on runID and downloads its archive.
// When the artifact is absent the download is never attempted.
func (f *ArtifactFetcher) FetchArchive(ctx context.Context, owner, repo string, runID int64, name string) ([]byte, error) {
	artifact, err := f.FindArtifact(ctx, owner, repo, runID, name)
	if err != nil {
		return nil, err
	}
	return f.DownloadArchive(ctx, owner, repo, artifact.GetID())
}

// FindWorkflowRun returns the ID of the most recent successful run of the
// named workflow, optionally narrowed to a head SHA.
func (f *ArtifactFetcher) FindWorkflowRun(ctx context.Context, owner, repo, workflowName, headSHA string) (int64, error) {
	opts := &github.ListWorkflowRunsOptions{
		HeadSHA:     headSHA,
		Status:      "success",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	runs, _, err := f.actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	if err != nil {
		return 0, fmt.Errorf("listing workflow runs: %w", err)
	}

	for _, run := range runs.WorkflowRuns {
		if run.GetName() == workflowName && run.GetConclusion() == "success" {
			log.Debug("Found successful workflow run", "runID", run.GetID(), "startedAt", run.GetRunStartedAt().Time)
			return run.GetID(), nil
		}
	}

	return 0, fmt.Errorf("%w: no successful %q run", ErrNoWorkflowRunFound, workflowName)
}
