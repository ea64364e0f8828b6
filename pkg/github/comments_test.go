package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v59/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssues struct {
	comments  []*github.IssueComment
	created   []string
	edited    map[int64]string
	createErr error
	listErr   error
	editErr   error
}

func (f *fakeIssues) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	f.created = append(f.created, comment.GetBody())
	id := int64(len(f.created))
	return &github.IssueComment{ID: github.Int64(id), Body: comment.Body}, nil, nil
}

func (f *fakeIssues) ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error) {
	if f.listErr != nil {
		return nil, nil, f.listErr
	}
	return f.comments, &github.Response{NextPage: 0}, nil
}

func (f *fakeIssues) EditComment(ctx context.Context, owner, repo string, commentID int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	if f.editErr != nil {
		return nil, nil, f.editErr
	}
	if f.edited == nil {
		f.edited = map[int64]string{}
	}
	f.edited[commentID] = comment.GetBody()
	return &github.IssueComment{ID: github.Int64(commentID), Body: comment.Body}, nil, nil
}

func TestCommentPublisherPublish(t *testing.T) {
	issues := &fakeIssues{}
	publisher := NewCommentPublisher(issues)

	id, err := publisher.Publish(context.Background(), "owner", "repo", 42, "# Test Coverage Report\n")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, issues.created, 1)
	assert.Contains(t, issues.created[0], "# Test Coverage Report")
}

func TestCommentPublisherPublish_APIError(t *testing.T) {
	issues := &fakeIssues{createErr: errors.New("403 Forbidden")}
	publisher := NewCommentPublisher(issues)

	_, err := publisher.Publish(context.Background(), "owner", "repo", 42, "body")
	assert.Error(t, err)
}

func TestCommentPublisherPublishOrUpdate_CreatesWhenMissing(t *testing.T) {
	issues := &fakeIssues{comments: []*github.IssueComment{
		{ID: github.Int64(5), Body: github.String("unrelated comment")},
	}}
	publisher := NewCommentPublisher(issues)

	_, err := publisher.PublishOrUpdate(context.Background(), "owner", "repo", 42, "coverage", "body")
	require.NoError(t, err)
	require.Len(t, issues.created, 1)
	assert.True(t, strings.HasPrefix(issues.created[0], "<!-- coverbot-marker: coverage -->"))
	assert.Empty(t, issues.edited)
}

func TestCommentPublisherPublishOrUpdate_EditsExisting(t *testing.T) {
	marker := fmt.Sprintf(markerFormat, "coverage")
	issues := &fakeIssues{comments: []*github.IssueComment{
		{ID: github.Int64(5), Body: github.String("unrelated comment")},
		{ID: github.Int64(9), Body: github.String(marker + "\nold body")},
	}}
	publisher := NewCommentPublisher(issues)

	id, err := publisher.PublishOrUpdate(context.Background(), "owner", "repo", 42, "coverage", "new body")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.Empty(t, issues.created)
	assert.Contains(t, issues.edited[9], "new body")
}

func TestTruncateComment(t *testing.T) {
	short := "small body"
	assert.Equal(t, short, truncateComment(short, MaxCommentSize))

	long := strings.Repeat("coverage line\n", 10000)
	truncated := truncateComment(long, MaxCommentSize)
	assert.LessOrEqual(t, len(truncated), MaxCommentSize)
	assert.Contains(t, truncated, "Comment truncated")
}

// TestCommentPublisherAgainstServer exercises the real go-github client
// against a stub API server.
func TestCommentPublisherAgainstServer(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Body string `json:"body"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 77}`))
	}))
	defer server.Close()

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	publisher := NewCommentPublisher(client.Issues)

	id, err := publisher.Publish(context.Background(), "owner", "repo", 42, "# Test Coverage Report\n")
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, "POST /repos/owner/repo/issues/42/comments", gotPath)
	assert.Contains(t, gotBody.Body, "# Test Coverage Report")
}
