package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v59/github"

	"github.com/coverbotdev/coverbot/internal/log"
)

// MaxCommentSize is GitHub's limit for comment body size.
const MaxCommentSize = 65536

// markerFormat is the hidden marker used to recognize a previously published
// coverbot comment when running in update mode.
const markerFormat = "<!-- coverbot-marker: %s -->"

// IssuesService is the subset of the GitHub Issues API the publisher needs.
// It matches go-github's IssuesService so the real client drops in.
type IssuesService interface {
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
	EditComment(ctx context.Context, owner, repo string, commentID int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// CommentPublisher posts report comments on pull requests. Every API call is
// a single attempt; failures surface to the caller unretried.
type CommentPublisher struct {
	issues IssuesService
}

func NewCommentPublisher(issues IssuesService) *CommentPublisher {
	return &CommentPublisher{issues: issues}
}

// Publish creates a new comment on the pull request and returns its ID.
func (p *CommentPublisher) Publish(ctx context.Context, owner, repo string, prNumber int, body string) (int64, error) {
	body = truncateComment(body, MaxCommentSize)

	comment, _, err := p.issues.CreateComment(ctx, owner, repo, prNumber, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return 0, fmt.Errorf("creating comment on %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	log.Info("Created pull request comment", "pr", prNumber, "commentID", comment.GetID())
	return comment.GetID(), nil
}

// PublishOrUpdate edits the existing comment bearing the marker, creating a
// new one when none is found. The marker is embedded into the posted body so
// a later run can find it again.
func (p *CommentPublisher) PublishOrUpdate(ctx context.Context, owner, repo string, prNumber int, marker, body string) (int64, error) {
	markerLine := fmt.Sprintf(markerFormat, marker)
	body = truncateComment(markerLine+"\n"+body, MaxCommentSize)

	existing, err := p.findExisting(ctx, owner, repo, prNumber, markerLine)
	if err != nil {
		return 0, err
	}

	if existing == nil {
		comment, _, err := p.issues.CreateComment(ctx, owner, repo, prNumber, &github.IssueComment{
			Body: github.String(body),
		})
		if err != nil {
			return 0, fmt.Errorf("creating comment on %s/%s#%d: %w", owner, repo, prNumber, err)
		}
		log.Info("Created pull request comment", "pr", prNumber, "commentID", comment.GetID())
		return comment.GetID(), nil
	}

	comment, _, err := p.issues.EditComment(ctx, owner, repo, existing.GetID(), &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return 0, fmt.Errorf("updating comment %d on %s/%s#%d: %w", existing.GetID(), owner, repo, prNumber, err)
	}

	log.Info("Updated pull request comment", "pr", prNumber, "commentID", comment.GetID())
	return comment.GetID(), nil
}

func (p *CommentPublisher) findExisting(ctx context.Context, owner, repo string, prNumber int, markerLine string) (*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		comments, resp, err := p.issues.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments on %s/%s#%d: %w", owner, repo, prNumber, err)
		}

		for _, comment := range comments {
			if strings.Contains(comment.GetBody(), markerLine) {
				log.Debug("Found existing comment", "commentID", comment.GetID())
				return comment, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

// truncateComment trims content to fit within GitHub's comment size limit,
// preferring to cut at a line boundary.
func truncateComment(content string, maxSize int) string {
	if len(content) <= maxSize {
		return content
	}

	truncationMsg := "\n\n---\n*Comment truncated due to size limits*"
	if len(truncationMsg) >= maxSize {
		return truncationMsg[:maxSize]
	}

	availableSize := maxSize - len(truncationMsg)
	truncated := content[:availableSize]
	if lastNewline := strings.LastIndex(truncated, "\n"); lastNewline > availableSize/2 {
		truncated = truncated[:lastNewline]
	}

	return truncated + truncationMsg
}
