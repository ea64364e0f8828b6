package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/coverbotdev/coverbot/internal/fs"
	"github.com/coverbotdev/coverbot/internal/log"
)

// DefaultPRNumberFilename is the file the upstream build writes the pull
// request number into, shipped alongside the coverage file in the artifact.
const DefaultPRNumberFilename = "pr_number"

// DefaultCommentMarker identifies coverbot's own comment when updating.
const DefaultCommentMarker = "coverage"

// NewCommentCmd posts a markdown document as a comment on a pull request.
func NewCommentCmd(service CommentService, timeout time.Duration) *cobra.Command {
	command := &cobra.Command{
		Use:   "comment [FILE]",
		Short: "Post a markdown file as a pull request comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := repoCoordinates(cmd)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorUserInput, err)
			}

			prNumber, err := resolvePRNumber(cmd)
			if err != nil {
				return err
			}

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorFileAccess, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			update, _ := cmd.Flags().GetBool("update")
			marker, _ := cmd.Flags().GetString("marker")

			var commentID int64
			if update {
				commentID, err = service.PublishOrUpdate(ctx, owner, repo, prNumber, marker, string(body))
			} else {
				commentID, err = service.Publish(ctx, owner, repo, prNumber, string(body))
			}
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorAPI, err)
			}

			log.Infof("Comment %d published on %s/%s#%d", commentID, owner, repo, prNumber)
			return nil
		},
	}

	command.Flags().String("owner", "", "Repository owner")
	command.Flags().String("repo", "", "Repository name")
	command.Flags().Int("pr", 0, "Pull request number, overrides --pr-file")
	command.Flags().String("pr-file", DefaultPRNumberFilename, "File containing the pull request number")
	command.Flags().Bool("update", false, "Edit the previous coverbot comment instead of adding a new one")
	command.Flags().String("marker", DefaultCommentMarker, "Hidden marker used to recognize the previous comment")

	return command
}

// resolvePRNumber prefers an explicit --pr flag and otherwise reads the
// number from the file named by --pr-file.
func resolvePRNumber(cmd *cobra.Command) (int, error) {
	prNumber, _ := cmd.Flags().GetInt("pr")
	if prNumber > 0 {
		return prNumber, nil
	}

	prFilename, _ := cmd.Flags().GetString("pr-file")
	prNumber, err := fs.ReadPRNumber(prFilename)
	if errors.Is(err, fs.ErrDecode) {
		return 0, fmt.Errorf("%w: %v", ErrorUserInput, err)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrorFileAccess, err)
	}

	log.Debugf("Pull request number %d read from %s", prNumber, prFilename)
	return prNumber, nil
}
