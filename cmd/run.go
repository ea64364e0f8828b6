package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/coverbotdev/coverbot/internal/fs"
	"github.com/coverbotdev/coverbot/internal/log"
	"github.com/coverbotdev/coverbot/pkg/archive"
	"github.com/coverbotdev/coverbot/pkg/artifacts/cobertura"
	"github.com/coverbotdev/coverbot/pkg/format"
	gh "github.com/coverbotdev/coverbot/pkg/github"
)

// NewRunCmd performs the whole pipeline in one shot: download the coverage
// artifact from the upstream workflow run, render the markdown report, and
// publish it on the pull request recorded inside the artifact.
func NewRunCmd(artifactService ArtifactService, commentService CommentService, timeout time.Duration) *cobra.Command {
	command := &cobra.Command{
		Use:   "run",
		Short: "Fetch the coverage artifact and publish the report comment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifactName, _ := cmd.Flags().GetString("artifact-name")
			workflowName, _ := cmd.Flags().GetString("workflow")
			runID, _ := cmd.Flags().GetInt64("run-id")
			update, _ := cmd.Flags().GetBool("update")
			marker, _ := cmd.Flags().GetString("marker")
			warn, _ := cmd.Flags().GetFloat64("threshold-warn")
			pass, _ := cmd.Flags().GetFloat64("threshold-pass")

			owner, repo, err := repoCoordinates(cmd)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorUserInput, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if runID == 0 {
				runID, err = artifactService.FindWorkflowRun(ctx, owner, repo, workflowName, "")
				if err != nil {
					return fmt.Errorf("%w: %v", ErrorAPI, err)
				}
			}

			zipData, err := artifactService.FetchArchive(ctx, owner, repo, runID, artifactName)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorAPI, err)
			}

			dir, err := os.MkdirTemp("", "coverbot-*")
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorFileAccess, err)
			}
			defer os.RemoveAll(dir)

			if _, err := archive.Extract(zipData, dir); err != nil {
				return fmt.Errorf("%w: %v", ErrorEncoding, err)
			}

			prNumber, err := fs.ReadPRNumber(path.Join(dir, DefaultPRNumberFilename))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorUserInput, err)
			}
			log.Infof("Publishing coverage report for %s/%s#%d from run %d", owner, repo, prNumber, runID)

			summary, err := summarizeCoverageFile(path.Join(dir, cobertura.DefaultFilename), cobertura.Thresholds{Warn: warn, Pass: pass})
			if err != nil {
				return err
			}

			doc := summary.Markdown(cobertura.MarkdownOptions{Badge: true, BranchRate: true})
			doc = format.Collapse(doc, cobertura.DefaultCollapseLabel)

			var commentID int64
			if update {
				commentID, err = commentService.PublishOrUpdate(ctx, owner, repo, prNumber, marker, doc)
			} else {
				commentID, err = commentService.Publish(ctx, owner, repo, prNumber, doc)
			}
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorAPI, err)
			}

			cmd.Printf("Published comment %d on %s/%s#%d\n", commentID, owner, repo, prNumber)
			return nil
		},
	}

	command.Flags().String("owner", "", "Repository owner")
	command.Flags().String("repo", "", "Repository name")
	command.Flags().Int64("run-id", 0, "Workflow run to pull the artifact from")
	command.Flags().String("workflow", gh.DefaultWorkflowName, "Workflow to search when no run ID is given")
	command.Flags().String("artifact-name", gh.DefaultArtifactName, "Name of the artifact to download")
	command.Flags().Bool("update", false, "Edit the previous coverbot comment instead of adding a new one")
	command.Flags().String("marker", DefaultCommentMarker, "Hidden marker used to recognize the previous comment")
	command.Flags().Float64("threshold-warn", cobertura.DefaultThresholds.Warn, "Line rate below this percentage fails")
	command.Flags().Float64("threshold-pass", cobertura.DefaultThresholds.Pass, "Line rate at or above this percentage passes")

	return command
}
