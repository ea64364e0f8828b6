package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/coverbotdev/coverbot/internal/log"
	"github.com/coverbotdev/coverbot/pkg/archive"
	gh "github.com/coverbotdev/coverbot/pkg/github"
)

// NewFetchCmd downloads a coverage artifact archive from a workflow run and
// extracts it into a local directory.
func NewFetchCmd(service ArtifactService, timeout time.Duration) *cobra.Command {
	command := &cobra.Command{
		Use:   "fetch",
		Short: "Download and extract a coverage artifact from a workflow run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifactName, _ := cmd.Flags().GetString("artifact-name")
			workflowName, _ := cmd.Flags().GetString("workflow")
			headSHA, _ := cmd.Flags().GetString("commit")
			runID, _ := cmd.Flags().GetInt64("run-id")
			dir, _ := cmd.Flags().GetString("dir")

			owner, repo, err := repoCoordinates(cmd)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorUserInput, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if runID == 0 {
				log.Infof("No run ID provided, searching for the latest successful %q run", workflowName)
				runID, err = service.FindWorkflowRun(ctx, owner, repo, workflowName, headSHA)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrorAPI, err)
				}
			}

			zipData, err := service.FetchArchive(ctx, owner, repo, runID, artifactName)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorAPI, err)
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("%w: %v", ErrorFileAccess, err)
			}

			archiveFilename := path.Join(dir, artifactName+".zip")
			if err := os.WriteFile(archiveFilename, zipData, 0o644); err != nil {
				return fmt.Errorf("%w: %v", ErrorFileAccess, err)
			}
			log.Infof("Saved artifact archive to %s", archiveFilename)

			entries, err := archive.Extract(zipData, dir)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorEncoding, err)
			}
			log.Infof("Extracted %d files into %s", len(entries), dir)

			return archive.NewPrettyWriter(cmd.OutOrStdout()).Encode(zipData)
		},
	}

	command.Flags().String("owner", "", "Repository owner")
	command.Flags().String("repo", "", "Repository name")
	command.Flags().Int64("run-id", 0, "Workflow run to pull the artifact from")
	command.Flags().String("workflow", gh.DefaultWorkflowName, "Workflow to search when no run ID is given")
	command.Flags().String("commit", "", "Narrow the workflow run search to a head commit SHA")
	command.Flags().String("artifact-name", gh.DefaultArtifactName, "Name of the artifact to download")
	command.Flags().StringP("dir", "d", ".", "Directory to extract the archive into")

	return command
}
