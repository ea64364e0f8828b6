package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/coverbotdev/coverbot/internal/log"
	"github.com/coverbotdev/coverbot/pkg/artifacts/cobertura"
)

var (
	ErrorFileAccess     = errors.New("file access")
	ErrorEncoding       = errors.New("encoding")
	ErrorValidation     = errors.New("validation")
	ErrorAPI            = errors.New("request API")
	ErrorUserInput      = errors.New("user error")
	GlobalVerboseOutput = false
)

const CoverbotLogo = `
                          _           _
  ___ _____   _____ _ __ | |__   ___ | |_
 / __/ _ \ \ / / _ \ '__|| '_ \ / _ \| __|
| (_| (_) \ V /  __/ |   | |_) | (_) | |_
 \___\___/ \_/ \___|_|   |_.__/ \___/ \__|
`

// ArtifactService locates and downloads workflow run artifacts.
type ArtifactService interface {
	FetchArchive(ctx context.Context, owner, repo string, runID int64, name string) ([]byte, error)
	FindWorkflowRun(ctx context.Context, owner, repo, workflowName, headSHA string) (int64, error)
}

// CommentService publishes report comments on pull requests.
type CommentService interface {
	Publish(ctx context.Context, owner, repo string, prNumber int, body string) (int64, error)
	PublishOrUpdate(ctx context.Context, owner, repo string, prNumber int, marker, body string) (int64, error)
}

type AsyncDecoder interface {
	io.Writer
	Decode() (any, error)
	DecodeFrom(r io.Reader) (any, error)
	FileType() string
	Reset()
}

type CLIConfig struct {
	Version             string
	PipedInput          *os.File
	ArtifactService     ArtifactService
	CommentService      CommentService
	APITimeout          time.Duration
	NewAsyncDecoderFunc func() AsyncDecoder
}

func NewRootCommand(config CLIConfig) *cobra.Command {
	command := &cobra.Command{
		Use:     "coverbot",
		Version: config.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			log.SetVerbose(GlobalVerboseOutput)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf(CoverbotLogo)
			return nil
		},
	}

	// Global Flags
	command.PersistentFlags().BoolVarP(&GlobalVerboseOutput, "verbose", "v", false, "Verbose debug output")

	// Environment fallback for repository coordinates
	viper.SetDefault("repository", "")
	_ = viper.BindEnv("repository", "GITHUB_REPOSITORY")

	// Commands
	command.AddCommand(NewVersionCmd(config.Version))
	command.AddCommand(NewConfigCmd())
	command.AddCommand(NewPrintCommand(config.PipedInput, config.NewAsyncDecoderFunc))
	command.AddCommand(NewValidateCmd(config.NewAsyncDecoderFunc))
	command.AddCommand(NewReportCmd())
	command.AddCommand(NewFetchCmd(config.ArtifactService, config.APITimeout))
	command.AddCommand(NewCommentCmd(config.CommentService, config.APITimeout))
	command.AddCommand(NewRunCmd(config.ArtifactService, config.CommentService, config.APITimeout))

	return command
}

func NewVersionCmd(version string) *cobra.Command {
	command := &cobra.Command{
		Use: "version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf(CoverbotLogo)
			cmd.Println("A utility for publishing test coverage reports as pull request comments")
			cmd.Println("Version:", version)
			return nil
		},
	}

	return command
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Creates a new configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "prints a new configuration file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configMap := map[string]any{
				"version":                 "1",
				cobertura.ConfigFieldName: cobertura.Config{LineRate: cobertura.DefaultThresholds.Warn, BranchRate: -1},
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(configMap)
		},
	}

	cmd.AddCommand(initCmd)

	return cmd
}

// repoCoordinates resolves owner/repo from flags, falling back to the
// GITHUB_REPOSITORY environment variable.
func repoCoordinates(cmd *cobra.Command) (string, string, error) {
	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	if owner != "" && repo != "" {
		return owner, repo, nil
	}

	if repository := viper.GetString("repository"); repository != "" {
		parts := strings.SplitN(repository, "/", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
	}

	return "", "", errors.New("repository coordinates required, set --owner and --repo or GITHUB_REPOSITORY")
}
