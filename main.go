package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/coverbotdev/coverbot/cmd"
	"github.com/coverbotdev/coverbot/internal/log"
	"github.com/coverbotdev/coverbot/pkg/artifacts/cobertura"
	gce "github.com/coverbotdev/coverbot/pkg/encoding"
	gh "github.com/coverbotdev/coverbot/pkg/github"
)

// CLIVersion is set at build time with ldflags.
var CLIVersion = "dev"

const apiTimeout = 2 * time.Minute

const (
	exitSystemFail     int = -1
	exitOk             int = 0
	exitFileAccessFail int = 2
	exitValidationFail int = 1
	exitEncodingFail   int = 3
	exitAPIFail        int = 4
	exitUserInputFail  int = 5
)

func main() {
	token := os.Getenv("GITHUB_TOKEN")
	if ghContext, err := gh.DetectContext(); err == nil {
		token = ghContext.Token
		log.Debugf("Running inside GitHub Actions for %s/%s, run %d", ghContext.Owner, ghContext.Repo, ghContext.RunID)
	}
	client := gh.NewClient(context.Background(), token)

	var pipedFile *os.File
	if pipeInput, err := os.Stdin.Stat(); err == nil && pipeInput.Mode()&os.ModeNamedPipe != 0 {
		pipedFile = os.Stdin
	}

	command := cmd.NewRootCommand(cmd.CLIConfig{
		Version:         CLIVersion,
		PipedInput:      pipedFile,
		ArtifactService: gh.NewArtifactFetcher(client.Actions, nil),
		CommentService:  gh.NewCommentPublisher(client.Issues),
		APITimeout:      apiTimeout,
		NewAsyncDecoderFunc: func() cmd.AsyncDecoder {
			return gce.NewAsyncDecoder(
				cobertura.NewReportDecoder(),
				cobertura.NewSummaryDecoder(),
			)
		},
	})

	command.SilenceUsage = true
	command.SetOut(os.Stdout)
	command.SetErr(os.Stderr)

	err := command.Execute()
	if err == nil {
		os.Exit(exitOk)
	}

	log.Error(err.Error())

	switch {
	case errors.Is(err, cmd.ErrorFileAccess):
		os.Exit(exitFileAccessFail)
	case errors.Is(err, cmd.ErrorValidation):
		os.Exit(exitValidationFail)
	case errors.Is(err, cmd.ErrorEncoding):
		os.Exit(exitEncodingFail)
	case errors.Is(err, cmd.ErrorAPI):
		os.Exit(exitAPIFail)
	case errors.Is(err, cmd.ErrorUserInput):
		os.Exit(exitUserInputFail)
	}

	os.Exit(exitSystemFail)
}
