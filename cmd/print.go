package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coverbotdev/coverbot/internal/log"
	"github.com/coverbotdev/coverbot/pkg/artifacts/cobertura"
)

// NewPrintCommand will pretty print a coverage report table, piped input from
// standard out is accepted as well
func NewPrintCommand(pipedFile *os.File, newAsyncDecoder func() AsyncDecoder) *cobra.Command {
	var command = &cobra.Command{
		Use:     "print [FILE ...]",
		Short:   "Pretty print a coverage report or summary",
		Example: "coverbot print coverage.xml summary.json",
		RunE: func(cmd *cobra.Command, args []string) error {

			if pipedFile != nil {
				log.Infof("Piped File Received: %s", pipedFile.Name())
				v, _ := newAsyncDecoder().DecodeFrom(pipedFile)
				printArtifact(cmd.OutOrStdout(), v)
			}

			for _, v := range args {
				log.Infof("Opening file: %s", v)
				f, err := os.Open(v)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrorFileAccess, err)
				}
				v, _ := newAsyncDecoder().DecodeFrom(f)
				printArtifact(cmd.OutOrStdout(), v)
			}

			return nil
		},
	}

	return command
}

func printArtifact(w io.Writer, v any) {
	outputString := ""
	switch obj := v.(type) {
	case *cobertura.ScanReport:
		outputString = obj.String()
	case *cobertura.Summary:
		outputString = obj.Markdown(cobertura.MarkdownOptions{BranchRate: true, Complexity: true})
	}

	_, _ = strings.NewReader(outputString).WriteTo(w)
}
