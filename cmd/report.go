package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coverbotdev/coverbot/internal/fs"
	"github.com/coverbotdev/coverbot/internal/log"
	"github.com/coverbotdev/coverbot/pkg/artifacts/cobertura"
	"github.com/coverbotdev/coverbot/pkg/format"
)

// NewReportCmd renders a coverage file as a markdown report, wrapped in
// collapsible markup so only the title stays visible on the pull request.
func NewReportCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "report [FILE]",
		Short: "Render a coverage file as a markdown coverage report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markdownFilename, _ := cmd.Flags().GetString("markdown-file")
			jsonFilename, _ := cmd.Flags().GetString("json-file")
			collapseLabel, _ := cmd.Flags().GetString("collapse-label")
			warn, _ := cmd.Flags().GetFloat64("threshold-warn")
			pass, _ := cmd.Flags().GetFloat64("threshold-pass")
			withBadge, _ := cmd.Flags().GetBool("badge")
			withBranchRate, _ := cmd.Flags().GetBool("branch-rate")
			withComplexity, _ := cmd.Flags().GetBool("complexity")

			filename := cobertura.DefaultFilename
			if len(args) == 1 {
				filename = args[0]
			}

			summary, err := summarizeCoverageFile(filename, cobertura.Thresholds{Warn: warn, Pass: pass})
			if err != nil {
				return err
			}

			doc := summary.Markdown(cobertura.MarkdownOptions{
				Badge:      withBadge,
				BranchRate: withBranchRate,
				Complexity: withComplexity,
			})
			doc = format.Collapse(doc, collapseLabel)

			if markdownFilename != "" {
				if err := os.WriteFile(markdownFilename, []byte(doc), 0o644); err != nil {
					return fmt.Errorf("%w: %v", ErrorFileAccess, err)
				}
				log.Infof("Markdown report written to %s", markdownFilename)
			}

			if jsonFilename != "" {
				jsonFile, err := os.Create(jsonFilename)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrorFileAccess, err)
				}
				defer jsonFile.Close()
				if err := cobertura.WriteJSON(jsonFile, summary); err != nil {
					return fmt.Errorf("%w: %v", ErrorEncoding, err)
				}
				log.Infof("Summary written to %s", jsonFilename)
			}

			if markdownFilename == "" && jsonFilename == "" {
				cmd.Println(doc)
			}

			return nil
		},
	}

	command.Flags().String("markdown-file", "", "Write the markdown report to this file")
	command.Flags().String("json-file", "", "Write the machine-readable summary to this file")
	command.Flags().String("collapse-label", cobertura.DefaultCollapseLabel, "Label on the collapsible section")
	command.Flags().Float64("threshold-warn", cobertura.DefaultThresholds.Warn, "Line rate below this percentage fails")
	command.Flags().Float64("threshold-pass", cobertura.DefaultThresholds.Pass, "Line rate at or above this percentage passes")
	command.Flags().Bool("badge", true, "Include a coverage badge under the title")
	command.Flags().Bool("branch-rate", false, "Include the branch rate column")
	command.Flags().Bool("complexity", false, "Include the complexity column")

	return command
}

func summarizeCoverageFile(filename string, thresholds cobertura.Thresholds) (*cobertura.Summary, error) {
	obj, err := fs.ReadDecodeFile(filename, cobertura.NewReportDecoder())
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return nil, fmt.Errorf("%w: %v", ErrorFileAccess, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorEncoding, err)
	}

	return cobertura.NewSummary(obj.(*cobertura.ScanReport), thresholds), nil
}
