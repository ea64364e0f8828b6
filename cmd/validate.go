package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/coverbotdev/coverbot/internal/log"
	"github.com/coverbotdev/coverbot/pkg/artifacts/cobertura"
)

type AnyValidator interface {
	Validate(objPtr any, configReader io.Reader) error
	ValidateFrom(objReader io.Reader, configReader io.Reader) error
}

func NewValidateCmd(newAsyncDecoder func() AsyncDecoder) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Validate a coverage report using thresholds set in the coverbot configuration file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configFilename, _ := cmd.Flags().GetString("config")
			auditFlag, _ := cmd.Flags().GetBool("audit")

			objFile, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorFileAccess, err)
			}

			obj, err := newAsyncDecoder().DecodeFrom(objFile)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorEncoding, err)
			}

			configFile, err := os.Open(configFilename)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrorFileAccess, err)
			}

			var validator AnyValidator

			switch obj.(type) {
			case *cobertura.ScanReport:
				validator = cobertura.NewValidator()
			default:
				return fmt.Errorf("%w: unsupported report file", ErrorEncoding)
			}

			validationError := validator.Validate(obj, configFile)

			if validationError != nil {
				if auditFlag {
					log.Warnf("Validation failure (audit mode): %v", validationError)
					return nil
				}
				return fmt.Errorf("%w: %v", ErrorValidation, validationError)
			}

			return nil
		},
	}

	cmd.Flags().Bool("audit", false, "Exit w/ Code 0 even if validation fails")
	cmd.Flags().StringP("config", "c", "", "A coverbot configuration file with thresholds")

	_ = cmd.MarkFlagRequired("config")
	return cmd
}
