package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studygen/internal/handler"
)

func newValidateCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate questions from a quiz export or a question array",
		Long:  "Prints a per-question validation report and exits non-zero when any question is invalid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			questions, err := readQuestionsForValidation(data)
			if err != nil {
				return err
			}

			report := handler.BuildValidationReport(questions)
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			c.log.Info("Validation complete",
				zap.Int("total", report.Summary.TotalQuestions),
				zap.Int("invalid", report.Summary.InvalidQuestions),
			)
			if report.Summary.InvalidQuestions > 0 {
				return fmt.Errorf("%d of %d questions are invalid", report.Summary.InvalidQuestions, report.Summary.TotalQuestions)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the questions JSON, or - for stdin (required)")
	markRequired(cmd, "file")

	return cmd
}
