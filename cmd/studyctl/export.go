package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studygen/internal/service"
)

type exportOptions struct {
	file         string
	format       string
	out          string
	explanations bool
	metadata     bool
}

func newExportCmd(c *cli) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert questions to a JSON or CSV export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, c, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the questions JSON, or - for stdin (required)")
	cmd.Flags().StringVar(&opts.format, "format", string(service.FormatJSON), "Export format: json or csv")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&opts.explanations, "explanations", true, "Include explanations")
	cmd.Flags().BoolVar(&opts.metadata, "metadata", true, "Include question metadata")
	markRequired(cmd, "file")

	return cmd
}

func runExport(cmd *cobra.Command, c *cli, opts *exportOptions) error {
	data, err := readInput(cmd, opts.file)
	if err != nil {
		return err
	}
	questions, err := readQuestions(data)
	if err != nil {
		return err
	}

	exported, err := service.Export(questions, service.ExportOptions{
		Format:              service.ExportFormat(opts.format),
		IncludeExplanations: opts.explanations,
		IncludeMetadata:     opts.metadata,
	})
	if err != nil {
		return err
	}

	if opts.out == "" {
		_, err = cmd.OutOrStdout().Write(exported)
		return err
	}
	if err := os.WriteFile(opts.out, exported, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	c.log.Info("Export written", zap.String("path", opts.out), zap.String("format", opts.format))
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d questions to %s\n", len(questions), opts.out)
	return nil
}
