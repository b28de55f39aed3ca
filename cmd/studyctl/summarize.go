package main

import (
	"github.com/spf13/cobra"

	"studygen/internal/domain"
	"studygen/internal/service"
)

type summarizeOptions struct {
	file    string
	mode    string
	bullets int
	redact  bool
}

func newSummarizeCmd(c *cli) *cobra.Command {
	opts := &summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize text as an abstract or bullet points",
		Long:  "Reads study material and prints a JSON summary. Numbers in the summary must appear in the source text.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummarize(cmd, c, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the text file, or - for stdin (required)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(domain.ModeAbstract), "Summary mode: abstract or bullets")
	cmd.Flags().IntVarP(&opts.bullets, "bullets", "b", 0, "Number of bullets (3-7, default 5)")
	cmd.Flags().BoolVar(&opts.redact, "redact", false, "Redact emails and phone numbers before summarizing")
	markRequired(cmd, "file")

	return cmd
}

func runSummarize(cmd *cobra.Command, c *cli, opts *summarizeOptions) error {
	text, err := readInput(cmd, opts.file)
	if err != nil {
		return err
	}

	svc := service.NewSummarizerService(c.gen, c.cfg.LLM.Temperature, c.log.Named("summarizer"))
	resp, err := svc.Summarize(cmd.Context(), domain.SummarizeRequest{
		Text:        string(text),
		Mode:        domain.SummaryMode(opts.mode),
		BulletCount: opts.bullets,
		RedactPII:   opts.redact,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}
