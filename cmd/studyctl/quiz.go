package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studygen/internal/domain"
	"studygen/internal/service"
)

const formatQuiz = "quiz"

type quizOptions struct {
	file         string
	count        int
	difficulty   string
	seed         string
	explanations bool
	redact       bool
	mcq          int
	tf           int
	sa           int
	format       string
}

func newQuizCmd(c *cli) *cobra.Command {
	opts := &quizOptions{}

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a quiz from study material",
		Long: "Generates multiple choice, true/false and short answer questions. " +
			"With --format quiz the full result is printed; json and csv print an export of the questions.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuiz(cmd, c, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the study material, or - for stdin (required)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 10, "Number of questions (1-50)")
	cmd.Flags().StringVarP(&opts.difficulty, "difficulty", "d", string(domain.DifficultyMedium), "Difficulty: easy, medium or hard")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "Seed for reproducible IDs and question selection")
	cmd.Flags().BoolVar(&opts.explanations, "explanations", false, "Include explanations")
	cmd.Flags().BoolVar(&opts.redact, "redact", false, "Redact emails and phone numbers before generating")
	cmd.Flags().IntVar(&opts.mcq, "mcq", 0, "Number of multiple choice questions")
	cmd.Flags().IntVar(&opts.tf, "tf", 0, "Number of true/false questions")
	cmd.Flags().IntVar(&opts.sa, "sa", 0, "Number of short answer questions")
	cmd.Flags().StringVar(&opts.format, "format", formatQuiz, "Output format: quiz, json or csv")
	markRequired(cmd, "file")

	return cmd
}

func runQuiz(cmd *cobra.Command, c *cli, opts *quizOptions) error {
	if opts.format != formatQuiz && !service.ExportFormat(opts.format).Valid() {
		return fmt.Errorf("unsupported format %q (want quiz, json or csv)", opts.format)
	}

	content, err := readInput(cmd, opts.file)
	if err != nil {
		return err
	}

	req := domain.QuizRequest{
		Content:             string(content),
		QuestionCount:       opts.count,
		Difficulty:          domain.Difficulty(opts.difficulty),
		IncludeExplanations: opts.explanations,
		RedactPII:           opts.redact,
		Seed:                opts.seed,
	}
	// Any explicit per-type flag switches off the default distribution.
	if cmd.Flags().Changed("mcq") || cmd.Flags().Changed("tf") || cmd.Flags().Changed("sa") {
		req.QuestionTypes = &domain.TypeDistribution{MCQ: opts.mcq, TrueFalse: opts.tf, ShortAnswer: opts.sa}
	}

	svc := service.NewQuizGeneratorService(c.gen, c.log.Named("quiz"))
	started := time.Now()
	quiz, err := svc.GenerateQuiz(cmd.Context(), req)
	if err != nil {
		return err
	}
	c.log.Info("Quiz generated",
		zap.String("quiz_id", quiz.QuizID),
		zap.Int("questions", len(quiz.Questions)),
		zap.Duration("elapsed", time.Since(started)),
	)

	if opts.format == formatQuiz {
		return writeJSON(cmd.OutOrStdout(), quiz)
	}
	data, err := service.Export(quiz.Questions, service.ExportOptions{
		Format:              service.ExportFormat(opts.format),
		IncludeExplanations: opts.explanations,
		IncludeMetadata:     true,
	})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
