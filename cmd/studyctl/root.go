package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"studygen/internal/config"
	"studygen/internal/domain"
	"studygen/internal/dto"
	"studygen/internal/generator"
	"studygen/internal/logger"
	"studygen/internal/service"
)

// cli holds state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type cli struct {
	configDir string
	offline   bool
	verbose   bool

	cfg *config.Config
	log *zap.Logger
	gen domain.Generator
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "studyctl",
		Short:         "Summaries and quizzes from study material",
		Long:          "studyctl turns study material into abstracts, bullet summaries and quizzes, and validates or exports existing question sets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&c.configDir, "config", "", "Directory containing config.yaml")
	root.PersistentFlags().BoolVar(&c.offline, "offline", false, "Use the offline generator regardless of llm.provider")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newSummarizeCmd(c),
		newQuizCmd(c),
		newValidateCmd(c),
		newExportCmd(c),
	)
	return root
}

func (c *cli) setup(ctx context.Context, stderr io.Writer) error {
	var paths []string
	if c.configDir != "" {
		paths = append(paths, c.configDir)
	}
	var overrides map[string]any
	if c.offline {
		overrides = map[string]any{"llm.provider": config.ProviderOffline}
	}
	cfg, err := config.LoadConfigWithOverrides(overrides, paths...)
	if err != nil {
		return err
	}
	c.cfg = cfg

	c.log = zap.NewNop()
	if c.verbose {
		c.log = logger.NewWithSink(cfg.Logger, zapcore.AddSync(stderr))
	}

	gen, err := generator.NewFromConfig(ctx, cfg.LLM, nil, 0, c.log.Named("generator"))
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	c.gen = gen
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// readQuestions accepts a JSON export document or a bare question array.
func readQuestions(data []byte) ([]domain.QuizQuestion, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return service.ParseJSONExport([]byte(trimmed))
	}
	var questions []domain.QuizQuestion
	if err := json.Unmarshal([]byte(trimmed), &questions); err != nil {
		return nil, fmt.Errorf("input is neither a quiz export nor a question array: %w", err)
	}
	return questions, nil
}

// readQuestionsForValidation is readQuestions, except that a malformed
// correctAnswer in a question array is reported by validation rather than
// failing the decode.
func readQuestionsForValidation(data []byte) ([]domain.QuizQuestion, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return service.ParseJSONExport([]byte(trimmed))
	}
	var inputs []dto.QuestionInput
	if err := json.Unmarshal([]byte(trimmed), &inputs); err != nil {
		return nil, fmt.Errorf("input is neither a quiz export nor a question array: %w", err)
	}
	return dto.QuestionsFromInputs(inputs), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}
