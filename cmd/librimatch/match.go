package librimatch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	root "github.com/librimatch/librimatch"
	"github.com/librimatch/librimatch/pkg/config"
	"github.com/librimatch/librimatch/pkg/logger"
	"github.com/librimatch/librimatch/pkg/nlp"
)

var matchCmd = &cobra.Command{
	Use:   "match [query]",
	Short: "Match a free-text book description against OpenLibrary",
	Long: `Run the matching pipeline once for the given query and print the
ranked matches as JSON.

Example:
  librimatch match "that fantasy book about a hobbit by tolkien"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

var (
	matchModel       string
	matchTemperature float32
	matchTimeout     time.Duration
)

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchModel, "model", "", "Model to use (gemini-flash-lite, gemini-flash, gpt-nano)")
	matchCmd.Flags().Float32Var(&matchTemperature, "temperature", 0, "Sampling temperature (0.0 to 1.0)")
	matchCmd.Flags().DurationVar(&matchTimeout, "timeout", 2*time.Minute, "Overall pipeline timeout")
}

func runMatch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), matchTimeout)
	defer cancel()

	matcher, closeMatcher, err := buildMatcher(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize matcher: %w", err)
	}
	defer closeMatcher()

	opts := &root.RequestOptions{}
	if cmd.Flags().Changed("model") {
		model, err := nlp.ParseModel(matchModel)
		if err != nil {
			return err
		}
		opts.Model = &model
	}
	if cmd.Flags().Changed("temperature") {
		if matchTemperature < 0 || matchTemperature > 1 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0")
		}
		opts.Temperature = &matchTemperature
	}

	matches, err := matcher.FindMatches(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Fprintln(os.Stderr, "No book matches found for the given query")
		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(matches)
}
