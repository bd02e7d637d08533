package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/seqprep/internal/config"
	"github.com/example/seqprep/internal/pipeline"
	"github.com/example/seqprep/internal/report"
	"github.com/example/seqprep/internal/tokenizer"
)

func newPreprocessCmd() *cobra.Command {
	var topUnknown int

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Build dictionaries and binarize every configured split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			opts, err := pipelineOptions(cfg)
			if err != nil {
				return err
			}

			slog.Info("preprocess", "command", strings.Join(os.Args, " "))
			slog.Info("arguments", "config", cfg)

			res, err := pipeline.Run(opts)
			if err != nil {
				return err
			}

			if cfg.Quiet {
				return nil
			}

			out := cmd.OutOrStdout()
			report.Dictionaries(out, cfg.Color, res.Langs)
			report.Splits(out, cfg.Color, res.Splits)

			if topUnknown > 0 {
				for _, s := range res.Splits {
					title := fmt.Sprintf("Top unknown words in %s.%s", s.Split, s.Lang)
					report.UnknownWords(out, cfg.Color, title, s.Stats.TopUnknown(topUnknown))
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&topUnknown, "top-unknown", 10, "List this many of the most frequent unknown words per split (0 to disable)")

	return cmd
}

// pipelineOptions builds the tokenizer and the pipeline options for cfg.
func pipelineOptions(cfg config.Config) (pipeline.Options, error) {
	tokOpts, err := cfg.Tokenizer.TokenizerOptions()
	if err != nil {
		return pipeline.Options{}, err
	}

	tok, err := tokenizer.New(tokOpts)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("tokenizer: %w", err)
	}

	opts := baseOptions(cfg)
	opts.Tokenizer = tok
	opts.Logger = slog.Default()

	return opts, nil
}
