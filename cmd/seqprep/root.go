package main

import (
	"errors"
	"log/slog"
	"os"

	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/example/seqprep/internal/config"
	"github.com/example/seqprep/internal/pipeline"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "seqprep",
		Short:         "Build vocabularies and binarized datasets for sequence-to-sequence training",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel, loaded.Quiet)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newPreprocessCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger. Quiet raises
// the level to warn so progress messages are dropped.
func setupLogger(levelStr string, quiet bool) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}

	if quiet && lvl < slog.LevelWarn {
		lvl = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Data.SourceLang == "" && activeCfg.Data.DestDir == "" {
		return config.Config{}, errors.New("configuration not loaded")
	}
	return activeCfg, nil
}

// baseOptions maps the configuration onto pipeline options without building
// the tokenizer.
func baseOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		SourceLang:      cfg.Data.SourceLang,
		TargetLang:      cfg.Data.TargetLang,
		TrainPrefix:     cfg.Data.TrainPrefix,
		TinyTrainPrefix: cfg.Data.TinyTrainPrefix,
		ValidPrefix:     cfg.Data.ValidPrefix,
		TestPrefix:      cfg.Data.TestPrefix,
		DestDir:         cfg.Data.DestDir,
		Source: pipeline.Vocab{
			Threshold: cfg.Vocab.ThresholdSrc,
			NumWords:  cfg.Vocab.NumWordsSrc,
			Path:      cfg.Vocab.SrcPath,
		},
		Target: pipeline.Vocab{
			Threshold: cfg.Vocab.ThresholdTgt,
			NumWords:  cfg.Vocab.NumWordsTgt,
			Path:      cfg.Vocab.TgtPath,
		},
		NoEOS: cfg.Data.NoEOS,
		Quiet: cfg.Quiet,
	}
}
