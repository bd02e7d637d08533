package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/seqprep/internal/config"
	"github.com/example/seqprep/internal/doctor"
	"github.com/example/seqprep/internal/tokenizer"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check inputs, tokenizer and the destination directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result := doctor.Run(doctorConfig(cfg), out)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(out, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

// doctorConfig lists the corpus files and vocabularies a preprocess run with
// cfg would read, and the outputs it would produce.
func doctorConfig(cfg config.Config) doctor.Config {
	opts := baseOptions(cfg)

	var inputs []string

	for _, lang := range opts.Langs() {
		for _, sp := range opts.Prefixes() {
			inputs = append(inputs, sp.Prefix+"."+lang)
		}
	}

	for _, p := range []string{cfg.Vocab.SrcPath, cfg.Vocab.TgtPath} {
		if p != "" {
			inputs = append(inputs, p)
		}
	}

	return doctor.Config{
		Inputs:    inputs,
		Tokenizer: cfg.Tokenizer.Kind,
		LoadTokenizer: func() error {
			opts, err := cfg.Tokenizer.TokenizerOptions()
			if err != nil {
				return err
			}

			_, err = tokenizer.New(opts)

			return err
		},
		DestDir: cfg.Data.DestDir,
		Langs:   opts.Langs(),
	}
}
