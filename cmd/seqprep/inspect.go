package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/seqprep/internal/dataset"
	"github.com/example/seqprep/internal/dictionary"
	"github.com/example/seqprep/internal/doctor"
	"github.com/example/seqprep/internal/report"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the contents of a dictionary or binarized dataset",
	}

	cmd.AddCommand(newInspectDictCmd())
	cmd.AddCommand(newInspectDatasetCmd())

	return cmd
}

func newInspectDictCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dict <path>",
		Short: "List dictionary symbols in id order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			dict, err := dictionary.Load(args[0])
			if err != nil {
				return err
			}

			report.Symbols(cmd.OutOrStdout(), cfg.Color, dict, limit)

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of symbols to list (0 for all)")

	return cmd
}

func newInspectDatasetCmd() *cobra.Command {
	var (
		dictPath string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "dataset <path>",
		Short: "Preview the sentences of a binarized dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			sentences, err := dataset.Read(args[0])
			if err != nil {
				return err
			}

			var dict *dictionary.Dictionary

			if dictPath != "" {
				dict, err = dictionary.Load(dictPath)
				if err != nil {
					return err
				}

				if err := doctor.CheckIDs(sentences, dict.Len()); err != nil {
					return fmt.Errorf("%s does not match %s: %w", args[0], dictPath, err)
				}
			}

			report.Sentences(cmd.OutOrStdout(), cfg.Color, sentences, dict, limit)

			return nil
		},
	}

	cmd.Flags().StringVar(&dictPath, "dict", "", "Dictionary used to decode the ids back to text")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of sentences to show (0 for all)")

	return cmd
}
