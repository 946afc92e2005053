package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drblury/neurosynth/jsonutil"
	"github.com/drblury/neurosynth/store"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		exact bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Print term annotations matching a keyword as JSON",
		Long: "Search the annotations_terms table for rows whose term equals the keyword\n" +
			"(--exact) or contains it, optionally capped by --limit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := store.TermQuery{Keyword: args[0], Exact: exact}
			if cmd.Flags().Changed("limit") {
				q.Limit = &limit
			}

			st, err := a.openStore(a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.SearchTerms(cmd.Context(), q)
			if err != nil {
				return err
			}

			out, err := jsonutil.MarshalIndent(rows, "", "  ")
			if err != nil {
				return fmt.Errorf("encode results: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "Match the whole term instead of a substring")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows to print")
	return cmd
}
