package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fit <role or keywords...>",
		Short: "Score how well the profile fits a role",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Completion.Timeout+cfg.Knowledge.FetchTimeout)
			defer cancel()

			a, err := buildApp(ctx, "fit")
			if err != nil {
				return err
			}
			defer a.Close()

			ui := NewUI(outputJSON)
			stop := ui.Spinner("Scoring fit...")
			result := a.Fit.Analyze(ctx, strings.Join(args, " "))
			stop()

			if outputJSON {
				return printJSON(result)
			}

			ui.Section(fmt.Sprintf("%d%% %s", result.Score, result.Title))
			fmt.Println(result.Description)
			if result.Role != nil {
				ui.KeyValue("Role", fmt.Sprintf("%s (%s)", result.Role.Title, result.Role.Category))
			} else {
				ui.KeyValue("Keyword hits", result.KeywordHits)
			}
			fmt.Println()
			fmt.Println(result.Explanation)
			if verbose {
				ui.KeyValue("Explanation source", result.ExplanationSource)
			}
			return nil
		},
	}
}
