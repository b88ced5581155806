package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List portfolio projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Projects.Timeout+cfg.Knowledge.FetchTimeout)
			defer cancel()

			a, err := buildApp(ctx, "projects")
			if err != nil {
				return err
			}
			defer a.Close()

			list := a.Projects.List(ctx)
			if outputJSON {
				return printJSON(list)
			}

			ui := NewUI(false)
			for _, p := range list {
				ui.Section(strings.TrimSpace(p.Icon + " " + p.Title))
				fmt.Println(p.Description)
				fmt.Println()
				ui.KeyValue("Domain", p.Domain)
				ui.KeyValue("Skills", strings.Join(p.SkillsUsed, ", "))
				ui.KeyValue("Results", p.MeasurableResults)
				if p.HasCaseStudy() {
					ui.KeyValue("Case study", p.Link)
				}
			}
			return nil
		},
	}
}
