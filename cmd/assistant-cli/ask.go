package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/profile-assistant/internal/resolver"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a question and show which stage answered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Completion.Timeout+cfg.Knowledge.FetchTimeout)
			defer cancel()

			a, err := buildApp(ctx, "ask")
			if err != nil {
				return err
			}
			defer a.Close()

			ui := NewUI(outputJSON)
			question := strings.Join(args, " ")

			stop := ui.Spinner("Thinking...")
			res := a.Resolver.Resolve(ctx, question)
			stop()

			if outputJSON {
				return printJSON(struct {
					Question string `json:"question"`
					resolver.Resolution
					LatencyMs int64 `json:"latencyMs"`
				}{question, res, res.Elapsed.Milliseconds()})
			}

			fmt.Println(res.Answer)
			if verbose {
				ui.Section("Routing")
				ui.KeyValue("Stage", fmt.Sprintf("%d (%s)", res.Stage.Number(), res.Stage))
				if res.IntentKey != "" {
					ui.KeyValue("Intent", res.IntentKey)
				}
				if res.EntryID != "" {
					ui.KeyValue("Entry", res.EntryID)
				}
				if res.Score > 0 {
					ui.KeyValue("Score", fmt.Sprintf("%d %v", res.Score, res.MatchedFields))
				}
				if res.Topic != "" {
					ui.KeyValue("Topic", res.Topic)
				}
				ui.KeyValue("Latency", FormatDuration(res.Elapsed))
			}
			return nil
		},
	}
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <question...>",
		Short: "Show every matcher's verdict for a question without calling the completion service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Knowledge.FetchTimeout)
			defer cancel()

			a, err := buildApp(ctx, "explain")
			if err != nil {
				return err
			}
			defer a.Close()

			trace := a.Resolver.Explain(ctx, strings.Join(args, " "))
			if outputJSON {
				return printJSON(trace)
			}

			ui := NewUI(false)
			ui.Section("Query")
			ui.KeyValue("Raw", trace.Query)
			ui.KeyValue("Normalized", trace.Normalized)
			ui.KeyValue("Knowledge", fmt.Sprintf("%d entries (loaded: %t)", trace.Entries, trace.KnowledgeLoaded))

			ui.Section("Stages")
			if trace.Keyword != nil {
				ui.KeyValue("1 keyword", fmt.Sprintf("%s entry=%s usable=%t", trace.Keyword.IntentKey, trace.Keyword.EntryID, trace.Keyword.Usable))
			} else {
				ui.KeyValue("1 keyword", "no match")
			}
			if trace.Direct != nil {
				ui.KeyValue("2 direct", fmt.Sprintf("%s score=%d/%d fields=%v usable=%t",
					trace.Direct.EntryID, trace.Direct.Score, trace.Direct.MinScore, trace.Direct.MatchedFields, trace.Direct.Usable))
			} else {
				ui.KeyValue("2 direct", "no match")
			}
			if trace.Intent != nil {
				ui.KeyValue("3 intent", fmt.Sprintf("%s via %s (%q) usable=%t", trace.Intent.IntentKey, trace.Intent.Rule, trace.Intent.Matched, trace.Intent.Usable))
			} else {
				ui.KeyValue("3 intent", "no match")
			}
			ui.KeyValue("4 completion", fmt.Sprintf("ready=%t snippets=%d", trace.CompletionReady, len(trace.Snippets)))
			for _, s := range trace.Snippets {
				ui.KeyValue("    snippet", fmt.Sprintf("%s relevance=%d", s.ID, s.Relevance))
			}
			ui.KeyValue("5 topic", orNone(trace.Topic))
			ui.KeyValue("6 out of scope", trace.OutOfScope)

			ui.Section("Result")
			ui.Success("Resolve would stop at stage %d (%s)", trace.Stage.Number(), trace.Stage)
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
