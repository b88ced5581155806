package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/matching"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect the knowledge base",
	}
	cmd.AddCommand(newKBStatsCmd())
	cmd.AddCommand(newKBProbeCmd())
	cmd.AddCommand(newKBKeywordsCmd())
	cmd.AddCommand(newKBFlushCmd())
	return cmd
}

func newKBStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report entry counts, missing answers and duplicate questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Knowledge.FetchTimeout)
			defer cancel()

			a, err := buildApp(ctx, "kb_stats")
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.Store.Load(ctx)
			stats := knowledge.ComputeStats(entries)
			if outputJSON {
				return printJSON(stats)
			}

			ui := NewUI(false)
			if !a.Store.IsLoaded() {
				ui.Error("Knowledge base could not be loaded from %v", cfg.Knowledge.Sources)
				return fmt.Errorf("knowledge base unavailable")
			}

			ui.Section("Knowledge base")
			ui.KeyValue("Entries", stats.Total)
			ui.KeyValue("Missing answers", stats.MissingAnswers)
			ui.KeyValue("Duplicate questions", stats.Duplicates)
			for _, q := range stats.DuplicateQuestions {
				ui.Warning("Duplicate: %s", q)
			}

			intents := make([]string, 0, len(stats.Intents))
			for k := range stats.Intents {
				intents = append(intents, k)
			}
			sort.Strings(intents)
			rows := make([][]string, 0, len(intents))
			for _, k := range intents {
				rows = append(rows, []string{k, strconv.Itoa(stats.Intents[k])})
			}
			ui.Section("Intents")
			ui.Table([]string{"Intent", "Entries"}, rows)
			return nil
		},
	}
}

// ProbeResult is the outcome of fetching one knowledge source.
type ProbeResult struct {
	Source    string `json:"source"`
	Entries   int    `json:"entries"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

// probeSources fetches every source concurrently. A failing source is
// reported, never returned as an error.
func probeSources(ctx context.Context, sources []knowledge.Source, onStart func(name string) func()) []ProbeResult {
	results := make([]ProbeResult, len(sources))
	var g errgroup.Group

	for i, src := range sources {
		i, src := i, src
		done := func() {}
		if onStart != nil {
			done = onStart(src.Name())
		}
		g.Go(func() error {
			defer done()
			start := time.Now()
			entries, err := src.Fetch(ctx)
			results[i] = ProbeResult{
				Source:    src.Name(),
				Entries:   len(entries),
				LatencyMs: time.Since(start).Milliseconds(),
			}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func newKBProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Fetch every configured knowledge source and report which ones respond",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Knowledge.FetchTimeout)
			defer cancel()

			chain, err := knowledge.OpenChain(cfg.Knowledge.Sources, cfg.Knowledge.BaseURL, nil, logger.WithOperation("kb_probe"))
			if err != nil {
				return err
			}
			defer chain.Close()

			ui := NewUI(outputJSON)
			progress := ui.MultiProgress()

			results := probeSources(ctx, chain.Sources(), func(name string) func() {
				bar := SourceBar(progress, name)
				return func() {
					if bar != nil {
						bar.Increment()
					}
				}
			})
			if progress != nil {
				progress.Wait()
			}

			if outputJSON {
				return printJSON(results)
			}

			rows := make([][]string, 0, len(results))
			selected := ""
			for _, r := range results {
				status := "ok"
				switch {
				case r.Error != "":
					status = "error"
				case r.Entries == 0:
					status = "empty"
				case selected == "":
					selected = r.Source
					status = "selected"
				}
				rows = append(rows, []string{status, r.Source, strconv.Itoa(r.Entries), FormatDuration(time.Duration(r.LatencyMs) * time.Millisecond), r.Error})
			}
			ui.Section("Knowledge sources")
			ui.Table([]string{"Status", "Source", "Entries", "Latency", "Error"}, rows)

			if selected == "" {
				ui.Error("No source yields entries")
				return fmt.Errorf("no usable knowledge source")
			}
			return nil
		},
	}
}

// KeywordRow is one keyword table line, flagged when the query contains it.
type KeywordRow struct {
	Keyword string `json:"keyword"`
	Intent  string `json:"intent"`
	Hit     bool   `json:"hit,omitempty"`
}

func keywordRows(m *matching.KeywordMatcher, query string) []KeywordRow {
	q := strings.ToLower(strings.TrimSpace(query))
	table := m.Table()
	rows := make([]KeywordRow, 0, len(table))
	for _, kw := range table {
		rows = append(rows, KeywordRow{
			Keyword: kw.Keyword,
			Intent:  kw.Intent,
			Hit:     q != "" && strings.Contains(q, kw.Keyword),
		})
	}
	return rows
}

func newKBKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords [query...]",
		Short: "List the keyword table in scan order, marking phrases a query contains",
		RunE: func(cmd *cobra.Command, args []string) error {
			matcher := matching.NewKeywordMatcher()
			query := strings.Join(args, " ")
			rows := keywordRows(matcher, query)

			if outputJSON {
				intent, _ := matcher.Match(query)
				return printJSON(map[string]interface{}{"intent": intent, "keywords": rows})
			}

			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				if query != "" && !r.Hit {
					continue
				}
				table = append(table, []string{r.Keyword, r.Intent})
			}

			ui := NewUI(false)
			ui.Section("Keyword table")
			ui.Table([]string{"Keyword", "Intent"}, table)
			if query != "" {
				if intent, ok := matcher.Match(query); ok {
					ui.Success("%q resolves to %s", query, intent)
				} else {
					ui.Warning("%q matches no keyword", query)
				}
			}
			return nil
		},
	}
}

func newKBFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Drop the cached knowledge document and cached completion answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Knowledge.FetchTimeout)
			defer cancel()

			a, err := buildApp(ctx, "kb_flush")
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.FlushCaches(ctx); err != nil {
				return fmt.Errorf("flush caches: %w", err)
			}

			if outputJSON {
				return printJSON(map[string]string{"status": "flushed", "cache": cfg.Cache.Driver})
			}
			NewUI(false).Success("Flushed %s cache", cfg.Cache.Driver)
			return nil
		},
	}
}
