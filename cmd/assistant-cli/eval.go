package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/spherical-ai/profile-assistant/internal/observability"
	"github.com/spherical-ai/profile-assistant/internal/resolver"
)

// EvalCase is one question with its expected routing. Empty expectations
// are not checked.
type EvalCase struct {
	Question string `yaml:"question" json:"question"`
	Stage    string `yaml:"stage" json:"stage,omitempty"`
	Intent   string `yaml:"intent" json:"intent,omitempty"`
}

// EvalResult is the outcome of one case.
type EvalResult struct {
	EvalCase
	GotStage  string `json:"gotStage"`
	GotIntent string `json:"gotIntent,omitempty"`
	Answer    string `json:"answer"`
	Passed    bool   `json:"passed"`
	LatencyMs int64  `json:"latencyMs"`
}

// EvalReport summarizes a run.
type EvalReport struct {
	RunID   string       `json:"runId"`
	Total   int          `json:"total"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Results []EvalResult `json:"results"`
}

type resolveFunc func(ctx context.Context, question string) resolver.Resolution

// loadEvalCases reads a YAML or JSON list of cases.
func loadEvalCases(path string) ([]EvalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read eval file: %w", err)
	}
	var cases []EvalCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse eval file: %w", err)
	}
	for i, c := range cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("eval case %d has no question", i+1)
		}
	}
	return cases, nil
}

// runEval resolves every case with at most concurrency in flight. Results
// keep the input order. onDone, when set, is called after each case.
func runEval(ctx context.Context, resolve resolveFunc, cases []EvalCase, concurrency int, onDone func()) (EvalReport, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]EvalResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := resolve(gctx, c.Question)
			results[i] = EvalResult{
				EvalCase:  c,
				GotStage:  string(res.Stage),
				GotIntent: res.IntentKey,
				Answer:    res.Answer,
				Passed:    (c.Stage == "" || c.Stage == string(res.Stage)) && (c.Intent == "" || c.Intent == res.IntentKey),
				LatencyMs: res.Elapsed.Milliseconds(),
			}
			if onDone != nil {
				onDone()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EvalReport{}, err
	}

	report := EvalReport{Total: len(results), Results: results}
	for _, r := range results {
		if r.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

func newEvalCmd() *cobra.Command {
	var (
		file        string
		concurrency int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Resolve a batch of questions and check the answering stage and intent",
		Long: `eval reads a YAML or JSON list of cases:

  - question: "Tell me about your design systems work"
    stage: keyword
    intent: design_systems_experience

and reports which cases were routed differently. Exits non-zero on any failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := loadEvalCases(file)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			ctx, cancel := context.WithTimeout(observability.ContextWithTraceID(cmd.Context(), runID), timeout)
			defer cancel()

			a, err := buildApp(ctx, "eval")
			if err != nil {
				return err
			}
			defer a.Close()

			// Load once up front so workers do not race to fetch.
			a.Store.Load(ctx)

			ui := NewUI(outputJSON)
			bar := ui.ProgressBar(len(cases), "Evaluating")
			var onDone func()
			if bar != nil {
				onDone = func() { _ = bar.Add(1) }
			}

			report, err := runEval(ctx, a.Resolver.Resolve, cases, concurrency, onDone)
			if err != nil {
				return fmt.Errorf("eval run %s: %w", runID, err)
			}
			report.RunID = runID
			if bar != nil {
				_ = bar.Finish()
			}

			if outputJSON {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(report.Results))
				for _, r := range report.Results {
					status := "pass"
					if !r.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{status, truncateText(r.Question, 48), orNone(r.Stage), r.GotStage, orNone(r.Intent), r.GotIntent})
				}
				ui.Section("Eval " + runID)
				ui.Table([]string{"", "Question", "Expected stage", "Stage", "Expected intent", "Intent"}, rows)
				fmt.Println()
				if report.Failed == 0 {
					ui.Success("%d/%d cases passed", report.Passed, report.Total)
				} else {
					ui.Error("%d/%d cases failed", report.Failed, report.Total)
				}
			}

			if report.Failed > 0 {
				return fmt.Errorf("%d eval cases failed", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "eval cases file (YAML or JSON)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "questions resolved in parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall run timeout")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
