package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dockreview/dockreview/internal/adapters/outbound/history"
	"github.com/dockreview/dockreview/internal/adapters/outbound/tui"
	"github.com/dockreview/dockreview/internal/application"
	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/check"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	jsonOutput     bool
	severity       string
	failOn         string
	ciMode         bool
	summaryOnly    bool
	estimateImpact bool
	badge          bool
	record         bool
	showHistory    bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Analyze Dockerfiles and Compose files",
		Long: "Analyze a Dockerfile, a Compose file, or every such file under a directory.\n" +
			"With --ci or --fail-on the command exits 1 when an issue at or above the threshold is found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}
			return runAnalyze(cmd, paths, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output reports as JSON")
	cmd.Flags().StringVar(&opts.severity, "severity", "", "Minimum severity to report (critical, warning, suggestion)")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "Exit 1 when issues at this severity or higher are found")
	cmd.Flags().BoolVar(&opts.ciMode, "ci", false, "CI mode: exit 1 at the fail_on threshold (default critical)")
	cmd.Flags().BoolVar(&opts.summaryOnly, "summary-only", false, "Show scores and counts without individual issues")
	cmd.Flags().BoolVar(&opts.estimateImpact, "estimate-impact", false, "Show the estimated gain of fixing each issue")
	cmd.Flags().BoolVar(&opts.badge, "badge", false, "Output shields.io badge URL")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Append the scores to the project history")
	cmd.Flags().BoolVar(&opts.showHistory, "history", false, "Show score history")

	return cmd
}

func runAnalyze(cmd *cobra.Command, paths []string, opts analyzeOptions) error {
	var minSeverity, failOn domain.Severity
	if opts.severity != "" {
		sev, err := domain.ParseSeverity(opts.severity)
		if err != nil {
			return fmt.Errorf("--severity: %w", err)
		}
		minSeverity = sev
	}
	if opts.failOn != "" {
		sev, err := domain.ParseSeverity(opts.failOn)
		if err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
		failOn = sev
	}

	svc := newAnalyzeService()
	var analyses []*application.Analysis
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		a, err := svc.AnalyzePath(cmd.Context(), absPath)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if opts.record {
			if err := svc.Record(a); err != nil {
				slog.Warn("could not record score history", "root", a.Root, "err", err)
			}
		}
		analyses = append(analyses, a)
	}

	if opts.showHistory {
		return renderHistory(cmd, svc, analyses)
	}

	// The severity filter narrows what is shown and gated on; scores
	// always reflect every issue.
	var reports []*domain.Report
	for _, a := range analyses {
		for i, r := range a.Reports {
			if minSeverity != "" {
				filtered := *r
				filtered.Issues = check.Filter(r.Issues, minSeverity)
				r = &filtered
				a.Reports[i] = r
			}
			reports = append(reports, r)
		}
	}

	switch {
	case opts.jsonOutput:
		if err := renderJSON(cmd, newAnalyzeOutput(reports)); err != nil {
			return err
		}
	case opts.badge:
		renderBadge(cmd, reports)
	default:
		for _, a := range analyses {
			for _, r := range a.Reports {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(tui.ReportView{
					Report:         r,
					Catalog:        a.Engine.Catalog,
					Scorer:         a.Engine.Scorer,
					SummaryOnly:    opts.summaryOnly,
					EstimateImpact: opts.estimateImpact,
				}))
			}
		}
		if len(reports) > 1 {
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(reports))
		}
	}

	if opts.ciMode || failOn != "" {
		for _, a := range analyses {
			threshold := failOn
			if threshold == "" {
				threshold = a.Config.Threshold()
			}
			if check.Exceeds(a.Issues(), threshold) {
				return fmt.Errorf("found issues at or above %s severity", threshold)
			}
		}
	}
	return nil
}

func renderHistory(cmd *cobra.Command, svc *application.AnalyzeService, analyses []*application.Analysis) error {
	for _, a := range analyses {
		entries, err := svc.History(a.Root)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		if len(a.Reports) == 1 {
			entries = history.ForFile(entries, a.Reports[0].File)
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
	}
	return nil
}

type analyzeOutput struct {
	Reports []*domain.Report    `json:"reports"`
	Summary application.Summary `json:"summary"`
}

func newAnalyzeOutput(reports []*domain.Report) analyzeOutput {
	return analyzeOutput{Reports: reports, Summary: application.Summarize(reports)}
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderBadge prints a badge for the lowest overall score.
func renderBadge(cmd *cobra.Command, reports []*domain.Report) {
	if len(reports) == 0 {
		return
	}
	worst := reports[0].Score.Overall
	for _, r := range reports[1:] {
		worst = min(worst, r.Score.Overall)
	}
	color := domain.BadgeColor(worst)
	url := fmt.Sprintf("https://img.shields.io/badge/dockreview-%.1f%%2F10-%s", worst, color)
	fmt.Fprintln(cmd.OutOrStdout(), url)
}
