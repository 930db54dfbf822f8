package cli

import (
	"fmt"

	"github.com/dockreview/dockreview/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	var (
		projectPath string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List all rules",
		Long:  "List every Dockerfile and Compose rule. Rules disabled by .dockreview.yaml are struck through.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := newAnalyzeService().LoadEngine(projectPath)
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(cmd, engine.DescribeAll())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(engine.Catalog, engine.Scorer))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", ".", "Project path to read .dockreview.yaml from")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")

	return cmd
}

func newExplainCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "explain <rule-id>",
		Short: "Explain a rule",
		Long:  "Show what a rule checks, why it matters and how to fix it. The id is case-insensitive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := newAnalyzeService().LoadEngine(projectPath)
			if err != nil {
				return err
			}
			rule, ok := engine.Catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown rule: %s", args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderExplain(rule, engine.Scorer.CategoryOf(rule.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", ".", "Project path to read .dockreview.yaml from")

	return cmd
}
