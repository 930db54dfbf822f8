package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dockreview/dockreview/internal/adapters/outbound/config"
	"github.com/dockreview/dockreview/internal/adapters/outbound/detector"
	"github.com/dockreview/dockreview/internal/adapters/outbound/gitinfo"
	"github.com/dockreview/dockreview/internal/adapters/outbound/history"
	"github.com/dockreview/dockreview/internal/adapters/outbound/parser"
	"github.com/dockreview/dockreview/internal/adapters/outbound/scanner"
	"github.com/dockreview/dockreview/internal/adapters/outbound/tui"
	"github.com/dockreview/dockreview/internal/application"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		quiet   bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "dockreview",
		Short: "Review Dockerfiles and Compose files",
		Long: "dockreview is an offline reviewer for Dockerfiles and docker-compose files.\n" +
			"It reports security, performance and maintainability issues with fixes and a score.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose, quiet))
			if noColor {
				tui.DisableColor()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newExplainCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI and prints any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch {
	case verbose:
		lvl = slog.LevelDebug
	case quiet:
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func newAnalyzeService() *application.AnalyzeService {
	d := detector.New()
	return application.NewAnalyzeService(
		scanner.New(d),
		parser.New(),
		d,
		config.New(),
		application.WithGitInfo(gitinfo.New()),
		application.WithHistory(history.New()),
		application.WithLogger(slog.Default()),
	)
}
