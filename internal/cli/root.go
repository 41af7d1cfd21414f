// Package cli implements the scorectl operator commands using Cobra.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nyashahama/partner-risk-engine/internal/app"
	"github.com/nyashahama/partner-risk-engine/internal/config"
)

// Build-time variables, injected via ldflags:
//
//	go build -ldflags "-X github.com/nyashahama/partner-risk-engine/internal/cli.Version=1.0.0
//	  -X github.com/nyashahama/partner-risk-engine/internal/cli.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = "none"
)

// opener builds the application graph for a command. Tests replace it.
type opener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error)

type options struct {
	verbose bool
	open    opener
	loadCfg func() (*config.Config, error)
}

// Execute runs the root command against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd returns the scorectl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{open: app.New, loadCfg: config.Load})
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "scorectl",
		Short: "Operate the retail partner risk scoring service",
		Long: `scorectl scores retail partner applications against the same database
and AI configuration as the API service.

Configuration comes from the environment (and an optional .env file):
DATABASE_URL, OPENAI_API_KEY, ANTHROPIC_API_KEY, PENDING_STATUS, ...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newScoreCmd(o),
		newBatchCmd(o),
		newLatestCmd(o),
		newListCmd(o),
		newMigrateCmd(o),
		newPartnerCmd(o),
		newVersionCmd(),
	)
	return root
}

// logger writes to stderr so stdout stays machine-readable JSON.
func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// withApp loads config, builds the app, runs fn, and closes the app.
func (o *options) withApp(cmd *cobra.Command, mutate func(*config.Config), fn func(*app.App) error) error {
	cfg, err := o.loadCfg()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	a, err := o.open(cmd.Context(), cfg, o.logger(cmd))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scorectl %s (commit %s)\n", Version, Commit)
		},
	}
}
