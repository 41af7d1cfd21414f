package cli

import (
	"github.com/spf13/cobra"

	"github.com/nyashahama/partner-risk-engine/internal/app"
	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// scoreOutput matches the HTTP response body for a scoring request.
type scoreOutput struct {
	Scoring        store.ScoringRecord `json:"scoring"`
	Cached         bool                `json:"cached,omitempty"`
	Saved          *bool               `json:"saved,omitempty"`
	PartnerUpdated *bool               `json:"partnerUpdated,omitempty"`
	Warning        string              `json:"warning,omitempty"`
	AIRiskOverride bool                `json:"aiRiskOverride,omitempty"`
}

func newScoreCmd(o *options) *cobra.Command {
	var force, useAI bool
	cmd := &cobra.Command{
		Use:   "score <partner-id>",
		Short: "Score one partner, reusing its latest record unless --force",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, nil, func(a *app.App) error {
				out, err := a.Service.Score(cmd.Context(), orchestrator.ScoreRequest{
					PartnerID:        args[0],
					ForceRecalculate: force,
					UseAI:            useAI,
				})
				if err != nil {
					return err
				}
				res := scoreOutput{Scoring: out.Record, Cached: out.Cached}
				if !out.Cached {
					res.Saved = &out.Saved
					res.PartnerUpdated = &out.PartnerUpdated
					res.Warning = out.Warning
					res.AIRiskOverride = out.AIRiskOverride
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "compute a fresh score even if one exists")
	cmd.Flags().BoolVar(&useAI, "ai", false, "blend in an AI verdict when a provider is configured")
	return cmd
}

func newBatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Rule-score every partner in the pending status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, nil, func(a *app.App) error {
				out, err := a.Service.ScoreBatch(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newLatestCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "latest <partner-id>",
		Short: "Print a partner's most recent scoring record (null if never scored)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, nil, func(a *app.App) error {
				rec, err := a.Service.Latest(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"scoring": rec})
			})
		},
	}
}

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every scoring record, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, nil, func(a *app.App) error {
				all, err := a.Service.List(cmd.Context())
				if err != nil {
					return err
				}
				if all == nil {
					all = []store.ListedScoring{}
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"scores": all})
			})
		},
	}
}
