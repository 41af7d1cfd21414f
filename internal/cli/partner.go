package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyashahama/partner-risk-engine/internal/app"
	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

func newPartnerCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partner",
		Short: "Manage retail partner records",
	}
	cmd.AddCommand(newPartnerAddCmd(o))
	return cmd
}

type partnerOutput struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Status      string `json:"status"`
}

func newPartnerAddCmd(o *options) *cobra.Command {
	var company, email, status, appFile string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a partner, optionally with application data from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var raw json.RawMessage
			if appFile != "" {
				b, err := os.ReadFile(appFile)
				if err != nil {
					return fmt.Errorf("partner add: %w", err)
				}
				if !json.Valid(b) {
					return fmt.Errorf("partner add: %s is not valid JSON", appFile)
				}
				raw = b
			}
			return o.withApp(cmd, nil, func(a *app.App) error {
				if a.Store == nil {
					return errNoDatabase
				}
				p, err := a.Store.CreatePartner(cmd.Context(), store.NewPartner{
					CompanyName: company,
					Email:       email,
					Status:      status,
					Application: raw,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), partnerOutput{
					ID:          p.ID.String(),
					CompanyName: p.CompanyName,
					Email:       p.Email,
					Status:      p.Status,
				})
			})
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	cmd.Flags().StringVar(&email, "email", "", "contact email (required)")
	cmd.Flags().StringVar(&status, "status", orchestrator.DefaultPendingStatus, "partner status")
	cmd.Flags().StringVar(&appFile, "application", "", "path to application_data JSON")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
