package cmd

import (
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the dependency graph of a tenant",
		Long: `Validates the tenant's module catalog and prints a report listing
missing and circular Required dependencies, followed by every violated
dependency ranked by criticality.

Optional and recommended edges never make a graph invalid; their problems
are listed as advisories unless --quiet is set.

Exits with code 2 when the graph is invalid.

Examples:
  modgraph validate --tenant acme
  modgraph validate --tenant acme -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.orchestrator.GetValidationReport(cmd.Context(), s.tenantID)
			if err != nil {
				return err
			}
			if err := s.formatter.FormatReport(s.out, s.tenantID, report); err != nil {
				return err
			}
			if !report.IsValid {
				return errGraphInvalid
			}
			return nil
		},
	}
}
