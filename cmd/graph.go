package cmd

import (
	"github.com/spf13/cobra"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Show the modules and dependency edges of a tenant",
		Long: `Prints the tenant's modules with their lifecycle state and every
dependency edge as stored, annotated with its risk score.

Examples:
  modgraph graph --tenant acme
  modgraph graph --tenant acme -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := s.orchestrator.GetDependencyGraphView(cmd.Context(), s.tenantID)
			if err != nil {
				return err
			}
			return s.formatter.FormatGraphView(s.out, view)
		},
	}
}
