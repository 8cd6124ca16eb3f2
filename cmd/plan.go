package cmd

import (
	"fmt"

	"modgraph/internal/dependency"

	"github.com/spf13/cobra"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute activation or deactivation plans",
		Long: `Computes an ordered plan for switching modules on or off.

Plans are only certified when the modules they touch have no missing or
circular Required dependencies. Problems elsewhere in the tenant's graph
do not block a plan. Every plan request is written to the audit log.

Exit codes:
  2  the modules touched by the plan have unresolved dependencies
  3  the plan was refused (locked prerequisite, active dependents or a
     transition already in progress)`,
	}
	cmd.AddCommand(newPlanActivateCmd(opts))
	cmd.AddCommand(newPlanDeactivateCmd(opts))
	return cmd
}

func newPlanActivateCmd(opts *rootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "activate MODULE...",
		Short: "Plan the activation of modules and their prerequisites",
		Long: `Plans the activation of the given modules. Inactive Required
prerequisites are activated first, in dependency order.

Examples:
  modgraph plan activate leads --tenant acme
  modgraph plan activate leads reports --tenant acme -o json
  modgraph plan activate leads --tenant acme --check`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if check {
				refusal, err := s.orchestrator.ActivationRefusal(cmd.Context(), s.tenantID, args)
				if err != nil {
					return err
				}
				if refusal != nil {
					return fmt.Errorf("%w: %w", errActivationRefused, refusal)
				}
				fmt.Fprintln(s.out, "activation is possible")
				return nil
			}

			plan, err := s.orchestrator.PlanActivation(cmd.Context(), s.tenantID, args)
			if err != nil {
				return err
			}
			return s.formatter.FormatPlan(s.out, plan)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether a plan can be certified")
	return cmd
}

func newPlanDeactivateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate MODULE...",
		Short: "Plan the deactivation of modules",
		Long: `Plans the deactivation of the given modules, dependents first.
Deactivation does not cascade: if an active module outside the batch
Required-depends on a module in the batch, the plan is refused.

Examples:
  modgraph plan deactivate reports leads --tenant acme`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			plan, err := s.orchestrator.PlanDeactivation(cmd.Context(), s.tenantID, args)
			if err != nil {
				return describeRefusal(err)
			}
			return s.formatter.FormatPlan(s.out, plan)
		},
	}
}

// describeRefusal adds a hint to deactivation refusals; the typed error is
// kept so the exit code still reflects it.
func describeRefusal(err error) error {
	if dependency.IsActiveDependents(err) {
		return fmt.Errorf("%w (include the dependents in the batch to deactivate them together)", err)
	}
	return err
}
