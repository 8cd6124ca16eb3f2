package cmd

import (
	"fmt"

	"modgraph/internal/formatting"

	"github.com/spf13/cobra"
)

func newTenantsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tenants",
		Short: "List the tenants of a file catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := s.fileCatalog("listing tenants")
			if err != nil {
				return err
			}
			tenants, err := store.ListTenants()
			if err != nil {
				return err
			}

			format, _ := formatting.ParseFormat(opts.output)
			if format != formatting.FormatTable {
				fmt.Fprintln(s.out, formatting.PrettyJSON(tenants))
				return nil
			}
			if len(tenants) == 0 && !opts.quiet {
				fmt.Fprintf(s.out, "No tenants found in %s\n", store.Root())
			}
			for _, tenant := range tenants {
				fmt.Fprintln(s.out, tenant)
			}
			return nil
		},
	}
}
