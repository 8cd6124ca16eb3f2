package cmd

import (
	"errors"
	"os"

	"modgraph/internal/dependency"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeInvalidGraph indicates the dependency graph has missing or circular Required dependencies.
	ExitCodeInvalidGraph = 2
	// ExitCodePlanRefused indicates a plan was refused because of module state.
	ExitCodePlanRefused = 3
)

var (
	// errGraphInvalid is returned by validate after the report has been printed.
	errGraphInvalid = errors.New("dependency graph is invalid")
	// errActivationRefused is returned by `plan activate --check` when no plan
	// can be certified. It wraps the planning error, which picks the exit code.
	errActivationRefused = errors.New("activation is not possible")
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	tenantID   string
	output     string
	logLevel   string
	quiet      bool
	noColor    bool
}

// rootCmd represents the base command for the modgraph application.
var rootCmd = newRootCmd()

// newRootCmd builds the command tree. Tests build a fresh tree per case so
// flag values never leak between runs.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "modgraph",
		Short: "Validate module dependency graphs and plan activations",
		Long: `modgraph checks the dependency graph of a tenant's pluggable modules and
computes safe activation and deactivation orders.

The catalog of modules and dependency edges is read from a YAML directory
(default), a PostgreSQL database or an in-memory store, depending on the
catalog driver in config.yaml. Every command works on one tenant, selected
with --tenant.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Configuration directory (default is $HOME/.config/modgraph)")
	flags.StringVarP(&opts.tenantID, "tenant", "t", os.Getenv("MODGRAPH_TENANT"), "Tenant whose catalog is used (env MODGRAPH_TENANT)")
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format (table, json, yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config.yaml")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress advisory sections and decorations")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured table output")

	cmd.SetVersionTemplate(`{{printf "modgraph version %s\n" .Version}}`)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newGraphCmd(opts))
	cmd.AddCommand(newPlanCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newTenantsCmd(opts))
	return cmd
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, errGraphInvalid), dependency.IsUnresolvedGraph(err):
		return ExitCodeInvalidGraph
	case dependency.IsLockedPrerequisite(err),
		dependency.IsActiveDependents(err),
		dependency.IsTransitionInProgress(err):
		return ExitCodePlanRefused
	default:
		return ExitCodeError
	}
}
