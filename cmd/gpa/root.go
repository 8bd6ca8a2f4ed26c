package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the gpa command tree. Every command shares app, so the
// ledger opened by the first command is reused by the shell.
func newRootCmd(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:   "gpa",
		Short: "Record graded courses against a credit target and compute the GPA",
		Long: `gpa keeps a durable ledger of graded courses. Declare a credit target, ` +
			`add courses until the target is met, then calculate the credit-weighted ` +
			`grade-point average. Every calculation is kept in a history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd.Context(), cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configFile, "config", app.configFile, "config file (default ./gpa.yaml if present)")
	flags.Float64Var(&app.target, "target", app.target, "credit target to declare before running the command")
	flags.StringVar(&app.logLevel, "log-level", app.logLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		newTargetCmd(app),
		newAddCmd(app),
		newEditCmd(app),
		newRegradeCmd(app),
		newRemoveCmd(app),
		newClearCmd(app),
		newListCmd(app),
		newSearchCmd(app),
		newStatusCmd(app),
		newCalculateCmd(app),
		newHistoryCmd(app),
		newShowCalcCmd(app),
		newDeleteCalcCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newShellCmd(app),
	)
	return root
}
