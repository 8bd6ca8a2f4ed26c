package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCalculateCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:     "calculate",
		Aliases: []string{"calc"},
		Short:   "Compute and record the GPA of the held courses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := app.ledger.Calculate(cmd.Context())
			if err != nil {
				return err
			}
			printCalculation(cmd.OutOrStdout(), record)
			return nil
		},
	}
}

func newHistoryCmd(app *application) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past calculations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.ledger.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No calculations")
				return nil
			}
			return printHistory(out, records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of calculations (default from config)")
	return cmd
}

func newShowCalcCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "show-calc <id>",
		Short: "Show a past calculation and its courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			record, err := app.ledger.Calculation(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printCalculation(out, record)
			return printCourses(out, record.Courses)
		},
	}
}

func newDeleteCalcCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-calc <id>",
		Short: "Delete a past calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.ledger.DeleteCalculation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted calculation #%d\n", id)
			return nil
		},
	}
}
