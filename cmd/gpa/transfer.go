package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(app *application) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored courses as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.ledger.ExportJSON(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), data)
				return nil
			}
			if err := os.WriteFile(output, []byte(data+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d courses to %s\n", len(app.ledger.Courses()), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write; stdout when empty or -")
	return cmd
}

func newImportCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Add every course from a JSON array",
		Long: `Reads a JSON array of courses, as written by export, from a file or ` +
			`from standard input when the argument is "-". Nothing is added unless ` +
			`every course is valid and the batch fits under the credit target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			n, err := app.ledger.ImportJSON(cmd.Context(), string(data))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d courses\n", n)
			printProgress(out, app.ledger.Snapshot())
			return nil
		},
	}
}
