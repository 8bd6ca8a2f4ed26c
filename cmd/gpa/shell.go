package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/phrazzld/gpa-ledger/internal/redact"
)

const shellPrompt = "gpa> "

// interactive reports whether r is a terminal, in which case the shell
// prints a prompt before each line.
var interactive = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newShellCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively against one open ledger",
		Long: `Reads commands line by line, each written as on the command line ` +
			`without the leading "gpa". Type "help" for the command list and ` +
			`"exit" or "quit" to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.inShell {
				return errors.New("already in the shell")
			}
			app.inShell = true
			defer func() { app.inShell = false }()

			return runShell(cmd, app)
		},
	}
}

func runShell(cmd *cobra.Command, app *application) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	prompt := interactive(app.in)

	scanner := bufio.NewScanner(app.in)
	for {
		if prompt {
			fmt.Fprint(out, shellPrompt)
		}
		if !scanner.Scan() {
			break
		}

		args, err := splitLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(app.errOut, "Error: %s\n", redact.Error(err))
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		if err := dispatch(ctx, app, args); err != nil {
			fmt.Fprintf(app.errOut, "Error: %s\n", redact.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if prompt {
		fmt.Fprintln(out)
	}
	return nil
}

// splitLine splits a shell line into arguments. Fields are separated by
// spaces and may be double-quoted to contain spaces.
func splitLine(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = ' '
	r.TrimLeadingSpace = true
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q: %w", line, err)
	}

	args := fields[:0]
	for _, f := range fields {
		if f != "" {
			args = append(args, f)
		}
	}
	return args, nil
}
