package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/service"
)

func newTargetCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "target <credits>",
		Short: "Declare the credit target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil {
				return domain.NewValidationError("target", "credit target must be a number")
			}
			state, err := app.ledger.SetTarget(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target set to %s credits (%s)\n", domain.FormatCredits(target), state)
			return nil
		},
	}
}

// courseFlags binds the flags that describe a course to input.
func courseFlags(cmd *cobra.Command, input *service.CourseInput) {
	flags := cmd.Flags()
	flags.StringVar(&input.Name, "name", "", "course name")
	flags.StringVar(&input.Code, "code", "", "course code")
	flags.StringVar(&input.Credit, "credit", "", "credit weight, a positive number")
	flags.StringVar(&input.InstructorPrimary, "instructor", "", "primary instructor")
	flags.StringVar(&input.InstructorSecondary, "co-instructor", "", "secondary instructor")
	flags.StringVar(&input.Grade, "grade", "", "letter grade: "+gradeChoices())
}

func newAddCmd(app *application) *cobra.Command {
	var input service.CourseInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a graded course",
		Example: `  gpa --target 6 add --name "Algebra" --code MATH101 --credit 3 \
      --instructor "Ada Lovelace" --co-instructor "Alan Turing" --grade A`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := app.ledger.AddCourse(cmd.Context(), input)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added course #%d %s (%s)\n", course.ID, course.Code, course.Name)
			printProgress(out, app.ledger.Snapshot())
			return nil
		},
	}
	courseFlags(cmd, &input)
	return cmd
}

func newEditCmd(app *application) *cobra.Command {
	var input service.CourseInput
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace every field of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			course, err := app.ledger.EditCourse(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated course #%d %s (%s)\n", course.ID, course.Code, course.Name)
			printProgress(out, app.ledger.Snapshot())
			return nil
		},
	}
	courseFlags(cmd, &input)
	return cmd
}

func newRegradeCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "regrade <id> <grade>",
		Short: "Change the grade of a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			course, err := app.ledger.Regrade(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Course #%d %s is now graded %s (%.2f points)\n",
				course.ID, course.Code, course.Grade, course.GradePoints())
			return nil
		},
	}
}

func newRemoveCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a course",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			course, err := app.ledger.RemoveCourse(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed course #%d %s (%s)\n", course.ID, course.Code, course.Name)
			printProgress(out, app.ledger.Snapshot())
			return nil
		},
	}
}

func newClearCmd(app *application) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return domain.NewValidationError("yes", "clearing removes every course; pass --yes to confirm")
			}
			if err := app.ledger.ClearAll(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "All courses removed")
			printProgress(out, app.ledger.Snapshot())
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal of every course")
	return cmd
}

func newListCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List held courses, oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot := app.ledger.Snapshot()
			out := cmd.OutOrStdout()
			if len(snapshot.Courses) == 0 {
				fmt.Fprintln(out, "No courses")
			} else if err := printCourses(out, snapshot.Courses); err != nil {
				return err
			}
			printProgress(out, snapshot)
			return nil
		},
	}
}

func newSearchCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find courses by name or code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := app.ledger.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(courses) == 0 {
				fmt.Fprintf(out, "No courses match %q\n", args[0])
				return nil
			}
			return printCourses(out, courses)
		},
	}
}

func newStatusCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the credit target and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStatus(cmd.OutOrStdout(), app.ledger.Snapshot())
		},
	}
}

// parseID reads a positive record id from a command argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", fmt.Sprintf("%q is not a valid id", arg))
	}
	return id, nil
}

func gradeChoices() string {
	grades := domain.Grades()
	names := make([]string, len(grades))
	for i, g := range grades {
		names[i] = g.String()
	}
	return strings.Join(names, ", ")
}
