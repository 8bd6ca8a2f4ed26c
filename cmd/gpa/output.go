package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/service"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printCourses writes courses as an aligned table.
func printCourses(w io.Writer, courses []*domain.Course) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tCREDIT\tGRADE\tPOINTS\tINSTRUCTORS")
	for _, c := range courses {
		id := "-"
		if c.ID > 0 {
			id = fmt.Sprint(c.ID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			id,
			c.Code,
			c.Name,
			domain.FormatCredits(c.Credit),
			c.Grade,
			c.GradePoints(),
			instructors(c),
		)
	}
	return tw.Flush()
}

func instructors(c *domain.Course) string {
	names := make([]string, 0, 2)
	for _, n := range []string{c.InstructorPrimary, c.InstructorSecondary} {
		if n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

// printProgress writes a one-line summary of the held credits.
func printProgress(w io.Writer, s service.LedgerState) {
	if s.Target <= 0 {
		fmt.Fprintf(w, "Credits: %s (no target)\n", domain.FormatCredits(s.Current))
		return
	}
	fmt.Fprintf(w, "Credits: %s / %s, remaining %s (%s)\n",
		domain.FormatCredits(s.Current),
		domain.FormatCredits(s.Target),
		domain.FormatCredits(s.Remaining),
		s.State)
}

func printStatus(w io.Writer, s service.LedgerState) error {
	tw := newTable(w)
	target := "unset"
	remaining := "-"
	if s.Target > 0 {
		target = domain.FormatCredits(s.Target)
		remaining = domain.FormatCredits(s.Remaining)
	}
	fmt.Fprintf(tw, "State:\t%s\n", s.State)
	fmt.Fprintf(tw, "Target:\t%s\n", target)
	fmt.Fprintf(tw, "Current:\t%s\n", domain.FormatCredits(s.Current))
	fmt.Fprintf(tw, "Remaining:\t%s\n", remaining)
	fmt.Fprintf(tw, "Courses:\t%d\n", len(s.Courses))
	return tw.Flush()
}

func printCalculation(w io.Writer, r *domain.CalculationRecord) {
	fmt.Fprintf(w, "GPA %s over %s credits in %d courses (calculation #%d, %s)\n",
		domain.FormatGPA(r.GPA),
		domain.FormatCredits(r.TotalCredits),
		r.TotalCourses,
		r.ID,
		r.CreatedAt.Format(timeLayout))
	standing := r.Standing()
	fmt.Fprintf(w, "Standing: %s, quality points %s\n%s\n",
		standing, domain.FormatQualityPoints(r.QualityPoints()), standing.Message)
}

func printHistory(w io.Writer, records []*domain.CalculationRecord) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tGPA\tCREDITS\tCOURSES")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n",
			r.ID,
			r.CreatedAt.Format(timeLayout),
			domain.FormatGPA(r.GPA),
			domain.FormatCredits(r.TotalCredits),
			r.TotalCourses)
	}
	return tw.Flush()
}
