package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/grovetools/agtail/internal/session"
)

// PrintProjectsTable prints discovered projects in a formatted table.
func PrintProjectsTable(projects []session.Project, home string, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tPATH\tLAST ACTIVITY")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			p.Name, p.AbbreviatedPath(home), p.Recency.Format("2006-01-02 15:04"))
	}
	w.Flush()
}

// PrintSessionsTable prints a project's sessions in a formatted table.
func PrintSessionsTable(sessions []session.Session, writer io.Writer) {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SESSION ID\tSUMMARY\tLAST ACTIVITY")
	for _, s := range sessions {
		summary := s.Summary
		if summary == "" {
			summary = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			s.ID, summary, s.Recency.Format("2006-01-02 15:04"))
	}
	w.Flush()
}
