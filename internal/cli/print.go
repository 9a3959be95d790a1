package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/services"
)

// planPrinter returns a hook that prints one line per record before any
// batch is committed.
func planPrinter(w io.Writer, title string) services.PlanHook {
	return func(r *services.Report) {
		printPlan(w, title, r)
	}
}

func printPlan(w io.Writer, title string, r *services.Report) {
	mode := "APPLY"
	if r.DryRun {
		mode = "DRY RUN"
	}
	fmt.Fprintf(w, "%s (%s): %d checked\n", title, mode, r.Checked)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range r.Outcomes {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", o.Disposition, o.ID, o.Reason, o.Detail)
	}
	_ = tw.Flush()
}

// printResult lists records whose batch failed after the plan was printed,
// then the disposition counts.
func printResult(w io.Writer, r *services.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range r.Outcomes {
		if o.Reason == services.ReasonCommitFailed {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", o.Disposition, o.ID, o.Reason, o.Detail)
		}
	}
	_ = tw.Flush()

	s := r.Summary()
	fmt.Fprintf(w, "summary: will-update=%d already-in-sync=%d skipped=%d error=%d",
		s[services.WillUpdate], s[services.AlreadyInSync], s[services.Skipped], s[services.Failed])
	if !r.DryRun {
		fmt.Fprintf(w, " committed=%d batches=%d", r.Committed, r.Batches)
	}
	fmt.Fprintln(w)
}

// printReport is for runs with nothing to commit.
func printReport(w io.Writer, title string, r *services.Report) {
	printPlan(w, title, r)
	printResult(w, r)
}

// reportError turns per-record failures into a non-zero exit.
func reportError(r *services.Report) error {
	if n := r.Count(services.Failed); n > 0 {
		return fmt.Errorf("%d record(s) failed", n)
	}
	return nil
}
