package legacy

import (
	"fmt"
	"io"
	"time"
)

// Skipped is a legacy row that was not imported.
type Skipped struct {
	ID     string
	Reason string
}

// Report summarises an import run.
type Report struct {
	Source              string
	Actor               string
	DryRun              bool
	IncidentsRead       int
	IncidentsImported   int
	AlreadyPresent      int
	AttachmentsRead     int
	AttachmentsImported int
	Batches             int
	Skipped             []Skipped
	Duration            time.Duration
}

func (r *Report) skip(id string, err error) {
	r.Skipped = append(r.Skipped, Skipped{ID: id, Reason: err.Error()})
}

// Print writes a human-readable summary to w.
func (r *Report) Print(w io.Writer, runErr error) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Legacy Import Report ===")
	if r.DryRun {
		fmt.Fprintln(w, "MODE: DRY RUN (no changes made)")
	}
	fmt.Fprintf(w, "Source: %s\n", r.Source)
	fmt.Fprintf(w, "Actor:  %s\n", r.Actor)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Incidents:   %d read, %d imported, %d already present\n",
		r.IncidentsRead, r.IncidentsImported, r.AlreadyPresent)
	fmt.Fprintf(w, "Attachments: %d read, %d imported\n", r.AttachmentsRead, r.AttachmentsImported)
	fmt.Fprintf(w, "Batches:     %d\n", r.Batches)

	if len(r.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped rows:")
		for _, s := range r.Skipped {
			fmt.Fprintf(w, "  - %s (%s)\n", s.ID, s.Reason)
		}
	}

	fmt.Fprintf(w, "\nDuration: %.1fs\n", r.Duration.Seconds())
	if runErr != nil {
		fmt.Fprintf(w, "Status: FAILED: %v\n", runErr)
	} else {
		fmt.Fprintln(w, "Status: SUCCESS")
	}
}
