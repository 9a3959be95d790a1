package services

import (
	"context"
	"errors"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// Disposition is the per-record result of a maintenance run.
type Disposition string

const (
	WillUpdate    Disposition = "will-update"
	AlreadyInSync Disposition = "already-in-sync"
	Skipped       Disposition = "skipped"
	Failed        Disposition = "error"
)

// ReasonCommitFailed marks records planned for writing whose batch failed.
const ReasonCommitFailed = "commit-failed"

type Outcome struct {
	ID          string      `json:"id"`
	Disposition Disposition `json:"disposition"`
	Reason      string      `json:"reason,omitempty"`
	Detail      string      `json:"detail,omitempty"`
}

// Report collects outcomes in processing order. Outcomes staged for writing
// are flipped to Failed when the batch holding them fails to commit.
type Report struct {
	DryRun    bool      `json:"dryRun"`
	Checked   int       `json:"checked"`
	Committed int       `json:"committed"`
	Batches   int       `json:"batches"`
	Outcomes  []Outcome `json:"outcomes"`

	index  map[string]int
	staged []stagedWrite
}

type stagedWrite struct {
	id    string
	write docstore.Write
}

// PlanHook sees the complete per-record plan before anything is committed.
type PlanHook func(*Report)

func newReport(dryRun bool) *Report {
	return &Report{DryRun: dryRun, index: map[string]int{}}
}

func (r *Report) add(id string, d Disposition, reason, detail string) {
	r.index[id] = len(r.Outcomes)
	r.Outcomes = append(r.Outcomes, Outcome{ID: id, Disposition: d, Reason: reason, Detail: detail})
}

func (r *Report) Count(d Disposition) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Disposition == d {
			n++
		}
	}
	return n
}

func (r *Report) Summary() map[Disposition]int {
	return map[Disposition]int{
		WillUpdate:    r.Count(WillUpdate),
		AlreadyInSync: r.Count(AlreadyInSync),
		Skipped:       r.Count(Skipped),
		Failed:        r.Count(Failed),
	}
}

func (r *Report) stage(id string, w docstore.Write) {
	r.staged = append(r.staged, stagedWrite{id: id, write: w})
}

// apply hands the plan to hook, then commits the staged writes in batches.
// Dry runs stop after the hook.
func (r *Report) apply(ctx context.Context, store docstore.Store, hook PlanHook, what string) {
	if hook != nil {
		hook(r)
	}
	if r.DryRun || len(r.staged) == 0 {
		return
	}
	writer := docstore.NewChunkedWriter(store)
	for _, sw := range r.staged {
		if err := writer.Stage(ctx, sw.id, sw.write); err != nil {
			utils.Logger.WithError(err).Errorf("%s batch commit failed", what)
			r.recordCommitFailure(err)
		}
	}
	if err := writer.Flush(ctx); err != nil {
		utils.Logger.WithError(err).Errorf("%s final batch commit failed", what)
		r.recordCommitFailure(err)
	}
	r.finish(writer)
}

// recordCommitFailure marks the records of a failed batch as errors.
func (r *Report) recordCommitFailure(err error) {
	var cerr *docstore.CommitError
	if !errors.As(err, &cerr) {
		return
	}
	for _, id := range cerr.Labels {
		if i, ok := r.index[id]; ok {
			r.Outcomes[i].Disposition = Failed
			r.Outcomes[i].Reason = ReasonCommitFailed
			r.Outcomes[i].Detail = cerr.Err.Error()
		}
	}
}

func (r *Report) finish(w *docstore.ChunkedWriter) {
	if w == nil {
		return
	}
	r.Committed = w.Committed
	r.Batches = w.Batches
}
