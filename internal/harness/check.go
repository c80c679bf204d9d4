package harness

import (
	"bytes"
	"context"
	"os"

	"github.com/gorewood/longrun/internal/features"
	"github.com/gorewood/longrun/internal/git"
	"github.com/gorewood/longrun/internal/output"
)

// CheckReport compares a tracking directory with its last committed state.
type CheckReport struct {
	Feature string `json:"feature"`
	// Baseline is the revision compared against, empty when nothing is committed.
	Baseline   string               `json:"baseline,omitempty"`
	Violations []features.Violation `json:"violations"`
	// ProgressRewritten is set when the committed progress log is not a
	// prefix of the current one.
	ProgressRewritten bool `json:"progress_rewritten"`
}

// OK reports whether no rule was broken.
func (r *CheckReport) OK() bool {
	return len(r.Violations) == 0 && !r.ProgressRewritten
}

// Check verifies that the working copy of feature only appended to what is
// committed at HEAD: no entry deleted or rewritten, no pass reverted, and
// the progress log grown strictly at the end.
func Check(ctx context.Context, layout Layout, feature string, repo *git.Runner) (*CheckReport, error) {
	if err := layout.RequireFeature(feature); err != nil {
		return nil, err
	}
	current, err := features.Load(layout.FeatureListPath(feature))
	if err != nil {
		return nil, err
	}

	report := &CheckReport{Feature: feature, Violations: []features.Violation{}}
	if repo == nil {
		repo = git.New(layout.ProjectRoot)
	}
	if _, err := repo.LookPath(); err != nil {
		return nil, errVcsUnavailable(err)
	}
	head, err := repo.HEAD(ctx)
	if err != nil {
		// No repository or no commits yet.
		return report, nil
	}

	listRel := layout.RelPath(layout.FeatureListPath(feature))
	committed, err := repo.ShowFile(ctx, head, listRel)
	if err != nil {
		// Not committed yet; nothing to compare against.
		return report, nil
	}
	report.Baseline = head

	before, err := features.Parse(committed)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("committed feature list at "+shortSHA(head)+" is invalid", err)
	}
	report.Violations = append(report.Violations, features.CheckInvariants(before, current)...)

	progressRel := layout.RelPath(layout.ProgressPath(feature))
	committedLog, err := repo.ShowFile(ctx, head, progressRel)
	if err != nil {
		return report, nil
	}
	currentLog, err := os.ReadFile(layout.ProgressPath(feature))
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to read progress log", err)
	}
	report.ProgressRewritten = !bytes.HasPrefix(currentLog, committedLog)
	return report, nil
}
