package schedule

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tracking-dashboard/config"
	"tracking-dashboard/redmine"
	"tracking-dashboard/tracking"
)

// Fetcher fetches raw issues for a project identifier. Satisfied by
// redmine.Client.
type Fetcher interface {
	FetchIssues(ctx context.Context, project string, filter redmine.IssueFilter) ([]redmine.Issue, error)
}

// Options configures how issues fold onto programs. The tracker labels
// and the resolved-status label vary between tracker instances and
// locales, and the module join has been run both as substring and exact
// match, so all of it is configuration.
type Options struct {
	BugTracker       string
	QATracker        string
	ResolvedStatuses []string
	ExactMatch       bool // true = module must equal prgid, false = contain it
}

func (o Options) withDefaults() Options {
	if o.BugTracker == "" {
		o.BugTracker = "Bug"
	}
	if o.QATracker == "" {
		o.QATracker = "Q&A"
	}
	if len(o.ResolvedStatuses) == 0 {
		o.ResolvedStatuses = []string{"Resolved"}
	}
	return o
}

// Reconciler joins tracking issues onto schedule programs and computes
// the per-program bug and Q&A counts.
type Reconciler struct {
	fetcher Fetcher
	opts    Options
	logger  *zap.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(fetcher Fetcher, opts Options, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{fetcher: fetcher, opts: opts.withDefaults(), logger: logger}
}

// Update fetches the project's tracking issues and folds them onto the
// given programs, overwriting each program's issue list and counts.
//
// A failed or empty fetch returns the input programs unchanged: a
// transient tracker outage must not wipe previously reconciled state.
func (r *Reconciler) Update(ctx context.Context, programs []Program, project config.Project) ([]Program, error) {
	issues, err := r.fetcher.FetchIssues(ctx, project.ProjectID, redmine.IssueFilter{})
	if err != nil {
		r.logger.Error("tracking fetch failed, keeping existing schedule state",
			zap.String("project", project.ProjectID),
			zap.Error(err))
		return programs, err
	}
	if len(issues) == 0 {
		r.logger.Warn("no tracking issues returned, keeping existing schedule state",
			zap.String("project", project.ProjectID))
		return programs, nil
	}

	normalized := tracking.FromIssues(issues)
	updated := r.Apply(programs, normalized)

	r.logger.Info("reconciled schedule",
		zap.String("project", project.ProjectID),
		zap.Int("programs", len(updated)),
		zap.Int("issues", len(normalized)))
	return updated, nil
}

// Apply performs the join itself: every program gets the subset of
// issues whose module matches its PRGID, and its counts are recomputed
// from scratch. Stateless on purpose; nothing carries over between
// passes.
func (r *Reconciler) Apply(programs []Program, issues []tracking.TrackingIssue) []Program {
	updated := make([]Program, 0, len(programs))
	for _, program := range programs {
		matched := make([]tracking.TrackingIssue, 0)
		for _, issue := range issues {
			if r.moduleMatches(issue.Module, program.PRGID) {
				matched = append(matched, issue)
			}
		}

		program.TrackingIssues = matched
		program.BugCount = r.count(matched, r.opts.BugTracker, false)
		program.QACount = r.count(matched, r.opts.QATracker, false)
		program.BugResolvedCount = r.count(matched, r.opts.BugTracker, true)
		program.QAResolvedCount = r.count(matched, r.opts.QATracker, true)
		updated = append(updated, program)
	}
	return updated
}

func (r *Reconciler) moduleMatches(module, prgid string) bool {
	if module == "" || prgid == "" {
		return false
	}
	if r.opts.ExactMatch {
		return module == prgid
	}
	return strings.Contains(module, prgid)
}

func (r *Reconciler) count(issues []tracking.TrackingIssue, trackerName string, resolvedOnly bool) int {
	n := 0
	for _, issue := range issues {
		if issue.TrackerName != trackerName {
			continue
		}
		if resolvedOnly && !r.resolved(issue.Status) {
			continue
		}
		n++
	}
	return n
}

func (r *Reconciler) resolved(status string) bool {
	for _, s := range r.opts.ResolvedStatuses {
		if status == s {
			return true
		}
	}
	return false
}
