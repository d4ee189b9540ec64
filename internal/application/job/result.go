// Package job defines the recurring batch jobs, how they are run and how
// single-target triggers are dispatched.
package job

// Result counts the per-item outcomes of one batch run.
type Result struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Merge adds other's counts to r.
func (r *Result) Merge(other Result) {
	r.Succeeded += other.Succeeded
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// Total returns the number of items seen.
func (r Result) Total() int {
	return r.Succeeded + r.Skipped + r.Failed
}

// LogAttrs returns the counts as slog key/value pairs.
func (r Result) LogAttrs() []any {
	return []any{
		"success_count", r.Succeeded,
		"skip_count", r.Skipped,
		"error_count", r.Failed,
	}
}
