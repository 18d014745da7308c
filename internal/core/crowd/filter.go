package crowd

import "sort"

type FilterOptions struct {
	MinWorkSeconds  float64
	MinApprovalRate float64
	// MinRows is the number of answers a worker needs before the
	// consistency checks apply.
	MinRows int
}

func DefaultFilterOptions() FilterOptions {
	return FilterOptions{MinWorkSeconds: 5, MinApprovalRate: 70, MinRows: 3}
}

// FilterWorkers drops every row of workers that look unreliable: constant
// answers or work times, uniformly fast work, low approval combined with
// answers against the global majority, or only "I don't understand".
func FilterWorkers(rows []RawRow, opts FilterOptions) (kept, removed []RawRow) {
	byWorker := make(map[string][]RawRow)
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		byWorker[r.WorkerID] = append(byWorker[r.WorkerID], r)
		labels = append(labels, r.AnswerLabel)
	}
	globalMode := mode(labels)

	drop := make(map[string]bool)
	for worker, group := range byWorker {
		drop[worker] = unreliable(group, globalMode, opts)
	}

	for _, r := range rows {
		if drop[r.WorkerID] {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	return kept, removed
}

func unreliable(group []RawRow, globalMode string, opts FilterOptions) bool {
	enough := len(group) >= opts.MinRows

	if enough {
		if constant(group, func(r RawRow) string { return r.AnswerLabel }, false) ||
			constant(group, func(r RawRow) string { return r.FixPosition }, true) ||
			constant(group, func(r RawRow) string { return r.FixValue }, true) {
			return true
		}
		times := make(map[float64]struct{})
		for _, r := range group {
			times[r.WorkSeconds] = struct{}{}
		}
		if len(times) <= 2 {
			return true
		}
	}

	if all(group, func(r RawRow) bool { return r.WorkSeconds < opts.MinWorkSeconds }) {
		return true
	}

	if all(group, func(r RawRow) bool { return r.ApprovalRate < opts.MinApprovalRate }) {
		if enough {
			labels := make([]string, len(group))
			for i, r := range group {
				labels[i] = r.AnswerLabel
			}
			if mode(labels) != globalMode {
				return true
			}
		}
		return false
	}

	return all(group, func(r RawRow) bool { return r.FixPosition == NotUnderstood }) ||
		all(group, func(r RawRow) bool { return r.FixValue == NotUnderstood })
}

// constant reports whether field has one value across group. With
// nonEmpty, a column that is empty everywhere does not count.
func constant(group []RawRow, field func(RawRow) string, nonEmpty bool) bool {
	first := field(group[0])
	if nonEmpty && first == "" {
		return false
	}
	for _, r := range group[1:] {
		if field(r) != first {
			return false
		}
	}
	return true
}

func all(group []RawRow, pred func(RawRow) bool) bool {
	for _, r := range group {
		if !pred(r) {
			return false
		}
	}
	return true
}

// mode returns the most frequent value, the smallest one on ties.
func mode(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestN := "", 0
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}
