package metrics

import (
	"sort"

	"github.com/codecrdt/modeval/internal/models"
)

// Group is a filtered view of a record set. Empty fields match every record.
// Groups hold no data; every method recomputes from the records passed in.
type Group struct {
	Task string
	Mode models.Mode
}

// ForMode returns the group of all records collected under mode.
func ForMode(mode models.Mode) Group {
	return Group{Mode: mode}
}

// ForTask returns the group of one task under one mode.
func ForTask(task string, mode models.Mode) Group {
	return Group{Task: task, Mode: mode}
}

// Name is a short label for logs and reports.
func (g Group) Name() string {
	switch {
	case g.Task == "" && g.Mode == "":
		return "all"
	case g.Task == "":
		return string(g.Mode)
	case g.Mode == "":
		return g.Task
	}
	return g.Task + "/" + string(g.Mode)
}

// Match reports whether r belongs to the group.
func (g Group) Match(r *models.MeasurementRecord) bool {
	if g.Task != "" && r.TaskID != g.Task {
		return false
	}
	if g.Mode != "" && r.Mode != g.Mode {
		return false
	}
	return true
}

// Records returns the matching records ordered by run number.
func (g Group) Records(rs models.Records) models.Records {
	var out models.Records
	for i := range rs {
		if g.Match(&rs[i]) {
			out = append(out, rs[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RunNumber < out[j].RunNumber })
	return out
}

// Total counts the matching records, with or without a metric value.
func (g Group) Total(rs models.Records) int {
	n := 0
	for i := range rs {
		if g.Match(&rs[i]) {
			n++
		}
	}
	return n
}

// Values returns the present values of metric, ordered by run number, and
// the number of matching records that had no value.
func (g Group) Values(rs models.Records, metric models.Metric) (values []float64, missing int) {
	values = []float64{}
	for _, r := range g.Records(rs) {
		if v, ok := r.Value(metric); ok {
			values = append(values, v)
		} else {
			missing++
		}
	}
	return values, missing
}

// SuccessRate is the share of matching records flagged successful. It is 0
// for an empty group.
func (g Group) SuccessRate(rs models.Records) float64 {
	total, ok := 0, 0
	for i := range rs {
		if !g.Match(&rs[i]) {
			continue
		}
		total++
		if rs[i].Success {
			ok++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ok) / float64(total)
}

// ErrorRate is the share of matching records that carry an error.
func (g Group) ErrorRate(rs models.Records) float64 {
	total, failed := 0, 0
	for i := range rs {
		if !g.Match(&rs[i]) {
			continue
		}
		total++
		if rs[i].HasError() {
			failed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
