// Package aggregate computes the group-wise counts and cross-tabulations
// that feed the dashboard's charts and analysis tables. All operations
// are deterministic: groups come back sorted by key.
package aggregate

import (
	"sort"

	"tuxboard/internal/table"
)

// Count is one (value, count) pair from a group-by.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountBy groups the table by one column and counts rows per value.
// Results are sorted by value.
func CountBy(t table.Table, col table.Column) []Count {
	counts := make(map[string]int)
	for _, r := range t.Rows() {
		counts[table.Value(r, col)]++
	}
	return sortedCounts(counts)
}

// CountByDesc is CountBy sorted by descending count, ties by value.
// Drives the toolchain bar chart ("total descending" ordering).
func CountByDesc(t table.Table, col table.Column) []Count {
	out := CountBy(t, col)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// DistinctPerGroup groups by groupCol and counts unique valueCol values
// in each group. Drives the per-file device/test count charts.
func DistinctPerGroup(t table.Table, groupCol, valueCol table.Column) []Count {
	sets := make(map[string]map[string]bool)
	for _, r := range t.Rows() {
		g := table.Value(r, groupCol)
		if sets[g] == nil {
			sets[g] = make(map[string]bool)
		}
		sets[g][table.Value(r, valueCol)] = true
	}
	counts := make(map[string]int, len(sets))
	for g, set := range sets {
		counts[g] = len(set)
	}
	return sortedCounts(counts)
}

// DistinctValuesPerGroup returns, per group, the sorted unique values of
// valueCol. Used for the analysis detail tables (devices per file, tests
// per file).
func DistinctValuesPerGroup(t table.Table, groupCol, valueCol table.Column) map[string][]string {
	sets := make(map[string]map[string]bool)
	for _, r := range t.Rows() {
		g := table.Value(r, groupCol)
		if sets[g] == nil {
			sets[g] = make(map[string]bool)
		}
		sets[g][table.Value(r, valueCol)] = true
	}
	out := make(map[string][]string, len(sets))
	for g, set := range sets {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out[g] = values
	}
	return out
}

// Summary holds the headline statistics for a count series.
type Summary struct {
	Mean  float64
	Max   int
	Total int
}

// Summarize computes mean/max/total over a count series.
func Summarize(counts []Count) Summary {
	if len(counts) == 0 {
		return Summary{}
	}
	var sum int
	s := Summary{Total: len(counts)}
	for _, c := range counts {
		sum += c.Count
		if c.Count > s.Max {
			s.Max = c.Count
		}
	}
	s.Mean = float64(sum) / float64(len(counts))
	return s
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for v, n := range m {
		out = append(out, Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
