package inventory

import "sort"

// TypeCount is one row of the hardware breakdown.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// SummarizeByType groups hardware by type, largest group first.
func SummarizeByType(items []Hardware) []TypeCount {
	counts := map[string]int{}
	for _, h := range items {
		t := h.Type
		if t == "" {
			t = "unknown"
		}
		counts[t]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}
