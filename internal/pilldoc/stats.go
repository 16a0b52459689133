package pilldoc

import (
	"sort"
	"strconv"
)

// Stats accumulates grouped counts over the full accounts listing in a
// single pass. All group keys derive from record fields through the Record
// accessors, so two runs over the same data always produce the same keys.
type Stats struct {
	Total   int
	Monthly map[string]int // YYYY-MM
	Region  map[string]int
	ERP     map[string]int // "null" key for records without a code

	AdBlocked    int
	AdNotBlocked int
	AdUnknown    int

	minCreated string
	maxCreated string
}

// NewStats creates an empty accumulator.
func NewStats() *Stats {
	return &Stats{
		Monthly: make(map[string]int),
		Region:  make(map[string]int),
		ERP:     make(map[string]int),
	}
}

// Add folds one record into the counts.
func (s *Stats) Add(rec Record) {
	s.Total++

	if month := rec.CreatedMonth(); month != "" {
		s.Monthly[month]++
	}
	if region := rec.Region(); region != "" {
		s.Region[region]++
	}
	s.ERP[rec.ERPCode()]++

	blocked, known := rec.AdBlocked()
	switch {
	case !known:
		s.AdUnknown++
	case blocked:
		s.AdBlocked++
	default:
		s.AdNotBlocked++
	}

	if created := rec.CreatedAt(); created != "" {
		if s.minCreated == "" || created < s.minCreated {
			s.minCreated = created
		}
		if created > s.maxCreated {
			s.maxCreated = created
		}
	}
}

// keyed is one group bucket in the rendered output.
type keyed struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ToMap renders the accumulated stats for a tool payload. summary carries
// the pagination outcome so callers can tell a complete scan from a
// truncated one.
func (s *Stats) ToMap(summary Summary) map[string]interface{} {
	out := map[string]interface{}{
		"total":   s.Total,
		"monthly": sortedByKey(s.Monthly),
		"region":  sortedByKey(s.Region),
		"erpCode": sortedERP(s.ERP),
		"adBlocked": map[string]interface{}{
			"blocked":    s.AdBlocked,
			"notBlocked": s.AdNotBlocked,
			"unknown":    s.AdUnknown,
		},
		"pagesFetched": summary.PagesFetched,
		"truncated":    summary.Truncated,
	}
	if summary.TotalCount >= 0 {
		out["totalCountReported"] = summary.TotalCount
	}
	if s.minCreated != "" {
		out["period"] = map[string]interface{}{
			"from": s.minCreated,
			"to":   s.maxCreated,
		}
	}
	return out
}

func sortedByKey(counts map[string]int) []keyed {
	out := make([]keyed, 0, len(counts))
	for k, n := range counts {
		out = append(out, keyed{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// sortedERP orders numeric ERP codes numerically, then non-numeric codes
// lexically, with "null" always last.
func sortedERP(counts map[string]int) []keyed {
	out := make([]keyed, 0, len(counts))
	for k, n := range counts {
		out = append(out, keyed{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a == "null" {
			return false
		}
		if b == "null" {
			return true
		}
		na, aerr := strconv.Atoi(a)
		nb, berr := strconv.Atoi(b)
		switch {
		case aerr == nil && berr == nil:
			return na < nb
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return a < b
		}
	})
	return out
}
