package pilldoc

import "strings"

// Selection describes what a search tool is looking for in the accounts
// listing and how ties are broken.
type Selection struct {
	Field    string // "pharmName" or "bizNo"
	Value    string
	Exact    bool
	Index    int
	HasIndex bool
	// RequireUnique turns multiple matches without an index into an
	// ambiguity error instead of defaulting to the first.
	RequireUnique bool
}

// DeriveSelection builds a Selection from the search arguments a tool
// received. bizNo search is always exact over the normalized number;
// pharmName search is substring unless exactMatch is set.
func DeriveSelection(pharmName, bizNo string, exactMatch bool, index int, hasIndex bool, requireUnique bool) (Selection, error) {
	switch {
	case bizNo != "":
		return Selection{
			Field:         "bizNo",
			Value:         NormalizeBizNo(bizNo),
			Exact:         true,
			Index:         index,
			HasIndex:      hasIndex,
			RequireUnique: requireUnique,
		}, nil
	case pharmName != "":
		return Selection{
			Field:         "pharmName",
			Value:         pharmName,
			Exact:         exactMatch,
			Index:         index,
			HasIndex:      hasIndex,
			RequireUnique: requireUnique,
		}, nil
	default:
		return Selection{}, ValidationErrorf("provide pharmName or bizNo to search by")
	}
}

// Matches reports whether a record satisfies the selection.
func (s Selection) Matches(rec Record) bool {
	switch s.Field {
	case "bizNo":
		return rec.BizNo() == s.Value
	case "pharmName":
		name := rec.PharmName()
		if name == "" {
			return false
		}
		if s.Exact {
			return name == s.Value
		}
		return strings.Contains(name, s.Value)
	default:
		return false
	}
}

// Collect scans records in listing order and returns the ones matching the
// selection, preserving scan order.
func (s Selection) Collect(records []Record) []Record {
	var out []Record
	for _, rec := range records {
		if s.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Choose picks the final record from the candidates. Zero candidates is
// NOT_FOUND; an out-of-range index is a validation failure naming the valid
// range; multiple candidates without an index is ambiguous when uniqueness
// was required, first-match otherwise.
func (s Selection) Choose(candidates []Record) (Record, error) {
	if len(candidates) == 0 {
		return nil, NotFoundf("no account matched %s=%q", s.Field, s.Value)
	}
	if s.HasIndex {
		if s.Index < 0 || s.Index >= len(candidates) {
			return nil, ValidationErrorf("matchIndex %d out of range; %d match(es), valid range 0-%d",
				s.Index, len(candidates), len(candidates)-1)
		}
		return candidates[s.Index], nil
	}
	if len(candidates) > 1 && s.RequireUnique {
		return nil, Ambiguousf("%d accounts matched %s=%q; pass matchIndex or narrow the search (candidates: %s)",
			len(candidates), s.Field, s.Value, candidateSummary(candidates))
	}
	return candidates[0], nil
}

// candidateSummary renders a short disambiguation list for error messages.
func candidateSummary(candidates []Record) string {
	const maxListed = 10
	var parts []string
	for i, rec := range candidates {
		if i >= maxListed {
			parts = append(parts, "...")
			break
		}
		name := rec.PharmName()
		if name == "" {
			name = rec.ID()
		}
		if biz := rec.BizNo(); biz != "" {
			name += " (" + biz + ")"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}
