// Package filter holds the set-like filter values attached to a search request.
package filter

import (
	"sort"
	"strings"
)

// Filters maps a filter key (platform, kind, decade, ...) to its selected
// values. Values are set-like: order and duplicates carry no meaning.
type Filters map[string][]string

// Clone returns a deep copy so callers can treat stored filters as immutable.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, vals := range f {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// IsEmpty reports whether no filter carries a non-blank value.
func (f Filters) IsEmpty() bool {
	for _, vals := range f {
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
	}
	return true
}

// Canonical serializes the filters into a deterministic form independent of
// map iteration order, value order and duplicates. Keys whose values are all
// blank are omitted, so "no filter" and "filter cleared" serialize alike.
//
// Shape: k1=v1,v2;k2=v3 with keys sorted and values sorted+deduped.
func (f Filters) Canonical() string {
	if len(f) == 0 {
		return ""
	}

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vals := canonicalValues(f[k])
		if len(vals) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(vals, ","))
	}
	return b.String()
}

// canonicalValues trims, drops blanks, lowercases, sorts and dedupes.
func canonicalValues(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	sort.Strings(out)

	deduped := out[:0]
	var prev string
	for i, v := range out {
		if i > 0 && v == prev {
			continue
		}
		deduped = append(deduped, v)
		prev = v
	}
	return deduped
}
