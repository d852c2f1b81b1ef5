package dataload

import (
	"strconv"
	"strings"
)

// normalizeHeader collapses the minor formatting variance seen across source
// years: header casing, stray whitespace and embedded newlines.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, "\n", " ")
	return strings.Join(strings.Fields(h), " ")
}

// columnMap maps canonical column names to their index in a header row.
type columnMap map[string]int

// mapColumns resolves a header row against a set of alias lists, one per
// canonical column. The first alias that matches a normalized header wins.
func mapColumns(header []string, aliases map[string][]string) columnMap {
	cm := make(columnMap)
	for j, raw := range header {
		h := normalizeHeader(raw)
		if h == "" {
			continue
		}
		for name, list := range aliases {
			if _, done := cm[name]; done {
				continue
			}
			for _, alias := range list {
				if h == alias || strings.Contains(h, alias) {
					cm[name] = j
					break
				}
			}
		}
	}
	return cm
}

// has reports whether every named column was resolved.
func (cm columnMap) has(names ...string) bool {
	for _, name := range names {
		if _, ok := cm[name]; !ok {
			return false
		}
	}
	return true
}

// get returns the trimmed cell for a canonical column, or "" when the column
// is unmapped or the row is short.
func (cm columnMap) get(row []string, name string) string {
	idx, ok := cm[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// getInt parses a cell as an integer, tolerating thousands separators.
func (cm columnMap) getInt(row []string, name string) (int64, bool) {
	s := cm.get(row, name)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some sources write counts as "123.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		v = int64(f)
	}
	return v, true
}

// NormalizeKey canonicalizes a district/region name for join and map lookups.
func NormalizeKey(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(strings.TrimSpace(name)), " "))
}
