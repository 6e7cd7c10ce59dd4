package util

import "strings"

// SplitList splits a comma separated list, trimming blanks and
// upper-casing each entry. Duplicates are dropped, order is kept.
func SplitList(s string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
