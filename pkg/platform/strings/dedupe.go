// Package strings normalises configured string lists.
package strings

import (
	"strings"
)

// SplitList splits a comma separated value and drops blanks and repeats.
//
//	SplitList("k1:9092, k2:9092,,k1:9092") // []string{"k1:9092", "k2:9092"}
func SplitList(raw string) []string {
	return Dedupe(strings.Split(raw, ","))
}

// Dedupe trims every element and removes empty values and duplicates,
// keeping first-seen order. It returns nil when nothing is left.
func Dedupe(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeHosts is Dedupe for host names: case-insensitive, with IPv6
// brackets removed so "[::1]" and "::1" collapse.
func DedupeHosts(values []string) []string {
	return dedupe(values, func(v string) string {
		return strings.ToLower(strings.Trim(strings.TrimSpace(v), "[]"))
	})
}

func dedupe(values []string, norm func(string) string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = norm(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
