package utils

import (
	"encoding/json"
	"strings"
)

// NormalizeTags accepts tags either as a literal list or as a single
// comma-separated string (the editor sends both shapes) and returns a
// trimmed, deduplicated list with empties dropped. Order of first
// appearance is preserved.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, raw := range tags {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// EncodeStringList marshals a list of strings for storage in a text
// column. A nil or empty list encodes as "[]".
func EncodeStringList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeStringList is the inverse of EncodeStringList; malformed input
// yields an empty list.
func DecodeStringList(s string) []string {
	if s == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil
	}
	return list
}
