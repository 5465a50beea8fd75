package models

import "strings"

// PredefinedTags is the suggested vocabulary offered to clients. It is
// advisory only; arbitrary tag strings are accepted on save.
var PredefinedTags = []string{"distress", "conscious", "introspective"}

// SplitTags decodes the comma-joined wire form into a trimmed, deduplicated
// set, preserving first-seen order. Empty entries are dropped.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	seen := make(map[string]struct{})
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags encodes a tag list back to the wire form, trimming and
// deduplicating first.
func JoinTags(tags []string) string {
	return strings.Join(SplitTags(strings.Join(tags, ",")), ", ")
}

// TagsIntersect reports whether the two sets share at least one tag.
func TagsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[strings.TrimSpace(t)] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[strings.TrimSpace(t)]; ok {
			return true
		}
	}
	return false
}
