package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// stepSplitRe breaks an instruction blob on newline runs or leading step
// numbers of the "1." / "1)" form.
var stepSplitRe = regexp.MustCompile(`\n+|\d+\.\s*|\d+\)\s*`)

// SectionMarker wraps a section name so it survives flattening as a
// distinguishable pseudo-step.
func SectionMarker(name string) string {
	return "== " + name + " =="
}

// Ingredients normalizes a raw ingredient value decoded from JSON: a string
// is split on newlines, a map contributes its stringified values, a slice is
// stringified element-wise. Entries are trimmed, empties dropped, and order
// preserved.
func Ingredients(raw any) []string {
	var items []string
	switch v := raw.(type) {
	case string:
		items = strings.Split(v, "\n")
	case map[string]any:
		for _, val := range sortedValues(v) {
			items = append(items, stringify(val))
		}
	case []any:
		for _, val := range v {
			items = append(items, stringify(val))
		}
	case []string:
		items = v
	}
	return compact(items)
}

// Instructions normalizes a raw instruction value. A string splits into
// steps on newline runs or "N." / "N)" prefixes. A slice may mix plain
// strings, step objects carrying "text" or "step", and section objects
// carrying "itemListElement" plus an optional "name": a section emits a
// marked pseudo-step for its name followed by its recursively flattened
// children.
func Instructions(raw any) []string {
	switch v := raw.(type) {
	case string:
		return compact(stepSplitRe.Split(v, -1))
	case []any:
		var steps []string
		for _, entry := range v {
			steps = append(steps, flattenInstruction(entry)...)
		}
		return compact(steps)
	case []string:
		return compact(v)
	}
	return nil
}

func flattenInstruction(entry any) []string {
	switch v := entry.(type) {
	case string:
		return []string{v}
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return []string{text}
		}
		if items, ok := v["itemListElement"].([]any); ok {
			var steps []string
			if name, ok := v["name"].(string); ok && name != "" {
				steps = append(steps, SectionMarker(name))
			}
			for _, item := range items {
				steps = append(steps, flattenInstruction(item)...)
			}
			return steps
		}
		if step, ok := v["step"].(string); ok {
			return []string{step}
		}
	}
	return nil
}

// compact trims every entry and drops the empties, preserving order.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sortedValues walks a map in key order so the output is deterministic.
func sortedValues(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]any, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, m[k])
	}
	return vals
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
