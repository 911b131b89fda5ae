// Package diffutil renders unified-diff-style previews for apply_patch
// results and sensitive-action approval prompts (SPEC_FULL §4.13).
package diffutil

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Unified returns a compact, human-readable diff between before and after,
// grouping runs of equal/insert/delete into "+"/"-"/" " prefixed lines. It
// is a pure function: equal inputs always produce identical output
// (spec.md §8 "Diff rendering determinism").
func Unified(path, before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", path, path)
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			fmt.Fprintf(&b, "%s%s\n", prefix, line)
		}
	}
	return b.String()
}
