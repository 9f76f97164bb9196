package merge

import (
	"errors"
	"sort"
)

// Edit is one replacement computed against original document offsets.
// Start == End is a pure insertion.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// applyEdits applies the edit list in ascending original-offset order in one
// linear pass. A running drift accumulator corrects each insertion point for
// the cumulative length change of all prior edits, so every edit is computed
// against original offsets only. Bytes outside the edited ranges appear
// unchanged and in the same relative order in the output.
func applyEdits(doc string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return doc, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Start != sorted[b].Start {
			return sorted[a].Start < sorted[b].Start
		}
		return sorted[a].End < sorted[b].End
	})

	if err := validateEdits(doc, sorted); err != nil {
		return "", err
	}

	out := []byte(doc)
	drift := 0
	for _, e := range sorted {
		start := e.Start + drift
		end := e.End + drift

		patched := make([]byte, 0, len(out)+len(e.Replacement)-(end-start))
		patched = append(patched, out[:start]...)
		patched = append(patched, e.Replacement...)
		patched = append(patched, out[end:]...)
		out = patched

		drift += len(e.Replacement) - (e.End - e.Start)
	}

	return string(out), nil
}

// validateEdits checks bounds and non-overlap of an ascending edit list
func validateEdits(doc string, sorted []Edit) error {
	prevEnd := 0
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(doc) {
			return errors.New("edit range out of bounds")
		}
		if e.Start < prevEnd {
			return errors.New("edit ranges overlap")
		}
		prevEnd = e.End
	}
	return nil
}
