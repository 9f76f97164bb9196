package merge

import "strings"

// appendFallback handles documents with no regions at all: each bucket is
// rendered as a fresh heading+table fragment (rows date-sorted) and the
// whole set is appended after the trimmed original document, separated by a
// blank line. This path never reads or rewrites any existing byte range.
// An empty document therefore yields just the serialized groups, which is
// also the creation path for brand-new pages.
func (e *Engine) appendFallback(doc string, groups []*group) (string, error) {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		frag, err := e.renderSection(e.opts.Classifier.Label(g.bucket), sortedCopy(g.recs))
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}

	body := strings.Join(parts, "\n\n")
	trimmed := strings.TrimSpace(doc)
	if trimmed == "" {
		return body, nil
	}
	return trimmed + "\n\n" + body, nil
}
