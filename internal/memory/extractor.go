package memory

import "strings"

const (
	maxFactsPerMessage = 5
	factClauseCap      = 160
)

// ExtractFacts scans free text for short self-referential statements worth
// remembering ("I'm from X", "I like Y", "my pronouns are Z"). It is a
// precision-biased heuristic, not a language model: clauses are classified
// by prefix and substring rules only. It never fails; unparseable input
// yields an empty result.
func ExtractFacts(text string) []string {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}

	// Normalize sentence terminators so everything splits on ".".
	normalized := strings.NewReplacer("?", ".", "!", ".").Replace(t)

	var candidates []string
	for _, part := range strings.Split(normalized, ".") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if classifyClause(p) {
			candidates = append(candidates, clipRunes(p, factClauseCap))
		}
	}

	// De-duplicate case-insensitively, preserving first-seen order.
	seen := make(map[string]struct{}, len(candidates))
	uniq := candidates[:0]
	for _, c := range candidates {
		k := strings.ToLower(strings.TrimSpace(c))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, strings.TrimSpace(c))
	}

	if len(uniq) > maxFactsPerMessage {
		uniq = uniq[:maxFactsPerMessage]
	}
	return uniq
}

// classifyClause reports whether a clause looks like a self-referential
// statement: identity ("I am", "I'm"), preference ("I like", "I love",
// "my favorite"), possession ("my ..."), or origin ("from" together with
// a first-person token).
func classifyClause(clause string) bool {
	cl := strings.ToLower(clause)

	switch {
	case strings.HasPrefix(cl, "i am "), strings.HasPrefix(cl, "i'm "):
		return true
	case strings.HasPrefix(cl, "i like "), strings.HasPrefix(cl, "i love "),
		strings.Contains(cl, " my favorite"):
		return true
	case strings.HasPrefix(cl, "my "):
		return true
	case strings.Contains(cl, "from") &&
		(strings.Contains(cl, "i") || strings.Contains(cl, "my")):
		return true
	}
	return false
}

// clipRunes truncates s to at most n runes.
func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
