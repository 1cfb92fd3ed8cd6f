package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const snippetDocCap = 1000

// LoadContextSnippet reads the optional external memory/context document and
// condenses it into a short string for the system prompt. The document is
// consumed read-only and is never written by this process. Preference order:
// a "summary" key, then "notes", then the first few key/value pairs. Any
// failure yields an empty string; the snippet is optional context.
func LoadContextSnippet(path string) string {
	if path == "" {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}

	summary := stringValue(doc["summary"])
	if summary == "" {
		summary = stringValue(doc["notes"])
	}
	if summary == "" {
		summary = summarizePairs(doc)
	}
	return clipRunes(summary, snippetDocCap)
}

// summarizePairs joins up to five key/value pairs as "k: v" fragments,
// values truncated short to keep the prompt from bloating.
func summarizePairs(doc map[string]any) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 5 {
		keys = keys[:5]
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := clipRunes(fmt.Sprintf("%v", doc[k]), 80)
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, "; ")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
