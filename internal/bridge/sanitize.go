package bridge

import (
	"regexp"
	"strings"
)

var (
	petNameRe    = regexp.MustCompile(`(?i)\b(sweetie|honey|dear|baby|babe|cutie|love)\b`)
	endearmentRe = regexp.MustCompile(`(?i)\b(mom|mama)\b`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	bangRunRe    = regexp.MustCompile(`([!?]){3,}`)
)

// Sanitize enforces the tone rules on raw model output and breaks
// repetition. lastAssistant is the thread's previous reply, used to detect
// a verbatim echo. Fails open: any internal fault returns the input
// unchanged.
func Sanitize(r Rand, isOwner bool, lastAssistant, text string) (out string) {
	out = text
	defer func() {
		if rec := recover(); rec != nil {
			out = text
		}
	}()

	if text == "" {
		return text
	}
	t := strings.TrimSpace(text)

	// Pet names and the owner endearments are reserved for the owner.
	if !isOwner {
		t = petNameRe.ReplaceAllString(t, "")
		t = endearmentRe.ReplaceAllString(t, "")
		t = strings.TrimSpace(multiSpaceRe.ReplaceAllString(t, " "))
	}

	// Collapse runs of three or more ! or ? down to two.
	t = bangRunRe.ReplaceAllString(t, "$1$1")

	tl := strings.ToLower(strings.TrimSpace(t))
	for _, g := range genericLines {
		if strings.Contains(tl, g) {
			if isOwner {
				t = pickLine(r, genericReplacementsOwner)
			} else {
				t = pickLine(r, genericReplacements)
			}
			break
		}
	}

	if lastAssistant != "" && strings.EqualFold(lastAssistant, t) {
		t = pickLine(r, echoReplacements)
	}

	return t
}
