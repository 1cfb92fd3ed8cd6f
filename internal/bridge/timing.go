package bridge

import (
	"strings"
	"unicode/utf8"
)

// Reply delay tuning. The delay grows with response length so long replies
// read as typed, not pasted; jitter keeps the rhythm from being mechanical.
const (
	delayBaseOwnerMs = 300
	delayBaseMs      = 600
	delayPerCharMs   = 15
	delayMinMs       = 200
	delayMaxMs       = 4000
)

// Follow-up tuning.
const (
	followUpProbability = 0.3
	followUpMinDelayMs  = 3000
	followUpMaxDelayMs  = 8000

	// narrativeMinLen is how long a message must be before the
	// narrative-continuation keywords alone justify a follow-up.
	narrativeMinLen = 100
)

var (
	followUpEmotionalWords = []string{"sad", "happy", "excited", "worried", "stressed", "celebrating"}
	narrativeWords         = []string{"so", "today", "yesterday", "happened"}
)

// ComputeDelay returns a human-like reply delay in milliseconds for the
// given response text. Owners get a shorter base; the result is jittered
// by up to half the base in either direction and clamped.
func ComputeDelay(r Rand, responseText string, isOwner bool) int {
	base := delayBaseMs
	if isOwner {
		base = delayBaseOwnerMs
	}
	variation := base / 2
	delay := base + delayPerCharMs*utf8.RuneCountInString(responseText)
	delay += r.Intn(2*variation+1) - variation

	if delay < delayMinMs {
		return delayMinMs
	}
	if delay > delayMaxMs {
		return delayMaxMs
	}
	return delay
}

// ShouldFollowUp reports whether a follow-up message would be appropriate
// after responding. A response that already asks a question never gets one.
// The probability gate is applied separately by the caller.
func ShouldFollowUp(originalText, responseText string) bool {
	if responseText == "" {
		return false
	}
	if strings.Contains(responseText, "?") {
		return false
	}
	lower := strings.ToLower(originalText)
	if containsAny(lower, followUpEmotionalWords) {
		return true
	}
	if len(originalText) > narrativeMinLen && containsAny(lower, narrativeWords) {
		return true
	}
	return false
}

// FollowUpDelay returns a uniformly random delay in the follow-up window.
func FollowUpDelay(r Rand) int {
	return followUpMinDelayMs + r.Intn(followUpMaxDelayMs-followUpMinDelayMs+1)
}
