package bridge

import "strings"

// Reason explains an engagement decision. Reject reasons are as useful as
// accept reasons; both are logged and counted.
type Reason string

// Engagement decision reasons, accept and reject.
const (
	ReasonIsBot            Reason = "is_bot"
	ReasonIsOwner          Reason = "is_owner"
	ReasonDMNonOwner       Reason = "dm_non_owner"
	ReasonDirectMention    Reason = "direct_mention"
	ReasonReplyToBot       Reason = "reply_to_bot"
	ReasonNameMention      Reason = "name_mention"
	ReasonEmotionalSupport Reason = "emotional_support"
	ReasonGeneralQuestion  Reason = "general_question"
	ReasonNoTrigger        Reason = "no_trigger"
	ReasonGuildNotAllowed  Reason = "guild_not_allowed"
	ReasonEmptyContent     Reason = "empty_content"
)

// Keyword tables for the rule-based policy. Substring matches against the
// lowercased text; ordering within a table does not matter.
var (
	emotionalTriggers = []string{
		"sad", "depressed", "crying", "upset", "hurt", "lonely",
		"anxious", "worried", "scared", "stressed", "overwhelmed",
		"excited", "happy", "amazing", "awesome", "celebrate",
	}

	firstPersonTokens = []string{"i'm", "i am", "feeling", "feel"}

	audienceTokens = []string{"anyone", "anybody", "chat", "help"}

	negativeTriggers = []string{
		"annoying", "irritating", "stop", "shut up", "not working",
		"weird", "wtf", "stupid",
	}
)

// UserSoundsNegative reports whether the text reads as frustration or
// annoyance directed at the bot. Used only to color the situational notes
// in the prompt, never to gate engagement.
func UserSoundsNegative(text string) bool {
	return containsAny(strings.ToLower(text), negativeTriggers)
}

// Decide maps a message and its trimmed text to an engage/skip decision.
// Rules are evaluated in strict order, first match wins. Pure function:
// no store access, no randomness. The guild allow-list is enforced by the
// orchestrator before this runs.
func Decide(msg Message, content string) (bool, Reason) {
	if msg.IsBot {
		return false, ReasonIsBot
	}
	if msg.IsOwner {
		return true, ReasonIsOwner
	}
	if msg.GuildID == "" {
		return false, ReasonDMNonOwner
	}

	lower := strings.ToLower(content)

	if msg.IsMentioned {
		return true, ReasonDirectMention
	}
	if msg.IsReplyToBot {
		return true, ReasonReplyToBot
	}
	if strings.Contains(lower, personaNameToken) {
		return true, ReasonNameMention
	}
	if containsAny(lower, emotionalTriggers) && containsAny(lower, firstPersonTokens) {
		return true, ReasonEmotionalSupport
	}
	if strings.Contains(content, "?") && containsAny(lower, audienceTokens) {
		return true, ReasonGeneralQuestion
	}
	return false, ReasonNoTrigger
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
