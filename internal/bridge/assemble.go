package bridge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/floofbot/floofbridge/internal/memory"
	"github.com/floofbot/floofbridge/internal/provider"
)

var nameStripRe = regexp.MustCompile(`(?i)\b` + personaNameToken + `\b`)

// CleanContent strips the first occurrence of the persona name from the
// user's text so the model is not addressed by name in every prompt. If
// stripping leaves nothing, a neutral greeting stands in.
func CleanContent(content string) string {
	loc := nameStripRe.FindStringIndex(content)
	if loc != nil {
		content = strings.TrimSpace(content[:loc[0]] + content[loc[1]:])
	}
	if content == "" {
		return neutralGreeting
	}
	return content
}

// ContextInput carries everything the assembler folds into the prompt
// besides the message itself.
type ContextInput struct {
	// ContextSnippet is the optional external long-term context.
	ContextSnippet string

	// UserSnippet is the sender's remembered facts, if any.
	UserSnippet string

	// RecentTurns is the thread's non-expired history, oldest first.
	RecentTurns []memory.Turn
}

// BuildContext assembles the ordered message list for the inference call:
// one system message, then the recent turns in chronological order, then
// the (already cleaned) user message last.
func BuildContext(msg Message, userContent string, in ContextInput) []provider.LLMMessage {
	systemParts := []string{systemPrompt}

	if in.ContextSnippet != "" {
		systemParts = append(systemParts, "\nCONTEXT: "+in.ContextSnippet)
	}
	if in.UserSnippet != "" {
		systemParts = append(systemParts, "\nUSER MEMORY: "+in.UserSnippet)
	}
	if msg.IsOwner {
		systemParts = append(systemParts, "\n"+ownerNote)
	}

	var situation []string
	if msg.IsMentioned {
		situation = append(situation, "You were directly mentioned")
	}
	if msg.IsReplyToBot {
		situation = append(situation, "User is replying to your previous message")
	}
	if len(msg.MentionedUserIDs) > 0 {
		situation = append(situation, fmt.Sprintf("Other users mentioned: %d", len(msg.MentionedUserIDs)))
	}
	if UserSoundsNegative(userContent) {
		situation = append(situation, "User sounds frustrated, keep it calm and gentle")
	}
	if len(situation) > 0 {
		systemParts = append(systemParts, "\nCURRENT SITUATION: "+strings.Join(situation, "; "))
	}

	messages := make([]provider.LLMMessage, 0, len(in.RecentTurns)+2)
	messages = append(messages, provider.LLMMessage{
		Role:    provider.MessageRoleSystem,
		Content: strings.Join(systemParts, "\n"),
	})
	for _, turn := range in.RecentTurns {
		messages = append(messages, provider.LLMMessage{
			Role:    provider.MessageRole(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, provider.LLMMessage{
		Role:    provider.MessageRoleUser,
		Content: userContent,
	})
	return messages
}
