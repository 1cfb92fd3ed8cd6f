// Package bridge implements the message-handling core: the engagement
// policy, prompt assembly, response sanitization, reply timing, and the
// orchestrator tying them to the memory stores and the inference backend.
package bridge

// Message is one inbound chat message with its sender context. Ephemeral;
// never persisted itself.
type Message struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	IsOwner   bool
	IsBot     bool
	Content   string

	// Engagement hints supplied by the platform client.
	IsMentioned      bool
	IsReplyToBot     bool
	MentionedUserIDs []string
}

// Reply is the handler's decision for one message. When Engage is false
// all other fields are zero. A follow-up is optional even when engaged.
type Reply struct {
	Engage          bool
	Reason          Reason
	Response        string
	ResponseDelayMs int
	FollowUp        string
	FollowUpDelayMs int
}
