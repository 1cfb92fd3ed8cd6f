// Package api defines the wire contract between the platform client and
// the bridge: the handle request/response pair and the health and status
// report shapes. Platform clients in other processes marshal against these
// types.
package api

// HandleRequest is one inbound chat message submitted for a decision.
// Absent fields default to empty/false; a request is never rejected for
// missing fields.
type HandleRequest struct {
	GuildID   string `json:"guild_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	AuthorID  string `json:"author_id,omitempty"`
	IsOwner   bool   `json:"is_owner,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Content   string `json:"content"`

	// Engagement hints computed by the platform client.
	IsMentioned      bool     `json:"is_mentioned,omitempty"`
	IsReplyToBot     bool     `json:"is_reply_to_bot,omitempty"`
	MentionedUserIDs []string `json:"mentioned_user_ids,omitempty"`
}

// HandleResponse is the bridge's decision. When Engage is false the other
// fields are zero. FollowUp is optional even when engaged; the client
// should send it after FollowUpDelayMs if present.
type HandleResponse struct {
	Engage          bool   `json:"engage"`
	Response        string `json:"response,omitempty"`
	ResponseDelayMs int    `json:"response_delay_ms"`
	FollowUp        string `json:"follow_up,omitempty"`
	FollowUpDelayMs int    `json:"follow_up_delay_ms"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"` // "ok" or "degraded"
	Model  string `json:"model"`
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status        string `json:"status"`
	Model         string `json:"model"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Threads       int    `json:"threads"`
	Users         int    `json:"users"`
}
