package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/floofbot/floofbridge/internal/bridge"
	"github.com/floofbot/floofbridge/pkg/api"
)

// handleMessage returns the http.HandlerFunc for POST /handle. Malformed
// bodies are treated as empty messages, not rejected; engage=false is the
// valid outcome for anything unprocessable.
func (g *Gateway) handleMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		var req api.HandleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			g.logger.Warn("undecodable handle request", "error", err)
			req = api.HandleRequest{}
		}

		reply := g.handler.Handle(r.Context(), bridge.Message{
			GuildID:          req.GuildID,
			ChannelID:        req.ChannelID,
			AuthorID:         req.AuthorID,
			IsOwner:          req.IsOwner,
			IsBot:            req.IsBot,
			Content:          req.Content,
			IsMentioned:      req.IsMentioned,
			IsReplyToBot:     req.IsReplyToBot,
			MentionedUserIDs: req.MentionedUserIDs,
		})

		g.metrics.RecordRequest(reply.Engage, string(reply.Reason), time.Since(started).Seconds())
		if reply.FollowUp != "" {
			g.metrics.RecordFollowUp()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.HandleResponse{
			Engage:          reply.Engage,
			Response:        reply.Response,
			ResponseDelayMs: reply.ResponseDelayMs,
			FollowUp:        reply.FollowUp,
			FollowUpDelayMs: reply.FollowUpDelayMs,
		})
	}
}
