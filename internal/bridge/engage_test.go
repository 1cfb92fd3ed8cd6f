package bridge_test

import (
	"testing"

	"github.com/floofbot/floofbridge/internal/bridge"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		msg        bridge.Message
		content    string
		wantEngage bool
		wantReason bridge.Reason
	}{
		{
			name:       "bot sender always rejected",
			msg:        bridge.Message{IsBot: true, IsOwner: true, GuildID: "g", IsMentioned: true},
			content:    "floof help",
			wantEngage: false,
			wantReason: bridge.ReasonIsBot,
		},
		{
			name:       "owner always accepted",
			msg:        bridge.Message{IsOwner: true},
			content:    "nothing interesting here",
			wantEngage: true,
			wantReason: bridge.ReasonIsOwner,
		},
		{
			name:       "dm from non-owner rejected",
			msg:        bridge.Message{},
			content:    "floof please answer",
			wantEngage: false,
			wantReason: bridge.ReasonDMNonOwner,
		},
		{
			name:       "direct mention",
			msg:        bridge.Message{GuildID: "g", IsMentioned: true},
			content:    "what do you think",
			wantEngage: true,
			wantReason: bridge.ReasonDirectMention,
		},
		{
			name:       "reply to bot",
			msg:        bridge.Message{GuildID: "g", IsReplyToBot: true},
			content:    "yeah exactly",
			wantEngage: true,
			wantReason: bridge.ReasonReplyToBot,
		},
		{
			name:       "mention wins over reply flag",
			msg:        bridge.Message{GuildID: "g", IsMentioned: true, IsReplyToBot: true},
			content:    "hm",
			wantEngage: true,
			wantReason: bridge.ReasonDirectMention,
		},
		{
			name:       "name mention case-insensitive",
			msg:        bridge.Message{GuildID: "g"},
			content:    "hey FLOOF how are you",
			wantEngage: true,
			wantReason: bridge.ReasonNameMention,
		},
		{
			name:       "emotional trigger with first-person framing",
			msg:        bridge.Message{GuildID: "g"},
			content:    "i'm feeling really stressed about exams",
			wantEngage: true,
			wantReason: bridge.ReasonEmotionalSupport,
		},
		{
			name:       "emotional trigger without first-person framing",
			msg:        bridge.Message{GuildID: "g"},
			content:    "that movie was sad",
			wantEngage: false,
			wantReason: bridge.ReasonNoTrigger,
		},
		{
			name:       "question addressed to the chat",
			msg:        bridge.Message{GuildID: "g"},
			content:    "does anyone know how to fix this?",
			wantEngage: true,
			wantReason: bridge.ReasonGeneralQuestion,
		},
		{
			name:       "question without audience token",
			msg:        bridge.Message{GuildID: "g"},
			content:    "is it raining?",
			wantEngage: false,
			wantReason: bridge.ReasonNoTrigger,
		},
		{
			name:       "plain chatter",
			msg:        bridge.Message{GuildID: "g"},
			content:    "just had lunch",
			wantEngage: false,
			wantReason: bridge.ReasonNoTrigger,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engage, reason := bridge.Decide(tt.msg, tt.content)
			if engage != tt.wantEngage || reason != tt.wantReason {
				t.Errorf("Decide = (%v, %s), want (%v, %s)", engage, reason, tt.wantEngage, tt.wantReason)
			}
		})
	}
}

func TestUserSoundsNegative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"this bot is so annoying", true},
		{"WTF was that", true},
		{"the search is not working again", true},
		{"what a lovely morning", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := bridge.UserSoundsNegative(tt.in); got != tt.want {
			t.Errorf("UserSoundsNegative(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
