// Package chat provides a unified interface for chat frontends (Telegram, WhatsApp, etc.)
package chat

import (
	"context"
)

// Message represents a normalized chat message from any frontend
type Message struct {
	ID         string
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
	URLs       []string
	IsGroup    bool
	Raw        any // underlying library message struct
}

// Embed is a platform-agnostic rich message payload. Frontends render it as
// faithfully as their platform allows; every field may be empty.
type Embed struct {
	Title        string
	Description  string
	URL          string // hyperlink target for the title
	Colour       int    // 24-bit packed accent colour
	ThumbnailURL string
	AuthorName   string
	FooterText   string
}

// Reaction represents standard emoji reactions
type Reaction string

// Standard reaction emojis used for user feedback
const (
	ReactionEyes       Reaction = "👀"
	ReactionThumbsDown Reaction = "👎"
)

// Frontend defines the unified interface for all chat integrations
type Frontend interface {
	// Start initializes the chat frontend and begins listening for updates
	Start(ctx context.Context) error

	// Listen starts listening for messages and calls the handler for each message
	Listen(ctx context.Context, handler func(*Message)) error

	// SendText sends a text message to the specified chat, optionally as a reply
	SendText(ctx context.Context, chatID string, replyToID string, text string) (string, error)

	// SendEmbed sends a rich message to the specified chat, optionally as a reply
	SendEmbed(ctx context.Context, chatID string, replyToID string, embed *Embed) (string, error)

	// React adds an emoji reaction to a message
	React(ctx context.Context, chatID string, msgID string, r Reaction) error

	// DeleteMessage deletes a message by its ID
	DeleteMessage(ctx context.Context, chatID, msgID string) error
}
