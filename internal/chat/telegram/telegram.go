// Package telegram provides Telegram Bot API integration using go-telegram/bot library.
package telegram

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"sharemusic/internal/chat"
)

const (
	entityTypeURL         = "url"
	chatTypeGroup         = "group"
	chatTypeSuperGroup    = "supergroup"
	groupDiscoveryTimeout = 15 // seconds for group discovery
	// Sleep durations for group discovery
	botStopDelay       = 200 * time.Millisecond
	discoveryFinalWait = 50 * time.Millisecond
)

// markdownLink matches [name](url) links in embed descriptions.
var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Config holds Telegram-specific configuration
type Config struct {
	BotToken string
	GroupID  int64 // Chat ID of the group to monitor
	Enabled  bool
}

// Frontend implements the chat.Frontend interface for Telegram
type Frontend struct {
	config *Config
	logger *zap.Logger
	bot    *bot.Bot

	messageHandler func(*chat.Message)
}

// NewFrontend creates a new Telegram frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	return &Frontend{
		config: config,
		logger: logger,
	}
}

// Start initializes the Telegram bot and begins listening for updates
func (f *Frontend) Start(ctx context.Context) error {
	if !f.config.Enabled {
		f.logger.Info("Telegram frontend is disabled, skipping initialization")
		return nil
	}

	f.logger.Info("Starting Telegram frontend",
		zap.String("group_id", fmt.Sprintf("%d", f.config.GroupID)))

	b, err := bot.New(f.config.BotToken,
		bot.WithDefaultHandler(f.handleUpdate))
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	f.bot = b

	// Verify bot can access the group (skip if GroupID is 0 for interactive setup)
	if f.config.GroupID != 0 {
		if err := f.verifyGroupAccess(ctx); err != nil {
			return fmt.Errorf("failed to verify group access: %w", err)
		}
	}

	f.logger.Info("Telegram frontend started successfully")
	return nil
}

// Listen starts listening for messages and calls the handler for each message
func (f *Frontend) Listen(ctx context.Context, handler func(*chat.Message)) error {
	if !f.config.Enabled {
		return nil // Do nothing if disabled
	}

	f.messageHandler = handler

	// Start the bot
	f.bot.Start(ctx)

	return nil
}

// SendText sends a text message to the specified chat, optionally as a reply
func (f *Frontend) SendText(ctx context.Context, chatID, replyToID, text string) (string, error) {
	if !f.config.Enabled {
		return "", fmt.Errorf("telegram frontend is disabled")
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat ID: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID: chatIDInt,
		Text:   text,
	}

	// Plain text replies carry no share content, so previews only add noise
	disabled := true
	params.LinkPreviewOptions = &models.LinkPreviewOptions{
		IsDisabled: &disabled,
	}

	if replyToID != "" {
		messageID, parseErr := strconv.Atoi(replyToID)
		if parseErr != nil {
			return "", fmt.Errorf("invalid reply message ID: %w", parseErr)
		}
		params.ReplyParameters = &models.ReplyParameters{
			MessageID: messageID,
		}
	}

	msg, err := f.bot.SendMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// SendEmbed renders the share card as an HTML message. Telegram has no
// native embed object, so the card becomes a linked title, the author line,
// the platform links and the footer, with the thumbnail shown via the link
// preview.
func (f *Frontend) SendEmbed(ctx context.Context, chatID, replyToID string, embed *chat.Embed) (string, error) {
	if !f.config.Enabled {
		return "", fmt.Errorf("telegram frontend is disabled")
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat ID: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID:    chatIDInt,
		Text:      renderEmbedHTML(embed),
		ParseMode: models.ParseModeHTML,
	}

	if embed.ThumbnailURL != "" {
		small := true
		params.LinkPreviewOptions = &models.LinkPreviewOptions{
			URL:              &embed.ThumbnailURL,
			PreferSmallMedia: &small,
		}
	} else {
		disabled := true
		params.LinkPreviewOptions = &models.LinkPreviewOptions{
			IsDisabled: &disabled,
		}
	}

	if replyToID != "" {
		messageID, parseErr := strconv.Atoi(replyToID)
		if parseErr != nil {
			return "", fmt.Errorf("invalid reply message ID: %w", parseErr)
		}
		params.ReplyParameters = &models.ReplyParameters{
			MessageID: messageID,
		}
	}

	msg, err := f.bot.SendMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send embed message: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// renderEmbedHTML flattens an embed into Telegram HTML.
func renderEmbedHTML(embed *chat.Embed) string {
	var b strings.Builder

	if embed.AuthorName != "" {
		b.WriteString(html.EscapeString(embed.AuthorName))
		b.WriteString("\n")
	}

	if embed.Title != "" {
		if embed.URL != "" {
			fmt.Fprintf(&b, `<b><a href="%s">%s</a></b>`,
				html.EscapeString(embed.URL), html.EscapeString(embed.Title))
		} else {
			fmt.Fprintf(&b, "<b>%s</b>", html.EscapeString(embed.Title))
		}
		b.WriteString("\n")
	}

	if embed.Description != "" {
		b.WriteString(markdownLinksToHTML(embed.Description))
		b.WriteString("\n")
	}

	if embed.FooterText != "" {
		fmt.Fprintf(&b, "<i>%s</i>", html.EscapeString(embed.FooterText))
	}

	return strings.TrimRight(b.String(), "\n")
}

// markdownLinksToHTML converts [name](url) links to anchors and escapes
// everything else.
func markdownLinksToHTML(s string) string {
	var b strings.Builder
	last := 0

	for _, m := range markdownLink.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(html.EscapeString(s[last:m[0]]))
		name := s[m[2]:m[3]]
		url := s[m[4]:m[5]]
		fmt.Fprintf(&b, `<a href="%s">%s</a>`,
			html.EscapeString(url), html.EscapeString(name))
		last = m[1]
	}
	b.WriteString(html.EscapeString(s[last:]))

	return b.String()
}

// DeleteMessage deletes a message by its ID
func (f *Frontend) DeleteMessage(ctx context.Context, chatID, msgID string) error {
	if !f.config.Enabled {
		return fmt.Errorf("telegram frontend is disabled")
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	messageID, err := strconv.Atoi(msgID)
	if err != nil {
		return fmt.Errorf("invalid message ID: %w", err)
	}

	params := &bot.DeleteMessageParams{
		ChatID:    chatIDInt,
		MessageID: messageID,
	}

	_, err = f.bot.DeleteMessage(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

// React adds an emoji reaction to a message
func (f *Frontend) React(ctx context.Context, chatID, msgID string, r chat.Reaction) error {
	if !f.config.Enabled {
		return fmt.Errorf("telegram frontend is disabled")
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	messageID, err := strconv.Atoi(msgID)
	if err != nil {
		return fmt.Errorf("invalid message ID: %w", err)
	}

	_, err = f.bot.SetMessageReaction(ctx, &bot.SetMessageReactionParams{
		ChatID:    chatIDInt,
		MessageID: messageID,
		Reaction: []models.ReactionType{
			{
				Type: models.ReactionTypeTypeEmoji,
				ReactionTypeEmoji: &models.ReactionTypeEmoji{
					Emoji: string(r),
				},
			},
		},
	})

	if err != nil {
		f.logger.Debug("Failed to set reaction, reactions may not be supported",
			zap.Error(err))
		// Reactions are cosmetic, missing support is not an error
		return nil
	}

	return nil
}

// handleUpdate processes incoming Telegram updates
func (f *Frontend) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message != nil {
		f.handleMessage(ctx, update.Message)
	}
}

// handleMessage processes incoming messages
func (f *Frontend) handleMessage(_ context.Context, msg *models.Message) {
	// Only process messages from the configured group
	if msg.Chat.ID != f.config.GroupID {
		return
	}

	// Ignore messages from the bot itself
	if msg.From.IsBot {
		return
	}

	// Extract URLs from the message
	urls := f.extractURLs(msg)

	// Convert to unified message format
	message := chat.Message{
		ID:         strconv.Itoa(msg.ID),
		ChatID:     strconv.FormatInt(msg.Chat.ID, 10),
		SenderID:   strconv.FormatInt(msg.From.ID, 10),
		SenderName: f.getUserDisplayName(msg.From),
		Text:       msg.Text,
		URLs:       urls,
		IsGroup:    msg.Chat.Type == chatTypeGroup || msg.Chat.Type == chatTypeSuperGroup,
		Raw:        msg,
	}

	// Call the message handler
	if f.messageHandler != nil {
		f.messageHandler(&message)
	}
}

// verifyGroupAccess checks if the bot has access to the configured group
func (f *Frontend) verifyGroupAccess(ctx context.Context) error {
	chat, err := f.bot.GetChat(ctx, &bot.GetChatParams{
		ChatID: f.config.GroupID,
	})
	if err != nil {
		return fmt.Errorf("cannot access group %d: %w", f.config.GroupID, err)
	}

	f.logger.Info("Bot has access to group",
		zap.String("group_title", chat.Title),
		zap.String("group_type", string(chat.Type)))

	return nil
}

// extractURLs extracts URLs from message entities
func (f *Frontend) extractURLs(msg *models.Message) []string {
	var urls []string

	if msg.Entities != nil {
		for _, entity := range msg.Entities {
			if entity.Type == entityTypeURL {
				url := msg.Text[entity.Offset : entity.Offset+entity.Length]
				urls = append(urls, url)
			}
		}
	}

	return urls
}

// getUserDisplayName creates a display name for the user
func (f *Frontend) getUserDisplayName(user *models.User) string {
	if user.Username != "" {
		return "@" + user.Username
	}

	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}

	return name
}

// GroupInfo represents a Telegram group/chat information
type GroupInfo struct {
	ID    int64
	Title string
	Type  string
}

// ListAvailableGroups returns a list of groups the bot is part of
func (f *Frontend) ListAvailableGroups(ctx context.Context) ([]GroupInfo, error) {
	var groups []GroupInfo
	groupsMap := make(map[int64]GroupInfo)

	// Create a separate bot instance just for group discovery without default handler
	tempHandler := func(_ context.Context, _ *bot.Bot, update *models.Update) {
		f.logger.Info("Received update during group discovery")

		var chat models.Chat
		var hasChat bool

		if update.Message != nil {
			chat = update.Message.Chat
			hasChat = true
			f.logger.Info("Found message in chat",
				zap.Int64("chatID", chat.ID),
				zap.String("chatTitle", chat.Title),
				zap.String("chatType", string(chat.Type)))
		} else if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
			chat = update.CallbackQuery.Message.Message.Chat
			hasChat = true
			f.logger.Info("Found callback query in chat",
				zap.Int64("chatID", chat.ID),
				zap.String("chatTitle", chat.Title),
				zap.String("chatType", string(chat.Type)))
		}

		if hasChat && (string(chat.Type) == chatTypeGroup || string(chat.Type) == chatTypeSuperGroup) {
			f.logger.Info("Discovered group during scan",
				zap.Int64("groupID", chat.ID),
				zap.String("groupTitle", chat.Title),
				zap.String("groupType", string(chat.Type)))
			groupsMap[chat.ID] = GroupInfo{
				ID:    chat.ID,
				Title: chat.Title,
				Type:  string(chat.Type),
			}
		} else if hasChat {
			f.logger.Info("Ignoring non-group chat",
				zap.Int64("chatID", chat.ID),
				zap.String("chatType", string(chat.Type)))
		}
	}

	// Create a temporary bot with only our handler (no default handler)
	// Note: We can't easily suppress the "context canceled" error from the bot library
	// as it uses the standard log package internally. The error is expected and harmless.
	tempBot, err := bot.New(f.config.BotToken,
		bot.WithDefaultHandler(tempHandler))
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary bot for group discovery: %w", err)
	}

	f.logger.Info("Created temporary bot for group discovery")

	// Start the bot to receive updates
	discoverCtx, cancelDiscover := context.WithTimeout(ctx, groupDiscoveryTimeout*time.Second)
	defer cancelDiscover()

	// Start bot polling in background
	go func() {
		// Suppress the expected "context canceled" error from bot polling
		defer func() {
			if r := recover(); r != nil {
				// Log unexpected panics but ignore context cancellation
				f.logger.Debug("Bot polling stopped", zap.Any("reason", r))
			}
		}()
		tempBot.Start(discoverCtx)
	}()

	// Give some time to collect updates
	f.logger.Info("Scanning for groups... Please send a message in any group the bot should monitor")
	f.logger.Info("Waiting 15 seconds for group discovery...")

	// Wait for groups to be discovered
	select {
	case <-time.After(groupDiscoveryTimeout * time.Second):
		// Timeout - proceed with discovered groups

		// Temporarily suppress stderr to hide the expected "context canceled" error
		originalOutput := log.Writer()
		log.SetOutput(io.Discard)

		cancelDiscover() // Stop the bot polling

		// Give a brief moment for the bot to stop and any error messages to be discarded
		time.Sleep(botStopDelay)

		// Restore stderr
		log.SetOutput(originalOutput)

	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Convert map to slice
	for _, group := range groupsMap {
		groups = append(groups, group)
	}

	f.logger.Info("Group discovery completed",
		zap.Int("groupCount", len(groups)),
		zap.Any("groups", groups))

	// Add a small delay to let any remaining bot error messages print before our output
	time.Sleep(discoveryFinalWait)

	return groups, nil
}
