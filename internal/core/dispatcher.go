package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sharemusic/internal/chat"
	"sharemusic/internal/colour"
	"sharemusic/internal/flood"
	"sharemusic/internal/i18n"
	"sharemusic/pkg/songlink"
	"sharemusic/pkg/text"
)

// shareCommand is the bot command that carries an explicit URL argument.
const shareCommand = "share"

// Resolver resolves a music link into the aggregation API's raw response.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*songlink.Response, error)
}

// AccentSource derives an accent colour from a thumbnail URL. It must never
// fail; missing or broken thumbnails yield the neutral colour.
type AccentSource interface {
	Dominant(ctx context.Context, thumbnailURL string) colour.RGB
}

// Recorder receives pipeline outcome metrics.
type Recorder interface {
	RecordShare(status string)
	RecordError(component, errType string)
	RecordProcessingTime(command string, duration time.Duration)
}

// Dispatcher handles messages from any chat frontend using the unified
// interface and runs the share pipeline for each request.
type Dispatcher struct {
	config    *Config
	frontend  chat.Frontend
	resolver  Resolver
	accent    AccentSource
	floodgate *flood.Floodgate
	metrics   Recorder
	logger    *zap.Logger
	localizer *i18n.Localizer
	parser    *text.Parser
}

// NewDispatcher creates a new dispatcher with the provided chat frontend.
func NewDispatcher(
	config *Config,
	frontend chat.Frontend,
	resolver Resolver,
	accent AccentSource,
	metrics Recorder,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		config:    config,
		frontend:  frontend,
		resolver:  resolver,
		accent:    accent,
		floodgate: flood.New(config.App.FloodLimitPerMinute),
		metrics:   metrics,
		logger:    logger,
		localizer: i18n.NewLocalizer(config.App.Language),
		parser:    text.NewParser(),
	}
}

// Start initializes the dispatcher and begins processing messages.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting message dispatcher")

	if err := d.frontend.Start(ctx); err != nil {
		return fmt.Errorf("failed to start chat frontend: %w", err)
	}

	d.sendStartupMessage(ctx)

	return d.frontend.Listen(ctx, d.handleMessage)
}

// Stop gracefully shuts down the dispatcher.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.logger.Info("Stopping message dispatcher")

	d.floodgate.Stop()
	d.sendShutdownMessage(ctx)

	return nil
}

// handleMessage processes incoming chat messages. Each request is an
// independent unit of work; concurrent requests share no mutable state.
func (d *Dispatcher) handleMessage(msg *chat.Message) {
	d.logger.Debug("Received message",
		zap.String("messageID", msg.ID),
		zap.String("sender", msg.SenderName),
		zap.String("text", msg.Text),
	)

	go d.processMessage(context.Background(), msg)
}

// processMessage runs the share pipeline: classify, resolve, reconcile,
// extract colour, compose, reply. Every failure is terminal for the request
// and reported to the user exactly once; only colour extraction degrades
// silently.
func (d *Dispatcher) processMessage(ctx context.Context, msg *chat.Message) {
	start := time.Now()

	candidate, explicit := d.findCandidate(msg)
	if candidate == "" && !explicit {
		// Nothing shareable in the message.
		return
	}

	if !d.floodgate.CheckMessage(msg.ChatID, msg.SenderID) {
		d.logger.Debug("Dropping message due to flood limit",
			zap.String("sender", msg.SenderID),
			zap.String("chat", msg.ChatID))
		return
	}

	if candidate == "" {
		d.replyEphemeral(ctx, msg, d.localizer.T("usage.share"))
		return
	}

	if !songlink.Classify(candidate) {
		d.recordShare("invalid_url")
		d.replyEphemeral(ctx, msg,
			d.localizer.T("error.invalid_url", songlink.SupportedPlatformNames()))
		return
	}

	d.reactProcessing(ctx, msg)

	resp, err := d.resolver.Resolve(ctx, candidate)
	if err != nil {
		d.reportResolutionError(ctx, msg, candidate, err)
		return
	}

	share, err := songlink.Reconcile(resp)
	if err != nil {
		d.reportReconciliationError(ctx, msg, candidate, err)
		return
	}

	accent := d.accent.Dominant(ctx, share.Metadata.ThumbnailURL)

	embed := ComposeShare(share, accent)
	if _, err := d.frontend.SendEmbed(ctx, msg.ChatID, msg.ID, embed); err != nil {
		d.logger.Error("Failed to send share reply", zap.Error(err))
		d.recordError("frontend", "send")
		return
	}

	d.recordShare("ok")
	if d.metrics != nil {
		d.metrics.RecordProcessingTime(shareCommand, time.Since(start))
	}
}

// findCandidate picks the URL to share from the message. An explicit /share
// command always wins; plain group messages are scanned for the first
// supported link. The second return value reports whether the user invoked
// the command explicitly and therefore deserves feedback on bad input.
func (d *Dispatcher) findCandidate(msg *chat.Message) (string, bool) {
	if cmd, ok := d.parser.ParseCommand(msg.Text); ok {
		if cmd.Name != shareCommand {
			return "", false
		}
		return cmd.Arg, true
	}

	urls := msg.URLs
	if len(urls) == 0 {
		urls = d.parser.ExtractURLs(msg.Text)
	}
	for _, u := range urls {
		if songlink.Classify(u) {
			return u, false
		}
	}

	return "", false
}

// reportResolutionError maps client failures to their user message, log
// level and metric per the error taxonomy.
func (d *Dispatcher) reportResolutionError(ctx context.Context, msg *chat.Message, url string, err error) {
	var unavailable *songlink.UnavailableError
	if errors.As(err, &unavailable) {
		d.logger.Info("song.link could not respond",
			zap.String("url", url),
			zap.Int("status", unavailable.StatusCode))
		d.recordShare("unavailable")
		d.recordError("songlink", "unavailable")
		d.replyEphemeral(ctx, msg, d.localizer.T("error.unavailable"))
		return
	}

	var malformed *songlink.MalformedResponseError
	if errors.As(err, &malformed) {
		d.logger.Warn("song.link returned a faulty response",
			zap.String("url", url),
			zap.Error(malformed.Err))
		d.recordShare("malformed")
		d.recordError("songlink", "malformed")
		d.replyEphemeral(ctx, msg, d.localizer.T("error.malformed"))
		return
	}

	d.logger.Error("Unexpected resolution failure",
		zap.String("url", url),
		zap.Error(err))
	d.recordShare("error")
	d.recordError("songlink", "unknown")
	d.replyEphemeral(ctx, msg, d.localizer.T("error.unavailable"))
}

// reportReconciliationError handles missing required fields. These indicate
// an upstream contract change, so besides the user reply they bump the
// escalation counter with the offending field name in the log entry.
func (d *Dispatcher) reportReconciliationError(ctx context.Context, msg *chat.Message, url string, err error) {
	var missing *songlink.MissingFieldError
	if errors.As(err, &missing) {
		d.logger.Warn("song.link response is missing a required field",
			zap.String("url", url),
			zap.String("field", missing.Field))
		d.recordShare("missing_field")
		d.recordError("songlink", "missing_field")
	} else {
		d.logger.Error("Unexpected reconciliation failure",
			zap.String("url", url),
			zap.Error(err))
		d.recordShare("error")
		d.recordError("songlink", "unknown")
	}

	d.replyEphemeral(ctx, msg, d.localizer.T("error.malformed"))
}

// replyEphemeral sends a reply that deletes itself after the configured TTL.
// Deletion runs off the request goroutine; frontends that cannot delete
// messages just keep the reply.
func (d *Dispatcher) replyEphemeral(ctx context.Context, msg *chat.Message, reply string) {
	id, err := d.frontend.SendText(ctx, msg.ChatID, msg.ID, reply)
	if err != nil {
		d.logger.Error("Failed to reply with error message", zap.Error(err))
		return
	}

	ttl := time.Duration(d.config.App.EphemeralTTLSecs) * time.Second
	if ttl <= 0 || id == "" {
		return
	}

	chatID := msg.ChatID
	time.AfterFunc(ttl, func() {
		deleteCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := d.frontend.DeleteMessage(deleteCtx, chatID, id); err != nil {
			d.logger.Debug("Failed to delete ephemeral message", zap.Error(err))
		}
	})
}

// reactProcessing adds an eyes reaction to show the message is being handled.
func (d *Dispatcher) reactProcessing(ctx context.Context, msg *chat.Message) {
	if err := d.frontend.React(ctx, msg.ChatID, msg.ID, chat.ReactionEyes); err != nil {
		d.logger.Debug("Failed to add processing reaction", zap.Error(err))
	}
}

// sendStartupMessage sends a startup notification to the group.
func (d *Dispatcher) sendStartupMessage(ctx context.Context) {
	if groupID := d.getGroupID(); groupID != "" {
		if _, err := d.frontend.SendText(ctx, groupID, "", d.localizer.T("bot.startup")); err != nil {
			d.logger.Warn("Failed to send startup message", zap.Error(err))
		}
	}
}

// sendShutdownMessage sends a shutdown notification to the group.
func (d *Dispatcher) sendShutdownMessage(ctx context.Context) {
	if groupID := d.getGroupID(); groupID != "" {
		if _, err := d.frontend.SendText(ctx, groupID, "", d.localizer.T("bot.shutdown")); err != nil {
			d.logger.Warn("Failed to send shutdown message", zap.Error(err))
		}
	}
}

// getGroupID returns the appropriate group ID based on enabled frontends.
func (d *Dispatcher) getGroupID() string {
	if d.config.Telegram.Enabled && d.config.Telegram.GroupID != 0 {
		return fmt.Sprintf("%d", d.config.Telegram.GroupID)
	}
	if d.config.WhatsApp.Enabled {
		return d.config.WhatsApp.GroupJID
	}
	return ""
}

func (d *Dispatcher) recordShare(status string) {
	if d.metrics != nil {
		d.metrics.RecordShare(status)
	}
}

func (d *Dispatcher) recordError(component, errType string) {
	if d.metrics != nil {
		d.metrics.RecordError(component, errType)
	}
}
