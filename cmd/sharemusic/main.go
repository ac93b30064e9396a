// Package main provides the ShareMusic CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"sharemusic/internal/chat"
	"sharemusic/internal/chat/telegram"
	"sharemusic/internal/chat/whatsapp"
	"sharemusic/internal/colour"
	"sharemusic/internal/core"
	httpserver "sharemusic/internal/http"
	"sharemusic/internal/i18n"
	"sharemusic/pkg/songlink"
)

const (
	defaultServerHost = "0.0.0.0"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sharemusic",
	Short: "ShareMusic - Cross-platform music link sharing bot",
	Long: `ShareMusic is a service that listens to chat messages (Telegram/WhatsApp),
resolves shared music links via song.link and replies with a card linking the
song on every supported streaming platform.`,
	RunE: runShareMusic,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("telegram-enabled", true, "Enable Telegram integration")
	rootCmd.PersistentFlags().String("telegram-bot-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().Int64("telegram-group-id", 0, "Telegram group ID")
	rootCmd.PersistentFlags().Bool("whatsapp-enabled", false, "Enable WhatsApp integration")
	rootCmd.PersistentFlags().String("whatsapp-group-jid", "", "WhatsApp group JID")
	rootCmd.PersistentFlags().String("whatsapp-device-name", "ShareMusic", "WhatsApp device name")
	rootCmd.PersistentFlags().Int("songlink-timeout-secs", 10, "song.link API request timeout in seconds")
	rootCmd.PersistentFlags().Int("colour-timeout-secs", 10, "Thumbnail download timeout in seconds")
	rootCmd.PersistentFlags().String("server-host", defaultServerHost, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().Int("ephemeral-ttl-secs", core.DefaultEphemeralTTLSecs,
		"How long error replies stay visible before deletion (0 disables deletion)")
	rootCmd.PersistentFlags().Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute,
		"Maximum messages per user per minute")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	rootCmd.PersistentFlags().String("language", i18n.DefaultLanguage,
		fmt.Sprintf("Bot language (%s)", supportedLangs))
	rootCmd.PersistentFlags().Bool("generate-env-example", false,
		"Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("SHAREMUSIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureTelegram(cfg)
	configureWhatsApp(cfg)
	configurePipeline(cfg)
	configureServer(cfg)
	configureApp(cfg)

	return cfg
}

func configureTelegram(cfg *core.Config) {
	cfg.Telegram.Enabled = viper.GetBool("telegram-enabled")
	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")
	cfg.Telegram.GroupID = viper.GetInt64("telegram-group-id")
}

func configureWhatsApp(cfg *core.Config) {
	cfg.WhatsApp.Enabled = viper.GetBool("whatsapp-enabled")
	cfg.WhatsApp.GroupJID = viper.GetString("whatsapp-group-jid")
	cfg.WhatsApp.DeviceName = viper.GetString("whatsapp-device-name")
	cfg.WhatsApp.SessionPath = viper.GetString("whatsapp-session-path")
	if cfg.WhatsApp.SessionPath == "" {
		cfg.WhatsApp.SessionPath = "./whatsapp_session.db"
	}
}

func configurePipeline(cfg *core.Config) {
	if secs := viper.GetInt("songlink-timeout-secs"); secs > 0 {
		cfg.Songlink.Timeout = time.Duration(secs) * time.Second
	}
	if secs := viper.GetInt("colour-timeout-secs"); secs > 0 {
		cfg.Colour.Timeout = time.Duration(secs) * time.Second
	}
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
}

func configureApp(cfg *core.Config) {
	cfg.App.EphemeralTTLSecs = viper.GetInt("ephemeral-ttl-secs")
	if cfg.App.EphemeralTTLSecs < 0 {
		cfg.App.EphemeralTTLSecs = core.DefaultEphemeralTTLSecs
	}

	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute <= 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}

	// Language configuration with validation
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}

	supportedLanguages := i18n.GetSupportedLanguages()
	isSupported := false
	for _, lang := range supportedLanguages {
		if cfg.App.Language == lang {
			isSupported = true
			break
		}
	}
	if !isSupported {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(supportedLanguages, ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runShareMusic(cmd *cobra.Command, _ []string) error {
	// Handle generate-env-example flag
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting ShareMusic",
		zap.Bool("telegram_enabled", config.Telegram.Enabled),
		zap.Bool("whatsapp_enabled", config.WhatsApp.Enabled),
		zap.String("language", config.App.Language))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	services, err := initializeServices()
	if err != nil {
		return err
	}

	return runServices(ctx, services)
}

type services struct {
	frontend   chat.Frontend
	resolver   *songlink.Client
	extractor  *colour.Extractor
	httpServer *httpserver.Server
	dispatcher *core.Dispatcher
}

func initializeServices() (*services, error) {
	frontend, err := createChatFrontend()
	if err != nil {
		return nil, err
	}

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))

	resolver := songlink.NewClient(config.Songlink.Timeout,
		songlink.WithObserver(httpServer.ObserveThirdPartyAPI))

	extractor := colour.NewExtractor(config.Colour.Timeout, logger.Named("colour"),
		colour.WithObserver(httpServer.ObserveThirdPartyAPI))

	dispatcher := core.NewDispatcher(config, frontend, resolver, extractor, httpServer,
		logger.Named("dispatcher"))

	return &services{
		frontend:   frontend,
		resolver:   resolver,
		extractor:  extractor,
		httpServer: httpServer,
		dispatcher: dispatcher,
	}, nil
}

func createChatFrontend() (chat.Frontend, error) {
	if config.Telegram.Enabled {
		telegramConfig := &telegram.Config{
			BotToken: config.Telegram.BotToken,
			GroupID:  config.Telegram.GroupID,
			Enabled:  config.Telegram.Enabled,
		}
		frontend := telegram.NewFrontend(telegramConfig, logger.Named("telegram"))
		logger.Info("Using Telegram as primary chat frontend",
			zap.String("language", config.App.Language))
		return frontend, nil
	}

	if config.WhatsApp.Enabled {
		whatsappConfig := &whatsapp.Config{
			GroupJID:    config.WhatsApp.GroupJID,
			DeviceName:  config.WhatsApp.DeviceName,
			SessionPath: config.WhatsApp.SessionPath,
			Enabled:     config.WhatsApp.Enabled,
		}
		frontend := whatsapp.NewFrontend(whatsappConfig, logger.Named("whatsapp"))
		logger.Info("Using WhatsApp as chat frontend",
			zap.String("language", config.App.Language))
		return frontend, nil
	}

	return nil, fmt.Errorf("no chat frontend enabled - enable either Telegram or WhatsApp")
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	logger.Info("ShareMusic started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("ShareMusic stopped with error", zap.Error(err))
		// Still call Stop to send shutdown message
		if stopErr := svcs.dispatcher.Stop(context.Background()); stopErr != nil {
			logger.Debug("Failed to stop dispatcher gracefully", zap.Error(stopErr))
		}
		return err
	}

	// Graceful shutdown - call Stop to send shutdown message
	if err := svcs.dispatcher.Stop(context.Background()); err != nil {
		logger.Debug("Failed to stop dispatcher gracefully", zap.Error(err))
	}

	logger.Info("ShareMusic stopped gracefully")
	return nil
}

func promptForTelegramGroup() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("\n🤖 SHAREMUSIC_TELEGRAM_GROUP_ID not set. Scanning for available groups...")

	// Create a temporary Telegram frontend to list groups
	telegramConfig := &telegram.Config{
		BotToken: config.Telegram.BotToken,
		GroupID:  0, // Temporary - we'll set this after selection
		Enabled:  true,
	}

	tempFrontend := telegram.NewFrontend(telegramConfig, logger.Named("telegram-setup"))
	if err := tempFrontend.Start(ctx); err != nil {
		return 0, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	// Wait a moment for the bot to be ready
	time.Sleep(2 * time.Second)

	// List available groups
	groups, err := tempFrontend.ListAvailableGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list groups: %w", err)
	}

	if len(groups) == 0 {
		return 0, fmt.Errorf("no groups found. Please add the bot to a group first and send some messages")
	}

	// Display available groups
	fmt.Println("\n📋 Available groups:")
	for i, group := range groups {
		fmt.Printf("  %d. %s (ID: %d, Type: %s)\n", i+1, group.Title, group.ID, group.Type)
	}

	// Prompt user for selection
	fmt.Printf("\nSelect a group (1-%d): ", len(groups))
	var selection int
	if _, err := fmt.Scanln(&selection); err != nil {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}

	if selection < 1 || selection > len(groups) {
		return 0, fmt.Errorf("invalid selection: %d (must be between 1 and %d)", selection, len(groups))
	}

	selectedGroup := groups[selection-1]
	fmt.Printf("\n✅ Selected group: %s (ID: %d)\n", selectedGroup.Title, selectedGroup.ID)
	fmt.Printf("💡 To avoid this prompt in the future, set: SHAREMUSIC_TELEGRAM_GROUP_ID=%d\n\n", selectedGroup.ID)

	return selectedGroup.ID, nil
}

func validateConfig() error {
	// Ensure at least one chat frontend is enabled
	if !config.Telegram.Enabled && !config.WhatsApp.Enabled {
		return fmt.Errorf("at least one chat frontend must be enabled (Telegram or WhatsApp)")
	}

	// Validate Telegram configuration if enabled
	if config.Telegram.Enabled {
		if config.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot token is required when Telegram is enabled")
		}
		if config.Telegram.GroupID == 0 {
			// Interactive group selection if group ID not provided
			groupID, err := promptForTelegramGroup()
			if err != nil {
				return fmt.Errorf("failed to select Telegram group: %w", err)
			}
			config.Telegram.GroupID = groupID
			logger.Info("Selected Telegram group interactively", zap.Int64("groupID", groupID))
		}
	}

	// Validate WhatsApp configuration if enabled
	if config.WhatsApp.Enabled {
		if config.WhatsApp.GroupJID == "" {
			return fmt.Errorf("WhatsApp group JID is required when WhatsApp is enabled")
		}
	}

	return nil
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# ShareMusic Configuration\n")
	content.WriteString("# Copy this file to .env and fill in your values\n\n")

	sections := []struct {
		title string
		flags []string
	}{
		{"Telegram", []string{"telegram-enabled", "telegram-bot-token", "telegram-group-id"}},
		{"WhatsApp", []string{"whatsapp-enabled", "whatsapp-group-jid", "whatsapp-device-name"}},
		{"Pipeline", []string{"songlink-timeout-secs", "colour-timeout-secs"}},
		{"Server", []string{"server-host", "server-port"}},
		{"Application", []string{"language", "ephemeral-ttl-secs", "flood-limit-per-minute", "log-level"}},
	}

	for _, section := range sections {
		fmt.Fprintf(&content, "# %s\n", section.title)
		for _, name := range section.flags {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				continue
			}
			if flag.Usage != "" {
				fmt.Fprintf(&content, "# %s\n", flag.Usage)
			}
			fmt.Fprintf(&content, "%s=%s\n", flagToEnvVar(name), flag.DefValue)
		}
		content.WriteString("\n")
	}

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return "SHAREMUSIC_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
