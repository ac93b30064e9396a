package core

import (
	"time"
)

type Config struct {
	Telegram TelegramConfig
	WhatsApp WhatsAppConfig
	Songlink SonglinkConfig
	Colour   ColourConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type TelegramConfig struct {
	Enabled  bool
	BotToken string
	GroupID  int64
}

type WhatsAppConfig struct {
	Enabled     bool
	GroupJID    string
	DeviceName  string
	SessionPath string
}

type SonglinkConfig struct {
	Timeout time.Duration
}

type ColourConfig struct {
	Timeout time.Duration
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language            string
	EphemeralTTLSecs    int
	FloodLimitPerMinute int
}

const (
	// DefaultEphemeralTTLSecs is how long error replies stay visible before
	// they are deleted.
	DefaultEphemeralTTLSecs = 15
	// DefaultFloodLimitPerMinute is the per-user share request limit.
	DefaultFloodLimitPerMinute = 10
)

func DefaultConfig() *Config {
	return &Config{
		WhatsApp: WhatsAppConfig{
			DeviceName:  "ShareMusic",
			SessionPath: "./whatsapp_session.db",
		},
		Songlink: SonglinkConfig{
			Timeout: 10 * time.Second,
		},
		Colour: ColourConfig{
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:            "en",
			EphemeralTTLSecs:    DefaultEphemeralTTLSecs,
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
		},
	}
}
