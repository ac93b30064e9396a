package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.invalid_url": "Please send a valid url, I can only work with links from the following platforms:\n(%s)",
	"error.unavailable": "Error getting links, song.link couldn't respond",
	"error.malformed":   "Error getting links, song.link returned an unexpected response",

	// Usage hints
	"usage.share": "Usage: /share <link>",

	// Bot status messages
	"bot.startup":  "🎵 I am now online, send me a music link and I will share it to all platforms!",
	"bot.shutdown": "💤 Going offline, see you soon!",
}
