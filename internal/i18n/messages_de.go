package i18n

// germanMessages contains all German translations.
var germanMessages = map[string]string{
	// Error messages
	"error.invalid_url": "Bitte sende mir einen validen Link, ich kann nur mit Links von den folgenden Plattformen arbeiten:\n(%s)",
	"error.unavailable": "Fehler beim Abrufen der Links, song.link konnte nicht antworten",
	"error.malformed":   "Fehler beim Abrufen der Links, song.link hat eine unerwartete Antwort geliefert",

	// Usage hints
	"usage.share": "Verwendung: /share <Link>",

	// Bot status messages
	"bot.startup":  "🎵 Ich bin jetzt online, schick mir einen Musik-Link und ich teile ihn auf allen Plattformen!",
	"bot.shutdown": "💤 Ich gehe offline, bis bald!",
}
