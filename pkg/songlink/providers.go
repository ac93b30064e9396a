package songlink

import "strings"

// providerNames maps song.link platform identifiers to display names.
// Identifiers outside this table are still rendered, using the raw
// identifier as the name, but never take part in reconciliation priority.
var providerNames = map[string]string{
	"spotify":      "Spotify",
	"itunes":       "iTunes",
	"appleMusic":   "Apple Music",
	"youtube":      "YouTube",
	"youtubeMusic": "YouTube Music",
	"googleStore":  "Google Store",
	"pandora":      "Pandora",
	"deezer":       "Deezer",
	"tidal":        "Tidal",
	"amazonStore":  "Amazon Store",
	"amazonMusic":  "Amazon Music",
	"soundcloud":   "SoundCloud",
	"napster":      "Napster",
	"yandex":       "Yandex",
	"spinrilla":    "Spinrilla",
	"audius":       "Audius",
}

// supportedPlatforms lists the display names of the platforms whose URLs the
// classifier accepts, in presentation order.
var supportedPlatforms = []string{
	"Spotify",
	"iTunes",
	"Apple Music",
	"YouTube",
	"YouTube Music",
	"Pandora",
	"Deezer",
	"Tidal",
	"Amazon Music",
	"SoundCloud",
	"Yandex",
}

// sourcePriority orders API providers by preference when picking the
// canonical metadata record, most preferred first. The provider of the
// resolving entity acts as an implicit lowest-priority fallback; providers
// absent from the effective list never contribute.
var sourcePriority = []string{
	"itunes",
	"spotify",
	"tidal",
	"yandex",
	"soundcloud",
}

// DisplayName resolves a platform identifier to its display name, falling
// back to the raw identifier for unknown platforms.
func DisplayName(identifier string) string {
	if name, ok := providerNames[identifier]; ok {
		return name
	}
	return identifier
}

// SupportedPlatformNames returns the user-facing list of supported platforms
// formatted as "A, B, ... and Z".
func SupportedPlatformNames() string {
	if len(supportedPlatforms) == 1 {
		return supportedPlatforms[0]
	}
	head := supportedPlatforms[:len(supportedPlatforms)-1]
	last := supportedPlatforms[len(supportedPlatforms)-1]
	return strings.Join(head, ", ") + " and " + last
}
