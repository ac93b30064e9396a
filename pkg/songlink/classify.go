package songlink

import "regexp"

// linkPattern matches https URLs on the supported music platforms. The
// scheme is case-sensitive and only https is accepted.
var linkPattern = regexp.MustCompile(`^https://(?:` +
	`.*amazon\.com|` +
	`.*deezer\.com|` +
	`.*music\.apple\.com|` +
	`.*pandora.*\.com|` +
	`soundcloud\.com|` +
	`.*spotify\.com|` +
	`.*tidal\.com|` +
	`.*music\.yandex\..{1,3}|` +
	`.*youtu(?:\.be|be\.com))`)

// Classify reports whether the candidate is a well-formed https URL on one
// of the supported music platforms. It performs no network access and never
// panics; rejected candidates simply return false so the caller can inform
// the user which platforms are supported.
func Classify(candidate string) bool {
	return linkPattern.MatchString(candidate)
}
