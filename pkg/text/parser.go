// Package text provides message text normalization, URL extraction and share
// command parsing for chat messages.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Command is a parsed bot command with its raw argument string.
type Command struct {
	Name string
	Arg  string
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Normalize trims, NFKC-normalizes and collapses whitespace in message text.
func (p *Parser) Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)

	lines := strings.Split(text, "\n")
	var normalizedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
		if line != "" {
			normalizedLines = append(normalizedLines, line)
		}
	}

	return strings.Join(normalizedLines, " ")
}

// ExtractURLs returns the cleaned http(s) URLs found in the text.
func (p *Parser) ExtractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	var cleanURLs []string

	for _, match := range matches {
		cleanURL := p.cleanURL(match)
		if cleanURL != "" {
			cleanURLs = append(cleanURLs, cleanURL)
		}
	}

	return cleanURLs
}

// ParseCommand parses a leading "/name arg" command from message text. The
// "@botname" suffix Telegram appends in groups is stripped. Returns false
// for plain messages.
func (p *Parser) ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	name, arg, _ := strings.Cut(text[1:], " ")
	if name == "" {
		return Command{}, false
	}
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}

	return Command{
		Name: strings.ToLower(name),
		Arg:  strings.TrimSpace(arg),
	}, true
}

func (p *Parser) cleanURL(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, ".,!?;)")

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	// Additional validation - ensure it has a valid host
	if u.Host == "" {
		return ""
	}

	q := u.Query()

	utmParams := []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}
	for _, param := range utmParams {
		q.Del(param)
	}

	q.Del("si")

	u.RawQuery = q.Encode()

	return u.String()
}
