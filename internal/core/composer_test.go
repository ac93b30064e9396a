package core

import (
	"testing"

	"sharemusic/internal/colour"
	"sharemusic/pkg/songlink"
)

func TestComposeShare(t *testing.T) {
	share := &songlink.Share{
		Metadata: songlink.Metadata{
			Artist:       "Test Artist",
			Title:        "Test Title",
			ThumbnailURL: "https://img/art.jpg",
		},
		Links: []songlink.Link{
			{Platform: "spotify", Name: "Spotify", URL: "https://open.spotify.com/track/abc"},
			{Platform: "youtube", Name: "YouTube", URL: "https://youtu.be/xyz"},
		},
		PageURL: "https://song.link/s/abc",
	}

	embed := ComposeShare(share, colour.RGB{R: 0x12, G: 0x34, B: 0x56})

	if embed.Title != "Test Title" {
		t.Errorf("Title = %q, want %q", embed.Title, "Test Title")
	}
	if embed.AuthorName != "Test Artist" {
		t.Errorf("AuthorName = %q, want %q", embed.AuthorName, "Test Artist")
	}
	if want := "[Spotify](https://open.spotify.com/track/abc) | [YouTube](https://youtu.be/xyz)"; embed.Description != want {
		t.Errorf("Description = %q, want %q", embed.Description, want)
	}
	if embed.URL != "https://song.link/s/abc" {
		t.Errorf("URL = %q, want %q", embed.URL, "https://song.link/s/abc")
	}
	if embed.Colour != 0x123456 {
		t.Errorf("Colour = %#x, want %#x", embed.Colour, 0x123456)
	}
	if embed.ThumbnailURL != "https://img/art.jpg" {
		t.Errorf("ThumbnailURL = %q, want %q", embed.ThumbnailURL, "https://img/art.jpg")
	}
	if embed.FooterText != "Powered by odesli.co" {
		t.Errorf("FooterText = %q, want %q", embed.FooterText, "Powered by odesli.co")
	}
}

func TestComposeShare_AllEmptyMetadata(t *testing.T) {
	// An all-empty canonical metadata still yields a renderable message with
	// the fixed footer and the neutral colour.
	share := &songlink.Share{
		PageURL: "https://song.link/s/abc",
	}

	embed := ComposeShare(share, colour.RGB{})

	if embed.Title != "" || embed.AuthorName != "" || embed.ThumbnailURL != "" {
		t.Errorf("expected empty title/author/thumbnail, got %+v", embed)
	}
	if embed.Description != "" {
		t.Errorf("Description = %q, want empty for no links", embed.Description)
	}
	if embed.Colour != 0 {
		t.Errorf("Colour = %#x, want 0", embed.Colour)
	}
	if embed.FooterText != "Powered by odesli.co" {
		t.Errorf("FooterText = %q, want the fixed attribution", embed.FooterText)
	}
}
