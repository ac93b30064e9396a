package core

import (
	"strings"

	"sharemusic/internal/chat"
	"sharemusic/internal/colour"
	"sharemusic/pkg/songlink"
)

const (
	// footerText credits the aggregation API as the data source.
	footerText = "Powered by odesli.co"
	// linkSeparator joins the platform links in the embed body.
	linkSeparator = " | "
)

// ComposeShare builds the outgoing rich message for a reconciled share. It
// is a pure function: no I/O, and it renders without error regardless of how
// many canonical fields are empty.
func ComposeShare(share *songlink.Share, accent colour.RGB) *chat.Embed {
	rendered := make([]string, 0, len(share.Links))
	for _, link := range share.Links {
		rendered = append(rendered, "["+link.Name+"]("+link.URL+")")
	}

	return &chat.Embed{
		Title:        share.Metadata.Title,
		AuthorName:   share.Metadata.Artist,
		Description:  strings.Join(rendered, linkSeparator),
		URL:          share.PageURL,
		Colour:       accent.Int(),
		ThumbnailURL: share.Metadata.ThumbnailURL,
		FooterText:   footerText,
	}
}
