// Package songlink provides music link classification and resolution using
// the song.link (odesli.co) aggregation API.
package songlink

// Response is the decoded body of a links lookup from the aggregation API.
type Response struct {
	// EntityUniqueID is the unique ID of the entity matching the URL that
	// was supplied in the request. Its data lives in EntitiesByUniqueID.
	EntityUniqueID string `json:"entityUniqueId"`

	// UserCountry is the country/availability used to query the platforms.
	UserCountry string `json:"userCountry"`

	// PageURL renders the song.link page for this entity.
	PageURL string `json:"pageUrl"`

	// LinksByPlatform maps platform identifiers to their match. A platform
	// is present only if a match was found there.
	LinksByPlatform map[string]PlatformMatch `json:"linksByPlatform"`

	// EntitiesByUniqueID maps entity IDs to per-platform metadata records.
	EntitiesByUniqueID map[string]Entity `json:"entitiesByUniqueId"`
}

// PlatformMatch holds the link data for a single platform.
type PlatformMatch struct {
	EntityUniqueID string `json:"entityUniqueId"`
	URL            string `json:"url"`
}

// Entity is one platform's metadata record for the matched song or album.
// Title, ArtistName and ThumbnailURL are optional in the upstream contract;
// an empty string means the field was absent.
type Entity struct {
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	ArtistName   string   `json:"artistName"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	APIProvider  string   `json:"apiProvider"`
	Platforms    []string `json:"platforms"`
}

// Metadata is the canonical (artist, title, thumbnail) tuple chosen from the
// per-platform entity records. All fields may be empty when no record
// qualified; that is a legitimate end state, not an error.
type Metadata struct {
	Artist       string
	Title        string
	ThumbnailURL string
}

// Link is one platform entry of a share, resolved to its display name.
type Link struct {
	Platform string // raw platform identifier from the API
	Name     string // human-readable display name
	URL      string
}

// Share is the reconciled result of a resolution: canonical metadata plus the
// ordered link list and the song.link page URL. It is built fresh per request
// and never cached.
type Share struct {
	Metadata Metadata
	Links    []Link
	PageURL  string
}
