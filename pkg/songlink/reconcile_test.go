package songlink

import (
	"errors"
	"testing"
)

func entity(provider, artist, title, thumbnail string) Entity {
	return Entity{
		Type:         "song",
		Title:        title,
		ArtistName:   artist,
		ThumbnailURL: thumbnail,
		APIProvider:  provider,
	}
}

func validResponse() *Response {
	return &Response{
		EntityUniqueID: "YOUTUBE_VIDEO::xyz",
		UserCountry:    "US",
		PageURL:        "https://song.link/y/xyz",
		LinksByPlatform: map[string]PlatformMatch{
			"spotify": {URL: "https://open.spotify.com/track/abc"},
			"youtube": {URL: "https://youtu.be/xyz"},
		},
		EntitiesByUniqueID: map[string]Entity{
			"YOUTUBE_VIDEO::xyz": entity("youtube", "YT Artist", "YT Title", "https://img/yt.jpg"),
		},
	}
}

func TestReconcile_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Response)
		wantField string
	}{
		{
			name:      "missing linksByPlatform",
			mutate:    func(r *Response) { r.LinksByPlatform = nil },
			wantField: "linksByPlatform",
		},
		{
			name:      "missing entitiesByUniqueId",
			mutate:    func(r *Response) { r.EntitiesByUniqueID = nil },
			wantField: "entitiesByUniqueId",
		},
		{
			name:      "missing entityUniqueId",
			mutate:    func(r *Response) { r.EntityUniqueID = "" },
			wantField: "entityUniqueId",
		},
		{
			name:      "missing pageUrl",
			mutate:    func(r *Response) { r.PageURL = "" },
			wantField: "pageUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := validResponse()
			tt.mutate(resp)

			_, err := Reconcile(resp)

			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("Reconcile() error = %v, want *MissingFieldError", err)
			}
			if missing.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", missing.Field, tt.wantField)
			}
		})
	}
}

func TestReconcile_PrioritySelection(t *testing.T) {
	resp := validResponse()
	resp.EntitiesByUniqueID = map[string]Entity{
		"ITUNES_SONG::1":     entity("itunes", "iTunes Artist", "iTunes Title", "https://img/itunes.jpg"),
		"SPOTIFY_SONG::2":    entity("spotify", "Spotify Artist", "Spotify Title", "https://img/spotify.jpg"),
		"YOUTUBE_VIDEO::xyz": entity("youtube", "YT Artist", "YT Title", "https://img/yt.jpg"),
	}

	share, err := Reconcile(resp)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	// itunes has the lowest priority index of all present providers.
	if share.Metadata.Artist != "iTunes Artist" {
		t.Errorf("Artist = %q, want %q", share.Metadata.Artist, "iTunes Artist")
	}
	if share.Metadata.Title != "iTunes Title" {
		t.Errorf("Title = %q, want %q", share.Metadata.Title, "iTunes Title")
	}
	if share.Metadata.ThumbnailURL != "https://img/itunes.jpg" {
		t.Errorf("ThumbnailURL = %q, want %q", share.Metadata.ThumbnailURL, "https://img/itunes.jpg")
	}
}

func TestReconcile_ResolvingProviderFallback(t *testing.T) {
	// youtube is not on the priority list, but it is the resolving entity's
	// provider, so it is appended as the lowest explicit priority.
	resp := validResponse()

	share, err := Reconcile(resp)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if share.Metadata.Artist != "YT Artist" {
		t.Errorf("Artist = %q, want %q", share.Metadata.Artist, "YT Artist")
	}
}

func TestReconcile_GuardedFallbackAppend(t *testing.T) {
	// The resolving entity's provider is already ranked; appending it again
	// must not demote it to the appended (worse) index.
	resp := validResponse()
	resp.EntityUniqueID = "SPOTIFY_SONG::2"
	resp.EntitiesByUniqueID = map[string]Entity{
		"SPOTIFY_SONG::2": entity("spotify", "Spotify Artist", "Spotify Title", "https://img/spotify.jpg"),
		"TIDAL_SONG::3":   entity("tidal", "Tidal Artist", "Tidal Title", "https://img/tidal.jpg"),
	}

	priority := effectivePriority(resp)
	if got, want := len(priority), len(sourcePriority); got != want {
		t.Fatalf("len(effectivePriority) = %d, want %d (no duplicate appended)", got, want)
	}

	share, err := Reconcile(resp)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	// spotify still outranks tidal at its true index.
	if share.Metadata.Artist != "Spotify Artist" {
		t.Errorf("Artist = %q, want %q", share.Metadata.Artist, "Spotify Artist")
	}
}

func TestReconcile_TieKeepsFirstEncountered(t *testing.T) {
	// Two records from the same provider under different IDs: the first in
	// the deterministic scan order (sorted IDs) must win.
	resp := validResponse()
	resp.EntityUniqueID = "SPOTIFY_SONG::a"
	resp.EntitiesByUniqueID = map[string]Entity{
		"SPOTIFY_SONG::a": entity("spotify", "First Artist", "First Title", "https://img/a.jpg"),
		"SPOTIFY_SONG::b": entity("spotify", "Second Artist", "Second Title", "https://img/b.jpg"),
	}

	share, err := Reconcile(resp)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if share.Metadata.Artist != "First Artist" {
		t.Errorf("Artist = %q, want %q (first encountered must win the tie)", share.Metadata.Artist, "First Artist")
	}
}

func TestReconcile_PartialRecordsAreSkipped(t *testing.T) {
	resp := validResponse()
	resp.EntityUniqueID = "SPOTIFY_SONG::2"
	resp.EntitiesByUniqueID = map[string]Entity{
		// Best priority but missing its thumbnail: must not contribute and
		// must not poison the search.
		"ITUNES_SONG::1":  entity("itunes", "iTunes Artist", "iTunes Title", ""),
		"SPOTIFY_SONG::2": entity("spotify", "Spotify Artist", "Spotify Title", "https://img/spotify.jpg"),
	}

	share, err := Reconcile(resp)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if share.Metadata.Artist != "Spotify Artist" {
		t.Errorf("Artist = %q, want %q", share.Metadata.Artist, "Spotify Artist")
	}
}

func TestReconcile_NoQualifyingRecord(t *testing.T) {
	// Unranked providers only: canonical metadata stays empty, which is a
	// legitimate end state rather than an error.
	resp := validResponse()
	resp.EntityUniqueID = "NAPSTER_SONG::1"
	resp.EntitiesByUniqueID = map[string]Entity{
		"NAPSTER_SONG::1": {Type: "song", APIProvider: "napster"},
	}

	share, err := Reconcile(resp)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if share.Metadata != (Metadata{}) {
		t.Errorf("Metadata = %+v, want all empty", share.Metadata)
	}
	if share.PageURL != resp.PageURL {
		t.Errorf("PageURL = %q, want %q", share.PageURL, resp.PageURL)
	}
}

func TestReconcile_LinkOrdering(t *testing.T) {
	resp := validResponse()
	resp.LinksByPlatform = map[string]PlatformMatch{
		"spotify":  {URL: "https://open.spotify.com/track/abc"},
		"unknownx": {URL: "https://unknownx.example/track/1"},
		"itunes":   {URL: "https://music.apple.com/us/album/1"},
		"youtube":  {URL: "https://youtu.be/xyz"},
	}

	share, err := Reconcile(resp)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	got := make([]string, 0, len(share.Links))
	for _, l := range share.Links {
		got = append(got, l.Name)
	}

	// Case-insensitive ordering on the rendered display name; the unknown
	// platform keeps its raw identifier as name.
	want := []string{"iTunes", "Spotify", "unknownx", "YouTube"}
	if len(got) != len(want) {
		t.Fatalf("len(Links) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Links[%d].Name = %q, want %q (full order %v)", i, got[i], want[i], got)
		}
	}
}
