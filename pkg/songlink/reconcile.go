package songlink

import (
	"sort"
	"strings"
)

// Reconcile merges the per-platform records of a resolution response into a
// single Share: a display-name-sorted link list, the canonical metadata
// chosen via the provider priority policy, and the page URL.
//
// The required top-level fields must all be present; a missing one returns a
// *MissingFieldError naming it. Gaps inside individual entity records are
// non-fatal and only exclude that record from contributing.
func Reconcile(resp *Response) (*Share, error) {
	if err := checkRequiredFields(resp); err != nil {
		return nil, err
	}

	return &Share{
		Metadata: selectCanonical(resp),
		Links:    buildLinks(resp.LinksByPlatform),
		PageURL:  resp.PageURL,
	}, nil
}

func checkRequiredFields(resp *Response) error {
	switch {
	case resp.LinksByPlatform == nil:
		return &MissingFieldError{Field: "linksByPlatform"}
	case resp.EntitiesByUniqueID == nil:
		return &MissingFieldError{Field: "entitiesByUniqueId"}
	case resp.EntityUniqueID == "":
		return &MissingFieldError{Field: "entityUniqueId"}
	case resp.PageURL == "":
		return &MissingFieldError{Field: "pageUrl"}
	}
	return nil
}

// buildLinks renders one Link per platform entry, sorted ascending by
// display name using an uppercase-normalized ordinal comparison. The sort
// keeps the output stable and locale-independent regardless of map
// iteration order.
func buildLinks(byPlatform map[string]PlatformMatch) []Link {
	links := make([]Link, 0, len(byPlatform))
	for platform, match := range byPlatform {
		links = append(links, Link{
			Platform: platform,
			Name:     DisplayName(platform),
			URL:      match.URL,
		})
	}

	sort.Slice(links, func(i, j int) bool {
		a, b := strings.ToUpper(links[i].Name), strings.ToUpper(links[j].Name)
		if a != b {
			return a < b
		}
		return links[i].Platform < links[j].Platform
	})

	return links
}

// effectivePriority returns the provider preference list for this response:
// the fixed priority list with the resolving entity's provider appended as
// the lowest explicit priority. A provider already ranked is not appended
// again, so the duplicate can never shadow its true (better) index.
func effectivePriority(resp *Response) []string {
	priority := sourcePriority

	resolving, ok := resp.EntitiesByUniqueID[resp.EntityUniqueID]
	if !ok || resolving.APIProvider == "" {
		return priority
	}
	for _, p := range priority {
		if p == resolving.APIProvider {
			return priority
		}
	}

	extended := make([]string, 0, len(priority)+1)
	extended = append(extended, priority...)
	return append(extended, resolving.APIProvider)
}

// selectCanonical picks the single metadata record with the best (lowest)
// priority index. Entity IDs are scanned in sorted order so the outcome is
// deterministic; on equal priority the first-encountered record wins.
// Records whose provider is unranked, or which lack any of artist, title or
// thumbnail, are skipped without aborting the search. When nothing
// qualifies the returned Metadata is all-empty.
func selectCanonical(resp *Response) Metadata {
	priority := effectivePriority(resp)

	ids := make([]string, 0, len(resp.EntitiesByUniqueID))
	for id := range resp.EntitiesByUniqueID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var chosen Metadata
	best := len(priority) // worse than every valid index
	for _, id := range ids {
		entity := resp.EntitiesByUniqueID[id]

		rank := priorityIndex(priority, entity.APIProvider)
		if rank < 0 || rank >= best {
			continue
		}
		if entity.ArtistName == "" || entity.Title == "" || entity.ThumbnailURL == "" {
			continue
		}

		chosen = Metadata{
			Artist:       entity.ArtistName,
			Title:        entity.Title,
			ThumbnailURL: entity.ThumbnailURL,
		}
		best = rank
		if best == 0 {
			break
		}
	}

	return chosen
}

func priorityIndex(priority []string, provider string) int {
	for i, p := range priority {
		if p == provider {
			return i
		}
	}
	return -1
}
