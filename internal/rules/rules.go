// Package rules holds the pure decision logic shared by places, routes and
// visits: who may see or change an entity, when a publish request is clamped,
// and how visit progress along a route is projected. It does no I/O so every
// rule is testable without a database.
package rules

import (
	"net/url"
	"strings"
)

// PublishThreshold is the number of points an author needs before their
// places and routes may be made public.
const PublishThreshold = 100

// CanView reports whether the caller may read an entity: public entities are
// visible to everyone, private ones only to their author.
func CanView(callerID, authorID string, public bool) bool {
	return public || callerID == authorID
}

// CanMutate reports whether the caller may edit or delete an entity.
func CanMutate(callerID, authorID string) bool {
	return callerID == authorID
}

// ResolvePublicFlag applies the publish gate. A request to publish by an
// author below the threshold is silently downgraded to private, never
// rejected.
func ResolvePublicFlag(points int, requested bool) bool {
	return requested && points >= PublishThreshold
}

// ProgressPrefix returns the length of the longest prefix of ordered place
// ids whose every member has been visited. A gap caps progress regardless of
// visits further along the route.
func ProgressPrefix(ordered []string, visited map[string]bool) int {
	progress := 0
	for _, id := range ordered {
		if !visited[id] {
			break
		}
		progress++
	}
	return progress
}

// DirectionsURL builds a Google Maps directions link over the route's places
// in visiting order. Locations are the raw "lat,lng" strings; empty ones are
// skipped. Returns "" when fewer than two usable locations remain.
func DirectionsURL(locations []string) string {
	parts := make([]string, 0, len(locations))
	for _, loc := range locations {
		loc = strings.ReplaceAll(loc, " ", "")
		if loc == "" {
			continue
		}
		parts = append(parts, url.PathEscape(loc))
	}
	if len(parts) < 2 {
		return ""
	}
	return "https://www.google.com/maps/dir/" + strings.Join(parts, "/")
}
