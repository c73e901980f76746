// Package avatar builds avatar image URLs for display names.
// Rendering layers may use it to decorate rosters and message lists; it is
// a pure function of the name and carries no state.
package avatar

import "net/url"

const baseURL = "https://ui-avatars.com/api/"

// URL returns the avatar image URL for the given display name.
func URL(name string) string {
	return baseURL + "?name=" + url.QueryEscape(name) + "&background=random"
}
