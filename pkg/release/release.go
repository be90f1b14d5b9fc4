// Package release models "latest release" payloads and derives display
// values from them.
//
// The model mirrors the fields of the GitHub releases API that the board
// consumes. Payloads are not assumed homogeneous across repositories: any
// field except the tag may be missing or null, and normalization treats
// that as a valid "no data" outcome rather than an error.
package release

import "time"

// Release represents a published release from the releases API.
//
// Zero values: string fields are empty when the upstream field is missing
// or null, PublishedAt is nil, Assets is nil. A Release decoded from a
// valid payload always has at least one of TagName or Name set.
type Release struct {
	TagName     string     `json:"tag_name"`
	Name        string     `json:"name"`
	HTMLURL     string     `json:"html_url"`
	PublishedAt *time.Time `json:"published_at"`
	Prerelease  bool       `json:"prerelease"`
	Draft       bool       `json:"draft"`
	Assets      []Asset    `json:"assets"`
}

// Asset represents a downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Age returns the time elapsed since the release was published, relative
// to now. Returns 0 and false if the publish time is unknown.
func (r *Release) Age(now time.Time) (time.Duration, bool) {
	if r == nil || r.PublishedAt == nil {
		return 0, false
	}
	return now.Sub(*r.PublishedAt), true
}
