package release

import "strings"

// Field selects which payload field a version string is derived from.
type Field string

// Version source fields.
const (
	FieldTag  Field = "tag"
	FieldName Field = "name"
)

// Rule configures how a display version is derived from a release.
// Rules are pure per-resource configuration with no shared state.
type Rule struct {
	// Prefer names the field tried first. Empty means FieldTag.
	Prefer Field `json:"prefer,omitempty" toml:"prefer"`

	// StripV removes one leading "v" or "V" from the derived version.
	StripV bool `json:"strip_v,omitempty" toml:"strip_v"`
}

// Version derives the display version for rel according to rule.
//
// The preferred field is tried first; if it holds no usable text, the tag
// field and then the name field are tried, in that fixed order. The chosen
// value is trimmed of surrounding whitespace and, if rule.StripV is set,
// stripped of exactly one leading case-insensitive "v" ("vv1.0" keeps one).
//
// Returns ok=false when no usable value remains. A payload without a
// version is a valid "no data" outcome, not an error.
func Version(rel *Release, rule Rule) (string, bool) {
	if rel == nil {
		return "", false
	}
	v := firstUsable(fieldValue(rel, rule.Prefer), rel.TagName, rel.Name)
	if rule.StripV && v != "" && (v[0] == 'v' || v[0] == 'V') {
		v = v[1:]
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// PrimaryAssetURL returns the download URL of the first release asset.
//
// Returns ok=false when there are no assets or the first asset has no URL.
// Only the first asset is considered; there is no selection by name or type.
func PrimaryAssetURL(rel *Release) (string, bool) {
	if rel == nil || len(rel.Assets) == 0 {
		return "", false
	}
	url := rel.Assets[0].BrowserDownloadURL
	if url == "" {
		return "", false
	}
	return url, true
}

func fieldValue(rel *Release, f Field) string {
	if f == FieldName {
		return rel.Name
	}
	return rel.TagName
}

// firstUsable returns the first candidate with non-whitespace content, trimmed.
func firstUsable(candidates ...string) string {
	for _, c := range candidates {
		if v := strings.TrimSpace(c); v != "" {
			return v
		}
	}
	return ""
}
