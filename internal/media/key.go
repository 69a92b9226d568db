package media

import (
	"regexp"
	"strings"
)

const uploadMarker = "/upload/"

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ExtractKey derives the storage public ID from a Cloudinary delivery
// URL. The public ID is everything after the "/upload/" marker, minus
// the optional "v<digits>" version segment and the file extension.
// Returns false when the input carries no marker or nothing remains
// after stripping; it never panics on garbage input.
func ExtractKey(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	if idx := strings.IndexAny(rawURL, "?#"); idx >= 0 {
		rawURL = rawURL[:idx]
	}

	idx := strings.Index(rawURL, uploadMarker)
	if idx < 0 {
		return "", false
	}
	rest := rawURL[idx+len(uploadMarker):]
	if rest == "" {
		return "", false
	}

	segments := strings.Split(rest, "/")
	if versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	key := strings.Join(segments, "/")

	if dot := strings.LastIndex(key, "."); dot > strings.LastIndex(key, "/") {
		key = key[:dot]
	}
	if key == "" {
		return "", false
	}
	return key, true
}

// IsVideo reports whether an asset reference points at the video
// pipeline. Gallery videos live under a "/videos/" path segment.
func IsVideo(ref string) bool {
	return strings.Contains(ref, "/videos/")
}
