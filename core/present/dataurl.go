package present

import (
	"errors"
	"net/url"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

var ErrNotDataURL = errors.New("evidence is not an inline data url")

// DecodeDataURL splits an inline `data:` reference into its lower-cased
// media type and bytes.
func DecodeDataURL(ref string) (string, []byte, error) {
	ref = strings.TrimSpace(ref)
	if len(ref) < 5 || !strings.EqualFold(ref[:5], "data:") {
		return "", nil, ErrNotDataURL
	}
	du, err := dataurl.DecodeString(ref)
	if err != nil {
		return "", nil, err
	}
	return strings.ToLower(du.MediaType.ContentType()), du.Data, nil
}

// ServableImage reports whether a decoded media type may be served inline.
// SVG is refused because it can carry script.
func ServableImage(mediaType string) bool {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return strings.HasPrefix(mediaType, "image/") && !strings.Contains(mediaType, "svg")
}

// IsRemoteURL reports whether evidence points to an http(s) resource instead of inline data.
func IsRemoteURL(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return u.Scheme == "https" || u.Scheme == "http"
}
