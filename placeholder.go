package docmerge

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SignatureKey is the reserved variable holding a signature image data URI.
const SignatureKey = "signature"

// imageDataURIPrefix marks a signature value as an embeddable image.
const imageDataURIPrefix = "data:image"

// markerPrefix starts every signature marker token.
const markerPrefix = "SIGNATURE_MARKER_"

// Variables maps placeholder names to replacement values.
type Variables map[string]string

// Tag returns the placeholder text for name, e.g. "{{name}}".
func Tag(name string) string {
	return "{{" + name + "}}"
}

// textKeys returns every key except SignatureKey in sorted order so batches
// are deterministic.
func (v Variables) textKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		if k == SignatureKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// signatureImage returns the signature value when it is an image data URI.
func (v Variables) signatureImage() (string, bool) {
	sig, ok := v[SignatureKey]
	if !ok || !strings.HasPrefix(sig, imageDataURIPrefix) {
		return "", false
	}
	return sig, true
}

// DecodeDataURI decodes the base64 payload after the first comma of a data
// URI and reports the declared media type ("image/png" when absent).
func DecodeDataURI(uri string) (data []byte, mimeType string, err error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, "", fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mimeType = MimeTypePNG
	if mt, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";"); strings.HasPrefix(mt, "image/") {
		mimeType = mt
	}
	data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}
	return data, mimeType, nil
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// newMarker returns a marker token unique to now.
func newMarker(now time.Time) string {
	return markerPrefix + strconv.FormatInt(now.UnixNano(), 10)
}

// scratchName builds the scratch document name from prefix and now.
func scratchName(prefix string, now time.Time) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// thumbnailSize matches the size suffix of a thumbnail URL.
var thumbnailSize = regexp.MustCompile(`=s\d+$`)

// Image URL constants.
const (
	largeThumbnailSuffix = "=s1000"
	publicViewURL        = "https://drive.google.com/uc?export=view&id="
)

// imageURL resolves a fetchable URL for an uploaded image, preferring the
// thumbnail link at a large fixed size.
func imageURL(img *UploadedImage) string {
	if img.ThumbnailLink == "" {
		return publicViewURL + img.ID
	}
	if thumbnailSize.MatchString(img.ThumbnailLink) {
		return thumbnailSize.ReplaceAllString(img.ThumbnailLink, largeThumbnailSuffix)
	}
	return img.ThumbnailLink
}
