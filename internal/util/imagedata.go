package util

import (
	"encoding/base64"
	"errors"
	"strings"
)

// MaxImageBytes caps a decoded evidence photo or illustration.
const MaxImageBytes = 8 << 20

var (
	ErrNotImageData  = errors.New("image must be a base64 data:image/... URL")
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// ParseImageData splits a data URL of the form data:image/<type>;base64,<payload>
// and returns the media type and decoded size.
func ParseImageData(s string) (mediaType string, size int, err error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", 0, ErrNotImageData
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", 0, ErrNotImageData
	}
	mediaType, ok = strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(mediaType, "image/") || len(mediaType) == len("image/") {
		return "", 0, ErrNotImageData
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return "", 0, ErrImageTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", 0, ErrNotImageData
	}
	if len(raw) > MaxImageBytes {
		return "", 0, ErrImageTooLarge
	}
	return mediaType, len(raw), nil
}

func IsImageData(s string) bool {
	_, _, err := ParseImageData(s)
	return err == nil
}
