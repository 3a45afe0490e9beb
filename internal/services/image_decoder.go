package services

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

// PNGContentType is used for every stored image regardless of the declared format.
const PNGContentType = "image/png"

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

type DecodedImage struct {
	Bytes       []byte
	ContentType string
}

// DecodeImage strips an optional data URI header and base64-decodes the rest.
// field names the payload in the returned DecodeError.
func DecodeImage(field, payload string) (*DecodedImage, error) {
	raw := dataURIPrefix.ReplaceAllString(strings.TrimSpace(payload), "")
	raw = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, raw)
	if raw == "" {
		return nil, &DecodeError{Field: field, Err: errors.New("empty image payload")}
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "="))
		if rawErr != nil {
			return nil, &DecodeError{Field: field, Err: err}
		}
	}
	if len(data) == 0 {
		return nil, &DecodeError{Field: field, Err: errors.New("decoded image is empty")}
	}
	return &DecodedImage{Bytes: data, ContentType: PNGContentType}, nil
}
