package base64

import (
	stdBase64 "encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	dataPrefix   = "data:"
	base64Marker = ";base64,"
)

var ErrInvalidDataURI = errors.New("image must be a base64 data uri")

// GetContentType returns the media type of a data URI such as "data:image/png;base64,...",
// or an empty string when file is not one.
func GetContentType(file string) string {
	if !strings.HasPrefix(file, dataPrefix) {
		return ""
	}

	end := strings.Index(file, base64Marker)
	if end == -1 {
		return ""
	}

	return file[len(dataPrefix):end]
}

// Decode splits a base64 data URI into its media type and payload.
func Decode(dataURI string) (contentType string, data []byte, err error) {
	contentType = GetContentType(dataURI)
	if contentType == "" {
		return "", nil, ErrInvalidDataURI
	}

	payload := dataURI[strings.Index(dataURI, base64Marker)+len(base64Marker):]

	data, err = stdBase64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}

	return contentType, data, nil
}
