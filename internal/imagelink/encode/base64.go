// Package encode holds transport encodings for image payloads.
package encode

import (
	"encoding/base64"
)

func EncodeBase64String(value []byte) string {
	return base64.StdEncoding.EncodeToString(value)
}

func DecodeBase64String(value string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(value)
}
