package encode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	original := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	encoded := EncodeBase64String(original)
	decoded, err := DecodeBase64String(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}
