package hf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imagesmith/imagesmith/internal/imagelink/driver"
)

func TestClientGenerateImageSendsRequestAndReturnsBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/black-forest-labs/FLUX.1-schnell", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "a red fox", payload["inputs"])

		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.GenerateImage(context.Background(), &driver.ImageRequest{
		Model:  "black-forest-labs/FLUX.1-schnell",
		Prompt: "a red fox",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, []byte("jpeg-bytes"), resp.Bytes)
	require.Equal(t, "image/jpeg", resp.ContentType)
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.GenerateImage(context.Background(), &driver.ImageRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClientRequiresModelAndPrompt(t *testing.T) {
	client := NewClient("", "test-key")

	_, err := client.GenerateImage(context.Background(), &driver.ImageRequest{Model: "m"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "prompt")

	_, err = client.GenerateImage(context.Background(), &driver.ImageRequest{Prompt: "p"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model is loading"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.GenerateImage(context.Background(), &driver.ImageRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)

	var provErr *driver.ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode)
	require.Contains(t, provErr.Message, "model is loading")
}

func TestClientRejects2xxJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"estimated_time":20.0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	_, err := client.GenerateImage(context.Background(), &driver.ImageRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected binary image payload")
}

func TestClientDefaultsContentTypeWhenHeaderMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.GenerateImage(context.Background(), &driver.ImageRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "image/png", resp.ContentType)
}
