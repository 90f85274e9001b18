package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeReturnsDataURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Tell me about yourself", body["text"])

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3bytes"))
	}))
	defer srv.Close()

	client := NewPiperClient(srv.URL)
	uri, err := client.Synthesize(context.Background(), "Tell me about yourself")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:audio/mpeg;base64,"))
}

func TestSynthesizeUnconfigured(t *testing.T) {
	client := NewPiperClient("")
	assert.False(t, client.Configured())

	_, err := client.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewPiperClient(srv.URL)
	_, err := client.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}
