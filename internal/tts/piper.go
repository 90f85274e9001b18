// Package tts renders question text as audio via an external Piper TTS
// server. Absence of a configured server is a degraded state, not an error:
// the session controller substitutes silent wait for spoken audio.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNotConfigured = errors.New("tts not configured")

// Synthesizer turns text into a playable data URI.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
	Configured() bool
}

// PiperClient calls a Piper HTTP server.
type PiperClient struct {
	baseURL string
	voice   string
	client  *http.Client
}

func NewPiperClient(baseURL string) *PiperClient {
	return &PiperClient{
		baseURL: baseURL,
		voice:   "amy_medium",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *PiperClient) Configured() bool {
	return p != nil && p.baseURL != ""
}

// Synthesize posts text to the Piper server and returns the audio as a
// data URI suitable for an <audio> element.
func (p *PiperClient) Synthesize(ctx context.Context, text string) (string, error) {
	if !p.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"text": text, "voice": p.voice})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tts server returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(audio) == 0 {
		return "", errors.New("tts server returned empty audio")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(audio), nil
}
