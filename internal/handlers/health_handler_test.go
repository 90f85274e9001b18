package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicehire/internal/livekit"
	"voicehire/internal/testhelpers"
)

func TestHealthReportsComponentState(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	issuer := livekit.NewTokenIssuer("key", "secret", "ws://localhost:7880", 0)
	handler := NewHealthHandler(db, rdb, issuer, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Status     string          `json:"status"`
		Components map[string]bool `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.True(t, payload.Components["database"])
	assert.True(t, payload.Components["redis"])
	assert.True(t, payload.Components["livekit"])
	assert.False(t, payload.Components["tts"])
	assert.False(t, payload.Components["llm"])
}

func TestHealthDegradedWithoutDatabase(t *testing.T) {
	issuer := livekit.NewTokenIssuer("", "", "", 0)
	handler := NewHealthHandler(nil, nil, issuer, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.Health(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "degraded", payload.Status)
}
