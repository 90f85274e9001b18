// Package livekit mints LiveKit-compatible room access tokens. Tokens are
// HS256 JWTs carrying a video grant, signed with the API secret, exactly the
// shape the LiveKit server verifies.
package livekit

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotConfigured = errors.New("livekit credentials not configured")

// VideoGrant describes what the holder may do inside a room.
type VideoGrant struct {
	RoomJoin     bool   `json:"roomJoin"`
	Room         string `json:"room"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// RoomTokenClaims is the LiveKit access-token claim set.
type RoomTokenClaims struct {
	Name  string     `json:"name"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

// TokenIssuer mints join credentials for interview rooms.
type TokenIssuer struct {
	apiKey    string
	apiSecret string
	url       string
	ttl       time.Duration
}

// NewTokenIssuer builds an issuer. Empty key or secret yields an issuer
// whose Mint always fails with ErrNotConfigured, so callers can surface an
// actionable message instead of handing out unusable credentials.
func NewTokenIssuer(apiKey, apiSecret, url string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenIssuer{apiKey: apiKey, apiSecret: apiSecret, url: url, ttl: ttl}
}

// Configured reports whether credentials are present.
func (t *TokenIssuer) Configured() bool {
	return t.apiKey != "" && t.apiSecret != ""
}

// URL returns the signalling endpoint clients connect to.
func (t *TokenIssuer) URL() string { return t.url }

// Mint creates a join token granting publish and subscribe in roomName for
// the given participant identity.
func (t *TokenIssuer) Mint(roomName, participantName string) (string, error) {
	if !t.Configured() {
		return "", ErrNotConfigured
	}

	now := time.Now()
	claims := RoomTokenClaims{
		Name: participantName,
		Video: VideoGrant{
			RoomJoin:     true,
			Room:         roomName,
			CanPublish:   true,
			CanSubscribe: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.apiKey,
			Subject:   participantName,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.apiSecret))
}

// ParseToken validates a minted token and returns its claims.
func (t *TokenIssuer) ParseToken(tokenString string) (*RoomTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RoomTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(t.apiSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*RoomTokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid room token")
	}
	return claims, nil
}
