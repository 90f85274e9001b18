package handlers

import (
	"errors"
	"net/http"

	"github.com/pion/webrtc/v3"

	"voicehire/internal/livekit"
	"voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/utils"
)

// TokenHandler mints room join credentials and serves the WebRTC
// configuration for clients that connect to the media room directly.
type TokenHandler struct {
	Tokens     *livekit.TokenIssuer
	StunServer string
}

func NewTokenHandler(tokens *livekit.TokenIssuer, stunServer string) *TokenHandler {
	if stunServer == "" {
		stunServer = "stun:stun.l.google.com:19302"
	}
	return &TokenHandler{Tokens: tokens, StunServer: stunServer}
}

// IssueToken returns a join credential for the requested room. Without both
// the token and the URL the client must not attempt to connect.
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.TokenRequest](r)

	token, err := h.Tokens.Mint(req.RoomName, req.ParticipantName)
	if err != nil {
		if errors.Is(err, livekit.ErrNotConfigured) {
			utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
				Code: "media_unconfigured", Message: "interview room service is not configured",
			})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "mint_failed", Message: "failed to mint room token",
		})
		return
	}
	utils.JSON(w, http.StatusOK, models.TokenResponse{Token: token, WsURL: h.Tokens.URL()})
}

// WebRTCConfig returns the ICE servers clients should use when joining the
// room peer-to-peer.
func (h *TokenHandler) WebRTCConfig(w http.ResponseWriter, r *http.Request) {
	cfg := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{h.StunServer}},
		},
	}
	utils.JSON(w, http.StatusOK, cfg)
}
