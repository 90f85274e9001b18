package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voicehire/internal/livekit"
	"voicehire/internal/metrics"
	"voicehire/internal/models"
	"voicehire/internal/repositories"
	"voicehire/internal/rooms"
	"voicehire/internal/session"
	"voicehire/internal/tts"
	"voicehire/internal/utils"
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LiveHandler runs interview sessions over a websocket. On connect it
// creates or resumes the candidate's interview, builds a session controller
// wired to the socket, and streams session progress until either side ends.
type LiveHandler struct {
	Candidates  *repositories.CandidateRepository
	Interviews  *repositories.InterviewRepository
	Transcripts *repositories.TranscriptRepository
	Registry    *rooms.Registry
	Tokens      *livekit.TokenIssuer
	Synth       tts.Synthesizer
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	SessionCfg  session.Config
}

func NewLiveHandler(
	candidates *repositories.CandidateRepository,
	interviews *repositories.InterviewRepository,
	transcripts *repositories.TranscriptRepository,
	registry *rooms.Registry,
	tokens *livekit.TokenIssuer,
	synth tts.Synthesizer,
	m *metrics.Metrics,
	logger *zap.Logger,
	sessionCfg session.Config,
) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{
		Candidates:  candidates,
		Interviews:  interviews,
		Transcripts: transcripts,
		Registry:    registry,
		Tokens:      tokens,
		Synth:       synth,
		Metrics:     m,
		Logger:      logger,
		SessionCfg:  sessionCfg,
	}
}

func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "accessToken")
	candidate, err := h.Candidates.GetCandidateByAccessToken(token)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code: "invalid_link", Message: "This interview link is not valid. Please contact your recruiter.",
			})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to resolve interview link",
		})
		return
	}

	questions := questionsFor(candidate)
	if len(questions) == 0 {
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code: "no_questions", Message: "This interview has no questions configured.",
		})
		return
	}

	if err := h.Registry.Acquire(r.Context(), candidate.ID); err != nil {
		if errors.Is(err, rooms.ErrSessionActive) {
			utils.JSON(w, http.StatusConflict, models.ErrorResponse{
				Code: "session_active", Message: "An interview session is already running for this link.",
			})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lock_failed", Message: "failed to start interview session",
		})
		return
	}

	interview, err := h.Interviews.CreateOrResume(candidate.ID)
	if err != nil {
		h.Registry.Release(r.Context(), candidate.ID)
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "start_failed", Message: "failed to start interview",
		})
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Registry.Release(context.Background(), candidate.ID)
		h.Logger.Warn("live channel upgrade failed", zap.Error(err))
		return
	}

	if err := h.Candidates.UpdateStatus(candidate.ID, models.CandidateStatusInProgress); err != nil {
		h.Logger.Warn("failed to mark candidate in progress",
			zap.Uint("candidate_id", candidate.ID), zap.Error(err))
	}

	var cred session.Credential
	if h.Tokens.Configured() {
		if joinToken, err := h.Tokens.Mint(interview.RoomName, candidate.Name); err == nil {
			cred = session.Credential{Token: joinToken, URL: h.Tokens.URL(), RoomName: interview.RoomName}
		}
	} else {
		cred = session.Credential{RoomName: interview.RoomName}
	}

	adapter := newLiveAdapter(conn, h.Synth, h.Logger)
	var listener session.Listener = adapter
	if h.Metrics != nil {
		listener = h.Metrics.Listen(adapter)
	}

	ctrl := session.New(h.SessionCfg,
		session.Interview{
			ID:          interview.ID,
			CandidateID: candidate.ID,
			Status:      interview.Status,
			RoomName:    interview.RoomName,
		},
		questions,
		cred,
		session.Deps{
			Logger:      h.Logger,
			Transport:   adapter,
			Capture:     adapter,
			Playback:    adapter,
			Store:       newSessionStore(h.Interviews, h.Candidates),
			Transcripts: h.meteredAppender(),
			Listener:    listener,
		})
	// The socket may outlive the request; the session gets its own context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := adapter.send(liveMessage{Type: liveMsgSnapshot, Snapshot: snapshotOf(ctrl)}); err != nil {
		h.Registry.Release(context.Background(), candidate.ID)
		conn.Close()
		return
	}

	if err := ctrl.Start(ctx); err != nil {
		_ = adapter.send(liveMessage{Type: liveMsgError, Message: err.Error()})
		h.Registry.Release(context.Background(), candidate.ID)
		conn.Close()
		return
	}
	// Registered only once the loop is running, so the registry's watcher
	// always observes a Done channel that will close.
	h.Registry.Put(candidate.ID, ctrl)
	if h.Metrics != nil {
		h.Metrics.SessionStarted()
		defer h.Metrics.SessionEnded()
	}
	h.Logger.Info("live interview session started",
		zap.Uint("candidate_id", candidate.ID),
		zap.Uint("interview_id", interview.ID),
		zap.Int("questions", len(questions)))

	// Deliver the final snapshot once the session ends, then close the
	// socket so the read loop unblocks.
	go func() {
		<-ctrl.Done()
		_ = adapter.send(liveMessage{Type: liveMsgSnapshot, Snapshot: snapshotOf(ctrl)})
		conn.Close()
	}()

	adapter.readLoop(ctrl)
	cancel()
	<-ctrl.Done()
	conn.Close()
}

func snapshotOf(ctrl *session.Controller) *session.Snapshot {
	snap := ctrl.Snapshot()
	return &snap
}

// meteredAppender counts persistence failures without coupling the
// repository to metrics.
func (h *LiveHandler) meteredAppender() session.TranscriptAppender {
	if h.Metrics == nil {
		return h.Transcripts
	}
	return &countingAppender{next: h.Transcripts, metrics: h.Metrics}
}

type countingAppender struct {
	next    session.TranscriptAppender
	metrics *metrics.Metrics
}

func (a *countingAppender) Append(ctx context.Context, interviewID uint, speaker models.Speaker, message string, questionIndex *int) error {
	err := a.next.Append(ctx, interviewID, speaker, message, questionIndex)
	if err != nil {
		a.metrics.TranscriptAppendFailed()
	}
	return err
}
