package handlers

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voicehire/internal/session"
	"voicehire/internal/tts"
)

// Live channel message types. The browser owns the physical audio stack
// (room connection, microphone recognition, audio playback) and reports
// outcomes over the websocket; the server owns the session state machine.
const (
	// client -> server
	liveMsgConnected      = "connected"
	liveMsgDisconnected   = "disconnected"
	liveMsgTransportError = "transport-error"
	liveMsgPartial        = "partial"
	liveMsgFinal          = "final"
	liveMsgCaptureEnded   = "capture-ended"
	liveMsgPlaybackDone   = "playback-ended"
	liveMsgPlaybackFailed = "playback-failed"
	liveMsgManual         = "manual"
	liveMsgExit           = "exit"

	// server -> client
	liveMsgPhase          = "phase"
	liveMsgTranscript     = "transcript"
	liveMsgSpeak          = "speak"
	liveMsgCaptureStart   = "capture-start"
	liveMsgCaptureStop    = "capture-stop"
	liveMsgManualRequired = "manual-required"
	liveMsgWarning        = "warning"
	liveMsgSnapshot       = "snapshot"
	liveMsgError          = "error"
)

// liveMessage is the single envelope for both directions of the channel.
type liveMessage struct {
	Type          string            `json:"type"`
	Text          string            `json:"text,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	State         string            `json:"state,omitempty"`
	QuestionIndex int               `json:"questionIndex,omitempty"`
	AudioURL      string            `json:"audioUrl,omitempty"`
	Message       string            `json:"message,omitempty"`
	Entry         *session.Entry    `json:"entry,omitempty"`
	Snapshot      *session.Snapshot `json:"snapshot,omitempty"`
}

// liveAdapter backs all three session adapter contracts with one websocket.
// Each Start/Speak call opens a fresh event stream; client messages are
// routed to the current stream by the read loop. Streams orphaned by the
// controller advancing are closed on the next call, and the controller's
// generation check discards anything they emitted late.
type liveAdapter struct {
	conn   *websocket.Conn
	synth  tts.Synthesizer
	logger *zap.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	transport chan session.TransportEvent
	capture   chan session.CaptureEvent
	playback  chan session.PlaybackEvent
	closed    bool
}

var (
	_ session.Transport = (*liveAdapter)(nil)
	_ session.Capture   = (*liveAdapter)(nil)
	_ session.Playback  = (*liveAdapter)(nil)
	_ session.Listener  = (*liveAdapter)(nil)
)

func newLiveAdapter(conn *websocket.Conn, synth tts.Synthesizer, logger *zap.Logger) *liveAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &liveAdapter{
		conn:   conn,
		synth:  synth,
		logger: logger,
		// Created eagerly so a fast client's "connected" report is never
		// lost between the upgrade and the controller's Connect call.
		transport: make(chan session.TransportEvent, 8),
	}
}

func (a *liveAdapter) send(msg liveMessage) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return a.conn.WriteJSON(msg)
}

// Connect hands the controller the transport event stream. The browser has
// already been told how to join the room; its "connected" report is what
// moves the session out of Connecting.
func (a *liveAdapter) Connect(ctx context.Context, cred session.Credential) (<-chan session.TransportEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transport, nil
}

// Close stops routing adapter events. The websocket itself belongs to the
// HTTP handler, which closes it after the final snapshot is delivered.
func (a *liveAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.capture != nil {
		close(a.capture)
		a.capture = nil
	}
	if a.playback != nil {
		close(a.playback)
		a.playback = nil
	}
	return nil
}

func (a *liveAdapter) Start(ctx context.Context) (<-chan session.CaptureEvent, error) {
	a.mu.Lock()
	if a.capture != nil {
		close(a.capture)
	}
	ch := make(chan session.CaptureEvent, 8)
	a.capture = ch
	a.mu.Unlock()

	if err := a.send(liveMessage{Type: liveMsgCaptureStart}); err != nil {
		return nil, err
	}
	return ch, nil
}

func (a *liveAdapter) Stop() {
	a.mu.Lock()
	if a.capture != nil {
		close(a.capture)
		a.capture = nil
	}
	a.mu.Unlock()
	if err := a.send(liveMessage{Type: liveMsgCaptureStop}); err != nil {
		a.logger.Debug("capture stop not delivered", zap.Error(err))
	}
}

// Speak asks the browser to play the question aloud. Synthesis runs off the
// controller loop; if it yields no audio the browser falls back to its own
// speech synthesis or a silent wait.
func (a *liveAdapter) Speak(ctx context.Context, text string) (<-chan session.PlaybackEvent, error) {
	a.mu.Lock()
	if a.playback != nil {
		close(a.playback)
	}
	ch := make(chan session.PlaybackEvent, 4)
	a.playback = ch
	a.mu.Unlock()

	go func() {
		msg := liveMessage{Type: liveMsgSpeak, Text: text}
		if a.synth != nil && a.synth.Configured() {
			audioURL, err := a.synth.Synthesize(ctx, text)
			if err != nil {
				a.logger.Warn("speech synthesis failed", zap.Error(err))
			} else {
				msg.AudioURL = audioURL
			}
		}
		if err := a.send(msg); err != nil {
			a.postPlayback(session.PlaybackEvent{Kind: session.PlaybackFailed, Err: err})
		}
	}()
	return ch, nil
}

func (a *liveAdapter) postTransport(ev session.TransportEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.transport == nil {
		return
	}
	select {
	case a.transport <- ev:
	default:
		a.logger.Warn("transport event dropped, stream full")
	}
}

func (a *liveAdapter) postCapture(ev session.CaptureEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.capture == nil {
		return
	}
	select {
	case a.capture <- ev:
	default:
		a.logger.Warn("capture event dropped, stream full")
	}
}

func (a *liveAdapter) postPlayback(ev session.PlaybackEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.playback == nil {
		return
	}
	select {
	case a.playback <- ev:
	default:
	}
}

func (a *liveAdapter) endCapture() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.capture != nil {
		close(a.capture)
		a.capture = nil
	}
}

// readLoop routes browser reports into the session until the socket closes.
// A dropped connection is treated as the candidate leaving: the session
// exits and the interview stays resumable.
func (a *liveAdapter) readLoop(ctrl *session.Controller) {
	for {
		var msg liveMessage
		if err := a.conn.ReadJSON(&msg); err != nil {
			ctrl.Exit()
			return
		}

		switch msg.Type {
		case liveMsgConnected:
			a.postTransport(session.TransportEvent{Kind: session.TransportConnected})
		case liveMsgDisconnected:
			a.postTransport(session.TransportEvent{Kind: session.TransportDisconnected})
		case liveMsgTransportError:
			a.postTransport(session.TransportEvent{
				Kind: session.TransportFailed,
				Err:  &session.TransportError{Reason: session.TransportErrorReason(msg.Reason)},
			})
		case liveMsgPartial:
			a.postCapture(session.CaptureEvent{Kind: session.CapturePartial, Text: msg.Text})
		case liveMsgFinal:
			a.postCapture(session.CaptureEvent{Kind: session.CaptureFinal, Text: msg.Text})
		case liveMsgCaptureEnded:
			a.endCapture()
		case liveMsgPlaybackDone:
			a.postPlayback(session.PlaybackEvent{Kind: session.PlaybackEnded})
		case liveMsgPlaybackFailed:
			a.postPlayback(session.PlaybackEvent{Kind: session.PlaybackFailed})
		case liveMsgManual:
			if err := ctrl.SubmitAnswer(msg.Text); err != nil {
				if sendErr := a.send(liveMessage{Type: liveMsgError, Message: err.Error()}); sendErr != nil {
					return
				}
			}
		case liveMsgExit:
			ctrl.Exit()
		default:
			a.logger.Debug("unknown live message", zap.String("type", msg.Type))
		}
	}
}

// Listener methods push session progress back to the browser.

func (a *liveAdapter) OnPhase(state session.State, questionIndex int) {
	_ = a.send(liveMessage{Type: liveMsgPhase, State: state.String(), QuestionIndex: questionIndex})
}

func (a *liveAdapter) OnTranscript(e session.Entry) {
	_ = a.send(liveMessage{Type: liveMsgTranscript, Entry: &e})
}

func (a *liveAdapter) OnPartial(questionIndex int, text string) {}

func (a *liveAdapter) OnCaptureRestart(questionIndex, attempt int) {}

func (a *liveAdapter) OnPlaybackFallback(questionIndex int) {}

func (a *liveAdapter) OnManualRequired(questionIndex int) {
	_ = a.send(liveMessage{Type: liveMsgManualRequired, QuestionIndex: questionIndex,
		Message: "We couldn't hear you. Please type your answer instead."})
}

func (a *liveAdapter) OnWarning(message string) {
	_ = a.send(liveMessage{Type: liveMsgWarning, Message: message})
}
