// Package session drives one interview from start to completion or failure,
// one question at a time, coordinating the transport, capture, and playback
// adapters and the transcript log. All state transitions happen on a single
// event loop; adapters and timers feed it through one channel, so no state
// is ever mutated concurrently.
package session

import (
	"context"
	"time"

	"voicehire/internal/models"
)

// Credential is the join credential for the interview's audio room. Both
// fields must be populated before Connect is attempted.
type Credential struct {
	Token    string
	URL      string
	RoomName string
}

// TransportErrorReason distinguishes connect-failure causes so the UI can
// present actionable guidance.
type TransportErrorReason string

const (
	TransportPermissionDenied TransportErrorReason = "permission-denied"
	TransportNotFound         TransportErrorReason = "not-found"
	TransportDeviceBusy       TransportErrorReason = "device-busy"
	TransportNetwork          TransportErrorReason = "network"
)

// TransportError is a classified transport failure. The controller never
// sees a raw transport exception, only one of these.
type TransportError struct {
	Reason TransportErrorReason
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Err.Error()
	}
	return string(e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage explains which subsystem failed and what the user can check.
func (e *TransportError) UserMessage() string {
	switch e.Reason {
	case TransportPermissionDenied:
		return "Microphone permission denied. Please allow microphone access and try again."
	case TransportNotFound:
		return "No microphone found. Please connect a microphone and try again."
	case TransportDeviceBusy:
		return "Microphone is already in use by another application. Please close other apps using the microphone."
	default:
		return "Connection to the interview room failed. Please check your network and try again."
	}
}

type TransportEventKind int

const (
	TransportConnected TransportEventKind = iota
	TransportReconnecting
	TransportDisconnected
	TransportParticipantJoined
	TransportParticipantLeft
	TransportQualityChanged
	TransportFailed
)

// TransportEvent is an asynchronous report from the audio transport.
// Only Disconnected and Failed force the session into a failed state;
// everything else is informational.
type TransportEvent struct {
	Kind        TransportEventKind
	Participant string
	Quality     string
	Err         *TransportError
}

// Transport establishes the bidirectional audio session. Connect returns a
// stream of events; the stream closing counts as a disconnect. Close must
// release the underlying device deterministically and be safe to call more
// than once.
type Transport interface {
	Connect(ctx context.Context, cred Credential) (<-chan TransportEvent, error)
	Close() error
}

type CaptureEventKind int

const (
	// CapturePartial is an interim recognition result, display-only.
	CapturePartial CaptureEventKind = iota
	// CaptureFinal is the recognized answer text.
	CaptureFinal
)

type CaptureEvent struct {
	Kind CaptureEventKind
	Text string
}

// Capture turns live microphone audio into text. The returned stream emits
// zero or more partial events and at most one final event; the stream
// closing without a final event means silence or a recognition error.
// Capture failure is never fatal to the interview.
type Capture interface {
	Start(ctx context.Context) (<-chan CaptureEvent, error)
	Stop()
}

type PlaybackEventKind int

const (
	PlaybackStarted PlaybackEventKind = iota
	PlaybackEnded
	PlaybackFailed
)

type PlaybackEvent struct {
	Kind PlaybackEventKind
	Err  error
}

// Playback renders a question as audible speech. A nil Playback is valid:
// the controller substitutes a silent wait. Speak failures degrade to the
// fallback timer, never to session failure.
type Playback interface {
	Speak(ctx context.Context, text string) (<-chan PlaybackEvent, error)
}

// Store persists interview status at phase boundaries.
type Store interface {
	MarkInterviewStarted(ctx context.Context, interviewID uint, at time.Time) error
	MarkInterviewCompleted(ctx context.Context, interviewID uint, at time.Time) error
	MarkInterviewFailed(ctx context.Context, interviewID uint, reason string) error
	MarkCandidateCompleted(ctx context.Context, candidateID uint) error
}

// TranscriptAppender is the durable mirror of the in-memory transcript.
// Appends are retried once and otherwise surfaced as warnings; the session
// keeps progressing either way.
type TranscriptAppender interface {
	Append(ctx context.Context, interviewID uint, speaker models.Speaker, message string, questionIndex *int) error
}

// Entry is one utterance in the in-memory transcript, the source of truth
// for the live UI.
type Entry struct {
	Speaker       models.Speaker `json:"speaker"`
	Message       string         `json:"message"`
	Timestamp     time.Time      `json:"timestamp"`
	QuestionIndex *int           `json:"questionIndex"`
}

// Listener observes phase transitions and transcript growth. Implementations
// must not block; they are invoked from the controller's event loop.
type Listener interface {
	OnPhase(state State, questionIndex int)
	OnTranscript(e Entry)
	OnPartial(questionIndex int, text string)
	OnCaptureRestart(questionIndex int, attempt int)
	OnPlaybackFallback(questionIndex int)
	OnManualRequired(questionIndex int)
	OnWarning(message string)
}

// NoopListener keeps the controller flow intact when nothing is observing.
type NoopListener struct{}

func (NoopListener) OnPhase(State, int) {}
func (NoopListener) OnTranscript(Entry) {}
func (NoopListener) OnPartial(int, string) {}
func (NoopListener) OnCaptureRestart(int, int) {}
func (NoopListener) OnPlaybackFallback(int) {}
func (NoopListener) OnManualRequired(int) {}
func (NoopListener) OnWarning(string) {}
