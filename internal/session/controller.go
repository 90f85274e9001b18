package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"voicehire/internal/models"
)

// State is the session controller's lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAsking
	StateListening
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAsking:
		return "asking"
	case StateListening:
		return "listening"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrNoQuestions    = errors.New("candidate has no questions")
	ErrBadStatus      = errors.New("interview is not pending or in progress")
	ErrNotRunning     = errors.New("session is not running")
	ErrEmptyAnswer    = errors.New("answer must not be empty")
	ErrAlreadyStarted = errors.New("session already started")
)

// Config carries the timing and retry knobs for one session.
type Config struct {
	// PlaybackFallback bounds how long Asking waits for a playback-ended
	// signal before listening starts anyway.
	PlaybackFallback time.Duration
	// InterQuestionPause is the gap between an accepted answer and the
	// next question.
	InterQuestionPause time.Duration
	// CaptureRestartCap bounds automatic capture restarts per question;
	// past the cap the session requires manual submission.
	CaptureRestartCap int
	// CaptureRestartBackoff is the delay before each automatic restart.
	CaptureRestartBackoff time.Duration
	// ListeningCap is the hard wall-clock bound on one Listening phase.
	ListeningCap time.Duration
}

func (c Config) withDefaults() Config {
	if c.PlaybackFallback <= 0 {
		c.PlaybackFallback = 2 * time.Second
	}
	if c.InterQuestionPause <= 0 {
		c.InterQuestionPause = time.Second
	}
	if c.CaptureRestartCap <= 0 {
		c.CaptureRestartCap = 5
	}
	if c.CaptureRestartBackoff <= 0 {
		c.CaptureRestartBackoff = 500 * time.Millisecond
	}
	if c.ListeningCap <= 0 {
		c.ListeningCap = 60 * time.Second
	}
	return c
}

// Deps are the controller's collaborators. Playback and Listener may be
// nil; everything else is required.
type Deps struct {
	Logger      *zap.Logger
	Transport   Transport
	Capture     Capture
	Playback    Playback
	Store       Store
	Transcripts TranscriptAppender
	Listener    Listener
}

// Interview is the controller's view of the record it drives.
type Interview struct {
	ID          uint
	CandidateID uint
	Status      string
	RoomName    string
}

type eventKind int

const (
	evTransport eventKind = iota
	evPlayback
	evCapture
	evCaptureEnded
	evCaptureRestart
	evPlaybackFallback
	evListeningCap
	evQuestionPause
	evManualAnswer
	evExit
)

// event is one input to the controller loop. Generation-tagged kinds are
// discarded when a stale callback arrives after the controller has already
// advanced past the phase that armed it.
type event struct {
	gen       uint64
	kind      eventKind
	transport TransportEvent
	playback  PlaybackEvent
	capture   CaptureEvent
	text      string
}

// Controller owns one interview session's state machine.
type Controller struct {
	cfg       Config
	logger    *zap.Logger
	transport Transport
	capture   Capture
	playback  Playback
	store     Store
	durable   TranscriptAppender
	listener  Listener

	interview  Interview
	questions  []string
	credential Credential

	events chan event
	done   chan struct{}

	startOnce sync.Once
	doneOnce  sync.Once
	started   bool

	// Loop-owned; guarded by mu only for Snapshot readers.
	mu             sync.RWMutex
	state          State
	question       int
	gen            uint64
	transcript     []Entry
	manualRequired bool
	restartsUsed   int
	exited         bool
	failReason     string

	// Loop-owned only: true between an accepted answer and the next
	// question, so a duplicate submission cannot append twice.
	awaitingNext bool
}

// New builds a controller for one interview attempt. It does not touch any
// adapter until Start.
func New(cfg Config, interview Interview, questions []string, cred Credential, deps Deps) *Controller {
	if deps.Listener == nil {
		deps.Listener = NoopListener{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{
		cfg:        cfg.withDefaults(),
		logger:     deps.Logger,
		transport:  deps.Transport,
		capture:    deps.Capture,
		playback:   deps.Playback,
		store:      deps.Store,
		durable:    deps.Transcripts,
		listener:   deps.Listener,
		interview:  interview,
		questions:  questions,
		credential: cred,
		events:     make(chan event, 32),
		done:       make(chan struct{}),
		state:      StateIdle,
		question:   -1,
	}
}

// Start validates preconditions and launches the session loop. The loop
// drives forward only on adapter-reported events, never assuming success.
// A precondition failure closes Done so anything watching the controller
// (the session registry in particular) is not left waiting on a loop that
// will never run.
func (c *Controller) Start(ctx context.Context) error {
	if len(c.questions) == 0 {
		c.closeDone()
		return ErrNoQuestions
	}
	if c.interview.Status != models.InterviewStatusPending && c.interview.Status != models.InterviewStatusInProgress {
		c.closeDone()
		return ErrBadStatus
	}
	var startErr error = ErrAlreadyStarted
	c.startOnce.Do(func() {
		startErr = nil
		c.started = true
		go c.run(ctx)
	})
	return startErr
}

// Done is closed when the loop has ended and all resources are released.
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) closeDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// SubmitAnswer feeds a manually entered answer into the session. It is
// treated identically to a recognized final transcript.
func (c *Controller) SubmitAnswer(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyAnswer
	}
	if !c.running() {
		return ErrNotRunning
	}
	c.post(event{kind: evManualAnswer, text: strings.TrimSpace(text)})
	return nil
}

// Exit cancels the session. Pending adapter operations are cancelled and
// the microphone released; the interview record stays in_progress so the
// candidate can resume later.
func (c *Controller) Exit() {
	if !c.running() {
		return
	}
	c.post(event{kind: evExit})
}

// Snapshot is a consistent view of the session for the UI.
type Snapshot struct {
	State          State   `json:"state"`
	QuestionIndex  int     `json:"questionIndex"`
	TotalQuestions int     `json:"totalQuestions"`
	ManualRequired bool    `json:"manualRequired"`
	Exited         bool    `json:"exited"`
	FailReason     string  `json:"failReason,omitempty"`
	Transcript     []Entry `json:"transcript"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	transcript := make([]Entry, len(c.transcript))
	copy(transcript, c.transcript)
	return Snapshot{
		State:          c.state,
		QuestionIndex:  c.question,
		TotalQuestions: len(c.questions),
		ManualRequired: c.manualRequired,
		Exited:         c.exited,
		FailReason:     c.failReason,
		Transcript:     transcript,
	}
}

func (c *Controller) running() bool {
	select {
	case <-c.done:
		return false
	default:
		return c.started
	}
}

// post delivers an event unless the loop has already finished.
func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) run(ctx context.Context) {
	defer c.closeDone()
	defer c.teardown()

	c.setPhase(StateConnecting, -1)
	if err := c.store.MarkInterviewStarted(ctx, c.interview.ID, time.Now()); err != nil {
		// Local state running ahead of the store is acceptable; warn and
		// keep going.
		c.warn("failed to persist interview start: " + err.Error())
	}

	stream, err := c.transport.Connect(ctx, c.credential)
	if err != nil {
		c.failFromTransportErr(ctx, err)
		return
	}
	go c.pumpTransport(stream)

	for {
		select {
		case <-ctx.Done():
			c.markExited()
			return
		case ev := <-c.events:
			if c.stale(ev) {
				continue
			}
			if terminal := c.handle(ctx, ev); terminal {
				return
			}
		}
	}
}

// stale discards generation-tagged callbacks that arrived after the
// controller advanced past the phase that armed them.
func (c *Controller) stale(ev event) bool {
	switch ev.kind {
	case evTransport, evManualAnswer, evExit:
		return false
	}
	return ev.gen != c.gen
}

func (c *Controller) handle(ctx context.Context, ev event) bool {
	switch ev.kind {
	case evTransport:
		return c.handleTransport(ctx, ev.transport)

	case evPlayback:
		if c.state != StateAsking {
			return false
		}
		switch ev.playback.Kind {
		case PlaybackStarted:
			c.logger.Debug("playback started", zap.Int("question", c.question))
		case PlaybackEnded:
			c.beginListening(ctx)
		case PlaybackFailed:
			// Degraded, not fatal: listen after a silent wait.
			c.warn("speech playback failed, continuing without audio")
			c.beginListening(ctx)
		}

	case evPlaybackFallback:
		if c.state == StateAsking {
			c.logger.Debug("playback fallback elapsed", zap.Int("question", c.question))
			c.listener.OnPlaybackFallback(c.question)
			c.beginListening(ctx)
		}

	case evCapture:
		if c.state != StateListening {
			return false
		}
		switch ev.capture.Kind {
		case CapturePartial:
			c.listener.OnPartial(c.question, ev.capture.Text)
		case CaptureFinal:
			if strings.TrimSpace(ev.capture.Text) != "" {
				return c.acceptAnswer(ctx, strings.TrimSpace(ev.capture.Text))
			}
		}

	case evCaptureEnded:
		if c.state == StateListening && !c.manualRequired {
			c.retryCapture(ctx)
		}

	case evCaptureRestart:
		if c.state == StateListening && !c.manualRequired {
			c.startCapture(ctx)
		}

	case evListeningCap:
		if c.state == StateListening {
			c.warn("listening time limit reached")
			c.requireManual()
		}

	case evQuestionPause:
		if c.state == StateListening && c.awaitingNext {
			return c.askQuestion(ctx, c.question+1)
		}

	case evManualAnswer:
		if c.state == StateListening && !c.awaitingNext {
			return c.acceptAnswer(ctx, ev.text)
		}

	case evExit:
		c.markExited()
		return true
	}
	return false
}

func (c *Controller) handleTransport(ctx context.Context, ev TransportEvent) bool {
	switch ev.Kind {
	case TransportConnected:
		c.logger.Info("transport connected", zap.String("room", c.credential.RoomName))
		if c.state == StateConnecting {
			return c.askQuestion(ctx, 0)
		}
	case TransportReconnecting:
		c.logger.Warn("transport reconnecting")
		c.listener.OnWarning("connection unstable, reconnecting")
	case TransportParticipantJoined:
		c.logger.Info("participant joined", zap.String("participant", ev.Participant))
	case TransportParticipantLeft:
		c.logger.Info("participant left", zap.String("participant", ev.Participant))
	case TransportQualityChanged:
		c.logger.Debug("connection quality changed", zap.String("quality", ev.Quality))
	case TransportDisconnected:
		return c.fail(ctx, "disconnected from the interview room")
	case TransportFailed:
		if ev.Err != nil {
			return c.fail(ctx, ev.Err.UserMessage())
		}
		return c.fail(ctx, "audio transport failed")
	}
	return false
}

// askQuestion enters Asking(i), logs the question to the transcript, and
// arms the playback fallback so Listening is reached even when playback
// never reports completion. Returns true when the session finalized
// instead (question list exhausted).
func (c *Controller) askQuestion(ctx context.Context, i int) bool {
	if i >= len(c.questions) {
		c.finalize(ctx)
		return true
	}

	c.awaitingNext = false
	gen := c.nextGen()
	c.setQuestion(i)
	c.setPhase(StateAsking, i)

	question := c.questions[i]
	idx := i
	c.appendEntry(ctx, models.SpeakerAI, question, &idx)

	if c.playback != nil {
		stream, err := c.playback.Speak(ctx, question)
		if err != nil {
			c.warn("speech playback unavailable: " + err.Error())
		} else {
			go c.pumpPlayback(stream, gen)
		}
	}
	c.afterFunc(c.cfg.PlaybackFallback, gen, evPlaybackFallback)
	return false
}

// beginListening enters Listening(i) and starts capture. Ordering
// guarantee: this is only reached via playback-ended or the fallback
// timeout, so capture never hears the session's own voice.
func (c *Controller) beginListening(ctx context.Context) {
	gen := c.nextGen()
	c.setManualRequired(false)
	c.setRestartsUsed(0)
	c.setPhase(StateListening, c.question)

	c.afterFunc(c.cfg.ListeningCap, gen, evListeningCap)
	c.startCapture(ctx)
}

func (c *Controller) startCapture(ctx context.Context) {
	if c.capture == nil {
		c.requireManual()
		return
	}
	stream, err := c.capture.Start(ctx)
	if err != nil {
		c.warn("speech capture failed to start: " + err.Error())
		c.retryCapture(ctx)
		return
	}
	go c.pumpCapture(stream, c.gen)
}

// retryCapture restarts capture with backoff up to the configured cap,
// then degrades to manual text entry. Never fatal.
func (c *Controller) retryCapture(ctx context.Context) {
	used := c.bumpRestartsUsed()
	if used > c.cfg.CaptureRestartCap {
		c.logger.Info("capture restart cap reached, requiring manual answer",
			zap.Int("question", c.question), zap.Int("restarts", used-1))
		c.requireManual()
		return
	}
	c.logger.Debug("restarting capture",
		zap.Int("question", c.question), zap.Int("attempt", used))
	c.listener.OnCaptureRestart(c.question, used)
	c.afterFunc(c.cfg.CaptureRestartBackoff, c.gen, evCaptureRestart)
}

func (c *Controller) requireManual() {
	if c.capture != nil {
		c.capture.Stop()
	}
	c.setManualRequired(true)
	c.listener.OnManualRequired(c.question)
}

// acceptAnswer records the candidate's answer and advances. Bumping the
// generation first invalidates any in-flight capture or timer for this
// question.
func (c *Controller) acceptAnswer(ctx context.Context, text string) bool {
	gen := c.nextGen()
	if c.capture != nil {
		c.capture.Stop()
	}
	c.setManualRequired(false)

	idx := c.question
	c.appendEntry(ctx, models.SpeakerCandidate, text, &idx)

	if c.question+1 >= len(c.questions) {
		c.finalize(ctx)
		return true
	}
	c.awaitingNext = true
	c.afterFunc(c.cfg.InterQuestionPause, gen, evQuestionPause)
	return false
}

// finalize completes the interview and candidate records. The two writes
// are attempted independently so one transient failure does not lose the
// other. Idempotent: a duplicate completion event is a no-op.
func (c *Controller) finalize(ctx context.Context) {
	if c.state == StateCompleted {
		return
	}
	c.nextGen()
	c.setPhase(StateCompleted, c.question)

	now := time.Now()
	if err := c.store.MarkInterviewCompleted(ctx, c.interview.ID, now); err != nil {
		c.warn("failed to persist interview completion: " + err.Error())
	}
	if err := c.store.MarkCandidateCompleted(ctx, c.interview.CandidateID); err != nil {
		c.warn("failed to persist candidate completion: " + err.Error())
	}
	c.logger.Info("interview completed",
		zap.Uint("interview_id", c.interview.ID),
		zap.Int("questions", len(c.questions)))
}

func (c *Controller) fail(ctx context.Context, reason string) bool {
	if c.state == StateCompleted || c.state == StateFailed {
		return true
	}
	c.nextGen()
	c.mu.Lock()
	c.failReason = reason
	c.mu.Unlock()
	c.setPhase(StateFailed, c.question)

	if err := c.store.MarkInterviewFailed(ctx, c.interview.ID, reason); err != nil {
		c.warn("failed to persist interview failure: " + err.Error())
	}
	c.logger.Warn("interview failed",
		zap.Uint("interview_id", c.interview.ID),
		zap.String("reason", reason))
	return true
}

func (c *Controller) failFromTransportErr(ctx context.Context, err error) {
	var terr *TransportError
	if errors.As(err, &terr) {
		c.fail(ctx, terr.UserMessage())
		return
	}
	c.fail(ctx, "failed to connect to the interview room")
}

// markExited ends the loop without touching the stored status: the record
// stays in_progress so the candidate can resume.
func (c *Controller) markExited() {
	c.nextGen()
	c.mu.Lock()
	c.exited = true
	c.mu.Unlock()
	c.logger.Info("interview exited by candidate",
		zap.Uint("interview_id", c.interview.ID))
}

// teardown releases the microphone and transport on every exit path.
func (c *Controller) teardown() {
	if c.capture != nil {
		c.capture.Stop()
	}
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			c.logger.Warn("transport close failed", zap.Error(err))
		}
	}
}

// appendEntry grows the in-memory transcript and mirrors it durably with a
// single retry. A failed append warns but never blocks the session.
func (c *Controller) appendEntry(ctx context.Context, speaker models.Speaker, message string, questionIndex *int) {
	entry := Entry{
		Speaker:       speaker,
		Message:       message,
		Timestamp:     time.Now(),
		QuestionIndex: questionIndex,
	}
	c.mu.Lock()
	c.transcript = append(c.transcript, entry)
	c.mu.Unlock()
	c.listener.OnTranscript(entry)

	if err := c.durable.Append(ctx, c.interview.ID, speaker, message, questionIndex); err != nil {
		if retryErr := c.durable.Append(ctx, c.interview.ID, speaker, message, questionIndex); retryErr != nil {
			c.warn("transcript entry not persisted: " + retryErr.Error())
		}
	}
}

func (c *Controller) pumpTransport(stream <-chan TransportEvent) {
	for ev := range stream {
		c.post(event{kind: evTransport, transport: ev})
	}
	c.post(event{kind: evTransport, transport: TransportEvent{Kind: TransportDisconnected}})
}

func (c *Controller) pumpPlayback(stream <-chan PlaybackEvent, gen uint64) {
	for ev := range stream {
		c.post(event{gen: gen, kind: evPlayback, playback: ev})
	}
}

func (c *Controller) pumpCapture(stream <-chan CaptureEvent, gen uint64) {
	for ev := range stream {
		c.post(event{gen: gen, kind: evCapture, capture: ev})
	}
	c.post(event{gen: gen, kind: evCaptureEnded})
}

// afterFunc arms a generation-tagged timer delivering kind into the loop.
func (c *Controller) afterFunc(d time.Duration, gen uint64, kind eventKind) {
	time.AfterFunc(d, func() {
		c.post(event{gen: gen, kind: kind})
	})
}

func (c *Controller) nextGen() uint64 {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	return gen
}

func (c *Controller) setPhase(s State, questionIndex int) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.logger.Info("session phase",
		zap.Uint("interview_id", c.interview.ID),
		zap.String("state", s.String()),
		zap.Int("question", questionIndex))
	c.listener.OnPhase(s, questionIndex)
}

func (c *Controller) setQuestion(i int) {
	c.mu.Lock()
	c.question = i
	c.mu.Unlock()
}

func (c *Controller) setManualRequired(v bool) {
	c.mu.Lock()
	c.manualRequired = v
	c.mu.Unlock()
}

func (c *Controller) setRestartsUsed(n int) {
	c.mu.Lock()
	c.restartsUsed = n
	c.mu.Unlock()
}

func (c *Controller) bumpRestartsUsed() int {
	c.mu.Lock()
	c.restartsUsed++
	n := c.restartsUsed
	c.mu.Unlock()
	return n
}

func (c *Controller) warn(message string) {
	c.logger.Warn(message, zap.Uint("interview_id", c.interview.ID))
	c.listener.OnWarning(message)
}
