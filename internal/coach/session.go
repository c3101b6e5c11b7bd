package coach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soworklabs/warchest/internal/types"
)

// State is the session lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateActive
)

var (
	// ErrDeviceAccessDenied is returned by Start when microphone
	// permission is refused. Fatal to that start attempt.
	ErrDeviceAccessDenied = errors.New("coach: microphone access denied")

	// ErrSessionActive is returned by Start when a session is already
	// connecting or running.
	ErrSessionActive = errors.New("coach: session already running")
)

// RefinedMarker is the delimiter the coach places in its reply between the
// spoken feedback and the rewritten script. Everything after the marker is
// surfaced separately as the refined text.
const RefinedMarker = "優化版本："

// Update is a live-display snapshot pushed after each transcription
// fragment: the in-progress user and coach text of the current turn.
type Update struct {
	UserLive  string
	CoachLive string
	Refined   string
}

// Config assembles a session's collaborators. Capture, Player, and Connect
// are required.
type Config struct {
	Capture CaptureSource
	Player  Player

	// Connect opens the streaming transport. Called once per Start.
	Connect func(ctx context.Context) (Transport, error)

	// OnUpdate, if set, receives live-display snapshots. Called from the
	// session's consumer goroutine; keep it fast.
	OnUpdate func(Update)

	// OnTurn, if set, receives each committed user/coach turn pair.
	OnTurn func(user, coach types.ConversationTurn)

	Logger *zap.Logger
}

// Session runs one voice-coaching conversation. A single consumer
// goroutine applies every inbound message, so per-channel arrival order is
// preserved and the turn buffers have exactly one mutator.
type Session struct {
	cfg    Config
	logger *zap.Logger

	state atomic.Int32

	mu      sync.Mutex
	history []types.ConversationTurn

	// Owned by the consumer goroutine while active.
	userBuf   strings.Builder
	coachBuf  strings.Builder
	refined   string
	scheduler *Scheduler

	transport Transport
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSession validates cfg and builds an idle session.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Capture == nil || cfg.Player == nil || cfg.Connect == nil {
		return nil, errors.New("coach: capture, player, and connect are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Session{cfg: cfg, logger: cfg.Logger}, nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return State(s.state.Load())
}

// History returns a copy of the committed conversation turns. Turns
// survive session restarts and transport failures; only fully completed
// turns are ever present.
func (s *Session) History() []types.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// Start acquires the microphone, opens the streaming connection, and
// begins the capture and receive pumps. It returns once the session is
// active; message processing continues until Stop or a transport failure.
func (s *Session) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateConnecting)) {
		return ErrSessionActive
	}

	frames, err := s.cfg.Capture.Start()
	if err != nil {
		s.state.Store(int32(StateIdle))
		if errors.Is(err, ErrDeviceAccessDenied) {
			return err
		}
		return fmt.Errorf("coach: start capture: %w", err)
	}

	transport, err := s.cfg.Connect(ctx)
	if err != nil {
		_ = s.cfg.Capture.Stop()
		s.state.Store(int32(StateIdle))
		return fmt.Errorf("coach: connect: %w", err)
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Lock()
	s.transport = transport
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()
	s.scheduler = NewScheduler(s.cfg.Player, OutputSampleRate)

	msgs := make(chan *Message, 16)
	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error { return s.capturePump(gctx, frames, transport) })
	g.Go(func() error {
		defer close(msgs)
		return s.receivePump(gctx, transport, msgs)
	})
	g.Go(func() error { return s.consume(msgs) })
	// The receive pump only unblocks when the transport closes, so a
	// send-side failure must close it too or the group never drains.
	go func() {
		<-gctx.Done()
		_ = transport.Close()
	}()

	s.state.Store(int32(StateActive))
	s.logger.Info("coaching session active")

	done := s.done
	go func() {
		err := g.Wait()
		s.teardown(err)
		close(done)
	}()
	return nil
}

// Stop ends the session: capture halts synchronously, the transport
// closes, and any partially received turn is discarded. Committed history
// is retained. Safe to call when already idle.
func (s *Session) Stop() {
	if State(s.state.Load()) == StateIdle {
		return
	}
	s.mu.Lock()
	transport, cancel, done := s.transport, s.cancel, s.done
	s.mu.Unlock()

	// Closing the transport unblocks the receive pump; the pumps then
	// drain and teardown runs exactly once.
	if transport != nil {
		_ = transport.Close()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// teardown is the single cleanup path, shared by deliberate stops and
// unexpected transport failures.
func (s *Session) teardown(err error) {
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		s.logger.Warn("coaching session ended with transport failure", zap.Error(err))
	}
	_ = s.cfg.Capture.Stop()
	s.mu.Lock()
	if s.transport != nil {
		_ = s.transport.Close()
		s.transport = nil
	}
	s.mu.Unlock()
	_ = s.cfg.Player.Close()

	// Discard, never commit, a partially received turn.
	s.userBuf.Reset()
	s.coachBuf.Reset()
	s.refined = ""

	s.state.Store(int32(StateIdle))
	s.logger.Info("coaching session idle")
}

// capturePump forwards microphone frames to the transport. A frame pending
// on the channel when the context is cancelled is discarded.
func (s *Session) capturePump(ctx context.Context, frames <-chan []float32, transport Transport) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := transport.SendAudio(EncodeFrame(frame)); err != nil {
				return fmt.Errorf("send audio frame: %w", err)
			}
		}
	}
}

// receivePump pulls tagged messages off the transport. EOF is a clean
// close; anything else terminates the session as a transport failure.
func (s *Session) receivePump(ctx context.Context, transport Transport, msgs chan<- *Message) error {
	for {
		msg, err := transport.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		select {
		case msgs <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

// consume is the single goroutine that applies inbound messages to the
// session state. It exits when the receive pump closes the channel.
func (s *Session) consume(msgs <-chan *Message) error {
	for msg := range msgs {
		s.handle(msg)
	}
	return nil
}

func (s *Session) handle(msg *Message) {
	switch msg.Kind {
	case KindInputTranscript:
		s.userBuf.WriteString(msg.Text)
		s.emitUpdate()

	case KindOutputTranscript:
		s.coachBuf.WriteString(msg.Text)
		if idx := strings.Index(s.coachBuf.String(), RefinedMarker); idx >= 0 {
			s.refined = strings.TrimSpace(s.coachBuf.String()[idx+len(RefinedMarker):])
		}
		s.emitUpdate()

	case KindAudio:
		samples, err := DecodeFrame(msg.Audio)
		if err != nil {
			s.logger.Warn("dropping undecodable audio fragment", zap.Error(err))
			return
		}
		s.scheduler.Enqueue(samples)

	case KindTurnComplete:
		s.commitTurn()
	}
}

// commitTurn records the accumulated buffers as one completed user/coach
// pair and resets them for the next turn. An empty coach buffer is a valid
// turn, not an error.
func (s *Session) commitTurn() {
	user := types.ConversationTurn{Role: types.RoleUser, Text: s.userBuf.String()}
	coach := types.ConversationTurn{
		Role:    types.RoleCoach,
		Text:    s.coachBuf.String(),
		Refined: s.refined,
	}

	s.mu.Lock()
	s.history = append(s.history, user, coach)
	s.mu.Unlock()

	s.userBuf.Reset()
	s.coachBuf.Reset()
	s.refined = ""

	if s.cfg.OnTurn != nil {
		s.cfg.OnTurn(user, coach)
	}
	s.emitUpdate()
}

func (s *Session) emitUpdate() {
	if s.cfg.OnUpdate == nil {
		return
	}
	s.cfg.OnUpdate(Update{
		UserLive:  s.userBuf.String(),
		CoachLive: s.coachBuf.String(),
		Refined:   s.refined,
	})
}
