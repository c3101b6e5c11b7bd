package coach

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/soworklabs/warchest/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// fakeCapture hands out a controllable frame channel.
type fakeCapture struct {
	denied bool

	mu      sync.Mutex
	frames  chan []float32
	stopped bool
}

func (c *fakeCapture) Start() (<-chan []float32, error) {
	if c.denied {
		return nil, ErrDeviceAccessDenied
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = make(chan []float32, 4)
	c.stopped = false
	return c.frames, nil
}

func (c *fakeCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped && c.frames != nil {
		close(c.frames)
		c.stopped = true
	}
	return nil
}

func (c *fakeCapture) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// fakeTransport scripts inbound messages and records outbound audio.
type fakeTransport struct {
	inbound chan *Message
	failErr error
	sendErr error

	mu        sync.Mutex
	sent      [][]byte
	closeOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbound: make(chan *Message, 32)}
}

func (tr *fakeTransport) SendAudio(data []byte) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.sendErr != nil {
		return tr.sendErr
	}
	tr.sent = append(tr.sent, data)
	return nil
}

func (tr *fakeTransport) Receive() (*Message, error) {
	msg, ok := <-tr.inbound
	if !ok {
		if tr.failErr != nil {
			return nil, tr.failErr
		}
		return nil, io.EOF
	}
	return msg, nil
}

func (tr *fakeTransport) Close() error {
	tr.closeOnce.Do(func() { close(tr.inbound) })
	return nil
}

func (tr *fakeTransport) sentCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.sent)
}

type nullPlayer struct{}

func (nullPlayer) Play(samples []float32, at float64) {}
func (nullPlayer) Now() float64                       { return 0 }
func (nullPlayer) Close() error                       { return nil }

func waitForIdle(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session state = %v, want idle", s.State())
}

func startSession(t *testing.T, capture *fakeCapture, transport *fakeTransport, onTurn func(user, coach types.ConversationTurn)) *Session {
	t.Helper()
	s, err := NewSession(Config{
		Capture: capture,
		Player:  nullPlayer{},
		Connect: func(ctx context.Context) (Transport, error) { return transport, nil },
		OnTurn:  onTurn,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.State() != StateActive {
		t.Fatalf("state after Start = %v, want active", s.State())
	}
	return s
}

func TestSession_DeviceAccessDenied(t *testing.T) {
	s, err := NewSession(Config{
		Capture: &fakeCapture{denied: true},
		Player:  nullPlayer{},
		Connect: func(ctx context.Context) (Transport, error) { return newFakeTransport(), nil },
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	err = s.Start(context.Background())
	if !errors.Is(err, ErrDeviceAccessDenied) {
		t.Fatalf("Start() error = %v, want ErrDeviceAccessDenied", err)
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %v, want idle after denied start", s.State())
	}
}

func TestSession_ConnectFailureStopsCapture(t *testing.T) {
	capture := &fakeCapture{}
	s, err := NewSession(Config{
		Capture: capture,
		Player:  nullPlayer{},
		Connect: func(ctx context.Context) (Transport, error) {
			return nil, errors.New("dial refused")
		},
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() = nil error, want connect failure")
	}
	if !capture.isStopped() {
		t.Fatal("capture left running after failed connect")
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %v, want idle", s.State())
	}
}

func TestSession_DoubleStart(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	s := startSession(t, capture, transport, nil)
	defer s.Stop()

	if err := s.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Start() error = %v, want ErrSessionActive", err)
	}
}

func TestSession_CommitsTurnWithRefinedScript(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	turns := make(chan [2]types.ConversationTurn, 1)
	s := startSession(t, capture, transport, func(user, coach types.ConversationTurn) {
		turns <- [2]types.ConversationTurn{user, coach}
	})

	transport.inbound <- &Message{Kind: KindInputTranscript, Text: "各位鄉親"}
	transport.inbound <- &Message{Kind: KindInputTranscript, Text: "大家好"}
	// The refined-script marker may straddle fragment boundaries.
	transport.inbound <- &Message{Kind: KindOutputTranscript, Text: "很好的開場。優化"}
	transport.inbound <- &Message{Kind: KindOutputTranscript, Text: "版本：各位鄉親，平安！"}
	transport.inbound <- &Message{Kind: KindTurnComplete}

	var got [2]types.ConversationTurn
	select {
	case got = <-turns:
	case <-time.After(2 * time.Second):
		t.Fatal("turn never committed")
	}

	if got[0].Role != types.RoleUser || got[0].Text != "各位鄉親大家好" {
		t.Fatalf("user turn = %+v", got[0])
	}
	if got[1].Role != types.RoleCoach {
		t.Fatalf("coach role = %q", got[1].Role)
	}
	if got[1].Refined != "各位鄉親，平安！" {
		t.Fatalf("Refined = %q, want 各位鄉親，平安！", got[1].Refined)
	}

	s.Stop()
	waitForIdle(t, s)

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("History() = %d turns, want 2", len(history))
	}
}

func TestSession_NoMarkerMeansNoRefined(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	turns := make(chan [2]types.ConversationTurn, 1)
	s := startSession(t, capture, transport, func(user, coach types.ConversationTurn) {
		turns <- [2]types.ConversationTurn{user, coach}
	})
	defer func() {
		s.Stop()
		waitForIdle(t, s)
	}()

	transport.inbound <- &Message{Kind: KindOutputTranscript, Text: "語速很穩，繼續保持。"}
	transport.inbound <- &Message{Kind: KindTurnComplete}

	select {
	case got := <-turns:
		if got[1].Refined != "" {
			t.Fatalf("Refined = %q, want empty without marker", got[1].Refined)
		}
		if got[0].Text != "" {
			t.Fatalf("user text = %q, want empty silent turn", got[0].Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("turn never committed")
	}
}

func TestSession_TurnCompleteWithoutTranscript(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	turns := make(chan [2]types.ConversationTurn, 1)
	s := startSession(t, capture, transport, func(user, coach types.ConversationTurn) {
		turns <- [2]types.ConversationTurn{user, coach}
	})
	defer func() {
		s.Stop()
		waitForIdle(t, s)
	}()

	transport.inbound <- &Message{Kind: KindTurnComplete}

	select {
	case got := <-turns:
		if got[0].Text != "" || got[1].Text != "" || got[1].Refined != "" {
			t.Fatalf("empty exchange committed as %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("empty turn never committed")
	}
}

func TestSession_PartialTurnDiscardedOnStop(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	s := startSession(t, capture, transport, nil)

	transport.inbound <- &Message{Kind: KindInputTranscript, Text: "這句話還沒說完"}

	s.Stop()
	waitForIdle(t, s)

	if got := s.History(); len(got) != 0 {
		t.Fatalf("History() = %d turns after mid-turn stop, want 0", len(got))
	}
	if !capture.isStopped() {
		t.Fatal("capture left running after Stop")
	}
}

func TestSession_TransportFailureTearsDown(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	transport.failErr = errors.New("connection reset")
	s := startSession(t, capture, transport, nil)

	transport.Close() // Receive now returns failErr

	waitForIdle(t, s)
	if !capture.isStopped() {
		t.Fatal("capture left running after transport failure")
	}
}

func TestSession_SendFailureTearsDown(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	transport.sendErr = errors.New("stream reset")
	s := startSession(t, capture, transport, nil)

	// Receive stays blocked until the session closes the transport, so
	// teardown must be driven by the failed send alone.
	capture.frames <- make([]float32, FrameSize)

	waitForIdle(t, s)
	if !capture.isStopped() {
		t.Fatal("capture left running after send failure")
	}
}

func TestSession_ForwardsCapturedFrames(t *testing.T) {
	capture := &fakeCapture{}
	transport := newFakeTransport()
	s := startSession(t, capture, transport, nil)

	frame := make([]float32, FrameSize)
	capture.frames <- frame
	capture.frames <- frame

	deadline := time.Now().Add(2 * time.Second)
	for transport.sentCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := transport.sentCount(); got < 2 {
		t.Fatalf("transport received %d frames, want 2", got)
	}
	transport.mu.Lock()
	encoded := len(transport.sent[0])
	transport.mu.Unlock()
	if encoded != FrameSize*2 {
		t.Fatalf("encoded frame = %d bytes, want %d", encoded, FrameSize*2)
	}

	s.Stop()
	waitForIdle(t, s)
}

func TestSession_RestartAfterStop(t *testing.T) {
	capture := &fakeCapture{}
	turns := make(chan [2]types.ConversationTurn, 2)
	onTurn := func(user, coach types.ConversationTurn) {
		turns <- [2]types.ConversationTurn{user, coach}
	}

	first := newFakeTransport()
	s := startSession(t, capture, first, onTurn)
	first.inbound <- &Message{Kind: KindInputTranscript, Text: "第一段"}
	first.inbound <- &Message{Kind: KindTurnComplete}
	<-turns
	s.Stop()
	waitForIdle(t, s)

	second := newFakeTransport()
	s.cfg.Connect = func(ctx context.Context) (Transport, error) { return second, nil }
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart Start() error = %v", err)
	}
	second.inbound <- &Message{Kind: KindInputTranscript, Text: "第二段"}
	second.inbound <- &Message{Kind: KindTurnComplete}
	select {
	case <-turns:
	case <-time.After(2 * time.Second):
		t.Fatal("second session turn never committed")
	}
	s.Stop()
	waitForIdle(t, s)

	if got := s.History(); len(got) != 4 {
		t.Fatalf("History() = %d turns across restart, want 4", len(got))
	}
}
