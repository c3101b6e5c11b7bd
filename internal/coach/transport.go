package coach

// MessageKind tags an inbound server message.
type MessageKind int

const (
	// KindInputTranscript carries a fragment of the user's transcribed
	// speech.
	KindInputTranscript MessageKind = iota
	// KindOutputTranscript carries a fragment of the coach's transcribed
	// reply.
	KindOutputTranscript
	// KindAudio carries a fragment of synthesized coach audio as raw
	// 16-bit PCM at OutputSampleRate.
	KindAudio
	// KindTurnComplete marks the end of one user/coach exchange.
	KindTurnComplete
)

// Message is one tagged inbound event. Exactly one of Text or Audio is
// populated depending on Kind; KindTurnComplete carries neither.
type Message struct {
	Kind  MessageKind
	Text  string
	Audio []byte
}

// Transport is the bidirectional streaming connection to the conversational
// model. Implementations must make Receive safe to call from one goroutine
// while SendAudio is called from another.
type Transport interface {
	// SendAudio transmits one outbound frame of raw 16-bit PCM at
	// InputSampleRate.
	SendAudio(data []byte) error

	// Receive blocks for the next tagged message. It returns io.EOF when
	// the connection closes cleanly and a non-nil error otherwise.
	Receive() (*Message, error)

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// CaptureSource provides microphone frames. Start returns a channel of
// FrameSize-sample float32 frames; the channel closes when capture stops.
type CaptureSource interface {
	// Start begins capture. It returns ErrDeviceAccessDenied when
	// microphone permission is refused.
	Start() (<-chan []float32, error)

	// Stop halts capture synchronously and closes the frame channel. Any
	// frame not yet handed to the session is discarded, not flushed.
	Stop() error
}

// Player schedules decoded audio for playback on a monotonic clock.
type Player interface {
	// Play schedules samples to start at the given clock offset in
	// seconds.
	Play(samples []float32, at float64)

	// Now returns the current position of the playback clock in seconds.
	Now() float64

	// Close releases the audio device.
	Close() error
}
