package coach

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ReaderSource captures audio from an io.Reader carrying raw 16-bit
// little-endian PCM at InputSampleRate, e.g. a microphone pipeline such as
// `arecord -f S16_LE -r 16000 -c 1`. Frames are FrameSize samples.
type ReaderSource struct {
	r       io.Reader
	stopped atomic.Bool
	quit    chan struct{}
	frames  chan []float32
	once    sync.Once
}

// NewReaderSource wraps r as a capture source.
func NewReaderSource(r io.Reader) (*ReaderSource, error) {
	if r == nil {
		return nil, ErrDeviceAccessDenied
	}
	return &ReaderSource{r: r, quit: make(chan struct{})}, nil
}

// Start begins reading frames. The channel closes on EOF or Stop.
func (s *ReaderSource) Start() (<-chan []float32, error) {
	s.frames = make(chan []float32)
	go func() {
		defer close(s.frames)
		buf := make([]byte, FrameSize*2)
		for !s.stopped.Load() {
			if _, err := io.ReadFull(s.r, buf); err != nil {
				return
			}
			samples := make([]float32, FrameSize)
			for i := range samples {
				samples[i] = float32(int16(binary.LittleEndian.Uint16(buf[i*2:]))) / 32768.0
			}
			select {
			case s.frames <- samples:
			case <-s.quit:
				// Discard the in-flight frame rather than flush it.
				return
			}
		}
	}()
	return s.frames, nil
}

// Stop halts capture. The frame being read when Stop is called is
// discarded.
func (s *ReaderSource) Stop() error {
	s.once.Do(func() {
		s.stopped.Store(true)
		close(s.quit)
	})
	return nil
}

// WriterPlayer renders scheduled audio by appending 16-bit PCM to an
// io.Writer in schedule order, tracking the playback clock on wall time.
type WriterPlayer struct {
	mu    sync.Mutex
	w     io.Writer
	start time.Time
}

// NewWriterPlayer wraps w as a playback sink. A nil writer discards audio
// but still advances the clock, which suits transcript-only sessions.
func NewWriterPlayer(w io.Writer) *WriterPlayer {
	return &WriterPlayer{w: w, start: time.Now()}
}

// Play appends the fragment. Fragments arrive in schedule order because
// the scheduler serializes Enqueue.
func (p *WriterPlayer) Play(samples []float32, at float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.w == nil {
		return
	}
	_, _ = p.w.Write(EncodeFrame(samples))
}

// Now returns seconds elapsed since the player was created.
func (p *WriterPlayer) Now() float64 {
	return time.Since(p.start).Seconds()
}

// Close releases nothing for a writer sink; it exists to satisfy Player.
func (p *WriterPlayer) Close() error {
	return nil
}
