package coach

import (
	"sync"
	"testing"
)

// clockPlayer records scheduled fragments against a manually advanced
// clock.
type clockPlayer struct {
	mu     sync.Mutex
	now    float64
	starts []float64
}

func (p *clockPlayer) Play(samples []float32, at float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts = append(p.starts, at)
}

func (p *clockPlayer) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

func (p *clockPlayer) Close() error { return nil }

func (p *clockPlayer) advance(to float64) {
	p.mu.Lock()
	p.now = to
	p.mu.Unlock()
}

func TestScheduler_GaplessSequentialStarts(t *testing.T) {
	player := &clockPlayer{}
	sched := NewScheduler(player, OutputSampleRate)

	frame := make([]float32, OutputSampleRate/2) // half a second
	first := sched.Enqueue(frame)
	second := sched.Enqueue(frame)
	third := sched.Enqueue(frame)

	if first != 0 {
		t.Fatalf("first start = %v, want 0", first)
	}
	if second != 0.5 || third != 1.0 {
		t.Fatalf("starts = %v, %v, want 0.5, 1.0", second, third)
	}
	if got := sched.Cursor(); got != 1.5 {
		t.Fatalf("Cursor() = %v, want 1.5", got)
	}
}

func TestScheduler_CursorCatchesUpToClock(t *testing.T) {
	player := &clockPlayer{}
	sched := NewScheduler(player, OutputSampleRate)

	frame := make([]float32, OutputSampleRate/4)
	sched.Enqueue(frame) // cursor now 0.25

	// Playback clock has moved past the cursor, e.g. after a silence.
	player.advance(3.0)

	start := sched.Enqueue(frame)
	if start != 3.0 {
		t.Fatalf("start after stall = %v, want clock position 3.0", start)
	}
	if got := sched.Cursor(); got != 3.25 {
		t.Fatalf("Cursor() = %v, want 3.25", got)
	}
}

func TestScheduler_NeverSchedulesInPast(t *testing.T) {
	player := &clockPlayer{}
	sched := NewScheduler(player, OutputSampleRate)

	frame := make([]float32, OutputSampleRate/10)
	var prev float64
	for i := 0; i < 20; i++ {
		if i == 10 {
			player.advance(5.0)
		}
		start := sched.Enqueue(frame)
		if start < prev {
			t.Fatalf("start %d = %v, earlier than previous %v", i, start, prev)
		}
		prev = start
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	if len(player.starts) != 20 {
		t.Fatalf("recorded %d fragments, want 20", len(player.starts))
	}
}
