package coach

import "sync"

// Scheduler assigns strictly sequential start times to arriving audio
// fragments so playback is gapless and never overlapping: each fragment
// starts exactly where the previous one ends, or now if the cursor has
// fallen behind the playback clock.
type Scheduler struct {
	player     Player
	sampleRate int

	mu   sync.Mutex
	next float64
}

// NewScheduler builds a scheduler over player for buffers at sampleRate.
func NewScheduler(player Player, sampleRate int) *Scheduler {
	return &Scheduler{player: player, sampleRate: sampleRate}
}

// Enqueue schedules samples immediately after the previously scheduled
// fragment and returns the assigned start time.
func (s *Scheduler) Enqueue(samples []float32) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.next
	if now := s.player.Now(); now > start {
		start = now
	}
	s.player.Play(samples, start)
	s.next = start + Duration(len(samples), s.sampleRate)
	return start
}

// Cursor returns the end time of the last scheduled fragment.
func (s *Scheduler) Cursor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
