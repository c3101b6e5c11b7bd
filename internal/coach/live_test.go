package coach

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/soworklabs/warchest/internal/types"
)

func TestExpand_OrdersEventsWithinOneMessage(t *testing.T) {
	msgs := expand(&genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			InputTranscription:  &genai.Transcription{Text: "大家好"},
			OutputTranscription: &genai.Transcription{Text: "講得不錯"},
			ModelTurn: &genai.Content{
				Parts: []*genai.Part{
					{InlineData: &genai.Blob{Data: []byte{1, 2, 3, 4}}},
					{InlineData: &genai.Blob{Data: []byte{5, 6}}},
				},
			},
			TurnComplete: true,
		},
	})

	kinds := make([]MessageKind, len(msgs))
	for i, m := range msgs {
		kinds[i] = m.Kind
	}
	want := []MessageKind{KindInputTranscript, KindOutputTranscript, KindAudio, KindAudio, KindTurnComplete}
	if len(kinds) != len(want) {
		t.Fatalf("expand() = %d messages, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kind[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
	if msgs[len(msgs)-1].Kind != KindTurnComplete {
		t.Fatal("turn-complete not last")
	}
}

func TestExpand_EmptyServerContent(t *testing.T) {
	if got := expand(&genai.LiveServerMessage{}); len(got) != 0 {
		t.Fatalf("expand() = %d messages for empty content, want 0", len(got))
	}
	empty := expand(&genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			InputTranscription: &genai.Transcription{Text: ""},
		},
	})
	if len(empty) != 0 {
		t.Fatalf("expand() = %d messages for blank transcript, want 0", len(empty))
	}
}

func TestCoachSystemPrompt_CarriesMarkerAndProfile(t *testing.T) {
	dna := types.SeedDNA()
	prompt := coachSystemPrompt(dna)
	if !strings.Contains(prompt, RefinedMarker) {
		t.Fatalf("prompt missing refined-script marker %q", RefinedMarker)
	}
	if !strings.Contains(prompt, dna.CandidateName) {
		t.Fatal("prompt missing candidate name")
	}
	if !strings.Contains(prompt, dna.Slogan) {
		t.Fatal("prompt missing slogan")
	}
}
