package coach

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/soworklabs/warchest/internal/types"
)

// DefaultLiveModel is the native-audio conversational model.
const DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"

// coachSystemPrompt instructs the model to respond with spoken feedback
// followed by the RefinedMarker-delimited rewritten script.
func coachSystemPrompt(dna *types.BrandDNA) string {
	return fmt.Sprintf(`你是 %s 的高端演講教練。

當候選人對你說話時，你的回覆結構必須包含：
1. 教練評語：以口語化的方式給予鼓勵與肢體建議（這部分會轉為語音）。
2. 潤稿建議：請在回覆中包含「%s」這一組關鍵字，接著提供該段話的「戰略升級版」文字。

潤稿準則：
- 去除贅字（例如：那個、然後、其實）。
- 強化動詞。
- 對焦候選人 DNA：%s。
- 置入核心標語：%s。`,
		dna.CandidateName, RefinedMarker, dna.Personality, dna.Slogan)
}

// liveTransport adapts a Gemini Live session to the Transport interface.
// One server message can carry several event kinds at once, so decoded
// events queue up and Receive drains them one at a time, turn-complete
// last.
type liveTransport struct {
	session *genai.Session
	pending []*Message
}

// ConnectLive opens a Gemini Live audio session configured for the
// coaching conversation: audio responses plus transcription of both sides.
func ConnectLive(ctx context.Context, client *genai.Client, model string, dna *types.BrandDNA) (Transport, error) {
	if model == "" {
		model = DefaultLiveModel
	}
	config := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		SystemInstruction:        genai.NewContentFromText(coachSystemPrompt(dna), genai.RoleUser),
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}

	session, err := client.Live.Connect(ctx, model, config)
	if err != nil {
		return nil, fmt.Errorf("coach: open live session: %w", err)
	}
	return &liveTransport{session: session}, nil
}

func (t *liveTransport) SendAudio(data []byte) error {
	return t.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: data, MIMEType: InputMIMEType},
	})
}

func (t *liveTransport) Receive() (*Message, error) {
	for len(t.pending) == 0 {
		serverMsg, err := t.session.Receive()
		if err != nil {
			return nil, err
		}
		t.pending = expand(serverMsg)
	}
	msg := t.pending[0]
	t.pending = t.pending[1:]
	return msg, nil
}

func (t *liveTransport) Close() error {
	return t.session.Close()
}

// expand splits one live server message into tagged events, preserving
// transcript-before-audio-before-turn-complete order.
func expand(serverMsg *genai.LiveServerMessage) []*Message {
	sc := serverMsg.ServerContent
	if sc == nil {
		return nil
	}

	var out []*Message
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		out = append(out, &Message{Kind: KindInputTranscript, Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		out = append(out, &Message{Kind: KindOutputTranscript, Text: sc.OutputTranscription.Text})
	}
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out = append(out, &Message{Kind: KindAudio, Audio: part.InlineData.Data})
			}
		}
	}
	if sc.TurnComplete {
		out = append(out, &Message{Kind: KindTurnComplete})
	}
	return out
}
