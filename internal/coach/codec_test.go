package coach

import (
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.25, -1, 0.99}
	decoded, err := DecodeFrame(EncodeFrame(in))
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if len(decoded) != len(in) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(in))
	}
	for i := range in {
		if diff := math.Abs(float64(decoded[i] - in[i])); diff > 1.0/32768 {
			t.Fatalf("sample %d = %v, want %v within one quantization step", i, decoded[i], in[i])
		}
	}
}

func TestEncodeFrame_ClampsOutOfRange(t *testing.T) {
	decoded, err := DecodeFrame(EncodeFrame([]float32{2.0, -2.0, 1.0}))
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if decoded[0] < 0.999 {
		t.Fatalf("over-range sample = %v, want clamped to full scale", decoded[0])
	}
	if decoded[1] != -1.0 {
		t.Fatalf("under-range sample = %v, want -1", decoded[1])
	}
	if decoded[2] < 0.999 {
		t.Fatalf("1.0 sample = %v, want clamped to full scale", decoded[2])
	}
}

func TestDecodeFrame_OddLength(t *testing.T) {
	if _, err := DecodeFrame([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("DecodeFrame() = nil error for odd byte length")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(OutputSampleRate, OutputSampleRate); got != 1.0 {
		t.Fatalf("Duration(rate, rate) = %v, want 1", got)
	}
	if got := Duration(FrameSize, InputSampleRate); got != 0.256 {
		t.Fatalf("Duration(4096, 16000) = %v, want 0.256", got)
	}
}
