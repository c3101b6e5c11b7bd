// Package coach manages a realtime voice-coaching session: microphone
// frames flow out as 16 kHz PCM, synthesized coach audio flows back at
// 24 kHz and is scheduled gaplessly, and streamed transcription is
// reconstructed into completed conversation turns.
package coach

import (
	"encoding/binary"
	"fmt"
)

// Audio format contract. Outbound capture is 16 kHz mono in fixed frames;
// inbound synthesized audio is 24 kHz mono.
const (
	InputSampleRate  = 16000
	OutputSampleRate = 24000
	FrameSize        = 4096

	// InputMIMEType labels outbound realtime audio chunks.
	InputMIMEType = "audio/pcm;rate=16000"
)

// EncodeFrame converts float32 samples in [-1, 1] to little-endian 16-bit
// signed PCM bytes. Out-of-range samples are clamped.
func EncodeFrame(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// DecodeFrame converts little-endian 16-bit signed PCM bytes back to
// float32 samples in [-1, 1).
func DecodeFrame(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("coach: odd PCM byte length %d", len(data))
	}
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// Duration returns the playback length in seconds of a sample buffer at
// the given rate.
func Duration(sampleCount, sampleRate int) float64 {
	return float64(sampleCount) / float64(sampleRate)
}
