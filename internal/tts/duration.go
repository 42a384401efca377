package tts

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DurationSeconds decodes MP3 data and returns its play length in whole
// seconds. Used for episode metadata; callers fall back to an estimate
// when decoding fails.
func DurationSeconds(mp3Data []byte) (int, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(mp3Data))
	if err != nil {
		return 0, fmt.Errorf("[tts] decode mp3: %w", err)
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return 0, fmt.Errorf("[tts] invalid sample rate %d", sampleRate)
	}

	n, err := io.Copy(io.Discard, decoder)
	if err != nil {
		return 0, fmt.Errorf("[tts] read pcm: %w", err)
	}

	// stereo signed 16-bit output: 4 bytes per frame
	frames := n / 4
	return int(frames / int64(sampleRate)), nil
}
