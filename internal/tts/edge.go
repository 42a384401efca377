package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/bostonbriefing/briefing/internal/logger"
)

// EdgeEngine synthesizes speech with Microsoft Edge TTS. It needs no API
// key, which makes it the free fallback when ElevenLabs is unavailable.
type EdgeEngine struct {
	voice string
}

// NewEdgeEngine creates an Edge TTS engine for the given voice.
func NewEdgeEngine(voice string) *EdgeEngine {
	return &EdgeEngine{voice: voice}
}

// Synthesize renders text as MP3 via Edge TTS.
func (e *EdgeEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	logger.Debugf("[tts] edge-tts: synthesizing %d chars, voice=%s", len([]rune(text)), e.voice)

	comm, err := edge.NewCommunicate(text, edge.WithVoice(e.voice))
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts: create communicate: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts: start stream: %w", err)
	}

	// Collect the MP3 chunks from the stream.
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		// entries with type=="audio" carry the audio payload
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}

	mp3Data := mp3Buf.Bytes()
	if len(mp3Data) == 0 {
		return nil, fmt.Errorf("[tts] edge-tts: received no audio data")
	}

	logger.Infof("[tts] edge-tts: received %d bytes of MP3", len(mp3Data))
	return mp3Data, nil
}
