// Package tts synthesizes briefing scripts to MP3 audio.
package tts

import "context"

// Engine is a speech synthesis backend.
type Engine interface {
	// Synthesize converts text to MP3 audio bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
