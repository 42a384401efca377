package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bostonbriefing/briefing/internal/config"
	"github.com/bostonbriefing/briefing/internal/logger"
)

const defaultElevenLabsURL = "https://api.elevenlabs.io"

// VoiceSettings tunes the ElevenLabs voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// voiceProfile is the full tuning set: model, settings and speed.
// It matches the layout of a voice_settings.json override file.
type voiceProfile struct {
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
	VoiceSpeed    float64       `json:"voice_speed"`
}

// ElevenLabsEngine synthesizes speech via the ElevenLabs HTTP API.
type ElevenLabsEngine struct {
	baseURL string
	cfg     config.ElevenLabsConfig
	client  *http.Client
}

// NewElevenLabsEngine creates an ElevenLabs engine from config.
func NewElevenLabsEngine(cfg config.ElevenLabsConfig) *ElevenLabsEngine {
	return &ElevenLabsEngine{
		baseURL: defaultElevenLabsURL,
		cfg:     cfg,
		client: &http.Client{
			// long scripts can take a while to render
			Timeout: 180 * time.Second,
		},
	}
}

// ttsRequest is the JSON body sent to the text-to-speech endpoint.
type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
	VoiceSpeed    float64       `json:"voice_speed"`
}

// Synthesize renders text as MP3 via ElevenLabs.
func (e *ElevenLabsEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if e.cfg.APIKey == "" || e.cfg.VoiceID == "" {
		return nil, fmt.Errorf("[tts] elevenlabs: missing api_key or voice_id")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("[tts] elevenlabs: empty text")
	}

	profile := e.loadVoiceProfile()
	logger.Debugf("[tts] elevenlabs: model=%s settings=%+v", profile.ModelID, profile.VoiceSettings)

	reqBody := ttsRequest{
		Text:          text,
		ModelID:       profile.ModelID,
		VoiceSettings: profile.VoiceSettings,
		VoiceSpeed:    profile.VoiceSpeed,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128", e.baseURL, e.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.cfg.APIKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("[tts] elevenlabs: status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[tts] elevenlabs: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("[tts] elevenlabs: received no audio data")
	}

	logger.Infof("[tts] elevenlabs: received %d bytes of MP3", len(audio))
	return audio, nil
}

// loadVoiceProfile resolves voice tuning: a voice_settings.json override
// file wins, then the config values, then the built-in defaults.
func (e *ElevenLabsEngine) loadVoiceProfile() voiceProfile {
	if e.cfg.SettingsFile != "" {
		if data, err := os.ReadFile(e.cfg.SettingsFile); err == nil {
			var p voiceProfile
			if err := json.Unmarshal(data, &p); err == nil && p.ModelID != "" {
				logger.Debugf("[tts] elevenlabs: voice settings loaded from %s", e.cfg.SettingsFile)
				if p.VoiceSpeed == 0 {
					p.VoiceSpeed = 1.0
				}
				return p
			}
			logger.Warnf("[tts] elevenlabs: ignoring malformed settings file %s", e.cfg.SettingsFile)
		}
	}

	p := voiceProfile{
		ModelID: e.cfg.ModelID,
		VoiceSettings: VoiceSettings{
			Stability:       e.cfg.Stability,
			SimilarityBoost: e.cfg.SimilarityBoost,
			Style:           e.cfg.Style,
			UseSpeakerBoost: e.cfg.UseSpeakerBoost,
		},
		VoiceSpeed: e.cfg.Speed,
	}

	// final fallback: the tuning that works for a cloned news voice
	if p.ModelID == "" {
		p.ModelID = "eleven_multilingual_v2"
	}
	if p.VoiceSettings.Stability == 0 {
		p.VoiceSettings.Stability = 0.85
	}
	if p.VoiceSettings.SimilarityBoost == 0 {
		p.VoiceSettings.SimilarityBoost = 0.90
	}
	if p.VoiceSettings.Style == 0 {
		p.VoiceSettings.Style = 0.15
	}
	if p.VoiceSpeed == 0 {
		p.VoiceSpeed = 1.0
	}
	return p
}
