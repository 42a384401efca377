// Package pipeline orchestrates one briefing generation run: gather news,
// write the script, synthesize audio, and publish the site.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bostonbriefing/briefing/internal/config"
	"github.com/bostonbriefing/briefing/internal/episode"
	"github.com/bostonbriefing/briefing/internal/llm"
	"github.com/bostonbriefing/briefing/internal/logger"
	"github.com/bostonbriefing/briefing/internal/news"
	"github.com/bostonbriefing/briefing/internal/site"
	"github.com/bostonbriefing/briefing/internal/tts"
)

// defaultSystemPrompt is used when neither prompt_file nor system_prompt
// is configured.
const defaultSystemPrompt = `You write a short spoken morning news briefing for Boston. ` +
	`Rewrite the numbered story notes into a friendly three-minute script. ` +
	`Open with a greeting, cover each story in one or two conversational sentences, ` +
	`and close with a sign-off. Plain spoken prose only: no headers, no lists, no URLs.`

// Pipeline wires the generation stages together.
type Pipeline struct {
	cfg *config.Config

	fetcher   *news.Fetcher
	provider  llm.Provider
	engine    tts.Engine
	fallback  tts.Engine
	store     *episode.Store
	publisher *site.Publisher
	loc       *time.Location
}

// New creates and wires a complete pipeline from config.
func New(cfg *config.Config) (*Pipeline, error) {
	p := &Pipeline{
		cfg:     cfg,
		fetcher: news.NewFetcher(cfg.News),
		provider: llm.NewOpenAIProvider(
			cfg.LLM.APIURL, cfg.LLM.APIKey, cfg.LLM.Model,
			cfg.LLM.MaxTokens, cfg.LLM.Temperature),
	}

	switch cfg.TTS.Engine {
	case "elevenlabs":
		p.engine = tts.NewElevenLabsEngine(cfg.TTS.ElevenLabs)
		// edge needs no credentials, keep it behind the paid engine
		p.fallback = tts.NewEdgeEngine(cfg.TTS.Edge.Voice)
	case "edge":
		p.engine = tts.NewEdgeEngine(cfg.TTS.Edge.Voice)
	default:
		return nil, fmt.Errorf("unknown tts engine %q", cfg.TTS.Engine)
	}

	store, err := episode.OpenStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open episode store: %w", err)
	}
	p.store = store

	publisher, err := site.NewPublisher(cfg.Site)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	p.publisher = publisher

	loc, err := time.LoadLocation(cfg.Site.Timezone)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	p.loc = loc

	p.reindex()
	return p, nil
}

// reindex backfills the store from audio files already on disk, so an
// archive produced by an earlier deployment survives a lost database.
func (p *Pipeline) reindex() {
	episodesDir := filepath.Join(p.cfg.Site.PublicDir, "episodes")
	added := 0
	for _, ep := range episode.ScanDir(episodesDir, p.cfg.Site.BaseURL) {
		if _, err := p.store.Get(ep.Date); err == nil {
			continue
		}
		if err := p.store.Save(ep); err != nil {
			logger.Warnf("[pipeline] reindex %s: %v", ep.Date, err)
			continue
		}
		added++
	}
	if added > 0 {
		logger.Infof("[pipeline] reindexed %d episodes from %s", added, episodesDir)
	}
}

// Store exposes the episode store so the API server can share it.
func (p *Pipeline) Store() *episode.Store {
	return p.store
}

// Close releases the pipeline's resources.
func (p *Pipeline) Close() {
	if p.store != nil {
		p.store.Close()
	}
}

// Run generates today's episode and publishes the site. Each stage error
// aborts the run; a TTS failure only degrades to the next engine or the
// configured fallback MP3.
func (p *Pipeline) Run(ctx context.Context) (episode.Episode, error) {
	// 1. gather stories
	items, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		return episode.Episode{}, fmt.Errorf("fetch news: %w", err)
	}
	items = news.Dedupe(items)
	logger.Infof("[pipeline] %d stories after dedupe", len(items))

	notes := news.BuildNotes(items, p.cfg.News.MaxStories)
	if notes == "" {
		return episode.Episode{}, fmt.Errorf("no usable story notes")
	}

	// 2. write the script
	script, err := p.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: p.systemPrompt()},
		{Role: "user", Content: notes},
	})
	if err != nil {
		return episode.Episode{}, fmt.Errorf("generate script: %w", err)
	}
	logger.Infof("[pipeline] script generated: %d chars", len(script))

	// 3. synthesize
	audio, err := p.synthesize(ctx, tts.Sanitize(script))
	if err != nil {
		return episode.Episode{}, err
	}

	// 4. write episode files and index
	now := time.Now().In(p.loc)
	date := now.Format(episode.DateLayout)

	episodesDir := filepath.Join(p.cfg.Site.PublicDir, "episodes")
	if err := os.MkdirAll(episodesDir, 0755); err != nil {
		return episode.Episode{}, fmt.Errorf("create episodes dir: %w", err)
	}
	audioPath := filepath.Join(episodesDir, episode.Filename(date))
	if err := os.WriteFile(audioPath, audio, 0644); err != nil {
		return episode.Episode{}, fmt.Errorf("write episode audio: %w", err)
	}
	scriptPath := filepath.Join(episodesDir, episode.ScriptFilename(date))
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return episode.Episode{}, fmt.Errorf("write episode script: %w", err)
	}

	duration, err := tts.DurationSeconds(audio)
	if err != nil || duration <= 0 {
		duration = episode.DefaultDuration
	}

	ep := episode.Episode{
		ID:          date,
		Title:       episode.TitleFor(now),
		Date:        date,
		Script:      script,
		AudioURL:    p.cfg.Site.BaseURL + "/episodes/" + episode.Filename(date),
		Duration:    duration,
		GeneratedAt: now,
	}
	if err := p.store.Save(ep); err != nil {
		return episode.Episode{}, err
	}

	// 5. publish
	episodes, err := p.store.List()
	if err != nil {
		return episode.Episode{}, err
	}
	if err := p.publisher.PublishAll(episodes); err != nil {
		return episode.Episode{}, fmt.Errorf("publish site: %w", err)
	}

	logger.Infof("[pipeline] episode %s published (%ds)", date, duration)
	return ep, nil
}

// synthesize tries the primary engine, then the fallback engine, then the
// configured static fallback MP3.
func (p *Pipeline) synthesize(ctx context.Context, text string) ([]byte, error) {
	audio, err := p.engine.Synthesize(ctx, text)
	if err == nil {
		return audio, nil
	}
	logger.Warnf("[pipeline] tts failed: %v", err)

	if p.fallback != nil {
		audio, fbErr := p.fallback.Synthesize(ctx, text)
		if fbErr == nil {
			logger.Warn("[pipeline] using fallback tts engine")
			return audio, nil
		}
		logger.Warnf("[pipeline] fallback tts failed: %v", fbErr)
	}

	if p.cfg.TTS.FallbackMP3 != "" {
		audio, readErr := os.ReadFile(p.cfg.TTS.FallbackMP3)
		if readErr == nil {
			logger.Warnf("[pipeline] using static fallback mp3 %s", p.cfg.TTS.FallbackMP3)
			return audio, nil
		}
		logger.Warnf("[pipeline] read fallback mp3: %v", readErr)
	}

	return nil, fmt.Errorf("synthesize audio: %w", err)
}

// systemPrompt resolves the script-writer prompt: prompt file, then the
// configured inline prompt, then the built-in default.
func (p *Pipeline) systemPrompt() string {
	if p.cfg.LLM.PromptFile != "" {
		if data, err := os.ReadFile(p.cfg.LLM.PromptFile); err == nil {
			if prompt := strings.TrimSpace(string(data)); prompt != "" {
				return prompt
			}
		} else {
			logger.Warnf("[pipeline] read prompt file: %v", err)
		}
	}
	if p.cfg.LLM.SystemPrompt != "" {
		return p.cfg.LLM.SystemPrompt
	}
	return defaultSystemPrompt
}
