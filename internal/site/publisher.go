// Package site writes the static site artifacts: JSON API endpoints, the
// podcast feed, and per-episode show notes.
package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/bostonbriefing/briefing/internal/config"
	"github.com/bostonbriefing/briefing/internal/episode"
	"github.com/bostonbriefing/briefing/internal/logger"
)

const (
	serviceName    = "Boston Briefing Static API"
	serviceVersion = "1.0"
	// maxListed caps episodes.json and feed.xml to the recent episodes
	maxListed = 10
)

// Publisher writes site artifacts under the public directory.
type Publisher struct {
	publicDir   string
	baseURL     string
	title       string
	description string
	link        string
	loc         *time.Location
}

// NewPublisher creates a publisher from site config.
func NewPublisher(cfg config.SiteConfig) (*Publisher, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}
	return &Publisher{
		publicDir:   cfg.PublicDir,
		baseURL:     cfg.BaseURL,
		title:       cfg.Title,
		description: cfg.Description,
		link:        cfg.Link,
		loc:         loc,
	}, nil
}

// episodesResponse is the payload of api/episodes.json.
type episodesResponse struct {
	Episodes    []episode.Episode `json:"episodes"`
	Total       int               `json:"total"`
	LastUpdated string            `json:"lastUpdated"`
	Status      string            `json:"status"`
}

// PublishEpisodes writes api/episodes.json with the most recent episodes.
// episodes must already be newest first.
func (p *Publisher) PublishEpisodes(episodes []episode.Episode) error {
	listed := episodes
	if len(listed) > maxListed {
		listed = listed[:maxListed]
	}
	resp := episodesResponse{
		Episodes:    listed,
		Total:       len(episodes),
		LastUpdated: time.Now().In(p.loc).Format(time.RFC3339),
		Status:      "success",
	}
	if resp.Episodes == nil {
		resp.Episodes = []episode.Episode{}
	}
	return p.writeJSON(filepath.Join("api", "episodes.json"), resp)
}

// PublishHealth writes api/health.json.
func (p *Publisher) PublishHealth() error {
	return p.writeJSON(filepath.Join("api", "health.json"), map[string]string{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().In(p.loc).Format(time.RFC3339),
		"version":   serviceVersion,
	})
}

// PublishGenerate writes api/generate.json, a static pointer at the
// workflow that produces new episodes.
func (p *Publisher) PublishGenerate() error {
	return p.writeJSON(filepath.Join("api", "generate.json"), map[string]interface{}{
		"message": "To generate a new episode, run the briefing generator or trigger the deploy workflow.",
		"instructions": []string{
			"1. Run `briefing -config briefing.yaml`",
			"2. Or trigger the Build & Deploy workflow in the repository",
			"3. The new episode appears in about 2-3 minutes",
		},
		"status": "info",
	})
}

// PublishAll writes every artifact: the JSON endpoints, the feed, and a
// show-notes page per episode.
func (p *Publisher) PublishAll(episodes []episode.Episode) error {
	if err := p.PublishEpisodes(episodes); err != nil {
		return err
	}
	if err := p.PublishHealth(); err != nil {
		return err
	}
	if err := p.PublishGenerate(); err != nil {
		return err
	}
	if err := p.PublishFeed(episodes); err != nil {
		return err
	}
	for _, ep := range episodes {
		if err := p.PublishShowNotes(ep); err != nil {
			return err
		}
	}
	logger.Infof("[site] published %d episodes to %s", len(episodes), p.publicDir)
	return nil
}

func (p *Publisher) writeJSON(relPath string, v interface{}) error {
	path := filepath.Join(p.publicDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", relPath, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	logger.Debugf("[site] wrote %s", path)
	return nil
}

var showNotesTmpl = template.Must(template.New("shownotes").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p><a href="{{.AudioURL}}">Listen to this episode</a></p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</body>
</html>
`))

// PublishShowNotes writes shownotes/{date}.html for one episode.
func (p *Publisher) PublishShowNotes(ep episode.Episode) error {
	dir := filepath.Join(p.publicDir, "shownotes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create shownotes dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, ep.Date+".html"))
	if err != nil {
		return fmt.Errorf("create shownotes page: %w", err)
	}
	defer f.Close()

	return showNotesTmpl.Execute(f, map[string]interface{}{
		"Title":      ep.Title,
		"AudioURL":   ep.AudioURL,
		"Paragraphs": splitParagraphs(ep.Script),
	})
}
