// Package player implements the feed-driven episode list and player that
// backs the site's audio page. It fetches the published feed.xml once,
// derives show-notes links from episode dates, and switches the current
// episode on selection.
package player

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/bostonbriefing/briefing/internal/logger"
)

// FailureMessage is the single user-facing message for any load failure.
const FailureMessage = "Could not load feed."

// maxVisible caps the rendered episode list.
const maxVisible = 10

var (
	// ErrFetch marks a non-2xx feed response.
	ErrFetch = errors.New("feed fetch failed")
	// ErrEmptyFeed marks a feed with zero items.
	ErrEmptyFeed = errors.New("feed contains no episodes")
)

var dateSlugRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// State is the player's lifecycle state.
type State int

const (
	// StateLoading is the initial state, before the one-shot feed fetch
	// resolves.
	StateLoading State = iota
	// StateLoaded means episodes are rendered and the player is primed.
	StateLoaded
	// StateFailed is terminal; the error message is shown.
	StateFailed
)

var stateNames = [...]string{"Loading", "Loaded", "Failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Episode is one feed item, immutable once constructed.
type Episode struct {
	Title     string
	PubDate   string // raw feed value, display only
	Enclosure string // audio URL, may be empty
	DateSlug  string // YYYY-MM-DD extracted from title or pubDate
	NotesHref string
}

// View receives the player's UI mutations. The briefing page implements
// it over its audio element, title display, list container and notes link.
type View interface {
	// SetLatest points the player at an episode: displayed title, audio
	// source and show-notes link.
	SetLatest(title, audioSrc, notesHref string)
	// ShowEpisodes renders the visible episode list.
	ShowEpisodes(episodes []Episode)
	// ShowError displays a load-failure message.
	ShowError(msg string)
	// Play starts playback of the current audio source. Errors are
	// expected under autoplay restrictions and are swallowed.
	Play() error
}

// Options configures a Player.
type Options struct {
	// BaseURL is the site base URL. When empty, PageURL is used to
	// derive it by stripping everything from /site/ onward.
	BaseURL string
	// PageURL is the address of the hosting page, the fallback source
	// for the base URL.
	PageURL string
	View    View
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Player loads the episode feed once and drives a View.
type Player struct {
	feedURL   string
	notesBase string
	view      View
	client    *http.Client
	parser    *gofeed.Parser

	mu       sync.Mutex
	state    State
	episodes []Episode
	current  int
}

// New validates the options and returns a player in the Loading state.
// A missing view or unresolvable base URL fails here, not inside a
// selection handler later.
func New(opts Options) (*Player, error) {
	if opts.View == nil {
		return nil, fmt.Errorf("player: view is required")
	}

	base := resolveBase(opts.BaseURL, opts.PageURL)
	if base == "" {
		return nil, fmt.Errorf("player: no base URL configured and none derivable from page URL %q", opts.PageURL)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &Player{
		feedURL:   base + "/feed.xml",
		notesBase: base + "/shownotes",
		view:      opts.View,
		client:    client,
		parser:    gofeed.NewParser(),
		state:     StateLoading,
	}, nil
}

// resolveBase picks the configured base URL, or derives one from the page
// URL by removing everything from /site/ onward. Trailing slashes are
// stripped either way.
func resolveBase(baseURL, pageURL string) string {
	base := strings.TrimSpace(baseURL)
	if base == "" && pageURL != "" {
		base = pageURL
		if idx := strings.Index(base, "/site/"); idx >= 0 {
			base = base[:idx]
		}
	}
	return strings.TrimSuffix(base, "/")
}

// FeedURL returns the resolved feed address.
func (p *Player) FeedURL() string { return p.feedURL }

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Episodes returns the full parsed episode list, feed order preserved.
func (p *Player) Episodes() []Episode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.episodes
}

// Current returns the episode the player is pointed at.
func (p *Player) Current() (Episode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateLoaded || len(p.episodes) == 0 {
		return Episode{}, false
	}
	return p.episodes[p.current], true
}

// Load performs the one-shot feed fetch and primes the view. Any failure
// is terminal: the view shows FailureMessage and the cause is logged.
// There is no retry and no partial rendering.
func (p *Player) Load(ctx context.Context) error {
	episodes, err := p.fetchEpisodes(ctx)
	if err != nil {
		logger.Errorf("[player] load failed: %v", err)
		p.mu.Lock()
		p.state = StateFailed
		p.mu.Unlock()
		p.view.ShowError(FailureMessage)
		return err
	}

	p.mu.Lock()
	p.state = StateLoaded
	p.episodes = episodes
	p.current = 0
	p.mu.Unlock()

	// first item is latest, regardless of actual recency
	latest := episodes[0]
	p.view.SetLatest(latest.Title, latest.Enclosure, latest.NotesHref)

	visible := episodes
	if len(visible) > maxVisible {
		visible = visible[:maxVisible]
	}
	p.view.ShowEpisodes(visible)

	logger.Infof("[player] loaded %d episodes from %s", len(episodes), p.feedURL)
	return nil
}

// fetchEpisodes fetches and parses the feed with caching disabled.
func (p *Player) fetchEpisodes(ctx context.Context) ([]Episode, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrFetch, resp.StatusCode, p.feedURL)
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, ErrEmptyFeed
	}

	episodes := make([]Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		episodes = append(episodes, p.toEpisode(item))
	}
	return episodes, nil
}

// toEpisode maps a feed item, applying the defaults and the date-slug
// derivation for the show-notes link.
func (p *Player) toEpisode(item *gofeed.Item) Episode {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Episode"
	}

	pubDate := item.Published

	enclosure := ""
	if len(item.Enclosures) > 0 {
		enclosure = item.Enclosures[0].URL
	}

	// title wins over pubDate; first match wins, so a stray date-like
	// substring in a title is taken as the episode date
	slug := dateSlugRe.FindString(title)
	if slug == "" {
		slug = dateSlugRe.FindString(pubDate)
	}

	notesHref := p.notesBase + "/"
	if slug != "" {
		notesHref = p.notesBase + "/" + slug + ".html"
	}

	return Episode{
		Title:     title,
		PubDate:   pubDate,
		Enclosure: enclosure,
		DateSlug:  slug,
		NotesHref: notesHref,
	}
}

// Select switches the player to the episode at index i in the visible
// list. It reports whether default link navigation must be suppressed:
// true when the episode has an enclosure and the player switched to it,
// false when the entry should be left to its default (no-op) navigation.
// Playback-start failures are swallowed; autoplay restrictions are
// expected and non-fatal.
func (p *Player) Select(i int) bool {
	p.mu.Lock()
	if p.state != StateLoaded || i < 0 || i >= len(p.episodes) || i >= maxVisible {
		p.mu.Unlock()
		return false
	}
	ep := p.episodes[i]
	if ep.Enclosure == "" {
		p.mu.Unlock()
		return false
	}
	p.current = i
	p.mu.Unlock()

	p.view.SetLatest(ep.Title, ep.Enclosure, ep.NotesHref)
	// autoplay restrictions are expected; the failure is not even logged
	_ = p.view.Play()
	return true
}
