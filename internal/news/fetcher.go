// Package news gathers the raw stories a briefing is built from.
package news

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/bostonbriefing/briefing/internal/config"
	"github.com/bostonbriefing/briefing/internal/logger"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultMaxPerSource = 6
	maxSummaryLen       = 300 // max summary characters fed to the model
)

// Item is one candidate story pulled from a source feed.
type Item struct {
	Title     string
	Summary   string
	Link      string
	Published time.Time
	Source    string
}

// Fetcher pulls items from the configured source feeds.
type Fetcher struct {
	sources      []config.Source
	maxPerSource int
	parser       *gofeed.Parser
	client       *http.Client
}

// NewFetcher creates a fetcher for the configured news sources.
func NewFetcher(cfg config.NewsConfig) *Fetcher {
	timeout := defaultFetchTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	maxPerSource := cfg.MaxPerSource
	if maxPerSource <= 0 {
		maxPerSource = defaultMaxPerSource
	}

	return &Fetcher{
		sources:      cfg.Sources,
		maxPerSource: maxPerSource,
		parser:       gofeed.NewParser(),
		client:       &http.Client{Timeout: timeout},
	}
}

// FetchAll pulls items from every source. A failing source is logged and
// skipped; only zero usable items overall is an error.
func (f *Fetcher) FetchAll(ctx context.Context) ([]Item, error) {
	if len(f.sources) == 0 {
		return nil, fmt.Errorf("no news sources configured")
	}

	var all []Item
	for _, src := range f.sources {
		items, err := f.fetchSource(ctx, src)
		if err != nil {
			logger.Warnf("[news] fetch %s failed: %v", src.Name, err)
			continue
		}
		logger.Debugf("[news] %s: %d items", src.Name, len(items))
		all = append(all, items...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no items fetched from any source")
	}
	return all, nil
}

// fetchSource pulls and converts one feed.
func (f *Fetcher) fetchSource(ctx context.Context, src config.Source) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "BostonBriefing/1.0 RSS Reader")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	return f.convertItems(feed, src.Name), nil
}

// convertItems maps gofeed items into news items, capped per source.
func (f *Fetcher) convertItems(feed *gofeed.Feed, sourceName string) []Item {
	maxItems := f.maxPerSource
	if len(feed.Items) < maxItems {
		maxItems = len(feed.Items)
	}

	items := make([]Item, 0, maxItems)
	for i := 0; i < maxItems; i++ {
		gItem := feed.Items[i]

		summary := gItem.Description
		if summary == "" {
			summary = gItem.Content
		}
		summary = stripHTML(summary)
		summary = truncate(summary, maxSummaryLen)

		published := time.Now()
		if gItem.PublishedParsed != nil {
			published = *gItem.PublishedParsed
		} else if gItem.UpdatedParsed != nil {
			published = *gItem.UpdatedParsed
		}

		items = append(items, Item{
			Title:     strings.TrimSpace(gItem.Title),
			Summary:   summary,
			Link:      gItem.Link,
			Published: published,
			Source:    sourceName,
		})
	}
	return items
}

// Dedupe drops items whose normalized title was already seen, keeping the
// first occurrence so earlier (higher-priority) sources win.
func Dedupe(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := normalizeTitle(item.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRe.ReplaceAllString(s, " ")
}

// stripHTML removes tags and common entities, leaving plain text.
func stripHTML(s string) string {
	re := regexp.MustCompile(`<[^>]*>`)
	s = re.ReplaceAllString(s, "")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&apos;", "'",
	)
	s = replacer.Replace(s)

	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncate cuts s to maxLen runes.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
