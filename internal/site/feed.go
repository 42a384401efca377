package site

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bostonbriefing/briefing/internal/episode"
	"github.com/bostonbriefing/briefing/internal/logger"
)

// episodeAirTime is the local hour an episode nominally airs, used for
// the feed's pubDate.
const episodeAirTime = 7

// Feed documents are a small RSS 2.0 subset: the player only reads
// channel > item title, pubDate and enclosure url.
type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title     string       `xml:"title"`
	Link      string       `xml:"link"`
	GUID      string       `xml:"guid"`
	PubDate   string       `xml:"pubDate"`
	Enclosure rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// PublishFeed writes feed.xml, newest episode first.
func (p *Publisher) PublishFeed(episodes []episode.Episode) error {
	listed := episodes
	if len(listed) > maxListed {
		listed = listed[:maxListed]
	}

	items := make([]rssItem, 0, len(listed))
	for _, ep := range listed {
		items = append(items, rssItem{
			Title:     ep.Title,
			Link:      p.baseURL + "/shownotes/" + ep.Date + ".html",
			GUID:      ep.AudioURL,
			PubDate:   p.pubDate(ep.Date),
			Enclosure: rssEnclosure{URL: ep.AudioURL, Length: p.enclosureLength(ep), Type: "audio/mpeg"},
		})
	}

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:       p.title,
			Link:        p.link,
			Description: p.description,
			Items:       items,
		},
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}

	path := filepath.Join(p.publicDir, "feed.xml")
	if err := os.MkdirAll(p.publicDir, 0755); err != nil {
		return fmt.Errorf("create public dir: %w", err)
	}
	content := xml.Header + string(data) + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write feed.xml: %w", err)
	}
	logger.Debugf("[site] wrote %s (%d items)", path, len(items))
	return nil
}

// pubDate renders the episode date as an RFC1123Z timestamp at the
// nominal air time in the site's timezone.
func (p *Publisher) pubDate(date string) string {
	t, err := time.ParseInLocation(episode.DateLayout, date, p.loc)
	if err != nil {
		return ""
	}
	return t.Add(episodeAirTime * time.Hour).Format(time.RFC1123Z)
}

// enclosureLength reports the MP3 file size when the episode lives in the
// local public dir, zero otherwise.
func (p *Publisher) enclosureLength(ep episode.Episode) int64 {
	local := filepath.Join(p.publicDir, "episodes", episode.Filename(ep.Date))
	if info, err := os.Stat(local); err == nil {
		return info.Size()
	}
	return 0
}

// splitParagraphs breaks a script into non-empty paragraphs.
func splitParagraphs(script string) []string {
	var out []string
	for _, part := range strings.Split(script, "\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
