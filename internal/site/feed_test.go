package site

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPublishFeed(t *testing.T) {
	p, dir := testPublisher(t)

	if err := p.PublishFeed(makeEpisodes("2024-06-01", "2024-05-31")); err != nil {
		t.Fatalf("PublishFeed failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "feed.xml"))
	if err != nil {
		t.Fatalf("read feed.xml: %v", err)
	}

	var doc rssDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("feed.xml is not valid XML: %v", err)
	}
	if doc.Version != "2.0" {
		t.Errorf("rss version = %q", doc.Version)
	}
	if doc.Channel.Title != "Boston Briefing" {
		t.Errorf("channel title = %q", doc.Channel.Title)
	}
	if len(doc.Channel.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(doc.Channel.Items))
	}

	first := doc.Channel.Items[0]
	// newest first, the player treats the first item as latest
	if !strings.Contains(first.Title, "June 01, 2024") {
		t.Errorf("first item title = %q, want newest", first.Title)
	}
	if first.Enclosure.URL != "https://example.github.io/boston-briefing/episodes/boston-briefing-2024-06-01.mp3" {
		t.Errorf("enclosure url = %q", first.Enclosure.URL)
	}
	if first.Enclosure.Type != "audio/mpeg" {
		t.Errorf("enclosure type = %q", first.Enclosure.Type)
	}
	if first.Link != "https://example.github.io/boston-briefing/shownotes/2024-06-01.html" {
		t.Errorf("item link = %q", first.Link)
	}
	if !strings.Contains(first.PubDate, "Jun 2024") {
		t.Errorf("pubDate = %q", first.PubDate)
	}
}

func TestPublishFeedCapsAtTen(t *testing.T) {
	p, dir := testPublisher(t)

	dates := make([]string, 12)
	for i := range dates {
		dates[i] = time.Date(2024, 6, 12-i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	}
	if err := p.PublishFeed(makeEpisodes(dates...)); err != nil {
		t.Fatalf("PublishFeed failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "feed.xml"))
	var doc rssDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	if len(doc.Channel.Items) != 10 {
		t.Errorf("items = %d, want 10", len(doc.Channel.Items))
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("one\n\n  two  \n\n\nthree\n")
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("paragraphs = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraphs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
