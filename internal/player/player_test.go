package player

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeView records the mutations the player applies.
type fakeView struct {
	title     string
	audioSrc  string
	notesHref string
	list      []Episode
	errMsg    string
	playCalls int
	playErr   error
}

func (v *fakeView) SetLatest(title, audioSrc, notesHref string) {
	v.title = title
	v.audioSrc = audioSrc
	v.notesHref = notesHref
}
func (v *fakeView) ShowEpisodes(episodes []Episode) { v.list = episodes }
func (v *fakeView) ShowError(msg string)            { v.errMsg = msg }
func (v *fakeView) Play() error                     { v.playCalls++; return v.playErr }

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Boston Briefing</title>
    <link>https://example.com</link>
    <description>Daily briefing</description>
    <item>
      <title>Boston Briefing 2024-06-01</title>
      <pubDate>Sat, 01 Jun 2024 07:00:00 GMT</pubDate>
      <enclosure url="https://x/ep1.mp3" length="0" type="audio/mpeg"/>
    </item>
    <item>
      <title>Weekend Special</title>
      <pubDate>Fri, 31 May 2024 07:00:00 GMT</pubDate>
      <enclosure url="https://x/ep2.mp3" length="0" type="audio/mpeg"/>
    </item>
    <item>
      <title>Teaser</title>
      <pubDate>coming soon</pubDate>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, body)
	}))
}

func loadedPlayer(t *testing.T, feedBody string) (*Player, *fakeView) {
	t.Helper()
	srv := feedServer(t, feedBody)
	t.Cleanup(srv.Close)

	view := &fakeView{}
	p, err := New(Options{BaseURL: srv.URL, View: view})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return p, view
}

func TestNewRequiresView(t *testing.T) {
	if _, err := New(Options{BaseURL: "https://example.com"}); err == nil {
		t.Fatal("expected error without a view")
	}
}

func TestNewRequiresResolvableBase(t *testing.T) {
	if _, err := New(Options{View: &fakeView{}}); err == nil {
		t.Fatal("expected error without any base URL")
	}
}

func TestResolveBase(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		pageURL string
		want    string
	}{
		{"explicit base", "https://example.com/briefing", "", "https://example.com/briefing"},
		{"trailing slash stripped", "https://example.com/briefing/", "", "https://example.com/briefing"},
		{"derived from page", "", "https://example.com/briefing/site/index.html", "https://example.com/briefing"},
		{"page without site suffix", "", "https://example.com/briefing", "https://example.com/briefing"},
		{"explicit wins over page", "https://a.example", "https://b.example/site/x", "https://a.example"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveBase(tc.baseURL, tc.pageURL); got != tc.want {
				t.Errorf("resolveBase(%q, %q) = %q, want %q", tc.baseURL, tc.pageURL, got, tc.want)
			}
		})
	}
}

func TestLoadPrimesLatest(t *testing.T) {
	p, view := loadedPlayer(t, testFeed)

	if p.State() != StateLoaded {
		t.Errorf("state = %s, want Loaded", p.State())
	}
	if view.title != "Boston Briefing 2024-06-01" {
		t.Errorf("latest title = %q", view.title)
	}
	if view.audioSrc != "https://x/ep1.mp3" {
		t.Errorf("audio src = %q", view.audioSrc)
	}
	if len(view.list) != 3 {
		t.Errorf("rendered list = %d items", len(view.list))
	}

	cur, ok := p.Current()
	if !ok || cur.Title != "Boston Briefing 2024-06-01" {
		t.Errorf("Current() = %+v, %v", cur, ok)
	}
}

// The example from the feed contract: a dated title yields a slug and a
// per-episode notes page.
func TestEpisodeMapping(t *testing.T) {
	p, _ := loadedPlayer(t, testFeed)
	eps := p.Episodes()

	first := eps[0]
	if first.DateSlug != "2024-06-01" {
		t.Errorf("DateSlug = %q, want 2024-06-01", first.DateSlug)
	}
	wantNotes := p.notesBase + "/2024-06-01.html"
	if first.NotesHref != wantNotes {
		t.Errorf("NotesHref = %q, want %q", first.NotesHref, wantNotes)
	}
	if first.Enclosure != "https://x/ep1.mp3" {
		t.Errorf("Enclosure = %q", first.Enclosure)
	}

	// no date in the title: the slug comes from pubDate
	second := eps[1]
	if second.DateSlug != "" {
		// pubDate "Fri, 31 May 2024..." has no YYYY-MM-DD substring
		t.Errorf("DateSlug = %q, want empty", second.DateSlug)
	}
	if second.NotesHref != p.notesBase+"/" {
		t.Errorf("NotesHref = %q, want bare notes dir", second.NotesHref)
	}

	// third item has no enclosure at all
	if eps[2].Enclosure != "" {
		t.Errorf("Enclosure = %q, want empty", eps[2].Enclosure)
	}
}

func TestDateSlugFromPubDate(t *testing.T) {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel>
	<item><title>Morning Update</title><pubDate>2024-06-02T07:00:00Z</pubDate></item>
	</channel></rss>`
	p, _ := loadedPlayer(t, feed)

	ep := p.Episodes()[0]
	if ep.DateSlug != "2024-06-02" {
		t.Errorf("DateSlug = %q, want slug from pubDate", ep.DateSlug)
	}
	if ep.NotesHref != p.notesBase+"/2024-06-02.html" {
		t.Errorf("NotesHref = %q", ep.NotesHref)
	}
}

func TestBlankTitleDefaults(t *testing.T) {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel>
	<item><title></title><enclosure url="https://x/ep.mp3"/></item>
	</channel></rss>`
	p, view := loadedPlayer(t, feed)

	if p.Episodes()[0].Title != "Episode" {
		t.Errorf("blank title should default to Episode, got %q", p.Episodes()[0].Title)
	}
	if view.title != "Episode" {
		t.Errorf("displayed title = %q", view.title)
	}
}

func TestVisibleListCappedAtTen(t *testing.T) {
	items := ""
	for i := 0; i < 14; i++ {
		items += fmt.Sprintf(`<item><title>Episode %d</title><enclosure url="https://x/ep%d.mp3"/></item>`, i, i)
	}
	feed := `<?xml version="1.0"?><rss version="2.0"><channel>` + items + `</channel></rss>`
	p, view := loadedPlayer(t, feed)

	if len(view.list) != 10 {
		t.Errorf("rendered list = %d, want 10", len(view.list))
	}
	if len(p.Episodes()) != 14 {
		t.Errorf("parsed episodes = %d, want all 14", len(p.Episodes()))
	}
}

func TestSelectWithEnclosure(t *testing.T) {
	p, view := loadedPlayer(t, testFeed)

	if !p.Select(1) {
		t.Fatal("Select(1) should suppress default navigation")
	}
	if view.title != "Weekend Special" {
		t.Errorf("title = %q", view.title)
	}
	if view.audioSrc != "https://x/ep2.mp3" {
		t.Errorf("audio src = %q", view.audioSrc)
	}
	if view.playCalls != 1 {
		t.Errorf("playback should start once, got %d", view.playCalls)
	}

	cur, _ := p.Current()
	if cur.Title != "Weekend Special" {
		t.Errorf("Current() = %+v", cur)
	}
}

func TestSelectWithoutEnclosure(t *testing.T) {
	p, view := loadedPlayer(t, testFeed)

	if p.Select(2) {
		t.Fatal("Select on an episode without audio should allow default navigation")
	}
	// the audio source and title stay on the latest episode
	if view.audioSrc != "https://x/ep1.mp3" {
		t.Errorf("audio src changed: %q", view.audioSrc)
	}
	if view.title != "Boston Briefing 2024-06-01" {
		t.Errorf("title changed: %q", view.title)
	}
	if view.playCalls != 0 {
		t.Errorf("playback should not start")
	}
}

func TestSelectSwallowsPlaybackError(t *testing.T) {
	p, view := loadedPlayer(t, testFeed)
	view.playErr = fmt.Errorf("autoplay blocked")

	if !p.Select(1) {
		t.Fatal("a playback error must not surface through Select")
	}
	if view.audioSrc != "https://x/ep2.mp3" {
		t.Errorf("audio src = %q", view.audioSrc)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	p, _ := loadedPlayer(t, testFeed)
	if p.Select(-1) || p.Select(99) {
		t.Error("out-of-range selection should be a no-op")
	}
}

func TestLoadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	view := &fakeView{}
	p, err := New(Options{BaseURL: srv.URL, View: view})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := p.Load(context.Background()); err == nil {
		t.Fatal("expected error on 404")
	}
	if p.State() != StateFailed {
		t.Errorf("state = %s, want Failed", p.State())
	}
	if view.errMsg != FailureMessage {
		t.Errorf("error message = %q, want %q", view.errMsg, FailureMessage)
	}
	if len(view.list) != 0 {
		t.Errorf("no list items should render on failure")
	}
	if p.Select(0) {
		t.Error("Select must be inert after a failed load")
	}
}

func TestLoadEmptyFeed(t *testing.T) {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	srv := feedServer(t, feed)
	defer srv.Close()

	view := &fakeView{}
	p, _ := New(Options{BaseURL: srv.URL, View: view})

	if err := p.Load(context.Background()); err == nil {
		t.Fatal("expected error on empty feed")
	}
	if view.errMsg != FailureMessage {
		t.Errorf("error message = %q", view.errMsg)
	}
}

func TestLoadMalformedXML(t *testing.T) {
	srv := feedServer(t, "this is not xml at all")
	defer srv.Close()

	view := &fakeView{}
	p, _ := New(Options{BaseURL: srv.URL, View: view})

	if err := p.Load(context.Background()); err == nil {
		t.Fatal("expected error on malformed feed")
	}
	if p.State() != StateFailed {
		t.Errorf("state = %s", p.State())
	}
	if view.errMsg != FailureMessage {
		t.Errorf("error message = %q", view.errMsg)
	}
}

func TestFeedURLDerivation(t *testing.T) {
	view := &fakeView{}
	p, err := New(Options{BaseURL: "https://example.com/briefing/", View: view})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.FeedURL() != "https://example.com/briefing/feed.xml" {
		t.Errorf("FeedURL = %q", p.FeedURL())
	}
	if p.notesBase != "https://example.com/briefing/shownotes" {
		t.Errorf("notesBase = %q", p.notesBase)
	}
}
