// Package episode models generated briefing episodes and their index.
package episode

import (
	"fmt"
	"time"
)

// DateLayout is the canonical episode date form, also used in filenames.
const DateLayout = "2006-01-02"

// DefaultDuration is the estimate used when the MP3 cannot be probed.
const DefaultDuration = 180 // seconds

// Episode is one generated briefing.
type Episode struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Script      string    `json:"script,omitempty"`
	AudioURL    string    `json:"audioURL"`
	Duration    int       `json:"duration"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Filename returns the MP3 filename for an episode date,
// e.g. boston-briefing-2024-06-01.mp3.
func Filename(date string) string {
	return fmt.Sprintf("boston-briefing-%s.mp3", date)
}

// ScriptFilename returns the script filename stored beside the MP3.
func ScriptFilename(date string) string {
	return fmt.Sprintf("boston-briefing-%s.txt", date)
}

// TitleFor returns the display title for an episode date.
func TitleFor(t time.Time) string {
	return fmt.Sprintf("Boston Briefing – %s", t.Format("January 02, 2006"))
}
