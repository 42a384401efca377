package episode

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bostonbriefing/briefing/internal/logger"
)

// ScanDir rebuilds the episode list from MP3 files on disk, for archives
// written outside the app. Filenames that do not carry a parseable date
// are skipped. The result is newest first.
func ScanDir(episodesDir, baseURL string) []Episode {
	entries, err := filepath.Glob(filepath.Join(episodesDir, "*.mp3"))
	if err != nil {
		logger.Warnf("[episode] scan %s failed: %v", episodesDir, err)
		return nil
	}

	var episodes []Episode
	for _, path := range entries {
		name := filepath.Base(path)
		stem := strings.TrimSuffix(name, ".mp3")
		date := strings.TrimPrefix(stem, "boston-briefing-")

		t, err := time.Parse(DateLayout, date)
		if err != nil {
			logger.Debugf("[episode] skipping %s: no date in filename", name)
			continue
		}

		script := ""
		if data, err := os.ReadFile(filepath.Join(episodesDir, ScriptFilename(date))); err == nil {
			script = string(data)
		}

		episodes = append(episodes, Episode{
			ID:          date,
			Title:       TitleFor(t),
			Date:        date,
			Script:      script,
			AudioURL:    baseURL + "/episodes/" + name,
			Duration:    DefaultDuration,
			GeneratedAt: t,
		})
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].Date > episodes[j].Date
	})
	return episodes
}
