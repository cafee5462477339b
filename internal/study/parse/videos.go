// Package parse converts the loosely structured text returned by study
// agents into typed records. All parsers are total: malformed input yields
// empty or partial results, never an error.
package parse

import (
	"regexp"
	"strings"
)

// entryMarker delimits entries in agent output, e.g. "[1]", "[2]".
var entryMarker = regexp.MustCompile(`\[\d+\]`)

// VideoEntry is one recommended video.
type VideoEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	VideoID string `json:"video_id"`
}

// Videos parses video-collector output formatted as repeated
// "[n]\n<title>\n<url>" blocks. Entries with fewer than two lines are
// dropped; the dropped count is returned for diagnostics.
func Videos(text string) (entries []VideoEntry, dropped int) {
	parts := entryMarker.Split(text, -1)
	if len(parts) < 2 {
		return nil, 0
	}

	for _, part := range parts[1:] {
		lines := strings.Split(strings.TrimSpace(part), "\n")
		if len(lines) < 2 {
			dropped++
			continue
		}
		url := strings.TrimSpace(lines[1])
		entries = append(entries, VideoEntry{
			Title:   strings.TrimSpace(lines[0]),
			URL:     url,
			VideoID: videoID(url),
		})
	}
	return entries, dropped
}

// videoID extracts the YouTube video ID from the two known URL shapes,
// or returns "" if neither matches.
func videoID(url string) string {
	if _, after, ok := strings.Cut(url, "youtube.com/watch?v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	if _, after, ok := strings.Cut(url, "youtu.be/"); ok {
		id, _, _ := strings.Cut(after, "?")
		return id
	}
	return ""
}
